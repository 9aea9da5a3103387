//go:build !race

package notes

func passwordHashCost() int {
	return 14
}
