package notes_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	notes "github.com/goliatone/go-notes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserMessageType(t *testing.T) {
	assert.Equal(t, "user.register", notes.RegisterUserMessage{}.Type())
}

func TestRegisterUserHandlerExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user with a hashed secret", func(t *testing.T) {
		users := &stubUsers{}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:     "Test User",
			Email:    "Test@Example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Test User", user.Name)
		assert.Equal(t, "test@example.com", user.Email, "email is normalized before storage")

		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.NoError(t, notes.ComparePasswordAndHash("password123", user.PasswordHash))
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		users := &stubUsers{
			existing: &notes.User{
				ID:    uuid.New(),
				Email: "test@example.com",
			},
		}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, notes.ErrDuplicateEmail)
		assert.Equal(t, notes.TextCodeDuplicateEmail, textCode(err))
		assert.Nil(t, users.lastCreated, "no write happens on a duplicate")
	})

	t.Run("racing duplicate inserts map to the conflict error", func(t *testing.T) {
		users := &stubUsers{
			createErr: errors.New("constraint failed: UNIQUE constraint failed: users.email"),
		}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, notes.ErrDuplicateEmail)
	})

	t.Run("insert outages are internal, not conflicts", func(t *testing.T) {
		users := &stubUsers{
			createErr: errors.New("database is locked"),
		}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		})

		assert.Nil(t, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, notes.ErrDuplicateEmail)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
	})

	t.Run("rejects empty passwords", func(t *testing.T) {
		users := &stubUsers{}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		user, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:  "Test User",
			Email: "test@example.com",
		})

		assert.Nil(t, user)
		assert.Error(t, err)
		assert.Nil(t, users.lastCreated)
	})

	t.Run("derives a stable id from the email with hashid", func(t *testing.T) {
		users := &stubUsers{}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		first, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:      "Test User",
			Email:     "test@example.com",
			Password:  "password123",
			UseHashid: true,
		})
		require.NoError(t, err)

		second, err := handler.Execute(ctx, notes.RegisterUserMessage{
			Name:      "Test User",
			Email:     "test@example.com",
			Password:  "password123",
			UseHashid: true,
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.NotEqual(t, uuid.Nil, first.ID)
	})

	t.Run("honors cancelled contexts", func(t *testing.T) {
		users := &stubUsers{}
		repo := &stubRepoManager{usersRepo: users}
		handler := notes.NewRegisterUserHandler(repo)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		user, err := handler.Execute(cancelled, notes.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		})

		assert.Nil(t, user)
		assert.Error(t, err)
		assert.Nil(t, users.lastCreated)
	})
}
