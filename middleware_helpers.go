package notes

import (
	"context"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

// ContextEnricherAdapter adapts jwtware.AuthClaims to notes.AuthClaims and
// stores claims plus the derived session in the standard context so
// handlers receive the identity context explicitly.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	ctxWithClaims := WithClaimsContext(c, authClaims)

	if session, err := sessionFromAuthClaims(authClaims); err == nil {
		return WithSessionContext(ctxWithClaims, session)
	}

	return ctxWithClaims
}

// gateValidator bridges the package TokenValidator into the middleware's
// local interface without an import cycle.
type gateValidator struct {
	validator TokenValidator
}

func (g gateValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := g.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
