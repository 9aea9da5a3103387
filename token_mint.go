package notes

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenOptions controls how MintToken issues tokens.
type TokenOptions struct {
	// TTL overrides the default token expiration. Zero uses TokenService defaults.
	TTL time.Duration
	// Issuer overrides the default issuer if provided.
	Issuer string
	// Audience overrides the default audience if provided.
	Audience []string
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
}

type tokenDefaults struct {
	issuer   string
	audience jwt.ClaimStrings
	ttl      time.Duration
}

type tokenDefaultsProvider interface {
	tokenDefaults() tokenDefaults
}

// MintToken mints a JWT for the identity with optional TTL and issuance
// overrides. It uses TokenService defaults for issuer, audience, and TTL
// when available. Registration uses it to auto-issue the first token.
func MintToken(tokenService TokenService, identity Identity, opts TokenOptions) (string, time.Time, error) {
	if tokenService == nil {
		return "", time.Time{}, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}
	if identity == nil {
		return "", time.Time{}, goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	issuer := opts.Issuer
	audience := opts.Audience
	ttl := opts.TTL

	if defaultsProvider, ok := tokenService.(tokenDefaultsProvider); ok {
		defaults := defaultsProvider.tokenDefaults()
		if issuer == "" {
			issuer = defaults.issuer
		}
		if len(audience) == 0 {
			audience = defaults.audience
		}
		if ttl == 0 {
			ttl = defaults.ttl
		}
	}

	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	expiresAt := issuedAt.Add(ttl)

	var aud jwt.ClaimStrings
	if len(audience) > 0 {
		aud = make(jwt.ClaimStrings, len(audience))
		copy(aud, audience)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.ID(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:       identity.ID(),
		UserEmail: identity.Email(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	token, err := tokenService.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
