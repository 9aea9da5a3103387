package notes

import (
	"context"
	"reflect"

	"github.com/golang-jwt/jwt/v5"
)

// Auther is the package Authenticator: it verifies credentials through an
// IdentityProvider and mints claim tokens through a TokenService. It holds
// no session state; tokens are stateless bearer credentials.
type Auther struct {
	provider       IdentityProvider
	signingKey     []byte
	logger         Logger
	tokenService   TokenService
	tokenValidator TokenValidator
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenTTL(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed claim token. The
// provider maps unknown identifiers and wrong passwords to the same error.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	return s.tokenService.Generate(identity)
}

// SessionFromToken validates a raw token and derives the request session.
func (s Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession resolves the session subject against the store. A
// valid token whose user has since been removed fails here, not at the
// gate: authorization does not guarantee identity existence.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier: %s", err)
		return nil, err
	}

	return identity, nil
}
