package jwtware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

type testClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	UserEmail string `json:"email,omitempty"`
}

func (c *testClaims) Subject() string { return c.RegisteredClaims.Subject }
func (c *testClaims) UserID() string  { return c.UID }
func (c *testClaims) Email() string   { return c.UserEmail }

// testValidator verifies HS256 tokens against a fixed key.
type testValidator struct {
	key []byte
}

func (v testValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &testClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*testClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}

func signToken(t *testing.T, key []byte, claims *testClaims) string {
	t.Helper()

	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

var signingKey = []byte("test-secret")

func newGate(config ...jwtware.Config) router.HandlerFunc {
	cfg := jwtware.Config{TokenValidator: testValidator{key: signingKey}}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.TokenValidator == nil {
			cfg.TokenValidator = testValidator{key: signingKey}
		}
	}

	next := func(ctx router.Context) error {
		return ctx.Next()
	}

	return jwtware.New(cfg)(next)
}

func TestGateRequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		next := func(ctx router.Context) error { return nil }
		jwtware.New(jwtware.Config{})(next)
	})
}

func TestGateAllowsValidTokens(t *testing.T) {
	token := signToken(t, signingKey, &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		UID:              "user-123",
	})

	handler := newGate()

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer " + token
	ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
	ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()

	err := handler(ctx)

	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "authorized requests reach the handler")
}

func TestGateUniformRejection(t *testing.T) {
	expired := signToken(t, signingKey, &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UID: "user-123",
	})
	wrongKey := signToken(t, []byte("other-secret"), &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		UID:              "user-123",
	})

	// Every rejection reason must produce the same observable outcome:
	// same status, same body, handler never reached.
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"bad signature", "Bearer " + wrongKey},
		{"expired token", "Bearer " + expired},
	}

	var bodies []map[string]string

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newGate()

			ctx := router.NewMockContext()
			if tc.header != "" {
				ctx.HeadersM["Authorization"] = tc.header
			}
			ctx.On("GetString", "Authorization", "").Return(tc.header)

			var status int
			var body map[string]string
			ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
				status = args.Int(0)
				body = args.Get(1).(map[string]string)
			}).Return(nil)

			err := handler(ctx)

			require.NoError(t, err)
			assert.Equal(t, router.StatusUnauthorized, status)
			assert.False(t, ctx.NextCalled, "rejected requests never reach the handler")

			bodies = append(bodies, body)
		})
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestGateIsIdempotent(t *testing.T) {
	token := signToken(t, signingKey, &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		UID:              "user-123",
	})

	handler := newGate()

	for i := 0; i < 3; i++ {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer " + token
		ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
		ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()

		require.NoError(t, handler(ctx))
		assert.True(t, ctx.NextCalled)
	}
}

func TestGateFilterSkipsTheGate(t *testing.T) {
	handler := newGate(jwtware.Config{
		Filter: func(ctx router.Context) bool { return true },
	})

	ctx := router.NewMockContext()

	err := handler(ctx)

	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestGateCustomErrorHandler(t *testing.T) {
	var handled error
	handler := newGate(jwtware.Config{
		ErrorHandler: func(ctx router.Context, err error) error {
			handled = err
			return nil
		},
	})

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := handler(ctx)

	require.NoError(t, err)
	assert.ErrorIs(t, handled, jwtware.ErrJWTMissingOrMalformed)
	assert.False(t, ctx.NextCalled)
}

func TestGateQueryExtraction(t *testing.T) {
	token := signToken(t, signingKey, &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		UID:              "user-123",
	})

	handler := newGate(jwtware.Config{
		TokenLookup: "query:auth_token",
	})

	ctx := router.NewMockContext()
	ctx.QueriesM["auth_token"] = token
	ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()

	err := handler(ctx)

	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestGateCookieExtraction(t *testing.T) {
	token := signToken(t, signingKey, &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		UID:              "user-123",
	})

	handler := newGate(jwtware.Config{
		TokenLookup: "cookie:jwt",
	})

	ctx := router.NewMockContext()
	ctx.On("Cookies", "jwt").Return(token)
	ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()

	err := handler(ctx)

	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestGateContextEnricher(t *testing.T) {
	token := signToken(t, signingKey, &testClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		UID:              "user-123",
		UserEmail:        "test@example.com",
	})

	var enriched jwtware.AuthClaims
	handler := newGate(jwtware.Config{
		ContextEnricher: func(c context.Context, claims jwtware.AuthClaims) context.Context {
			enriched = claims
			return c
		},
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer " + token
	ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
	ctx.On("Locals", "user", mock.Anything).Return(nil).Maybe()
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()

	err := handler(ctx)

	require.NoError(t, err)
	require.NotNil(t, enriched)
	assert.Equal(t, "user-123", enriched.UserID())
	assert.Equal(t, "test@example.com", enriched.Email())
}
