package notes_test

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	notes "github.com/goliatone/go-notes"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// textCode pulls the machine readable code off a rich error, if any.
func textCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// TestIdentity implements notes.Identity for testing
type TestIdentity struct {
	id    string
	name  string
	email string
}

func (t TestIdentity) ID() string    { return t.id }
func (t TestIdentity) Name() string  { return t.name }
func (t TestIdentity) Email() string { return t.email }

// MockLogger implements notes.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentityProvider implements notes.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (notes.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(notes.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (notes.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(notes.Identity)
	return identity, args.Error(1)
}

// MockAuthenticator implements notes.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (notes.Session, error) {
	args := m.Called(token)
	session, _ := args.Get(0).(notes.Session)
	return session, args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session notes.Session) (notes.Identity, error) {
	args := m.Called(ctx, session)
	identity, _ := args.Get(0).(notes.Identity)
	return identity, args.Error(1)
}

// MockUserStore implements notes.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*notes.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*notes.User)
	return user, args.Error(1)
}

// stubUsers overrides the store methods the tests exercise. Anything else
// panics through the embedded nil interface if it is ever reached.
type stubUsers struct {
	notes.Users
	existing    *notes.User
	existingErr error
	created     *notes.User
	createErr   error
	getErr      error
	lastCreated *notes.User
}

func (s *stubUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*notes.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.existing, nil
}

func (s *stubUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*notes.User, error) {
	if s.existingErr != nil {
		return nil, s.existingErr
	}
	if s.existing == nil {
		return nil, repository.NewRecordNotFound()
	}
	return s.existing, nil
}

func (s *stubUsers) CreateTx(ctx context.Context, tx bun.IDB, record *notes.User, criteria ...repository.InsertCriteria) (*notes.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.lastCreated = record
	if s.created != nil {
		return s.created, nil
	}
	return record, nil
}

// stubRepoManager wires stub repositories and runs transactions inline.
type stubRepoManager struct {
	notes.RepositoryManager
	usersRepo notes.Users
	notesRepo notes.Notes
}

func (s *stubRepoManager) Users() notes.Users { return s.usersRepo }

func (s *stubRepoManager) Notes() notes.Notes { return s.notesRepo }

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (s *stubRepoManager) Validate() error { return nil }

// mockConfig implements notes.Config with test values
type mockConfig struct {
	signingKey string
	ttl        time.Duration
	issuer     string
	audience   []string
}

func newMockConfig() mockConfig {
	return mockConfig{
		signingKey: "test-signing-key",
		ttl:        time.Hour,
		issuer:     "test-issuer",
		audience:   []string{"test-audience"},
	}
}

func (c mockConfig) GetSigningKey() string      { return c.signingKey }
func (c mockConfig) GetContextKey() string      { return "user" }
func (c mockConfig) GetTokenTTL() time.Duration { return c.ttl }
func (c mockConfig) GetTokenLookup() string     { return "" }
func (c mockConfig) GetAuthScheme() string      { return "Bearer" }
func (c mockConfig) GetIssuer() string          { return c.issuer }
func (c mockConfig) GetAudience() []string      { return c.audience }
