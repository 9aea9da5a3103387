package notes

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserStore is the store surface the provider needs to verify identities
type UserStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
}

// UserProvider resolves identities against the credential store
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = l
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. An unknown identifier and a wrong password produce the same
// ErrMismatchedHashAndPassword so callers cannot probe for accounts.
func (u UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return authIdentity{
		id:    user.ID.String(),
		name:  user.Name,
		email: user.Email,
	}, nil
}

func (u UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	return authIdentity{
		id:    user.ID.String(),
		name:  user.Name,
		email: user.Email,
	}, nil
}

type authIdentity struct {
	id    string
	name  string
	email string
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Name() string {
	return a.name
}

func (a authIdentity) Email() string {
	return a.email
}

var _ Identity = authIdentity{}
