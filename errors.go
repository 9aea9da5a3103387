package notes

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds    = "auth_invalid_credentials"
	TextCodeTokenExpired    = "auth_token_expired"
	TextCodeTokenMalformed  = "auth_token_malformed"
	TextCodeSessionNotFound = "auth_session_not_found"
	TextCodeDuplicateEmail  = "registration_email_exists"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the single outcome for unknown accounts
// and wrong passwords so login never reveals which one happened.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before they reach bcrypt
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when a claim token is past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers unparseable tokens and bad signatures
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when our request carries no session
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT claims into a session
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryInternal)

// ErrDuplicateEmail is returned when registration hits an existing email.
// First write wins; there is no merge.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrNoteNotFound covers missing notes and notes owned by someone else
var ErrNoteNotFound = errors.New("note not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
