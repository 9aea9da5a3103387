package notes

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the per-request identity context derived from a verified
// claim token. It is owned by the request and discarded with it.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s email=%s iss=%s iat=%s",
		s.UserID,
		s.Email,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromAuthClaims creates a SessionObject from verified AuthClaims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToParseData
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:         claims.UserID(),
		Email:          claims.Email(),
		Issuer:         issuerFromClaims(claims),
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

func issuerFromClaims(claims AuthClaims) string {
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		if jwtClaims.RegisteredClaims.Issuer != "" {
			return jwtClaims.RegisteredClaims.Issuer
		}
	}
	return ""
}
