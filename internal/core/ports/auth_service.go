package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	Issue(principal domain.Principal) (string, error)
	SubjectOf(token string) (string, error)
	IsValid(token string, principal domain.Principal) bool
}

// PasswordHasher is the one-way hash used for stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// Authenticator turns a bearer token into a principal. The boolean is false
// whenever the token cannot be trusted for any reason.
type Authenticator interface {
	Resolve(ctx context.Context, token string) (domain.Principal, bool)
}
