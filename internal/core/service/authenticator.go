package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

// Authenticator resolves bearer tokens to principals for the authentication gate.
type Authenticator struct {
	tokens ports.TokenService
	users  ports.UserRepository
	log    zerolog.Logger
}

func NewAuthenticator(tokens ports.TokenService, users ports.UserRepository, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, log: log}
}

// Resolve decodes the token subject, loads that user and checks the token
// against it. Every failure collapses to (Principal{}, false).
func (a *Authenticator) Resolve(ctx context.Context, token string) (domain.Principal, bool) {
	username, err := a.tokens.SubjectOf(token)
	if err != nil {
		a.reject("invalid_token", err)
		return domain.Principal{}, false
	}

	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		a.reject("unknown_subject", err)
		return domain.Principal{}, false
	}

	principal := domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
	if !a.tokens.IsValid(token, principal) {
		a.reject("expired", nil)
		return domain.Principal{}, false
	}

	return principal, true
}

func (a *Authenticator) reject(reason string, err error) {
	a.log.Debug().Err(err).Str("reason", reason).Msg("bearer token rejected")
}
