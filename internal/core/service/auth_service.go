package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

var errMissingCredentials = fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Register creates an account with the role the caller asked for. Whether the
// caller may claim DISPATCHER or RESPONDER is not checked here.
func (s *AuthService) Register(ctx context.Context, username, password, email, role string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, errMissingCredentials
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	created, err := createUser(ctx, s.repo, s.hasher, username, password, email, r)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login checks the credentials and returns a signed token for the user.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		return "", nil, fmt.Errorf("login: sign token: %w", err)
	}
	return token, user, nil
}

// createUser is the persistence path shared by registration and administrative creation.
func createUser(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, username, password, email string, role domain.Role) (*domain.User, error) {
	hash, err := hasher.Hash(password)
	if errors.Is(err, domain.ErrInvalidInput) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	return repo.Create(ctx, user)
}
