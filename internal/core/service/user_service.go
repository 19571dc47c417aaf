package service

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// CreateUser is the administrative variant of registration. There is no
// username pre-check; a duplicate is rejected by the store's unique index.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, errMissingCredentials
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	return createUser(ctx, s.repo, s.hasher, in.Username, in.Password, in.Email, role)
}

func (s *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}
