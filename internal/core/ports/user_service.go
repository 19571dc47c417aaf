package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// CreateUserInput carries the administrative user creation payload.
type CreateUserInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
