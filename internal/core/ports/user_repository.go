package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// UserRepository is the user half of the credential store.
type UserRepository interface {
	// Create persists user and returns the stored record. A duplicate username
	// yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
}
