package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// IncidentRepository persists incidents. Implementations stamp CreatedAt on
// Create and UpdatedAt on every Create/Update.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error)
	FindByID(ctx context.Context, id string) (*domain.Incident, error)
	List(ctx context.Context) ([]*domain.Incident, error)
	Update(ctx context.Context, incident *domain.Incident) (*domain.Incident, error)
}

// IdempotencyStore remembers which incident an Idempotency-Key produced.
type IdempotencyStore interface {
	// Lookup returns the incident id stored under key, or "" when unseen.
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, incidentID string) error
}
