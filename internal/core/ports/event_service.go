package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// EventService records and reads incident history.
type EventService interface {
	Record(ctx context.Context, event domain.IncidentEvent) error
	History(ctx context.Context, incidentID string) ([]*domain.IncidentEvent, error)
}
