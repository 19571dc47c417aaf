package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// EventRepository stores the append-only incident history.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.IncidentEvent) error
	// ListByIncident returns the history of one incident ordered by OccurredAt.
	ListByIncident(ctx context.Context, incidentID string) ([]*domain.IncidentEvent, error)
}

// EventPublisher hands lifecycle events to the asynchronous history writer.
type EventPublisher interface {
	Publish(event domain.IncidentEvent)
}
