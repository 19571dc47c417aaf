package ports

import (
	"context"

	"github.com/civicops/incident-api/internal/core/domain"
)

// CreateIncidentInput is the DTO passed from the transport layer to IncidentService.Create.
type CreateIncidentInput struct {
	Description  string
	CitizenID    string
	IncidentType string // optional, defaults to OTHER
	// IdempotencyKey, when set, makes a retried create return the first incident.
	IdempotencyKey string
}

// AssignIncidentInput names the incident and the dispatcher/responder pair.
type AssignIncidentInput struct {
	IncidentID   string
	DispatcherID string
	ResponderID  string
}

// IncidentService defines the incident lifecycle use cases.
type IncidentService interface {
	Create(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error)
	Assign(ctx context.Context, input AssignIncidentInput) (*domain.Incident, error)
	Resolve(ctx context.Context, incidentID string) (*domain.Incident, error)
	GetAll(ctx context.Context) ([]*domain.Incident, error)
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
}
