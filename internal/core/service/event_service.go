package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

type eventService struct {
	incidents ports.IncidentRepository
	events    ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(incidents ports.IncidentRepository, events ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{incidents: incidents, events: events, log: log}
}

// Record appends one lifecycle event to the incident history.
func (s *eventService) Record(ctx context.Context, event domain.IncidentEvent) error {
	if err := s.events.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Debug().
		Str("incident_id", event.IncidentID).
		Str("status", string(event.Status)).
		Str("actor", event.Actor).
		Msg("incident event recorded")
	return nil
}

// History lists the recorded events of an existing incident.
func (s *eventService) History(ctx context.Context, incidentID string) ([]*domain.IncidentEvent, error) {
	if _, err := s.incidents.FindByID(ctx, incidentID); err != nil {
		return nil, err
	}
	events, err := s.events.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("incident history: %w", err)
	}
	return events, nil
}
