package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/civicops/incident-api/internal/core/domain"
)

// EventRepository implements ports.EventRepository with gorm.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Insert(ctx context.Context, event *domain.IncidentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := EventModel{
		ID:         event.ID,
		IncidentID: event.IncidentID,
		Status:     string(event.Status),
		Actor:      event.Actor,
		OccurredAt: event.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByIncident(ctx context.Context, incidentID string) ([]*domain.IncidentEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []EventModel
	err := r.db.WithContext(ctx).
		Where("incident_id = ?", incidentID).
		Order("occurred_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]*domain.IncidentEvent, 0, len(rows))
	for _, m := range rows {
		events = append(events, &domain.IncidentEvent{
			ID:         m.ID,
			IncidentID: m.IncidentID,
			Status:     domain.IncidentStatus(m.Status),
			Actor:      m.Actor,
			OccurredAt: m.OccurredAt.UTC(),
		})
	}
	return events, nil
}
