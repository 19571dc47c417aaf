package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civicops/incident-api/internal/core/domain"
)

// IncidentRepository implements ports.IncidentRepository with gorm.
type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("AssignedBy").
		Preload("AssignedTo")
}

// Create inserts the incident row only; referenced users must already exist.
func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := IncidentModel{
		ID:           incident.ID,
		Description:  incident.Description,
		Status:       string(incident.Status),
		IncidentType: string(incident.IncidentType),
		CreatedByID:  refID(incident.CreatedBy),
		AssignedByID: refID(incident.AssignedBy),
		AssignedToID: refID(incident.AssignedTo),
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}
	return r.find(ctx, m.ID)
}

func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.find(ctx, id)
}

func (r *IncidentRepository) List(ctx context.Context) ([]*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []IncidentModel
	if err := r.withUsers(ctx).Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	out := make([]*domain.Incident, 0, len(rows))
	for i := range rows {
		out = append(out, incidentFromModel(&rows[i]))
	}
	return out, nil
}

// Update writes the mutable columns and reloads the row with its references.
func (r *IncidentRepository) Update(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&IncidentModel{}).
		Where("id = ?", incident.ID).
		Updates(map[string]any{
			"description":    incident.Description,
			"status":         string(incident.Status),
			"incident_type":  string(incident.IncidentType),
			"assigned_by_id": refID(incident.AssignedBy),
			"assigned_to_id": refID(incident.AssignedTo),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update incident: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrIncidentNotFound
	}
	return r.find(ctx, incident.ID)
}

func (r *IncidentRepository) find(ctx context.Context, id string) (*domain.Incident, error) {
	var m IncidentModel
	if err := r.withUsers(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return incidentFromModel(&m), nil
}
