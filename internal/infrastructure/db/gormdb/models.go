package gormdb

import (
	"time"

	"github.com/civicops/incident-api/internal/core/domain"
)

// UserModel is the users table.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// IncidentModel is the incidents table. User references are foreign keys
// preloaded on read.
type IncidentModel struct {
	ID           string     `gorm:"primaryKey;size:36"`
	Description  string     `gorm:"not null"`
	Status       string     `gorm:"size:16;not null;index"`
	IncidentType string     `gorm:"size:16;not null"`
	CreatedByID  *string    `gorm:"size:36"`
	CreatedBy    *UserModel `gorm:"foreignKey:CreatedByID"`
	AssignedByID *string    `gorm:"size:36"`
	AssignedBy   *UserModel `gorm:"foreignKey:AssignedByID"`
	AssignedToID *string    `gorm:"size:36"`
	AssignedTo   *UserModel `gorm:"foreignKey:AssignedToID"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
}

func (IncidentModel) TableName() string { return "incidents" }

// EventModel is the append-only incident_events table.
type EventModel struct {
	ID         string    `gorm:"primaryKey;size:36"`
	IncidentID string    `gorm:"size:36;not null;index:idx_events_incident_time,priority:1"`
	Status     string    `gorm:"size:16;not null"`
	Actor      string
	OccurredAt time.Time `gorm:"index:idx_events_incident_time,priority:2"`
}

func (EventModel) TableName() string { return "incident_events" }

func userFromModel(m *UserModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func refFromModel(m *UserModel) *domain.UserRef {
	if m == nil {
		return nil
	}
	return userFromModel(m).Ref()
}

func refID(r *domain.UserRef) *string {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}

func incidentFromModel(m *IncidentModel) *domain.Incident {
	return &domain.Incident{
		ID:           m.ID,
		Description:  m.Description,
		Status:       domain.IncidentStatus(m.Status),
		IncidentType: domain.IncidentType(m.IncidentType),
		CreatedBy:    refFromModel(m.CreatedBy),
		AssignedBy:   refFromModel(m.AssignedBy),
		AssignedTo:   refFromModel(m.AssignedTo),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}
