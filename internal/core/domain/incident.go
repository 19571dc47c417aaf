package domain

import "time"

// IncidentStatus represents the lifecycle stage of an incident.
type IncidentStatus string

const (
	StatusReported IncidentStatus = "REPORTED"
	StatusAssigned IncidentStatus = "ASSIGNED"
	StatusResolved IncidentStatus = "RESOLVED"
)

// IncidentType is informational only; it never changes behaviour.
type IncidentType string

const (
	TypeFire    IncidentType = "FIRE"
	TypeMedical IncidentType = "MEDICAL"
	TypePolice  IncidentType = "POLICE"
	TypeOther   IncidentType = "OTHER"
)

// ParseIncidentType maps s to an IncidentType. Empty input yields TypeOther.
func ParseIncidentType(s string) (IncidentType, error) {
	if s == "" {
		return TypeOther, nil
	}
	switch t := IncidentType(s); t {
	case TypeFire, TypeMedical, TypePolice, TypeOther:
		return t, nil
	}
	return "", ErrInvalidIncidentType
}

// Incident is the unit of work moved through REPORTED -> ASSIGNED -> RESOLVED.
// AssignedBy and AssignedTo stay nil until the first assignment and are never cleared.
type Incident struct {
	ID           string         `json:"id"`
	Description  string         `json:"description"`
	Status       IncidentStatus `json:"status"`
	IncidentType IncidentType   `json:"incidentType"`
	CreatedBy    *UserRef       `json:"createdBy"`
	AssignedBy   *UserRef       `json:"assignedBy"`
	AssignedTo   *UserRef       `json:"assignedTo"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Assign records the dispatcher/responder pair and moves the incident to ASSIGNED.
// Any prior status is accepted.
func (i *Incident) Assign(dispatcher, responder *User) {
	i.AssignedBy = dispatcher.Ref()
	i.AssignedTo = responder.Ref()
	i.Status = StatusAssigned
}

// Resolve moves the incident to RESOLVED from any status.
func (i *Incident) Resolve() {
	i.Status = StatusResolved
}

// IncidentEvent is one entry of an incident's lifecycle history.
type IncidentEvent struct {
	ID         string         `json:"id"`
	IncidentID string         `json:"incidentId"`
	Status     IncidentStatus `json:"status"`
	Actor      string         `json:"actor,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
