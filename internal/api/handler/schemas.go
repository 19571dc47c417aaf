package handler

import "github.com/civicops/incident-api/internal/core/domain"

// errorResponse documents the {"error": "..."} envelope rendered by the
// central error handler.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Role     string `json:"role"     validate:"required,oneof=CITIZEN DISPATCHER RESPONDER"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// --- Users ---

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Role     string `json:"role"     validate:"required,oneof=CITIZEN DISPATCHER RESPONDER"`
}

// --- Incidents ---

// createIncidentRequest.CitizenID defaults to the caller when omitted.
type createIncidentRequest struct {
	Description  string `json:"description"  validate:"required"`
	CitizenID    string `json:"citizenId"`
	IncidentType string `json:"incidentType" validate:"omitempty,oneof=FIRE MEDICAL POLICE OTHER"`
}

type assignIncidentRequest struct {
	DispatcherID string `json:"dispatcherId" validate:"required"`
	ResponderID  string `json:"responderId"  validate:"required"`
}
