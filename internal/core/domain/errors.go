package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the services wraps exactly one of these,
// and the HTTP layer maps each kind to a single status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrCitizenNotFound    = fmt.Errorf("citizen %w", ErrNotFound)
	ErrDispatcherNotFound = fmt.Errorf("dispatcher %w", ErrNotFound)
	ErrResponderNotFound  = fmt.Errorf("responder %w", ErrNotFound)
	ErrIncidentNotFound   = fmt.Errorf("incident %w", ErrNotFound)

	ErrUserExists = fmt.Errorf("%w: username already exists", ErrConflict)

	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	ErrPasswordTooLong     = fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidInput)
	ErrInvalidRole         = fmt.Errorf("%w: role must be one of CITIZEN, DISPATCHER, RESPONDER", ErrInvalidInput)
	ErrInvalidIncidentType = fmt.Errorf("%w: incident type must be one of FIRE, MEDICAL, POLICE, OTHER", ErrInvalidInput)
)
