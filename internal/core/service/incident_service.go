package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

type IncidentService struct {
	incidents   ports.IncidentRepository
	users       ports.UserRepository
	idempotency ports.IdempotencyStore // optional
	events      ports.EventPublisher
	logger      zerolog.Logger
}

func NewIncidentService(
	incidents ports.IncidentRepository,
	users ports.UserRepository,
	idempotency ports.IdempotencyStore,
	events ports.EventPublisher,
	logger zerolog.Logger,
) *IncidentService {
	return &IncidentService{
		incidents:   incidents,
		users:       users,
		idempotency: idempotency,
		events:      events,
		logger:      logger,
	}
}

// Create reports a new incident on behalf of a citizen. If the citizen already
// used the idempotency key, the incident it created is returned without side
// effects. Keys are scoped per citizen.
func (s *IncidentService) Create(ctx context.Context, in ports.CreateIncidentInput) (*domain.Incident, error) {
	incidentType, err := domain.ParseIncidentType(in.IncidentType)
	if err != nil {
		return nil, err
	}

	citizen, err := s.userWithRole(ctx, in.CitizenID, domain.RoleCitizen, domain.ErrCitizenNotFound)
	if err != nil {
		return nil, err
	}

	key := idempotencyKey(citizen.ID, in.IdempotencyKey)
	if existing := s.replay(ctx, key, citizen.ID); existing != nil {
		return existing, nil
	}

	created, err := s.incidents.Create(ctx, &domain.Incident{
		ID:           uuid.NewString(),
		Description:  in.Description,
		Status:       domain.StatusReported,
		IncidentType: incidentType,
		CreatedBy:    citizen.Ref(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create incident")
		return nil, fmt.Errorf("create incident: %w", err)
	}

	if key != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(ctx, key, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
		}
	}

	s.publish(created, citizen.Username)
	s.logger.Info().Str("incident_id", created.ID).Str("citizen", citizen.Username).Msg("incident reported")
	return created, nil
}

// Assign hands the incident to a responder. The prior status is not checked,
// so assigned and resolved incidents can be reassigned.
func (s *IncidentService) Assign(ctx context.Context, in ports.AssignIncidentInput) (*domain.Incident, error) {
	dispatcher, err := s.userWithRole(ctx, in.DispatcherID, domain.RoleDispatcher, domain.ErrDispatcherNotFound)
	if err != nil {
		return nil, err
	}
	responder, err := s.userWithRole(ctx, in.ResponderID, domain.RoleResponder, domain.ErrResponderNotFound)
	if err != nil {
		return nil, err
	}
	incident, err := s.incidents.FindByID(ctx, in.IncidentID)
	if err != nil {
		return nil, err
	}

	incident.Assign(dispatcher, responder)
	updated, err := s.incidents.Update(ctx, incident)
	if err != nil {
		return nil, fmt.Errorf("assign incident: %w", err)
	}

	s.publish(updated, dispatcher.Username)
	s.logger.Info().
		Str("incident_id", updated.ID).
		Str("dispatcher", dispatcher.Username).
		Str("responder", responder.Username).
		Msg("incident assigned")
	return updated, nil
}

// Resolve closes the incident from whatever status it is in.
func (s *IncidentService) Resolve(ctx context.Context, incidentID string) (*domain.Incident, error) {
	incident, err := s.incidents.FindByID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	incident.Resolve()
	updated, err := s.incidents.Update(ctx, incident)
	if err != nil {
		return nil, fmt.Errorf("resolve incident: %w", err)
	}

	var actor string
	if p, ok := domain.PrincipalFrom(ctx); ok {
		actor = p.Username
	}
	s.publish(updated, actor)
	s.logger.Info().Str("incident_id", updated.ID).Str("actor", actor).Msg("incident resolved")
	return updated, nil
}

func (s *IncidentService) GetAll(ctx context.Context) ([]*domain.Incident, error) {
	return s.incidents.List(ctx)
}

func (s *IncidentService) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	return s.incidents.FindByID(ctx, id)
}

// userWithRole loads id and requires it to hold role. A missing user and a
// role mismatch both yield notFound.
func (s *IncidentService) userWithRole(ctx context.Context, id string, role domain.Role, notFound error) (*domain.User, error) {
	if id == "" {
		return nil, notFound
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	if user.Role != role {
		return nil, notFound
	}
	return user, nil
}

func idempotencyKey(citizenID, key string) string {
	if key == "" {
		return ""
	}
	return citizenID + ":" + key
}

func (s *IncidentService) replay(ctx context.Context, key, citizenID string) *domain.Incident {
	if key == "" || s.idempotency == nil {
		return nil
	}
	id, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if id == "" {
		return nil
	}
	existing, err := s.incidents.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	if existing.CreatedBy == nil || existing.CreatedBy.ID != citizenID {
		s.logger.Warn().Str("idempotency_key", key).Str("incident_id", id).Msg("idempotency key points at another citizen's incident")
		return nil
	}
	s.logger.Info().Str("idempotency_key", key).Str("incident_id", existing.ID).Msg("idempotent replay")
	return existing
}

func (s *IncidentService) publish(incident *domain.Incident, actor string) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.IncidentEvent{
		ID:         uuid.NewString(),
		IncidentID: incident.ID,
		Status:     incident.Status,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	})
}
