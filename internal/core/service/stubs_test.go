package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicops/incident-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

var testHasher = NewBcryptHasher(bcrypt.MinCost)

const testSecret = "0123456789abcdef0123456789abcdef"

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.User
	creates   int
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	stored := cloneUser(user)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

// seed stores a user directly, bypassing hashing.
func (r *stubUserRepo) seed(id, username string, role domain.Role) *domain.User {
	u := &domain.User{ID: id, Username: username, Role: role}
	r.byID[id] = u
	return cloneUser(u)
}

// ---------------------------------------------------------------------------
// In-memory incident repository
// ---------------------------------------------------------------------------

type stubIncidentRepo struct {
	byID      map[string]*domain.Incident
	updates   int
	updateErr error
}

func newStubIncidentRepo() *stubIncidentRepo {
	return &stubIncidentRepo{byID: make(map[string]*domain.Incident)}
}

func cloneIncident(i *domain.Incident) *domain.Incident {
	clone := *i
	return &clone
}

func (r *stubIncidentRepo) Create(_ context.Context, i *domain.Incident) (*domain.Incident, error) {
	stored := cloneIncident(i)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.byID[stored.ID] = stored
	return cloneIncident(stored), nil
}

func (r *stubIncidentRepo) FindByID(_ context.Context, id string) (*domain.Incident, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	return cloneIncident(i), nil
}

func (r *stubIncidentRepo) List(_ context.Context) ([]*domain.Incident, error) {
	out := make([]*domain.Incident, 0, len(r.byID))
	for _, i := range r.byID {
		out = append(out, cloneIncident(i))
	}
	return out, nil
}

func (r *stubIncidentRepo) Update(_ context.Context, i *domain.Incident) (*domain.Incident, error) {
	r.updates++
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.byID[i.ID]; !ok {
		return nil, domain.ErrIncidentNotFound
	}
	stored := cloneIncident(i)
	stored.UpdatedAt = time.Now().UTC()
	r.byID[i.ID] = stored
	return cloneIncident(stored), nil
}

// ---------------------------------------------------------------------------
// Idempotency, events
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (string, error) {
	if s.lookupErr != nil {
		return "", s.lookupErr
	}
	return s.keys[key], nil
}

func (s *stubIdempotency) Remember(_ context.Context, key, incidentID string) error {
	s.keys[key] = incidentID
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.IncidentEvent
}

func (p *recordingPublisher) Publish(e domain.IncidentEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type stubEventRepo struct {
	events    []*domain.IncidentEvent
	insertErr error
}

func (r *stubEventRepo) Insert(_ context.Context, e *domain.IncidentEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *e
	r.events = append(r.events, &clone)
	return nil
}

func (r *stubEventRepo) ListByIncident(_ context.Context, incidentID string) ([]*domain.IncidentEvent, error) {
	var out []*domain.IncidentEvent
	for _, e := range r.events {
		if e.IncidentID == incidentID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
