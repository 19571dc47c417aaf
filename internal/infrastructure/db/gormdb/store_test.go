package gormdb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civicops/incident-api/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(Config{Driver: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	s := NewStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, id, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash-" + username,
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, s, "u-1", "alice", domain.RoleCitizen)
	require.False(t, created.CreatedAt.IsZero())

	byName, err := s.Users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u-1", byName.ID)
	require.Equal(t, "hash-alice", byName.PasswordHash)

	byID, err := s.Users.FindByID(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, domain.RoleCitizen, byID.Role)

	exists, err := s.Users.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.Users.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u-1", "alice", domain.RoleCitizen)

	_, err := s.Users.Create(context.Background(), &domain.User{ID: "u-2", Username: "alice", PasswordHash: "x", Role: domain.RoleResponder})
	require.ErrorIs(t, err, domain.ErrUserExists)
	require.ErrorIs(t, err, domain.ErrConflict)

	users, err := s.Users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUserRepository_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Users.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = s.Users.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIncidentRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "u-1", "alice", domain.RoleCitizen)
	dan := seedUser(t, s, "u-2", "dan", domain.RoleDispatcher)
	rex := seedUser(t, s, "u-3", "rex", domain.RoleResponder)

	inc, err := s.Incidents.Create(ctx, &domain.Incident{
		ID:           "inc-1",
		Description:  "Smoke on 5th street",
		Status:       domain.StatusReported,
		IncidentType: domain.TypeFire,
		CreatedBy:    alice.Ref(),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusReported, inc.Status)
	require.Equal(t, "alice", inc.CreatedBy.Username)
	require.Nil(t, inc.AssignedTo)
	require.False(t, inc.CreatedAt.IsZero())

	inc.Assign(dan, rex)
	updated, err := s.Incidents.Update(ctx, inc)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAssigned, updated.Status)
	require.Equal(t, "dan", updated.AssignedBy.Username)
	require.Equal(t, "rex", updated.AssignedTo.Username)
	require.Equal(t, domain.RoleResponder, updated.AssignedTo.Role)

	updated.Resolve()
	resolved, err := s.Incidents.Update(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, domain.StatusResolved, resolved.Status)
	require.Equal(t, "rex", resolved.AssignedTo.Username, "assignment survives resolution")

	all, err := s.Incidents.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "inc-1", all[0].ID)
}

func TestIncidentRepository_MissingIncident(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Incidents.FindByID(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrIncidentNotFound)

	_, err = s.Incidents.Update(ctx, &domain.Incident{ID: "nope", Status: domain.StatusResolved})
	require.ErrorIs(t, err, domain.ErrIncidentNotFound)
}

func TestEventRepository_ListsInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, st := range []domain.IncidentStatus{domain.StatusResolved, domain.StatusReported, domain.StatusAssigned} {
		offset := map[domain.IncidentStatus]time.Duration{
			domain.StatusReported: 0,
			domain.StatusAssigned: time.Minute,
			domain.StatusResolved: 2 * time.Minute,
		}[st]
		require.NoError(t, s.Events.Insert(ctx, &domain.IncidentEvent{
			ID:         string(rune('a' + i)),
			IncidentID: "inc-1",
			Status:     st,
			Actor:      "tester",
			OccurredAt: base.Add(offset),
		}))
	}
	require.NoError(t, s.Events.Insert(ctx, &domain.IncidentEvent{ID: "z", IncidentID: "inc-2", Status: domain.StatusReported, OccurredAt: base}))

	events, err := s.Events.ListByIncident(ctx, "inc-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, domain.StatusReported, events[0].Status)
	require.Equal(t, domain.StatusAssigned, events[1].Status)
	require.Equal(t, domain.StatusResolved, events[2].Status)
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
