package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
			if in.Username != "rex" || in.Role != "RESPONDER" || in.Password != "pw3" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u-3", Username: "rex", Role: domain.RoleResponder}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/api/users", strings.NewReader(`{"username":"rex","password":"pw3","role":"RESPONDER"}`))
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != "u-3" || got.Role != domain.RoleResponder {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserHandler_ListAndGet(t *testing.T) {
	users := []*domain.User{
		{ID: "u-1", Username: "alice", Role: domain.RoleCitizen},
		{ID: "u-2", Username: "dan", Role: domain.RoleDispatcher},
	}
	stub := &stubUserService{
		getAllFn: func(context.Context) ([]*domain.User, error) { return users, nil },
		getFn: func(_ context.Context, id string) (*domain.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(stub)

	c, rec := newContext(t, http.MethodGet, "/api/users", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("list error: %v", err)
	}
	var list []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("unexpected list %q: %v", rec.Body.String(), err)
	}

	c, rec = newContext(t, http.MethodGet, "/api/users/u-2", nil)
	c.SetParamNames("id")
	c.SetParamValues("u-2")
	if err := h.Get(c); err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"dan"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	c, _ = newContext(t, http.MethodGet, "/api/users/u-9", nil)
	c.SetParamNames("id")
	c.SetParamValues("u-9")
	if err := h.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
