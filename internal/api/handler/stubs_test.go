package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email, role string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email, role string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, email, role)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubUserService struct {
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	getAllFn func(ctx context.Context) ([]*domain.User, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.getAllFn(ctx)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

type stubIncidentService struct {
	createFn  func(ctx context.Context, in ports.CreateIncidentInput) (*domain.Incident, error)
	assignFn  func(ctx context.Context, in ports.AssignIncidentInput) (*domain.Incident, error)
	resolveFn func(ctx context.Context, id string) (*domain.Incident, error)
	getAllFn  func(ctx context.Context) ([]*domain.Incident, error)
	getFn     func(ctx context.Context, id string) (*domain.Incident, error)
}

func (s *stubIncidentService) Create(ctx context.Context, in ports.CreateIncidentInput) (*domain.Incident, error) {
	return s.createFn(ctx, in)
}

func (s *stubIncidentService) Assign(ctx context.Context, in ports.AssignIncidentInput) (*domain.Incident, error) {
	return s.assignFn(ctx, in)
}

func (s *stubIncidentService) Resolve(ctx context.Context, id string) (*domain.Incident, error) {
	return s.resolveFn(ctx, id)
}

func (s *stubIncidentService) GetAll(ctx context.Context) ([]*domain.Incident, error) {
	return s.getAllFn(ctx)
}

func (s *stubIncidentService) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	return s.getFn(ctx, id)
}

type stubEventService struct {
	historyFn func(ctx context.Context, id string) ([]*domain.IncidentEvent, error)
}

func (s *stubEventService) Record(context.Context, domain.IncidentEvent) error { return nil }

func (s *stubEventService) History(ctx context.Context, id string) ([]*domain.IncidentEvent, error) {
	return s.historyFn(ctx, id)
}

// newContext builds an echo context with the validator installed and a JSON body.
func newContext(t *testing.T, method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p domain.Principal) {
	c.SetRequest(c.Request().WithContext(domain.WithPrincipal(c.Request().Context(), p)))
}
