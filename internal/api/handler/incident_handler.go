package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicops/incident-api/internal/core/ports"
)

// HeaderIdempotencyKey makes a retried incident report return the first result.
const HeaderIdempotencyKey = "Idempotency-Key"

// IncidentHandler handles HTTP requests for the incident lifecycle.
type IncidentHandler struct {
	incidents ports.IncidentService
	events    ports.EventService
}

func NewIncidentHandler(incidents ports.IncidentService, events ports.EventService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, events: events}
}

// Create handles POST /api/incidents.
//
// @Summary      Report an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Idempotency key to prevent duplicate reports"
// @Param        body             body      createIncidentRequest  true   "Incident details"
// @Success      201              {object}  domain.Incident
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse  "Citizen not found"
// @Router       /api/incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	var req createIncidentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	citizenID := req.CitizenID
	if citizenID == "" {
		caller, err := principal(c)
		if err != nil {
			return err
		}
		citizenID = caller.UserID
	}

	incident, err := h.incidents.Create(c.Request().Context(), ports.CreateIncidentInput{
		Description:    req.Description,
		CitizenID:      citizenID,
		IncidentType:   req.IncidentType,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, incident)
}

// Assign handles PUT /api/incidents/:id/assign.
//
// @Summary      Assign an incident to a responder
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Incident id"
// @Param        body  body      assignIncidentRequest  true  "Dispatcher and responder"
// @Success      200   {object}  domain.Incident
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/incidents/{id}/assign [put]
func (h *IncidentHandler) Assign(c echo.Context) error {
	var req assignIncidentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	incident, err := h.incidents.Assign(c.Request().Context(), ports.AssignIncidentInput{
		IncidentID:   c.Param("id"),
		DispatcherID: req.DispatcherID,
		ResponderID:  req.ResponderID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// Resolve handles PUT /api/incidents/:id/resolve.
//
// @Summary      Resolve an incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Incident id"
// @Success      200  {object}  domain.Incident
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/incidents/{id}/resolve [put]
func (h *IncidentHandler) Resolve(c echo.Context) error {
	incident, err := h.incidents.Resolve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// List handles GET /api/incidents.
//
// @Summary      List incidents
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Incident
// @Failure      401  {object}  errorResponse
// @Router       /api/incidents [get]
func (h *IncidentHandler) List(c echo.Context) error {
	incidents, err := h.incidents.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incidents)
}

// Get handles GET /api/incidents/:id.
//
// @Summary      Get an incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Incident id"
// @Success      200  {object}  domain.Incident
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	incident, err := h.incidents.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// Events handles GET /api/incidents/:id/events.
//
// @Summary      Incident history
// @Description  Lifecycle events in the order they happened. History is written
// @Description  asynchronously, so the latest transition may appear shortly after it returns.
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Incident id"
// @Success      200  {array}   domain.IncidentEvent
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/incidents/{id}/events [get]
func (h *IncidentHandler) Events(c echo.Context) error {
	events, err := h.events.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}
