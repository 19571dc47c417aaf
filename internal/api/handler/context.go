package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicops/incident-api/internal/core/domain"
)

// principal returns the caller attached by the authentication gate. Handlers
// behind the route policy only run for authenticated callers, so a missing
// principal means the route table and the router disagree.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFrom(c.Request().Context())
	if !ok {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
