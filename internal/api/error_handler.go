package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// kindMapping pairs an error kind with its status. An empty message means
// err.Error() is shown to the client. Order matters: specific sentinels
// precede the kind they wrap.
var kindMapping = []struct {
	target  error
	status  int
	message string
}{
	{domain.ErrUserExists, http.StatusBadRequest, "Username already exists"},
	{domain.ErrConflict, http.StatusBadRequest, ""},
	{domain.ErrInvalidInput, http.StatusBadRequest, ""},
	{domain.ErrNotFound, http.StatusNotFound, ""},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "authentication required"},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
}

// NewHTTPErrorHandler renders every error returned by a handler or middleware
// as {"error": "..."}. Errors outside the known kinds become a 500 and are
// logged with their cause.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := statusFor(err)
		switch {
		case status == http.StatusInternalServerError:
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		case status < http.StatusInternalServerError:
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Internal != nil {
				log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, m := range kindMapping {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.message == "" {
			return m.status, err.Error()
		}
		return m.status, m.message
	}
	return http.StatusInternalServerError, "internal server error"
}
