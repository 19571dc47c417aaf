package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civicops/incident-api/internal/api/metrics"
	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

// PrincipalKey is the echo context key holding the authenticated domain.Principal.
const PrincipalKey = "principal"

const bearerPrefix = "bearer "

// Authenticate resolves an "Authorization: Bearer <token>" header into a
// principal and attaches it to the request context. It never rejects a
// request: a missing or untrusted token leaves the request anonymous and the
// route policy decides what anonymous callers may reach.
func Authenticate(auth ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := domain.PrincipalFrom(req.Context()); ok {
				return next(c)
			}

			token, ok := bearerToken(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthenticationsTotal.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			principal, ok := auth.Resolve(req.Context(), token)
			if !ok {
				metrics.AuthenticationsTotal.WithLabelValues("rejected").Inc()
				return next(c)
			}

			metrics.AuthenticationsTotal.WithLabelValues("authenticated").Inc()
			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))
			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
