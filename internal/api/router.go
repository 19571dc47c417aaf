package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/civicops/incident-api/docs" // swagger spec registration
	"github.com/civicops/incident-api/internal/api/handler"
	"github.com/civicops/incident-api/internal/api/middleware"
	"github.com/civicops/incident-api/internal/core/ports"
)

// Deps carries everything NewRouter wires into handlers and middleware.
type Deps struct {
	Log           zerolog.Logger
	Auth          ports.AuthService
	Authenticator ports.Authenticator
	Users         ports.UserService
	Incidents     ports.IncidentService
	Events        ports.EventService
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger
	// Rules defaults to middleware.DefaultRules.
	Rules []middleware.Rule
	// Registerer receives the HTTP request metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	rules := d.Rules
	if rules == nil {
		rules = middleware.DefaultRules
	}
	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "incident_api",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
	}))
	e.Use(middleware.Authenticate(d.Authenticator))
	e.Use(middleware.Authorize(middleware.NewPolicy(rules)))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	incidentHandler := handler.NewIncidentHandler(d.Incidents, d.Events)
	healthHandler := handler.NewHealthHandler(d.Health)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Users ---
	users := e.Group("/api/users")
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)

	// --- Incidents ---
	incidents := e.Group("/api/incidents")
	incidents.POST("", incidentHandler.Create)
	incidents.GET("", incidentHandler.List)
	incidents.GET("/:id", incidentHandler.Get)
	incidents.GET("/:id/events", incidentHandler.Events)
	incidents.PUT("/:id/assign", incidentHandler.Assign)
	incidents.PUT("/:id/resolve", incidentHandler.Resolve)

	// --- Operations (public) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())  // prometheus scrape endpoint
	e.GET("/swagger/*", echoSwagger.WrapHandler)    // swagger UI + doc.json

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
