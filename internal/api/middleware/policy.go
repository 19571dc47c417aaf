package middleware

import (
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civicops/incident-api/internal/api/metrics"
	"github.com/civicops/incident-api/internal/core/domain"
)

// access is what a rule demands from the caller.
type access int

const (
	public access = iota
	authenticated
	hasRole
)

// Rule matches a method and a path pattern. Method "*" matches any method.
// In Pattern, "*" matches one path segment and a trailing "/**" matches any
// suffix, including none.
type Rule struct {
	Method  string
	Pattern string
	access  access
	role    domain.Role
}

func Public(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, access: public}
}

func Authenticated(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, access: authenticated}
}

func RequireRole(method, pattern string, role domain.Role) Rule {
	return Rule{Method: method, Pattern: pattern, access: hasRole, role: role}
}

// DefaultRules is the route table of the API. Order matters: the first
// matching rule wins and anything unmatched needs an authenticated caller.
var DefaultRules = []Rule{
	Public("*", "/api/auth/**"),
	Public("*", "/health/**"),
	Public("GET", "/metrics"),
	Public("GET", "/swagger/**"),
	RequireRole("POST", "/api/incidents", domain.RoleCitizen),
	RequireRole("PUT", "/api/incidents/*/assign", domain.RoleDispatcher),
	RequireRole("PUT", "/api/incidents/*/resolve", domain.RoleResponder),
	Authenticated("*", "/**"),
}

// Policy is an ordered, immutable rule table.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

// Authorize returns nil when the caller may proceed, domain.ErrUnauthorized
// when an anonymous caller hits a protected route and domain.ErrForbidden when
// the caller lacks the required role.
func (p *Policy) Authorize(principal *domain.Principal, method, urlPath string) error {
	rule, ok := p.match(method, urlPath)
	if !ok {
		rule = Authenticated("*", "/**")
	}

	switch rule.access {
	case public:
		return nil
	case hasRole:
		if principal == nil {
			return domain.ErrUnauthorized
		}
		if !principal.HasRole(rule.role) {
			return domain.ErrForbidden
		}
		return nil
	default:
		if principal == nil {
			return domain.ErrUnauthorized
		}
		return nil
	}
}

func (p *Policy) match(method, urlPath string) (Rule, bool) {
	clean := path.Clean("/" + urlPath)
	for _, r := range p.rules {
		if r.Method != "*" && !strings.EqualFold(r.Method, method) {
			continue
		}
		if matchPattern(r.Pattern, clean) {
			return r, true
		}
	}
	return Rule{}, false
}

func matchPattern(pattern, urlPath string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if prefix == "" || urlPath == prefix {
			return true
		}
		return strings.HasPrefix(urlPath, prefix+"/")
	}
	matched, err := path.Match(pattern, urlPath)
	return err == nil && matched
}

// Authorize enforces policy on every request. It is the single place that
// produces 401 and 403 responses.
func Authorize(policy *Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var principal *domain.Principal
			if p, ok := domain.PrincipalFrom(req.Context()); ok {
				principal = &p
			}

			// Match on the path echo routes on, the raw one when set.
			if err := policy.Authorize(principal, req.Method, echo.GetPath(req)); err != nil {
				reason := "forbidden"
				if principal == nil {
					reason = "unauthorized"
				}
				metrics.AuthorizationDenialsTotal.WithLabelValues(reason).Inc()
				return err
			}
			return next(c)
		}
	}
}
