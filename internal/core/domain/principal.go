package domain

import "context"

// Principal is the authenticated identity attached to a single request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// Authority returns the role-derived authority, e.g. "ROLE_CITIZEN".
func (p Principal) Authority() string {
	return p.Role.Authority()
}

// HasRole reports whether the principal holds role r.
func (p Principal) HasRole(r Role) bool {
	return p.Role == r
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
