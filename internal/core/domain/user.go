package domain

import "time"

// Role is the single authority tag carried by every user.
type Role string

const (
	RoleCitizen    Role = "CITIZEN"
	RoleDispatcher Role = "DISPATCHER"
	RoleResponder  Role = "RESPONDER"
)

// ParseRole returns the Role named by s, or ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCitizen, RoleDispatcher, RoleResponder:
		return r, nil
	}
	return "", ErrInvalidRole
}

// Authority is the role name in the form the route policy compares against.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// User models an account in the system. Username and Role never change after creation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Ref returns the summary embedded into incidents that reference this user.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// UserRef is a denormalised reference to a user held by an incident.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}
