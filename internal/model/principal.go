package model

// Role is the authorisation role attached to a request by the auth gateway.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal identifies the caller of a core operation.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal may run administrative operations.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ParseRole maps a header value onto a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}
