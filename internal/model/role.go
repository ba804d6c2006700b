package model

import "strings"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleAdmin}
}

func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", ErrUnknownRole
	}

	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// TokenKey is the storage key holding the role's bearer credential.
func (r Role) TokenKey() string {
	return string(r) + "_token"
}

// UserKey is the storage key holding the role's user record.
func (r Role) UserKey() string {
	return string(r) + "_user"
}

func (r Role) LoginPath() string {
	return "/" + string(r) + "/login"
}

func (r Role) HomePath() string {
	return "/" + string(r) + "/dashboard"
}
