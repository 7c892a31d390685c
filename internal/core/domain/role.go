package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles known to the gateway.
type Role uint8

const (
	// RoleUnknown is what any unrecognised role string parses to. It is
	// never granted access by a route rule.
	RoleUnknown Role = iota
	RoleClient
	RolePT
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleClient:     "client",
	RolePT:         "pt",
	RoleSuperAdmin: "super_admin",
}

// ParseRole maps the wire representation of a role to a Role. Unknown or empty
// strings yield RoleUnknown.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return RoleClient
	case "pt":
		return RolePT
	case "super_admin":
		return RoleSuperAdmin
	default:
		return RoleUnknown
	}
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the role using its wire name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText never fails: unrecognised names become RoleUnknown.
func (r *Role) UnmarshalText(text []byte) error {
	if r == nil {
		return fmt.Errorf("domain: UnmarshalText on nil *Role")
	}
	*r = ParseRole(string(text))
	return nil
}

// AllRoles returns the known roles in ascending privilege.
func AllRoles() []Role {
	return []Role{RoleClient, RolePT, RoleSuperAdmin}
}
