package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of access levels. Roles form a total order for
// authorization purposes: admin covers manager, manager covers user.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleManager
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:    "user",
	RoleManager: "manager",
	RoleAdmin:   "admin",
}

// ParseRole maps a stored role tag to the enumeration.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "user":
		return RoleUser, nil
	case "manager":
		return RoleManager, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Covers reports whether a holder of r satisfies a requirement of required.
// Admin satisfies every requirement.
func (r Role) Covers(required Role) bool {
	return r.Valid() && required.Valid() && r >= required
}

// MarshalText encodes the role as its tag for JSON payloads.
func (r Role) MarshalText() ([]byte, error) {
	name, ok := roleNames[r]
	if !ok {
		return nil, fmt.Errorf("%w: role %d", ErrInvalidInput, uint8(r))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a role tag.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
