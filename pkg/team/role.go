package team

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRole = errors.New("invalid role")
)

// Role represents a participant's team affiliation.
type Role string

const (
	RoleRed   Role = "red"
	RoleBlue  Role = "blue"
	RoleJudge Role = "judge"
	RoleAdmin Role = "admin"

	// RoleNone marks an unaffiliated or unresolved principal. It is never a
	// valid stored role; it exists so callers can express "no access".
	RoleNone Role = "none"
)

var validRoles = map[Role]bool{
	RoleRed:   true,
	RoleBlue:  true,
	RoleJudge: true,
	RoleAdmin: true,
}

// ParseRole parses a role string case-insensitively.
// Unknown strings are rejected rather than mapped to RoleNone so that callers
// validating input (e.g. a role filter) can distinguish "no filter" from typos.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !validRoles[role] {
		return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return role, nil
}

// IsValid reports whether r is a recognized team role (not RoleNone).
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsTeam reports whether r is one of the two competing teams.
func (r Role) IsTeam() bool {
	return r == RoleRed || r == RoleBlue
}

// IsPrivileged reports whether r can observe both teams' data.
func (r Role) IsPrivileged() bool {
	return r == RoleJudge || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
