package team

// Identity is the externally-supplied view of an authenticated principal.
// The auth boundary owns how it is produced; the resolver only reads it.
type Identity struct {
	PrincipalID string
	Role        string
	Enabled     bool
}

// ResolveRole yields the team role for a principal, or RoleNone when the
// identity carries no recognized role or is disabled. Pure over its input.
func ResolveRole(id Identity) Role {
	if !id.Enabled {
		return RoleNone
	}
	role, err := ParseRole(id.Role)
	if err != nil {
		return RoleNone
	}
	return role
}
