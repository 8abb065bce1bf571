package graphql

import (
	"context"

	"github.com/rangeops/rangecore/pkg/team"
)

type contextKey string

const roleContextKey contextKey = "callerRole"

// WithRole returns a context carrying the caller's resolved team role.
// The HTTP boundary resolves the role from authenticated claims before
// handing the request to the GraphQL executor.
func WithRole(ctx context.Context, role team.Role) context.Context {
	return context.WithValue(ctx, roleContextKey, role)
}

// callerRole extracts the resolved role from the execution context. A
// context without a role is treated as unresolved, so resolvers return
// empty sets.
func callerRole(ctx context.Context) team.Role {
	if role, ok := ctx.Value(roleContextKey).(team.Role); ok {
		return role
	}
	return team.RoleNone
}
