package auth

import (
	"github.com/rangeops/rangecore/pkg/team"
)

// Decision is the typed outcome of an authorization check. Handlers consult
// it before invoking a core operation instead of relying on any framework's
// implicit interception, which keeps the check testable without a web layer.
type Decision struct {
	Allowed bool
	Caller  team.Role
	Reason  string
}

// Deny builds a denied decision with a caller-safe reason.
func Deny(caller team.Role, reason string) Decision {
	return Decision{Allowed: false, Caller: caller, Reason: reason}
}

// Allow builds an allowed decision.
func Allow(caller team.Role) Decision {
	return Decision{Allowed: true, Caller: caller}
}

// RequireRole checks that the caller's resolved role matches the required
// one. Privileged observers (judge/admin) pass any team-role requirement.
func RequireRole(caller, required team.Role) Decision {
	if !caller.IsValid() {
		return Deny(caller, "unresolved team role")
	}
	if caller == required || caller.IsPrivileged() {
		return Allow(caller)
	}
	return Deny(caller, "role mismatch")
}

// RequireResolved checks only that the caller carries some recognized role.
func RequireResolved(caller team.Role) Decision {
	if !caller.IsValid() {
		return Deny(caller, "unresolved team role")
	}
	return Allow(caller)
}

// RequirePrivileged checks that the caller is a judge or admin.
func RequirePrivileged(caller team.Role) Decision {
	if !caller.IsPrivileged() {
		return Deny(caller, "judge or admin access required")
	}
	return Allow(caller)
}
