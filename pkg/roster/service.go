package roster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rangeops/rangecore/pkg/team"
)

// ErrForbidden marks a roster request whose caller is not entitled to the
// requested team's full records.
var ErrForbidden = errors.New("caller may not view this team's full roster")

// BasicUser is the safe projection of a user exposed to any authenticated
// caller regardless of team. It deliberately carries no credential fields.
type BasicUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     team.Role `json:"role"`
	TeamID   string    `json:"teamId,omitempty"`
	Enabled  bool      `json:"enabled"`
}

// TeamStats are aggregate counts derived from an already role-scoped user
// list, mirroring the asset directory's filter-then-count discipline.
type TeamStats struct {
	TeamMemberCount int `json:"teamMemberCount"`
	OnlineMembers   int `json:"onlineMembers"`
}

// Service filters the user directory by role. Full records are only handed
// to callers on the same team (or privileged observers); everyone else gets
// the safe projection.
type Service struct {
	users *UserStore
}

// NewService creates a roster service over a user store.
func NewService(users *UserStore) *Service {
	return &Service{users: users}
}

// ByRole returns the full user records of one team. Only reachable when the
// caller's resolved role equals the requested role, or the caller is a
// privileged observer (judge/admin).
func (s *Service) ByRole(callerRole, role team.Role) ([]*User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", team.ErrInvalidRole, role)
	}
	if callerRole != role && !callerRole.IsPrivileged() {
		return nil, fmt.Errorf("%w: caller %s requested %s", ErrForbidden, callerRole, role)
	}

	users := s.users.ListByRole(role)
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// Basic returns the safe projection of users for any authenticated caller,
// optionally filtered by role. An unrecognized non-empty filter is a
// validation error, not an empty result.
func (s *Service) Basic(roleFilter string) ([]BasicUser, error) {
	var users []*User
	if roleFilter == "" {
		users = s.users.ListUsers()
	} else {
		role, err := team.ParseRole(roleFilter)
		if err != nil {
			return nil, err
		}
		users = s.users.ListByRole(role)
	}

	out := make([]BasicUser, 0, len(users))
	for _, u := range users {
		out = append(out, BasicUser{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
			TeamID:   u.TeamID,
			Enabled:  u.Enabled,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Stats counts members and online members over the role-scoped list only.
func (s *Service) Stats(role team.Role) (TeamStats, error) {
	if !role.IsValid() {
		return TeamStats{}, fmt.Errorf("%w: %s", team.ErrInvalidRole, role)
	}

	users := s.users.ListByRole(role)
	stats := TeamStats{TeamMemberCount: len(users)}
	for _, u := range users {
		if u.Enabled {
			stats.OnlineMembers++
		}
	}
	return stats, nil
}
