package roster

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rangeops/rangecore/pkg/team"
)

func seededService(t *testing.T) (*Service, *UserStore) {
	t.Helper()
	store := NewUserStore()
	service := NewService(store)

	users := []struct {
		name string
		role team.Role
	}{
		{"red-alice", team.RoleRed},
		{"red-bob", team.RoleRed},
		{"blue-carol", team.RoleBlue},
		{"judge-dan", team.RoleJudge},
	}
	for _, u := range users {
		if _, err := store.CreateUser(u.name, "hunter2hunter2", u.role); err != nil {
			t.Fatalf("CreateUser(%s): %v", u.name, err)
		}
	}
	return service, store
}

func TestByRoleSameTeam(t *testing.T) {
	service, _ := seededService(t)

	users, err := service.ByRole(team.RoleRed, team.RoleRed)
	if err != nil {
		t.Fatalf("ByRole: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d red users, want 2", len(users))
	}
	// Stable ordering by username.
	if users[0].Username != "red-alice" || users[1].Username != "red-bob" {
		t.Errorf("unexpected order: %s, %s", users[0].Username, users[1].Username)
	}
}

func TestByRoleCrossTeamDenied(t *testing.T) {
	service, _ := seededService(t)

	if _, err := service.ByRole(team.RoleRed, team.RoleBlue); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-team ByRole error = %v, want ErrForbidden", err)
	}
	if _, err := service.ByRole(team.RoleNone, team.RoleRed); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unaffiliated ByRole error = %v, want ErrForbidden", err)
	}
}

func TestByRolePrivilegedObserver(t *testing.T) {
	service, _ := seededService(t)

	for _, caller := range []team.Role{team.RoleJudge, team.RoleAdmin} {
		users, err := service.ByRole(caller, team.RoleBlue)
		if err != nil {
			t.Fatalf("ByRole as %s: %v", caller, err)
		}
		if len(users) != 1 {
			t.Errorf("%s got %d blue users, want 1", caller, len(users))
		}
	}
}

func TestByRoleInvalidRole(t *testing.T) {
	service, _ := seededService(t)
	if _, err := service.ByRole(team.RoleAdmin, team.RoleNone); !errors.Is(err, team.ErrInvalidRole) {
		t.Fatalf("ByRole(none) error = %v, want ErrInvalidRole", err)
	}
}

func TestBasicProjection(t *testing.T) {
	service, _ := seededService(t)

	all, err := service.Basic("")
	if err != nil {
		t.Fatalf("Basic: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d users, want 4", len(all))
	}

	reds, err := service.Basic("red")
	if err != nil {
		t.Fatalf("Basic(red): %v", err)
	}
	if len(reds) != 2 {
		t.Fatalf("got %d red users, want 2", len(reds))
	}

	if _, err := service.Basic("purple"); !errors.Is(err, team.ErrInvalidRole) {
		t.Fatalf("Basic(purple) error = %v, want ErrInvalidRole", err)
	}
}

// The safe projection and the full record must both keep credentials out of
// any serialized form.
func TestNoCredentialLeak(t *testing.T) {
	service, store := seededService(t)

	full, err := service.ByRole(team.RoleRed, team.RoleRed)
	if err != nil {
		t.Fatalf("ByRole: %v", err)
	}
	data, err := json.Marshal(full)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "$2a$") || strings.Contains(strings.ToLower(string(data)), "passwordhash") {
		t.Error("full user serialization leaked the password hash")
	}

	basic, err := service.Basic("")
	if err != nil {
		t.Fatalf("Basic: %v", err)
	}
	data, err = json.Marshal(basic)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "$2a$") {
		t.Error("basic projection leaked the password hash")
	}

	// Sanity: the hash is stored and verifiable.
	u, err := store.GetUserByUsername("red-alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if !store.VerifyPassword(u, "hunter2hunter2") {
		t.Error("stored password should verify")
	}
	if store.VerifyPassword(u, "wrong-password") {
		t.Error("wrong password should not verify")
	}
}

func TestStatsFilterThenCount(t *testing.T) {
	service, store := seededService(t)

	u, err := store.GetUserByUsername("red-bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if err := store.SetEnabled(u.ID, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	stats, err := service.Stats(team.RoleRed)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TeamMemberCount != 2 {
		t.Errorf("TeamMemberCount = %d, want 2", stats.TeamMemberCount)
	}
	if stats.OnlineMembers != 1 {
		t.Errorf("OnlineMembers = %d, want 1", stats.OnlineMembers)
	}

	if _, err := service.Stats(team.RoleNone); !errors.Is(err, team.ErrInvalidRole) {
		t.Fatalf("Stats(none) error = %v, want ErrInvalidRole", err)
	}
}

func TestUserStoreValidation(t *testing.T) {
	store := NewUserStore()

	tests := []struct {
		name     string
		username string
		password string
		role     team.Role
		wantErr  error
	}{
		{"short username", "ab", "longenoughpw", team.RoleRed, ErrInvalidUsername},
		{"bad characters", "no spaces!", "longenoughpw", team.RoleRed, ErrInvalidUsername},
		{"empty password", "validname", "", team.RoleRed, ErrEmptyPassword},
		{"weak password", "validname", "short", team.RoleRed, ErrWeakPassword},
		{"bad role", "validname", "longenoughpw", team.RoleNone, team.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.CreateUser(tt.username, tt.password, tt.role); !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateUser error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := store.CreateUser("dupuser", "longenoughpw", team.RoleBlue); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := store.CreateUser("dupuser", "longenoughpw", team.RoleBlue); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate CreateUser error = %v, want ErrUserExists", err)
	}
}
