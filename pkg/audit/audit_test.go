package audit

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rangeops/rangecore/pkg/team"
)

// TestAuditLogger_LogEvent tests basic event logging
func TestAuditLogger_LogEvent(t *testing.T) {
	logger := NewAuditLogger(100)

	tests := []struct {
		name      string
		event     *Event
		wantError bool
	}{
		{
			name: "Valid topology save event",
			event: &Event{
				ProjectID:    "exercise-7",
				UserID:       "user123",
				Username:     "alice",
				Role:         team.RoleRed,
				Action:       ActionSave,
				ResourceType: ResourceTopology,
				ResourceID:   "exercise-7",
				Status:       StatusSuccess,
				IPAddress:    "192.168.1.1",
			},
			wantError: false,
		},
		{
			name: "Denied cross-team roster read",
			event: &Event{
				UserID:       "user123",
				Username:     "alice",
				Role:         team.RoleRed,
				Action:       ActionView,
				ResourceType: ResourceRoster,
				ResourceID:   "blue",
				Status:       StatusDenied,
				ErrorMessage: "caller role red may not list blue",
			},
			wantError: false,
		},
		{
			name: "Failed authentication event",
			event: &Event{
				Username:     "attacker",
				Action:       ActionAuth,
				ResourceType: ResourceAuth,
				Status:       StatusFailure,
				ErrorMessage: "Invalid credentials",
				IPAddress:    "10.0.0.1",
			},
			wantError: false,
		},
		{
			name: "Asset deletion event",
			event: &Event{
				ProjectID:    "exercise-7",
				UserID:       "user456",
				Username:     "bob",
				Role:         team.RoleBlue,
				Action:       ActionDelete,
				ResourceType: ResourceAsset,
				ResourceID:   "asset789",
				Status:       StatusSuccess,
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logger.Log(tt.event)

			if tt.wantError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}

				if tt.event.Timestamp.IsZero() {
					t.Error("Expected non-zero timestamp")
				}

				if tt.event.ID == "" {
					t.Error("Expected non-empty event ID")
				}
			}
		})
	}
}

// TestAuditLogger_GetEvents tests retrieving logged events with filters
func TestAuditLogger_GetEvents(t *testing.T) {
	logger := NewAuditLogger(100)

	seed := []*Event{
		{
			ProjectID:    "exercise-7",
			UserID:       "user123",
			Username:     "alice",
			Role:         team.RoleRed,
			Action:       ActionSave,
			ResourceType: ResourceTopology,
			Status:       StatusSuccess,
		},
		{
			ProjectID:    "exercise-7",
			UserID:       "user123",
			Username:     "alice",
			Role:         team.RoleRed,
			Action:       ActionView,
			ResourceType: ResourceAsset,
			Status:       StatusSuccess,
		},
		{
			ProjectID:    "exercise-9",
			UserID:       "user456",
			Username:     "bob",
			Role:         team.RoleBlue,
			Action:       ActionView,
			ResourceType: ResourceRoster,
			Status:       StatusDenied,
		},
	}
	for _, e := range seed {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Failed to log event: %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    *Filter
		wantCount int
	}{
		{"No filter returns all", nil, 3},
		{"Filter by user", &Filter{UserID: "user123"}, 2},
		{"Filter by project", &Filter{ProjectID: "exercise-7"}, 2},
		{"Filter by role", &Filter{Role: team.RoleBlue}, 1},
		{"Filter by action", &Filter{Action: ActionView}, 2},
		{"Filter by status", &Filter{Status: StatusDenied}, 1},
		{"Filter by resource type", &Filter{ResourceType: ResourceTopology}, 1},
		{"Combined filter", &Filter{UserID: "user123", Action: ActionView}, 1},
		{"No matches", &Filter{UserID: "nobody"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logger.GetEvents(tt.filter)
			if len(got) != tt.wantCount {
				t.Errorf("GetEvents() returned %d events, want %d", len(got), tt.wantCount)
			}
		})
	}
}

// TestAuditLogger_CircularBuffer verifies old events are evicted
func TestAuditLogger_CircularBuffer(t *testing.T) {
	logger := NewAuditLogger(5)

	for i := 0; i < 8; i++ {
		event := NewEvent(
			fmt.Sprintf("user%d", i),
			fmt.Sprintf("operator%d", i),
			team.RoleRed,
			ActionSave,
			ResourceTopology,
			"exercise-7",
			StatusSuccess,
		)
		if err := logger.Log(event); err != nil {
			t.Fatalf("Failed to log event %d: %v", i, err)
		}
	}

	if got := logger.GetEventCount(); got != 5 {
		t.Errorf("GetEventCount() = %d, want 5 (buffer size)", got)
	}

	events := logger.GetEvents(nil)
	if len(events) != 5 {
		t.Fatalf("GetEvents() returned %d events, want 5", len(events))
	}

	// Oldest surviving event should be user3 (user0..user2 evicted)
	if events[0].UserID != "user3" {
		t.Errorf("Oldest event UserID = %s, want user3", events[0].UserID)
	}
	if events[4].UserID != "user7" {
		t.Errorf("Newest event UserID = %s, want user7", events[4].UserID)
	}
}

// TestAuditLogger_GetRecentEvents tests newest-first retrieval
func TestAuditLogger_GetRecentEvents(t *testing.T) {
	logger := NewAuditLogger(100)

	for i := 0; i < 10; i++ {
		event := NewEvent(
			fmt.Sprintf("user%d", i),
			"alice",
			team.RoleRed,
			ActionSave,
			ResourceTopology,
			"exercise-7",
			StatusSuccess,
		)
		if err := logger.Log(event); err != nil {
			t.Fatalf("Failed to log event: %v", err)
		}
	}

	recent := logger.GetRecentEvents(3)
	if len(recent) != 3 {
		t.Fatalf("GetRecentEvents(3) returned %d events", len(recent))
	}
	if recent[0].UserID != "user9" {
		t.Errorf("Most recent event UserID = %s, want user9", recent[0].UserID)
	}

	// Asking for more than stored caps at the stored count
	all := logger.GetRecentEvents(50)
	if len(all) != 10 {
		t.Errorf("GetRecentEvents(50) returned %d events, want 10", len(all))
	}
}

// TestAuditLogger_TimeFilter tests time-range filtering
func TestAuditLogger_TimeFilter(t *testing.T) {
	logger := NewAuditLogger(100)

	past := time.Now().Add(-2 * time.Hour)
	now := time.Now()

	old := NewEvent("user1", "alice", team.RoleRed, ActionSave, ResourceTopology, "p1", StatusSuccess)
	old.Timestamp = past
	if err := logger.Log(old); err != nil {
		t.Fatalf("Failed to log event: %v", err)
	}
	if err := logger.Log(NewEvent("user2", "bob", team.RoleBlue, ActionSave, ResourceTopology, "p1", StatusSuccess)); err != nil {
		t.Fatalf("Failed to log event: %v", err)
	}

	cutoff := now.Add(-1 * time.Hour)
	recent := logger.GetEvents(&Filter{StartTime: &cutoff})
	if len(recent) != 1 {
		t.Fatalf("Expected 1 event after cutoff, got %d", len(recent))
	}
	if recent[0].UserID != "user2" {
		t.Errorf("Filtered event UserID = %s, want user2", recent[0].UserID)
	}
}

func TestAuditLogger_Clear(t *testing.T) {
	logger := NewAuditLogger(10)

	if err := logger.Log(NewEvent("user1", "alice", team.RoleRed, ActionSave, ResourceTopology, "p1", StatusSuccess)); err != nil {
		t.Fatalf("Failed to log event: %v", err)
	}
	logger.Clear()

	if got := logger.GetEventCount(); got != 0 {
		t.Errorf("GetEventCount() after Clear = %d, want 0", got)
	}
	if got := logger.GetEvents(nil); len(got) != 0 {
		t.Errorf("GetEvents() after Clear returned %d events", len(got))
	}
}

func TestEvent_String(t *testing.T) {
	event := NewProjectEvent("exercise-7", "user1", "alice", team.RoleRed, ActionSave, ResourceTopology, "exercise-7", StatusSuccess)
	s := event.String()
	for _, want := range []string{"exercise-7", "alice", "red", "save", "topology", "success"} {
		if !strings.Contains(s, want) {
			t.Errorf("Event.String() = %q, missing %q", s, want)
		}
	}
}
