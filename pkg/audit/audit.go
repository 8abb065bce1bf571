package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rangeops/rangecore/pkg/team"
)

// Action types for audit events
type Action string

const (
	ActionSave   Action = "save"
	ActionLoad   Action = "load"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
	ActionAuth   Action = "auth"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceTopology ResourceType = "topology"
	ResourceAsset    ResourceType = "asset"
	ResourceRoster   ResourceType = "roster"
	ResourceAuth     ResourceType = "auth"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// Event represents a single audit log entry
type Event struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	ProjectID    string         `json:"project_id,omitempty"`
	UserID       string         `json:"user_id,omitempty"`
	Username     string         `json:"username,omitempty"`
	Role         team.Role      `json:"role,omitempty"`
	Action       Action         `json:"action"`
	ResourceType ResourceType   `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Status       Status         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Filter represents filtering criteria for audit events
type Filter struct {
	ProjectID    string // empty = all projects
	UserID       string
	Username     string
	Role         team.Role
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	Status       Status
	StartTime    *time.Time
	EndTime      *time.Time
}

// Logger is the interface audit sinks implement.
type Logger interface {
	// Log records an audit event
	Log(event *Event) error

	// GetEventCount returns the number of events logged
	GetEventCount() int64
}

// AuditLogger manages audit log events with a circular buffer
type AuditLogger struct {
	events     []*Event
	bufferSize int
	index      int
	count      int
	mu         sync.RWMutex
}

// NewAuditLogger creates a new audit logger with specified buffer size
func NewAuditLogger(bufferSize int) *AuditLogger {
	return &AuditLogger{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
		index:      0,
		count:      0,
	}
}

// Log records an audit event
func (l *AuditLogger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Set timestamp and ID if not set
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	// Store in circular buffer
	l.events[l.index] = event
	l.index = (l.index + 1) % l.bufferSize

	// Track total count (up to buffer size)
	if l.count < l.bufferSize {
		l.count++
	}

	return nil
}

// GetEvents retrieves audit events with optional filtering
func (l *AuditLogger) GetEvents(filter *Filter) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Event, 0, l.count)

	for i := 0; i < l.count; i++ {
		// Calculate the actual index in the circular buffer
		idx := (l.index - l.count + i + l.bufferSize) % l.bufferSize
		event := l.events[idx]

		if event == nil {
			continue
		}

		if filter != nil {
			if filter.ProjectID != "" && event.ProjectID != filter.ProjectID {
				continue
			}
			if filter.UserID != "" && event.UserID != filter.UserID {
				continue
			}
			if filter.Username != "" && event.Username != filter.Username {
				continue
			}
			if filter.Role != "" && event.Role != filter.Role {
				continue
			}
			if filter.Action != "" && event.Action != filter.Action {
				continue
			}
			if filter.ResourceType != "" && event.ResourceType != filter.ResourceType {
				continue
			}
			if filter.ResourceID != "" && event.ResourceID != filter.ResourceID {
				continue
			}
			if filter.Status != "" && event.Status != filter.Status {
				continue
			}
			if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
				continue
			}
			if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
				continue
			}
		}

		result = append(result, event)
	}

	return result
}

// GetRecentEvents returns the N most recent events
func (l *AuditLogger) GetRecentEvents(n int) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > l.count {
		n = l.count
	}

	result := make([]*Event, 0, n)

	for i := 0; i < n; i++ {
		idx := (l.index - 1 - i + l.bufferSize) % l.bufferSize
		if l.events[idx] != nil {
			result = append(result, l.events[idx])
		}
	}

	return result
}

// GetEventCount returns the total number of events currently stored
func (l *AuditLogger) GetEventCount() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(l.count)
}

// Clear removes all events from the logger
func (l *AuditLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = make([]*Event, l.bufferSize)
	l.index = 0
	l.count = 0
}

// NewEvent creates a standard event
func NewEvent(userID, username string, role team.Role, action Action, resourceType ResourceType, resourceID string, status Status) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		UserID:       userID,
		Username:     username,
		Role:         role,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
	}
}

// NewDeniedEvent records an access check that failed for the caller's role.
func NewDeniedEvent(userID, username string, role team.Role, action Action, resourceType ResourceType, resourceID, reason string) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		UserID:       userID,
		Username:     username,
		Role:         role,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       StatusDenied,
		ErrorMessage: reason,
	}
}

// NewFailedEvent creates a failed event with an error message
func NewFailedEvent(userID, username string, role team.Role, action Action, resourceType ResourceType, errorMsg string) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		UserID:       userID,
		Username:     username,
		Role:         role,
		Action:       action,
		ResourceType: resourceType,
		Status:       StatusFailure,
		ErrorMessage: errorMsg,
	}
}

// NewProjectEvent creates an event scoped to a project
func NewProjectEvent(projectID, userID, username string, role team.Role, action Action, resourceType ResourceType, resourceID string, status Status) *Event {
	return &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		ProjectID:    projectID,
		UserID:       userID,
		Username:     username,
		Role:         role,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
	}
}

// String returns a human-readable representation of an event
func (e *Event) String() string {
	projectStr := e.ProjectID
	if projectStr == "" {
		projectStr = "-"
	}
	return fmt.Sprintf("[%s] project=%s %s(%s) %s %s %s (user: %s, status: %s)",
		e.Timestamp.Format(time.RFC3339),
		projectStr,
		e.Username,
		e.Role,
		e.Action,
		e.ResourceType,
		e.ResourceID,
		e.UserID,
		e.Status,
	)
}
