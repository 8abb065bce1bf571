package api

import (
	"time"

	"github.com/rangeops/rangecore/pkg/health"
	"github.com/rangeops/rangecore/pkg/team"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
	Uptime    string                  `json:"uptime"`
	Checks    map[string]health.Check `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// LoginRequest carries credentials for token issuance
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the resolved role
type LoginResponse struct {
	Token    string    `json:"token"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Role     team.Role `json:"role"`
}

// SaveResponse acknowledges a topology save
type SaveResponse struct {
	ProjectID string `json:"projectId"`
	NodeCount int    `json:"nodeCount"`
	EdgeCount int    `json:"edgeCount"`
}
