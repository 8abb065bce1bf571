package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/rangeops/rangecore/pkg/asset"
	"github.com/rangeops/rangecore/pkg/audit"
	"github.com/rangeops/rangecore/pkg/auth"
	"github.com/rangeops/rangecore/pkg/graphql"
	"github.com/rangeops/rangecore/pkg/health"
	"github.com/rangeops/rangecore/pkg/roster"
	"github.com/rangeops/rangecore/pkg/team"
	"github.com/rangeops/rangecore/pkg/topology"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	result := s.healthChecker.Check()

	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	s.respondJSON(w, status, HealthResponse{
		Status:    string(result.Status),
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    result.Checks,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.GetUserByUsername(req.Username)
	if err != nil || !s.users.VerifyPassword(user, req.Password) {
		s.metricsRegistry.AuthFailuresTotal.Inc()
		event := audit.NewFailedEvent("", req.Username, team.RoleNone,
			audit.ActionAuth, audit.ResourceAuth, "invalid credentials")
		event.IPAddress = getIPAddress(r)
		if logErr := s.auditLogger.Log(event); logErr != nil {
			log.Printf("Failed to log audit event: %v", logErr)
		}
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.Enabled {
		s.respondError(w, http.StatusForbidden, "Account is disabled")
		return
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, sanitizeError(err, "token generation"))
		return
	}

	s.metricsRegistry.TokensIssuedTotal.Inc()
	event := audit.NewEvent(user.ID, user.Username, user.Role,
		audit.ActionAuth, audit.ResourceAuth, "", audit.StatusSuccess)
	event.IPAddress = getIPAddress(r)
	if logErr := s.auditLogger.Log(event); logErr != nil {
		log.Printf("Failed to log audit event: %v", logErr)
	}

	s.respondJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

// handleTopologySave replaces a project's topology wholesale. Only
// privileged roles may redraw the range.
func (s *Server) handleTopologySave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if decision := auth.RequirePrivileged(callerRole(r)); !decision.Allowed {
		s.logDenied(r, audit.ResourceTopology, "", decision.Reason)
		s.respondError(w, http.StatusForbidden, decision.Reason)
		return
	}

	var doc topology.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start := time.Now()
	if err := s.topo.Save(r.Context(), &doc); err != nil {
		s.metricsRegistry.RecordStoreOperation("save", s.storeBackend, "error", time.Since(start))
		s.respondStoreError(w, err, "topology save")
		return
	}
	s.metricsRegistry.RecordStoreOperation("save", s.storeBackend, "success", time.Since(start))

	if claims, ok := claimsFrom(r); ok {
		event := audit.NewProjectEvent(doc.ProjectID, claims.UserID, claims.Username,
			claims.Role, audit.ActionSave, audit.ResourceTopology, doc.ProjectID, audit.StatusSuccess)
		event.IPAddress = getIPAddress(r)
		if err := s.auditLogger.Log(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}

	s.respondJSON(w, http.StatusOK, SaveResponse{
		ProjectID: doc.ProjectID,
		NodeCount: len(doc.Nodes),
		EdgeCount: len(doc.Edges),
	})
}

// handleTopologyLoad returns the raw, unfiltered document. Restricted to
// privileged roles; team callers get their filtered view from /topology/view.
func (s *Server) handleTopologyLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	projectID, ok := s.queryProjectID(w, r)
	if !ok {
		return
	}

	if decision := auth.RequirePrivileged(callerRole(r)); !decision.Allowed {
		s.logDenied(r, audit.ResourceTopology, projectID, decision.Reason)
		s.respondError(w, http.StatusForbidden, decision.Reason)
		return
	}

	start := time.Now()
	doc, found, err := s.topo.Load(r.Context(), projectID)
	if err != nil {
		s.metricsRegistry.RecordStoreOperation("load", s.storeBackend, "error", time.Since(start))
		s.respondStoreError(w, err, "topology load")
		return
	}
	s.metricsRegistry.RecordStoreOperation("load", s.storeBackend, "success", time.Since(start))

	if !found {
		s.respondError(w, http.StatusNotFound, "No topology saved for project")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

// handleProjectView returns the caller's role-filtered view of a project.
func (s *Server) handleProjectView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	projectID, ok := s.queryProjectID(w, r)
	if !ok {
		return
	}

	role := callerRole(r)
	start := time.Now()
	view, err := s.directory.ProjectView(r.Context(), projectID, role)
	if err != nil {
		s.metricsRegistry.RecordVisibilityQuery(role, "error", time.Since(start), 0, 0)
		s.respondStoreError(w, err, "project view")
		return
	}
	s.metricsRegistry.RecordVisibilityQuery(role, "success", time.Since(start),
		len(view.Nodes), len(view.Assets))

	s.respondJSON(w, http.StatusOK, view)
}

// handleAssets covers privileged asset management: create, update, delete.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if decision := auth.RequirePrivileged(callerRole(r)); !decision.Allowed {
		s.logDenied(r, audit.ResourceAsset, "", decision.Reason)
		s.respondError(w, http.StatusForbidden, decision.Reason)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.createAsset(w, r)
	case http.MethodPut:
		s.updateAsset(w, r)
	case http.MethodDelete:
		s.deleteAsset(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var req asset.Asset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := s.assets.Create(req)
	if err != nil {
		if errors.Is(err, asset.ErrAssetExists) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	var req asset.Asset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.assets.Update(req)
	if err != nil {
		switch {
		case errors.Is(err, asset.ErrAssetNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, asset.ErrOwnerImmutable):
			s.respondError(w, http.StatusConflict, err.Error())
		default:
			s.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID := r.URL.Query().Get("id")
	if assetID == "" {
		s.respondError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}

	if err := s.assets.Delete(assetID); err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVisibleAssets lists only the assets the caller's role may see.
func (s *Server) handleVisibleAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	projectID, ok := s.queryProjectID(w, r)
	if !ok {
		return
	}

	role := callerRole(r)
	start := time.Now()
	visible, err := s.directory.VisibleAssets(r.Context(), projectID, role)
	if err != nil {
		s.metricsRegistry.RecordVisibilityQuery(role, "error", time.Since(start), 0, 0)
		s.respondStoreError(w, err, "visible assets")
		return
	}
	s.metricsRegistry.RecordVisibilityQuery(role, "success", time.Since(start), 0, len(visible))

	s.respondJSON(w, http.StatusOK, visible)
}

// handleAssetStats returns counts over the caller's visible assets only.
func (s *Server) handleAssetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	projectID, ok := s.queryProjectID(w, r)
	if !ok {
		return
	}

	stats, err := s.directory.Stats(r.Context(), projectID, callerRole(r))
	if err != nil {
		s.respondStoreError(w, err, "asset stats")
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// handleUsersByRole lists a team's full roster. Callers may list their own
// team; judges and admins may list any.
func (s *Server) handleUsersByRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	requested, err := team.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := s.rosterSvc.ByRole(callerRole(r), requested)
	if err != nil {
		if errors.Is(err, roster.ErrForbidden) {
			s.logDenied(r, audit.ResourceRoster, string(requested), err.Error())
		}
		s.respondStoreError(w, err, "roster by role")
		return
	}
	s.respondJSON(w, http.StatusOK, users)
}

// handleUsersBasic returns the safe projection visible to any resolved caller.
func (s *Server) handleUsersBasic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if decision := auth.RequireResolved(callerRole(r)); !decision.Allowed {
		s.logDenied(r, audit.ResourceRoster, "", decision.Reason)
		s.respondError(w, http.StatusForbidden, decision.Reason)
		return
	}

	basic, err := s.rosterSvc.Basic(r.URL.Query().Get("role"))
	if err != nil {
		s.respondStoreError(w, err, "roster basic")
		return
	}
	s.respondJSON(w, http.StatusOK, basic)
}

// handleTeamStats returns membership counts for a team. Same access rule
// as the full roster listing.
func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	requested, err := team.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if decision := auth.RequireRole(callerRole(r), requested); !decision.Allowed {
		s.logDenied(r, audit.ResourceRoster, string(requested), decision.Reason)
		s.respondError(w, http.StatusForbidden, decision.Reason)
		return
	}

	stats, err := s.rosterSvc.Stats(requested)
	if err != nil {
		s.respondStoreError(w, err, "team stats")
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// handleGraphQL runs authenticated GraphQL queries. The caller's resolved
// role is injected into the execution context so resolvers never trust a
// client-supplied role.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	ctx := graphql.WithRole(r.Context(), callerRole(r))
	s.graphqlHandler.ServeHTTP(w, r.WithContext(ctx))
}
