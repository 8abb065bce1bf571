package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rangeops/rangecore/pkg/asset"
	"github.com/rangeops/rangecore/pkg/audit"
	"github.com/rangeops/rangecore/pkg/auth"
	"github.com/rangeops/rangecore/pkg/graphql"
	"github.com/rangeops/rangecore/pkg/health"
	"github.com/rangeops/rangecore/pkg/metrics"
	"github.com/rangeops/rangecore/pkg/roster"
	"github.com/rangeops/rangecore/pkg/topology"
	"github.com/rangeops/rangecore/pkg/visibility"
)

// Server represents the HTTP API server
type Server struct {
	topo            topology.Store
	assets          *asset.Store
	directory       *visibility.Directory
	users           *roster.UserStore
	rosterSvc       *roster.Service
	jwtManager      *auth.JWTManager
	auditLogger     audit.Logger
	memAudit        *audit.AuditLogger
	metricsRegistry *metrics.Registry
	healthChecker   *health.HealthChecker
	graphqlHandler  *graphql.GraphQLHandler
	startTime       time.Time
	version         string
	port            int
	storeBackend    string
}

// NewServer creates a new API server over the given stores. The metrics
// registry is shared with any other component that records into it; a nil
// registry gets a fresh one.
func NewServer(cfg *Config, topo topology.Store, assets *asset.Store, users *roster.UserStore, reg *metrics.Registry) (*Server, error) {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	if err != nil {
		return nil, err
	}

	directory := visibility.NewDirectory(topo, assets)
	rosterSvc := roster.NewService(users)

	schema, err := graphql.GenerateSchema(directory, rosterSvc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate GraphQL schema: %w", err)
	}

	memAudit := audit.NewAuditLogger(cfg.AuditBuffer)

	healthChecker := health.NewHealthChecker()
	healthChecker.RegisterCheck("topology_store", health.TopologyStoreCheck(
		func(ctx context.Context, projectID string) error {
			_, _, err := topo.Load(ctx, projectID)
			return err
		}))
	healthChecker.RegisterCheck("roster", health.RosterCheck(func() int {
		return len(users.ListUsers())
	}))
	replicationEnabled := cfg.Replication.Enabled
	healthChecker.RegisterCheck("replication", health.ReplicationCheck(func() bool {
		return replicationEnabled
	}))

	return &Server{
		topo:            topo,
		assets:          assets,
		directory:       directory,
		users:           users,
		rosterSvc:       rosterSvc,
		jwtManager:      jwtManager,
		auditLogger:     memAudit,
		memAudit:        memAudit,
		metricsRegistry: reg,
		healthChecker:   healthChecker,
		graphqlHandler:  graphql.NewGraphQLHandler(schema),
		startTime:       time.Now(),
		version:         "1.0.0",
		port:            cfg.Port,
		storeBackend:    cfg.Store.Backend,
	}, nil
}

// Handler builds the full HTTP handler including middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	// Auth
	mux.HandleFunc("/auth/login", s.handleLogin)

	// Topology endpoints
	mux.HandleFunc("/topology/save", s.requireAuth(s.handleTopologySave))
	mux.HandleFunc("/topology/load", s.requireAuth(s.handleTopologyLoad))
	mux.HandleFunc("/topology/view", s.requireAuth(s.handleProjectView))

	// Asset endpoints
	mux.HandleFunc("/assets", s.requireAuth(s.handleAssets))
	mux.HandleFunc("/assets/visible", s.requireAuth(s.handleVisibleAssets))
	mux.HandleFunc("/assets/stats", s.requireAuth(s.handleAssetStats))

	// Roster endpoints
	mux.HandleFunc("/users/by-role", s.requireAuth(s.handleUsersByRole))
	mux.HandleFunc("/users/basic", s.requireAuth(s.handleUsersBasic))
	mux.HandleFunc("/users/stats", s.requireAuth(s.handleTeamStats))

	// GraphQL endpoint
	mux.HandleFunc("/graphql", s.requireAuth(s.handleGraphQL))

	return s.panicRecoveryMiddleware(
		s.loggingMiddleware(
			s.corsMiddleware(
				s.metricsMiddleware(mux))))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("rangecore API listening on %s", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// AuditLog returns the in-memory audit logger for inspection.
func (s *Server) AuditLog() *audit.AuditLogger {
	return s.memAudit
}
