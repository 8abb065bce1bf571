package topology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists topology documents in PostgreSQL, one row per project.
// The upsert runs in a single statement, so a concurrent load reads either
// the old or the new document, never a mix.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a new PostgreSQL-backed topology store.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS topologies (
			project_id      TEXT PRIMARY KEY,
			nodes           JSONB NOT NULL,
			edges           JSONB NOT NULL,
			custom_elements JSONB NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create topologies table: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// Save validates and upserts the document, replacing any prior version.
func (s *PGStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}

	nodesJSON, err := json.Marshal(doc.Nodes)
	if err != nil {
		return &StoreError{Op: "Save", Backend: "postgres", ProjectID: doc.ProjectID, Cause: err}
	}
	edgesJSON, err := json.Marshal(doc.Edges)
	if err != nil {
		return &StoreError{Op: "Save", Backend: "postgres", ProjectID: doc.ProjectID, Cause: err}
	}
	elementsJSON, err := json.Marshal(doc.CustomElements)
	if err != nil {
		return &StoreError{Op: "Save", Backend: "postgres", ProjectID: doc.ProjectID, Cause: err}
	}

	query := `
		INSERT INTO topologies (project_id, nodes, edges, custom_elements, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (project_id) DO UPDATE SET
			nodes           = EXCLUDED.nodes,
			edges           = EXCLUDED.edges,
			custom_elements = EXCLUDED.custom_elements,
			updated_at      = now()
	`

	if _, err := s.pool.Exec(ctx, query, doc.ProjectID, nodesJSON, edgesJSON, elementsJSON); err != nil {
		return unavailable("Save", "postgres", doc.ProjectID, err)
	}
	return nil
}

// Load retrieves the current document for the project, or ok=false when no
// row exists for that ID.
func (s *PGStore) Load(ctx context.Context, projectID string) (*Document, bool, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, false, err
	}

	query := `
		SELECT nodes, edges, custom_elements
		FROM topologies
		WHERE project_id = $1
	`

	var nodesJSON, edgesJSON, elementsJSON []byte
	err := s.pool.QueryRow(ctx, query, projectID).Scan(&nodesJSON, &edgesJSON, &elementsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("Load", "postgres", projectID, err)
	}

	doc := &Document{ProjectID: projectID}
	if err := json.Unmarshal(nodesJSON, &doc.Nodes); err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "postgres", ProjectID: projectID, Cause: err}
	}
	if err := json.Unmarshal(edgesJSON, &doc.Edges); err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "postgres", ProjectID: projectID, Cause: err}
	}
	if err := json.Unmarshal(elementsJSON, &doc.CustomElements); err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "postgres", ProjectID: projectID, Cause: err}
	}

	applyDefaultIcons(doc)
	return doc, true, nil
}

var _ Store = (*PGStore)(nil)
