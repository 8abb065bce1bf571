package topology

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// ValidateDocument checks a document before it is accepted for persistence:
// non-empty project ID, non-empty and unique node IDs, and every edge endpoint
// referencing a node present in the same document.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	if doc.ProjectID == "" {
		return ErrEmptyProjectID
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if node.ID == "" {
			return ErrEmptyNodeID
		}
		if seen[node.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}
		seen[node.ID] = true
	}

	for _, edge := range doc.Edges {
		if !seen[edge.Source] {
			return fmt.Errorf("%w: source %q", ErrDanglingEdge, edge.Source)
		}
		if !seen[edge.Target] {
			return fmt.Errorf("%w: target %q", ErrDanglingEdge, edge.Target)
		}
	}

	// Struct-tag validation last: the sentinel checks above already cover the
	// required fields, so anything surfacing here is a shape problem.
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("document validation failed: %w", err)
	}

	return nil
}

// ValidateProjectID checks the project identifier used to key a load.
func ValidateProjectID(projectID string) error {
	if projectID == "" {
		return ErrEmptyProjectID
	}
	return nil
}
