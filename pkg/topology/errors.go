package topology

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Common sentinel errors
var (
	ErrEmptyProjectID   = errors.New("projectId cannot be empty")
	ErrEmptyNodeID      = errors.New("node ID cannot be empty")
	ErrDuplicateNodeID  = errors.New("duplicate node ID")
	ErrDanglingEdge     = errors.New("edge references a node not present in the document")
	ErrNilDocument      = errors.New("document cannot be nil")
	ErrStoreUnavailable = errors.New("topology store unavailable")
	ErrStoreClosed      = errors.New("topology store is closed")
)

// validationErrors is the set of sentinels that classify as caller mistakes.
// They are reported to the caller and never retried.
var validationErrors = []error{
	ErrEmptyProjectID,
	ErrEmptyNodeID,
	ErrDuplicateNodeID,
	ErrDanglingEdge,
	ErrNilDocument,
}

// IsValidationError reports whether err is a validation failure rather than
// a store fault. Retrying a validation failure can never succeed.
func IsValidationError(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op        string // Operation that failed (e.g., "Save", "Load")
	Backend   string // Backend kind (e.g., "file", "postgres", "s3")
	ProjectID string
	Cause     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ProjectID != "" {
		return fmt.Sprintf("%s %s topology %q: %v", e.Op, e.Backend, e.ProjectID, e.Cause)
	}
	return fmt.Sprintf("%s %s topology: %v", e.Op, e.Backend, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// unavailable wraps a persistence failure as ErrStoreUnavailable so callers
// can classify it as retryable.
func unavailable(op, backend, projectID string, cause error) error {
	return &StoreError{
		Op:        op,
		Backend:   backend,
		ProjectID: projectID,
		Cause:     fmt.Errorf("%w: %v", ErrStoreUnavailable, cause),
	}
}
