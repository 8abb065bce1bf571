package topology

import (
	"context"
	"sync"
)

// Store persists full topology documents keyed by project ID.
//
// Save replaces any prior document for the project wholesale. Concurrent
// saves to the same project are serialized; a concurrent Load observes
// either the fully-old or fully-new document, never a mix.
//
// Load's second return value reports whether a document exists for the
// project. Absence is a normal result, not an error.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context, projectID string) (*Document, bool, error)
}

// MemoryStore is an in-memory Store. Saves are serialized per project so
// unrelated projects never contend on a shared lock.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
	locks     map[string]*sync.Mutex
	closed    bool
}

// NewMemoryStore creates an empty in-memory topology store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]*Document),
		locks:     make(map[string]*sync.Mutex),
	}
}

// projectLock returns the save lock for a project, creating it on first use.
func (s *MemoryStore) projectLock(projectID string) (*sync.Mutex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	return lock, nil
}

// Save validates and stores a document, replacing any prior version.
// A failed validation never mutates stored state.
func (s *MemoryStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}

	lock, err := s.projectLock(doc.ProjectID)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()

	// An abandoned caller must not commit a write it no longer wants.
	if err := ctx.Err(); err != nil {
		return unavailable("Save", "memory", doc.ProjectID, err)
	}

	clone := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.documents[doc.ProjectID] = clone
	return nil
}

// Load returns a copy of the current document for the project, or ok=false
// when no document has ever been saved for that ID.
func (s *MemoryStore) Load(ctx context.Context, projectID string) (*Document, bool, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, unavailable("Load", "memory", projectID, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrStoreClosed
	}

	doc, ok := s.documents[projectID]
	if !ok {
		return nil, false, nil
	}

	result := doc.Clone()
	applyDefaultIcons(result)
	return result, true, nil
}

// Close releases the store. Subsequent operations fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.documents = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
