package asset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is a singleton validator instance
var validate = validator.New()

// Store indexes assets by project. All reads return copies.
type Store struct {
	mu        sync.RWMutex
	assets    map[string]*Asset            // assetID -> Asset
	byProject map[string]map[string]bool   // projectID -> set of assetIDs
}

// NewStore creates an empty asset store.
func NewStore() *Store {
	return &Store{
		assets:    make(map[string]*Asset),
		byProject: make(map[string]map[string]bool),
	}
}

// Create validates and stores a new asset. A missing ID is assigned.
func (s *Store) Create(a Asset) (Asset, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ProjectID == "" {
		return Asset{}, ErrEmptyProjectID
	}
	if !validOwners[a.OwnerTeam] {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidOwner, a.OwnerTeam)
	}
	if err := validate.Struct(&a); err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[a.ID]; exists {
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetExists, a.ID)
	}

	stored := a.Clone()
	s.assets[a.ID] = &stored
	ids, ok := s.byProject[a.ProjectID]
	if !ok {
		ids = make(map[string]bool)
		s.byProject[a.ProjectID] = ids
	}
	ids[a.ID] = true

	return stored.Clone(), nil
}

// Get retrieves an asset by ID.
func (s *Store) Get(assetID string) (Asset, error) {
	if assetID == "" {
		return Asset{}, ErrEmptyAssetID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.assets[assetID]
	if !exists {
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, assetID)
	}
	return a.Clone(), nil
}

// Update replaces an asset's mutable fields. OwnerTeam is immutable after
// creation; changing ownership is a distinct audited operation elsewhere.
func (s *Store) Update(updated Asset) (Asset, error) {
	if updated.ID == "" {
		return Asset{}, ErrEmptyAssetID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.assets[updated.ID]
	if !exists {
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, updated.ID)
	}
	if updated.OwnerTeam != "" && updated.OwnerTeam != existing.OwnerTeam {
		return Asset{}, fmt.Errorf("%w: %s", ErrOwnerImmutable, updated.ID)
	}

	existing.Name = updated.Name
	existing.IP = updated.IP
	existing.NodeID = updated.NodeID
	existing.IsTarget = updated.IsTarget
	existing.Enabled = updated.Enabled
	existing.Notes = updated.Notes
	existing.Properties = updated.Clone().Properties

	return existing.Clone(), nil
}

// Delete removes an asset.
func (s *Store) Delete(assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.assets[assetID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, assetID)
	}
	delete(s.assets, assetID)
	if ids, ok := s.byProject[a.ProjectID]; ok {
		delete(ids, assetID)
	}
	return nil
}

// ByProject returns all assets of a project in ascending ID order.
func (s *Store) ByProject(projectID string) ([]Asset, error) {
	if projectID == "" {
		return nil, ErrEmptyProjectID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byProject[projectID]
	out := make([]Asset, 0, len(ids))
	for id := range ids {
		if a, ok := s.assets[id]; ok {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
