package asset

import (
	"errors"
)

// Owner-team values. Shared assets are visible to both teams.
const (
	OwnerRed    = "red"
	OwnerBlue   = "blue"
	OwnerShared = "shared"
)

var validOwners = map[string]bool{
	OwnerRed:    true,
	OwnerBlue:   true,
	OwnerShared: true,
}

// Errors for asset operations
var (
	ErrAssetNotFound   = errors.New("asset not found")
	ErrAssetExists     = errors.New("asset already exists")
	ErrEmptyAssetID    = errors.New("asset ID cannot be empty")
	ErrEmptyProjectID  = errors.New("projectId cannot be empty")
	ErrInvalidOwner    = errors.New("ownerTeam must be red, blue or shared")
	ErrOwnerImmutable  = errors.New("ownerTeam cannot be changed after creation")
	ErrInvalidAsset    = errors.New("invalid asset")
)

// Asset represents a simulated network resource inside a topology. An asset
// may or may not correspond to a node in the topology graph (NodeID empty
// when it does not).
type Asset struct {
	ID         string         `json:"id" validate:"required"`
	ProjectID  string         `json:"projectId" validate:"required"`
	Name       string         `json:"name,omitempty"`
	IP         string         `json:"ip,omitempty"`
	NodeID     string         `json:"nodeId,omitempty"`
	OwnerTeam  string         `json:"ownerTeam" validate:"required,oneof=red blue shared"`
	IsTarget   bool           `json:"isTarget"`
	Enabled    bool           `json:"enabled"`
	Notes      string         `json:"notes,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	clone := a
	if a.Properties != nil {
		clone.Properties = make(map[string]any, len(a.Properties))
		for k, v := range a.Properties {
			clone.Properties[k] = v
		}
	}
	return clone
}

// Stats are aggregate counts over an already role-filtered asset set.
type Stats struct {
	Count            int `json:"count"`
	HighValueTargets int `json:"highValueTargetCount"`
}
