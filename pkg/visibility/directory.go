package visibility

import (
	"context"

	"github.com/rangeops/rangecore/pkg/asset"
	"github.com/rangeops/rangecore/pkg/team"
	"github.com/rangeops/rangecore/pkg/topology"
)

// Directory exposes role-filtered queries over a project's assets and
// topology, backed by the pure engine. Stats are always computed over the
// already-filtered set; totals over invisible assets never leak.
type Directory struct {
	topo   topology.Store
	assets *asset.Store
}

// NewDirectory creates a directory over the given stores.
func NewDirectory(topo topology.Store, assets *asset.Store) *Directory {
	return &Directory{topo: topo, assets: assets}
}

// VisibleAssets returns the assets of a project the role may see, in
// ascending asset ID order so repeated queries are reproducible.
func (d *Directory) VisibleAssets(ctx context.Context, projectID string, role team.Role) ([]asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := d.assets.ByProject(projectID)
	if err != nil {
		return nil, err
	}
	// ByProject returns ascending ID order; the filter preserves it.
	return FilterForRole(nil, all, role).Assets, nil
}

// Stats returns aggregate counts over the role-filtered asset set only.
func (d *Directory) Stats(ctx context.Context, projectID string, role team.Role) (asset.Stats, error) {
	visible, err := d.VisibleAssets(ctx, projectID, role)
	if err != nil {
		return asset.Stats{}, err
	}

	stats := asset.Stats{Count: len(visible)}
	for _, a := range visible {
		if a.IsTarget {
			stats.HighValueTargets++
		}
	}
	return stats, nil
}

// ProjectView loads the project's topology and assets and returns the full
// role-filtered view. A project with no saved topology yields a view with
// empty node/edge sets but still-filtered assets.
func (d *Directory) ProjectView(ctx context.Context, projectID string, role team.Role) (View, error) {
	all, err := d.assets.ByProject(projectID)
	if err != nil {
		return View{}, err
	}

	doc, ok, err := d.topo.Load(ctx, projectID)
	if err != nil {
		return View{}, err
	}
	if !ok {
		doc = nil
	}

	return FilterForRole(doc, all, role), nil
}
