// Package visibility computes which subset of a project's topology and
// assets a team role may observe. The engine is pure: given the same
// document, assets and role it always produces the same view, and it never
// touches shared state.
package visibility

import (
	"github.com/rangeops/rangecore/pkg/asset"
	"github.com/rangeops/rangecore/pkg/team"
	"github.com/rangeops/rangecore/pkg/topology"
)

// View is the role-filtered slice of a project: the nodes, edges and assets
// the role is permitted to see. Every edge's endpoints are members of Nodes —
// a dangling edge would leak the existence of a hidden node.
type View struct {
	Nodes  []topology.Node `json:"nodes"`
	Edges  []topology.Edge `json:"edges"`
	Assets []asset.Asset   `json:"assets"`
}

// FilterForRole computes the view of a topology document and its assets for
// one role. An unresolved role (none or anything unrecognized) yields empty
// sets: total denial, not an error. doc may be nil when the project has no
// saved topology; the asset filter still applies.
//
// Input order is preserved, so callers that pass assets in ascending ID
// order get them back in ascending ID order.
func FilterForRole(doc *topology.Document, assets []asset.Asset, role team.Role) View {
	view := View{
		Nodes:  []topology.Node{},
		Edges:  []topology.Edge{},
		Assets: []asset.Asset{},
	}
	if !role.IsValid() {
		return view
	}

	for _, a := range assets {
		if canSeeAsset(role, a) {
			view.Assets = append(view.Assets, a.Clone())
		}
	}

	if doc == nil {
		return view
	}

	// Nodes directly referenced by a visible asset are visible even when the
	// node itself carries another team's owner tag.
	referenced := make(map[string]bool)
	for _, a := range view.Assets {
		if a.NodeID != "" {
			referenced[a.NodeID] = true
		}
	}

	visibleNodes := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if canSeeNode(role, n, referenced) {
			visibleNodes[n.ID] = true
			view.Nodes = append(view.Nodes, cloneNode(n))
		}
	}

	for _, e := range doc.Edges {
		if visibleNodes[e.Source] && visibleNodes[e.Target] {
			view.Edges = append(view.Edges, cloneEdge(e))
		}
	}

	return view
}

// canSeeAsset applies the visibility rule: a role sees its own team's assets
// and shared ones; judge and admin see everything. Disabled assets are
// invisible to every role.
func canSeeAsset(role team.Role, a asset.Asset) bool {
	if !a.Enabled {
		return false
	}
	if role.IsPrivileged() {
		return true
	}
	return a.OwnerTeam == role.String() || a.OwnerTeam == asset.OwnerShared
}

// canSeeNode decides node visibility: structural nodes (no owner) are visible
// to all resolved roles so both teams can reason about shared infrastructure.
func canSeeNode(role team.Role, n topology.Node, referenced map[string]bool) bool {
	if role.IsPrivileged() {
		return true
	}
	if n.OwnerTeam == "" || n.OwnerTeam == asset.OwnerShared {
		return true
	}
	if n.OwnerTeam == role.String() {
		return true
	}
	return referenced[n.ID]
}

func cloneNode(n topology.Node) topology.Node {
	clone := n
	if n.Properties != nil {
		clone.Properties = make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			clone.Properties[k] = v
		}
	}
	return clone
}

func cloneEdge(e topology.Edge) topology.Edge {
	clone := e
	if e.Properties != nil {
		clone.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			clone.Properties[k] = v
		}
	}
	return clone
}
