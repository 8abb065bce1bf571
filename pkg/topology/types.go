package topology

// Document is the full topology graph for one project. It is the unit of
// persistence: saves replace the whole document, never patch it.
type Document struct {
	ProjectID      string          `json:"projectId" validate:"required"`
	Nodes          []Node          `json:"nodes" validate:"omitempty,dive"`
	Edges          []Edge          `json:"edges" validate:"omitempty,dive"`
	CustomElements []CustomElement `json:"customElements,omitempty"`
}

// Node is a single element of the topology graph. A node with an empty
// OwnerTeam is structural (routing/infrastructure) and visible to all
// resolved roles.
type Node struct {
	ID         string         `json:"id" validate:"required"`
	Name       string         `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	OwnerTeam  string         `json:"ownerTeam,omitempty"`
	IconName   string         `json:"iconName,omitempty"`
	Symbol     string         `json:"symbol,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is a directed link between two nodes of the same document.
type Edge struct {
	Source     string         `json:"source" validate:"required"`
	Target     string         `json:"target" validate:"required"`
	Label      string         `json:"label,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// CustomElement carries free-form drawing elements (labels, zones, annotations)
// that the frontend places on the canvas. The store persists them opaquely.
type CustomElement struct {
	ID         string         `json:"id,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Clone returns a deep copy of the document. Stores hand out clones so callers
// can never mutate the store's internal state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{ProjectID: d.ProjectID}
	if d.Nodes != nil {
		clone.Nodes = make([]Node, len(d.Nodes))
		for i, n := range d.Nodes {
			clone.Nodes[i] = n
			clone.Nodes[i].Properties = cloneProperties(n.Properties)
		}
	}
	if d.Edges != nil {
		clone.Edges = make([]Edge, len(d.Edges))
		for i, e := range d.Edges {
			clone.Edges[i] = e
			clone.Edges[i].Properties = cloneProperties(e.Properties)
		}
	}
	if d.CustomElements != nil {
		clone.CustomElements = make([]CustomElement, len(d.CustomElements))
		for i, ce := range d.CustomElements {
			clone.CustomElements[i] = ce
			clone.CustomElements[i].Properties = cloneProperties(ce.Properties)
		}
	}
	return clone
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	clone := make(map[string]any, len(props))
	for k, v := range props {
		clone[k] = v
	}
	return clone
}

// NodeIDs returns the set of node IDs present in the document.
func (d *Document) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	return ids
}
