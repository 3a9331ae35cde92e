package graph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// =============================================================================
// MindMap - Snapshot Serialization
// =============================================================================

// MindMap is the canonical serialization format for a snapshot.
type MindMap struct {
	Version  uint64 `json:"version"`
	Selected string `json:"selected,omitempty"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a serialized mind-map node. Pinned marks a node held by a drag
// gesture at its current position.
type Node struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	DueDate     string  `json:"due_date,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Root        bool    `json:"root,omitempty"`
	Color       string  `json:"color,omitempty"`
	Pinned      bool    `json:"pinned,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Position returns the node's coordinates.
func (n *Node) Position() mindmap.Position {
	return mindmap.Position{X: n.X, Y: n.Y, Z: n.Z}
}

// =============================================================================
// Edge
// =============================================================================

// Edge points from a parent to a child.
type Edge struct {
	ID   string `json:"id,omitempty"`
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromMindMap converts a snapshot to its serialization format. Nodes are
// sorted by ID and edges by (from, to) for deterministic output.
func FromMindMap(m mindmap.MindMap) MindMap {
	out := MindMap{
		Version:  m.Version,
		Selected: m.Selected,
		Nodes:    make([]Node, len(m.Nodes)),
		Edges:    make([]Edge, len(m.Edges)),
	}
	for i, n := range m.Nodes {
		out.Nodes[i] = Node{
			ID:          n.ID,
			Label:       n.Label,
			Description: n.Description,
			Status:      string(n.Status),
			DueDate:     n.DueDate,
			X:           n.Position.X,
			Y:           n.Position.Y,
			Z:           n.Position.Z,
			Root:        n.Root,
			Color:       n.Color,
			Pinned:      n.Pin.IsPinned(),
		}
	}
	for i, e := range m.Edges {
		out.Edges[i] = Edge{ID: e.ID, From: e.From, To: e.To}
	}

	slices.SortFunc(out.Nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// ToMindMap converts a serialized snapshot back into the internal model.
// A missing status defaults to todo. Returns an error if a status is not
// recognized or the structure violates the forest invariants.
func ToMindMap(g MindMap) (mindmap.MindMap, error) {
	m := mindmap.MindMap{
		Version:  g.Version,
		Selected: g.Selected,
		Nodes:    make([]mindmap.Node, 0, len(g.Nodes)),
		Edges:    make([]mindmap.Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		status := mindmap.StatusTodo
		if n.Status != "" {
			st, err := mindmap.ParseStatus(n.Status)
			if err != nil {
				return mindmap.MindMap{}, fmt.Errorf("node %s: %w: %q", n.ID, err, n.Status)
			}
			status = st
		}
		pin := mindmap.Free()
		if n.Pinned {
			pin = mindmap.Pinned(n.Position())
		}
		m.Nodes = append(m.Nodes, mindmap.Node{
			ID:          n.ID,
			Label:       n.Label,
			Description: n.Description,
			Status:      status,
			DueDate:     n.DueDate,
			Position:    n.Position(),
			Root:        n.Root,
			Color:       n.Color,
			Pin:         pin,
		})
	}
	for _, e := range g.Edges {
		m.Edges = append(m.Edges, mindmap.Edge{ID: e.ID, From: e.From, To: e.To})
	}

	if err := m.Validate(); err != nil {
		return mindmap.MindMap{}, fmt.Errorf("invalid mind map: %w", err)
	}
	return m, nil
}
