package mindmap

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [MindMap.Validate] when a node has an
	// empty identifier.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [MindMap.Validate] when two nodes
	// share an identifier.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned when an edge's parent does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned when an edge's child does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrMultipleRoots is returned when more than one node carries the root marker.
	ErrMultipleRoots = errors.New("more than one root node")

	// ErrMultipleParents is returned when a node has more than one incoming edge.
	ErrMultipleParents = errors.New("node has more than one parent")

	// ErrRootHasParent is returned when the root node has an incoming edge.
	ErrRootHasParent = errors.New("root node has a parent")

	// ErrGraphHasCycle is returned when the parent/child edges form a cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")

	// ErrInvalidStatus is returned by [ParseStatus] for unrecognized values.
	ErrInvalidStatus = errors.New("invalid status")
)

// Status is the task state attached to a node.
type Status string

// Recognized task states.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

// Statuses lists every valid [Status] in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus validates free-text status input. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Statuses, st) {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Position is a point in the 3D scene. Y grows upward and Z grows toward the
// camera.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Pin records whether a node's position is held by a drag gesture.
// The zero value is [Free].
type Pin struct {
	pinned bool
	at     Position
}

// Free returns the unpinned state: the layout engine owns the position.
func Free() Pin { return Pin{} }

// Pinned returns a pin holding the node at p.
func Pinned(p Position) Pin { return Pin{pinned: true, at: p} }

// IsPinned reports whether the pin holds a position.
func (p Pin) IsPinned() bool { return p.pinned }

// Position returns the held position and true, or the zero position and
// false for a free node.
func (p Pin) Position() (Position, bool) { return p.at, p.pinned }

// Node is a mind-map entry with its task metadata and layout position.
type Node struct {
	ID          string
	Label       string
	Description string
	Status      Status
	DueDate     string
	Position    Position
	Root        bool
	Color       string
	Pin         Pin
}

// DetailsPatch is a partial update of a node's task metadata. Nil fields are
// left unchanged. Status holds raw user input and is validated on apply.
type DetailsPatch struct {
	Description *string
	Status      *string
	DueDate     *string
}

// Empty reports whether the patch changes nothing.
func (p DetailsPatch) Empty() bool {
	return p.Description == nil && p.Status == nil && p.DueDate == nil
}

// Edge connects a parent (From) to a child (To).
type Edge struct {
	ID   string
	From string
	To   string
}

// Touches reports whether id is either endpoint of the edge.
func (e Edge) Touches(id string) bool { return e.From == id || e.To == id }

// MindMap is an immutable snapshot of the node and edge collections.
type MindMap struct {
	// Version increases by one on every mutation that produced this snapshot.
	Version uint64
	// Selected is the id of the selected node, or empty.
	Selected string
	Nodes    []Node
	Edges    []Edge
}

// Clone returns a deep copy whose slices share nothing with m.
func (m MindMap) Clone() MindMap {
	return MindMap{
		Version:  m.Version,
		Selected: m.Selected,
		Nodes:    slices.Clone(m.Nodes),
		Edges:    slices.Clone(m.Edges),
	}
}

// Node returns the node with the given id and true, or false if absent.
func (m MindMap) Node(id string) (Node, bool) {
	if i := m.NodeIndex(id); i >= 0 {
		return m.Nodes[i], true
	}
	return Node{}, false
}

// NodeIndex returns the index of the node with the given id, or -1.
func (m MindMap) NodeIndex(id string) int {
	return slices.IndexFunc(m.Nodes, func(n Node) bool { return n.ID == id })
}

// HasNode reports whether a node with the given id exists.
func (m MindMap) HasNode(id string) bool { return m.NodeIndex(id) >= 0 }

// Root returns the node carrying the root marker.
func (m MindMap) Root() (Node, bool) {
	i := slices.IndexFunc(m.Nodes, func(n Node) bool { return n.Root })
	if i < 0 {
		return Node{}, false
	}
	return m.Nodes[i], true
}

// HasRoot reports whether any node carries the root marker.
func (m MindMap) HasRoot() bool {
	_, ok := m.Root()
	return ok
}

// Children returns the ids of id's direct children sorted lexicographically.
func (m MindMap) Children(id string) []string {
	var kids []string
	for _, e := range m.Edges {
		if e.From == id {
			kids = append(kids, e.To)
		}
	}
	slices.Sort(kids)
	return kids
}

// Parent returns the id of id's parent, or false for roots and unattached nodes.
func (m MindMap) Parent(id string) (string, bool) {
	for _, e := range m.Edges {
		if e.To == id {
			return e.From, true
		}
	}
	return "", false
}

// Len returns the number of nodes.
func (m MindMap) Len() int { return len(m.Nodes) }

// Validate checks the forest invariants and returns the first violation:
// non-empty unique ids, edges between existing nodes, at most one root marker,
// at most one parent per node, no parent for the root, and no cycles.
func (m MindMap) Validate() error {
	ids := make(map[string]bool, len(m.Nodes))
	roots := 0
	for _, n := range m.Nodes {
		if n.ID == "" {
			return ErrInvalidNodeID
		}
		if ids[n.ID] {
			return ErrDuplicateNodeID
		}
		ids[n.ID] = true
		if n.Root {
			roots++
		}
	}
	if roots > 1 {
		return ErrMultipleRoots
	}

	parents := make(map[string]string, len(m.Edges))
	for _, e := range m.Edges {
		if !ids[e.From] {
			return ErrUnknownSourceNode
		}
		if !ids[e.To] {
			return ErrUnknownTargetNode
		}
		if _, dup := parents[e.To]; dup {
			return ErrMultipleParents
		}
		parents[e.To] = e.From
	}
	if root, ok := m.Root(); ok {
		if _, has := parents[root.ID]; has {
			return ErrRootHasParent
		}
	}

	// With one parent per node, a cycle shows up as a parent chain that
	// revisits a node.
	for id := range ids {
		seen := map[string]bool{id: true}
		for cur := id; ; {
			p, ok := parents[cur]
			if !ok {
				break
			}
			if seen[p] {
				return ErrGraphHasCycle
			}
			seen[p] = true
			cur = p
		}
	}
	return nil
}
