package layout

import (
	"slices"

	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// Engine computes node positions. It holds only configuration, so a single
// Engine may be shared between goroutines.
type Engine struct {
	cfg Config
}

// New creates an Engine with the default constants adjusted by opts.
func New(opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{cfg: cfg}
}

// Config returns the constants the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Result is the outcome of a full layout.
type Result struct {
	Positions map[string]mindmap.Position
	// Roots are the ids the layout started from, in placement order.
	Roots []string
	// Orphans are the ids that no root reaches, sorted.
	Orphans []string
}

// Compute returns a position for every node. Edges with a missing endpoint
// are ignored.
func (e *Engine) Compute(nodes []mindmap.Node, edges []mindmap.Edge) map[string]mindmap.Position {
	return e.Layout(nodes, edges).Positions
}

// Layout is Compute with the roots and orphans it found.
func (e *Engine) Layout(nodes []mindmap.Node, edges []mindmap.Edge) Result {
	t := newTree(nodes, edges)
	res := Result{
		Positions: make(map[string]mindmap.Position, len(nodes)),
		Roots:     t.roots(),
	}

	for i, root := range res.Roots {
		merge(res.Positions, e.subtree(t, root, RootPosition(e.cfg, i), true, nil))
	}

	for _, n := range nodes {
		if _, ok := res.Positions[n.ID]; ok {
			continue
		}
		res.Positions[n.ID] = Orphan(e.cfg, n.ID)
		res.Orphans = append(res.Orphans, n.ID)
	}
	slices.Sort(res.Orphans)
	return res
}

// subtree places id at pos and recursively lays out its descendants. It
// returns a fresh map; ancestors guards against cycles in malformed input.
func (e *Engine) subtree(t *tree, id string, pos mindmap.Position, root bool, ancestors []string) map[string]mindmap.Position {
	out := map[string]mindmap.Position{id: pos}

	path := append(slices.Clip(ancestors), id)
	var kids []string
	for _, k := range t.children[id] {
		if !slices.Contains(path, k) {
			kids = append(kids, k)
		}
	}
	if len(kids) == 0 {
		return out
	}

	var spots []mindmap.Position
	if root {
		spots = Horizontal(e.cfg, pos, len(kids))
	} else {
		spots = Radial(e.cfg, pos, len(kids), 1)
	}
	for i, k := range kids {
		merge(out, e.subtree(t, k, spots[i], false, path))
	}
	return out
}

// merge copies src into dst without overwriting: the first placement of a
// node wins.
func merge(dst, src map[string]mindmap.Position) {
	for id, p := range src {
		if _, ok := dst[id]; !ok {
			dst[id] = p
		}
	}
}

// Apply returns a copy of m with positions assigned. Nodes missing from
// positions keep their current position.
func Apply(m mindmap.MindMap, positions map[string]mindmap.Position) mindmap.MindMap {
	out := m.Clone()
	for i := range out.Nodes {
		if p, ok := positions[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
		}
	}
	return out
}

// tree is the adjacency view of a node/edge list used during one layout.
type tree struct {
	order     []string
	flagged   []string
	children  map[string][]string
	hasParent map[string]bool
}

func newTree(nodes []mindmap.Node, edges []mindmap.Edge) *tree {
	t := &tree{
		order:     make([]string, 0, len(nodes)),
		children:  make(map[string][]string),
		hasParent: make(map[string]bool),
	}
	exists := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		exists[n.ID] = true
		t.order = append(t.order, n.ID)
		if n.Root {
			t.flagged = append(t.flagged, n.ID)
		}
	}
	for _, ed := range edges {
		if !exists[ed.From] || !exists[ed.To] {
			continue
		}
		t.children[ed.From] = append(t.children[ed.From], ed.To)
		t.hasParent[ed.To] = true
	}
	for id := range t.children {
		slices.Sort(t.children[id])
		t.children[id] = slices.Compact(t.children[id])
	}
	return t
}

// roots returns the flagged roots, or every parentless node when none is
// flagged, sorted by id.
func (t *tree) roots() []string {
	var out []string
	if len(t.flagged) > 0 {
		out = slices.Clone(t.flagged)
	} else {
		for _, id := range t.order {
			if !t.hasParent[id] {
				out = append(out, id)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
