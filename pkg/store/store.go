package store

import (
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mindtower/pkg/errors"
	"github.com/matzehuels/mindtower/pkg/layout"
	"github.com/matzehuels/mindtower/pkg/mindmap"
	"github.com/matzehuels/mindtower/pkg/observability"
)

// Operation names reported to observability hooks and logs.
const (
	OpAddRoot        = "add_root"
	OpAddChild       = "add_child"
	OpUpdateLabel    = "update_label"
	OpUpdateDetails  = "update_details"
	OpUpdatePosition = "update_position"
	OpEndDrag        = "end_drag"
	OpDelete         = "delete"
	OpReset          = "reset"
	OpSelect         = "select"
	OpLoad           = "load"
)

// Listener receives every published snapshot. It must not modify it.
type Listener func(mindmap.MindMap)

// Store is the graph store. The zero value is not usable; call [New].
type Store struct {
	mu sync.Mutex

	snap     mindmap.MindMap
	index    map[string]int      // node id -> position in snap.Nodes
	children map[string][]string // parent id -> sorted child ids

	palette   mindmap.Palette
	nextColor int

	engine *layout.Engine
	newID  func() string
	logger *log.Logger

	listeners    []subscription
	nextListener int
}

type subscription struct {
	id int
	fn Listener
}

// Option configures a [Store].
type Option func(*options)

type options struct {
	palette    mindmap.Palette
	layoutOpts []layout.Option
	newID      func() string
	logger     *log.Logger
}

// WithPalette sets the colors cycled through for new nodes. The palette size
// also scales the stagger between roots.
func WithPalette(p mindmap.Palette) Option {
	return func(o *options) { o.palette = slices.Clone(p) }
}

// WithLayout passes options to the layout engine.
func WithLayout(opts ...layout.Option) Option {
	return func(o *options) { o.layoutOpts = append(o.layoutOpts, opts...) }
}

// WithIDGenerator replaces the UUID v4 generator used for node and edge ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLogger sets the logger for warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := options{
		palette: slices.Clone(mindmap.DefaultPalette),
		newID:   uuid.NewString,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}
	layoutOpts := append(slices.Clone(o.layoutOpts), layout.WithPaletteSize(o.palette.Len()))

	return &Store{
		index:    make(map[string]int),
		children: make(map[string][]string),
		palette:  o.palette,
		engine:   layout.New(layoutOpts...),
		newID:    o.newID,
		logger:   o.logger,
	}
}

// Engine returns the layout engine the store recomputes positions with.
func (s *Store) Engine() *layout.Engine { return s.engine }

// Palette returns the node colors in cycle order.
func (s *Store) Palette() mindmap.Palette { return slices.Clone(s.palette) }

// Snapshot returns the current snapshot. The caller owns the returned slices.
func (s *Store) Snapshot() mindmap.MindMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Selected returns the id of the selected node, or "".
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Selected
}

// Subscribe registers fn for every future snapshot and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// AddRoot creates the root node and returns its id. It fails with
// ROOT_EXISTS when a root is already present.
func (s *Store) AddRoot(label string) (string, error) {
	var id string
	err := s.mutate(OpAddRoot, func(m *mindmap.MindMap) (effect, error) {
		if err := errors.ValidateLabel(label); err != nil {
			return none, err
		}
		if root, ok := m.Root(); ok {
			return none, errors.New(errors.ErrCodeRootExists, "a root node already exists (%q)", root.Label)
		}
		id = s.newID()
		s.appendNode(m, s.newNode(id, label, true))
		return structural, nil
	})
	return id, err
}

// AddChild creates a node under parentID and returns its id. It fails with
// NODE_NOT_FOUND when the parent does not exist.
func (s *Store) AddChild(parentID, label string) (string, error) {
	var id string
	err := s.mutate(OpAddChild, func(m *mindmap.MindMap) (effect, error) {
		if err := errors.ValidateLabel(label); err != nil {
			return none, err
		}
		if _, ok := s.index[parentID]; !ok {
			return none, notFound(parentID)
		}
		id = s.newID()
		s.appendNode(m, s.newNode(id, label, false))
		m.Edges = append(m.Edges, mindmap.Edge{ID: s.newID(), From: parentID, To: id})
		s.children[parentID] = insertSorted(s.children[parentID], id)
		return structural, nil
	})
	return id, err
}

// UpdateLabel replaces a node's label. Positions are not affected.
func (s *Store) UpdateLabel(id, label string) error {
	return s.mutate(OpUpdateLabel, func(m *mindmap.MindMap) (effect, error) {
		if err := errors.ValidateLabel(label); err != nil {
			return none, err
		}
		i, ok := s.index[id]
		if !ok {
			return none, notFound(id)
		}
		m.Nodes[i].Label = label
		return cosmetic, nil
	})
}

// UpdateDetails merges patch into a node's task metadata. An unrecognized
// status is dropped with an INVALID_STATUS error while the remaining fields
// of the patch are still applied.
func (s *Store) UpdateDetails(id string, patch mindmap.DetailsPatch) error {
	return s.mutate(OpUpdateDetails, func(m *mindmap.MindMap) (effect, error) {
		i, ok := s.index[id]
		if !ok {
			return none, notFound(id)
		}
		n := &m.Nodes[i]
		applied := 0
		var warn error
		if patch.Description != nil {
			n.Description = *patch.Description
			applied++
		}
		if patch.DueDate != nil {
			n.DueDate = *patch.DueDate
			applied++
		}
		if patch.Status != nil {
			st, err := mindmap.ParseStatus(*patch.Status)
			if err != nil {
				warn = errors.Wrap(errors.ErrCodeInvalidStatus, err,
					"status %q is not one of todo, inprogress, done", *patch.Status)
			} else {
				n.Status = st
				applied++
			}
		}
		if applied == 0 {
			return none, warn
		}
		return cosmetic, warn
	})
}

// UpdatePosition moves a node to pos and pins it there until [Store.EndDrag].
// The node's direct children follow on a tighter ring; nothing else moves.
func (s *Store) UpdatePosition(id string, pos mindmap.Position) error {
	return s.mutate(OpUpdatePosition, func(m *mindmap.MindMap) (effect, error) {
		i, ok := s.index[id]
		if !ok {
			return none, notFound(id)
		}
		m.Nodes[i].Position = pos
		m.Nodes[i].Pin = mindmap.Pinned(pos)
		s.follow(m, pos, id)
		return cosmetic, nil
	})
}

// EndDrag releases the pin set by [Store.UpdatePosition]. The node keeps its
// current position until the next full layout.
func (s *Store) EndDrag(id string) error {
	return s.mutate(OpEndDrag, func(m *mindmap.MindMap) (effect, error) {
		i, ok := s.index[id]
		if !ok {
			return none, notFound(id)
		}
		if !m.Nodes[i].Pin.IsPinned() {
			return none, nil
		}
		m.Nodes[i].Pin = mindmap.Free()
		return cosmetic, nil
	})
}

// DeleteNode removes a node and every edge touching it. Its children are
// neither deleted nor re-parented.
func (s *Store) DeleteNode(id string) error {
	return s.mutate(OpDelete, func(m *mindmap.MindMap) (effect, error) {
		i, ok := s.index[id]
		if !ok {
			return none, notFound(id)
		}
		m.Nodes = slices.Delete(m.Nodes, i, i+1)
		m.Edges = slices.DeleteFunc(m.Edges, func(e mindmap.Edge) bool { return e.Touches(id) })
		if m.Selected == id {
			m.Selected = ""
		}
		s.reindex(m)
		return structural, nil
	})
}

// Reset removes every node and edge, clears the selection and restarts the
// color cycle.
func (s *Store) Reset() {
	_ = s.mutate(OpReset, func(m *mindmap.MindMap) (effect, error) {
		m.Nodes = nil
		m.Edges = nil
		m.Selected = ""
		s.nextColor = 0
		s.reindex(m)
		return cosmetic, nil
	})
}

// Select makes id the selected node. An empty id clears the selection.
func (s *Store) Select(id string) error {
	return s.mutate(OpSelect, func(m *mindmap.MindMap) (effect, error) {
		if id != "" {
			if _, ok := s.index[id]; !ok {
				return none, notFound(id)
			}
		}
		if m.Selected == id {
			return none, nil
		}
		m.Selected = id
		return cosmetic, nil
	})
}

// ToggleSelect selects id, or clears the selection if id is already
// selected. It returns the selection after the toggle.
func (s *Store) ToggleSelect(id string) (string, error) {
	var selected string
	err := s.mutate(OpSelect, func(m *mindmap.MindMap) (effect, error) {
		if _, ok := s.index[id]; !ok {
			selected = m.Selected
			return none, notFound(id)
		}
		if m.Selected == id {
			m.Selected = ""
		} else {
			m.Selected = id
		}
		selected = m.Selected
		return cosmetic, nil
	})
	return selected, err
}

// Load replaces the whole state with m after validating its structure. The
// color cycle is left where it is. Positions are recomputed.
func (s *Store) Load(m mindmap.MindMap) error {
	return s.mutate(OpLoad, func(cur *mindmap.MindMap) (effect, error) {
		if err := m.Validate(); err != nil {
			return none, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot load mind map")
		}
		next := m.Clone()
		if next.Selected != "" && !next.HasNode(next.Selected) {
			next.Selected = ""
		}
		cur.Nodes, cur.Edges, cur.Selected = next.Nodes, next.Edges, next.Selected
		s.reindex(cur)
		return structural, nil
	})
}

// =============================================================================
// Internals
// =============================================================================

// effect says what a successful mutation requires before publishing.
type effect int

const (
	none       effect = iota // nothing changed; publish nothing
	cosmetic                 // publish without a layout pass
	structural               // run a full layout, then publish
)

// mutate runs fn on a copy of the current snapshot under the lock. fn may
// update the index and children maps only when it returns an effect other
// than none. Listeners and hooks run after the lock is released.
func (s *Store) mutate(op string, fn func(m *mindmap.MindMap) (effect, error)) error {
	s.mu.Lock()
	next := s.snap.Clone()
	eff, err := fn(&next)

	var published *mindmap.MindMap
	var listeners []subscription
	if eff != none {
		if eff == structural {
			s.relayout(&next)
		}
		next.Version = s.snap.Version + 1
		s.snap = next
		published = &next
		listeners = slices.Clone(s.listeners)
	}
	s.mu.Unlock()

	observability.Store().OnMutation(op, err)
	if err != nil {
		if errors.IsWarning(err) && published != nil {
			s.logger.Warn("partially applied", "op", op, "err", errors.UserMessage(err))
		} else {
			s.logger.Warn("rejected", "op", op, "code", errors.GetCode(err), "err", errors.UserMessage(err))
		}
	}
	if published == nil {
		return err
	}

	s.logger.Debug("snapshot", "op", op, "version", published.Version,
		"nodes", len(published.Nodes), "edges", len(published.Edges))
	observability.Store().OnSnapshot(published.Version, len(published.Nodes), len(published.Edges))
	for _, sub := range listeners {
		sub.fn(published.Clone())
	}
	return err
}

// relayout recomputes every position. Nodes held by a drag keep their pinned
// position and their direct children follow it.
func (s *Store) relayout(m *mindmap.MindMap) {
	start := time.Now()
	res := s.engine.Layout(m.Nodes, m.Edges)
	dur := time.Since(start)
	observability.Layout().OnLayout(len(m.Nodes), len(res.Orphans), dur)
	if len(res.Orphans) > 0 {
		s.logger.Debug("unattached nodes", "count", len(res.Orphans), "ids", strings.Join(res.Orphans, ","))
	}

	for i := range m.Nodes {
		if p, ok := res.Positions[m.Nodes[i].ID]; ok {
			m.Nodes[i].Position = p
		}
	}
	for i := range m.Nodes {
		if at, ok := m.Nodes[i].Pin.Position(); ok {
			m.Nodes[i].Position = at
			s.follow(m, at, m.Nodes[i].ID)
		}
	}
}

// follow runs the drag follow-up for id's direct children. Pinned children
// are left alone.
func (s *Store) follow(m *mindmap.MindMap, at mindmap.Position, id string) {
	kids := s.children[id]
	if len(kids) == 0 {
		return
	}
	start := time.Now()
	moved := s.engine.Follow(at, kids)
	for kid, p := range moved {
		j := s.index[kid]
		if m.Nodes[j].Pin.IsPinned() {
			continue
		}
		m.Nodes[j].Position = p
	}
	observability.Layout().OnFollow(len(kids), time.Since(start))
}

func (s *Store) newNode(id, label string, root bool) mindmap.Node {
	n := mindmap.Node{
		ID:     id,
		Label:  label,
		Status: mindmap.StatusTodo,
		Root:   root,
		Color:  s.palette.Color(s.nextColor),
	}
	s.nextColor++
	return n
}

func (s *Store) appendNode(m *mindmap.MindMap, n mindmap.Node) {
	s.index[n.ID] = len(m.Nodes)
	m.Nodes = append(m.Nodes, n)
}

// reindex rebuilds the id and children lookups from m.
func (s *Store) reindex(m *mindmap.MindMap) {
	clear(s.index)
	clear(s.children)
	for i, n := range m.Nodes {
		s.index[n.ID] = i
	}
	for _, e := range m.Edges {
		s.children[e.From] = append(s.children[e.From], e.To)
	}
	for id := range s.children {
		slices.Sort(s.children[id])
	}
}

func insertSorted(ids []string, id string) []string {
	i, _ := slices.BinarySearch(ids, id)
	return slices.Insert(ids, i, id)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNodeNotFound, "node %q does not exist", id)
}
