package store

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/matzehuels/mindtower/pkg/errors"
	"github.com/matzehuels/mindtower/pkg/layout"
	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// seqIDs returns a generator yielding id01, id02, ... so layouts are
// predictable in tests.
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id%02d", n)
	}
}

func newTestStore(opts ...Option) *Store {
	return New(append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
}

func mustNode(t *testing.T, s *Store, id string) mindmap.Node {
	t.Helper()
	n, ok := s.Snapshot().Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func nearPos(a, b mindmap.Position) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// buildXYZ creates root X with children Y and Z.
func buildXYZ(t *testing.T, s *Store) (x, y, z string) {
	t.Helper()
	var err error
	if x, err = s.AddRoot("X"); err != nil {
		t.Fatalf("AddRoot: %v", err)
	}
	if y, err = s.AddChild(x, "Y"); err != nil {
		t.Fatalf("AddChild Y: %v", err)
	}
	if z, err = s.AddChild(x, "Z"); err != nil {
		t.Fatalf("AddChild Z: %v", err)
	}
	return x, y, z
}

func TestAddRootThenChildren(t *testing.T) {
	s := newTestStore()
	x, y, z := buildXYZ(t, s)

	m := s.Snapshot()
	if len(m.Nodes) != 3 || len(m.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges; want 3, 2", len(m.Nodes), len(m.Edges))
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if m.Version != 3 {
		t.Errorf("Version = %d, want 3", m.Version)
	}

	root := mustNode(t, s, x)
	if !root.Root || root.Position != (mindmap.Position{}) {
		t.Errorf("root = %+v, want root marker at origin", root)
	}
	if root.Status != mindmap.StatusTodo || root.Description != "" || root.DueDate != "" {
		t.Errorf("root metadata = %q/%q/%q, want defaults", root.Status, root.Description, root.DueDate)
	}

	ny, nz := mustNode(t, s, y), mustNode(t, s, z)
	if ny.Position.Y != nz.Position.Y || ny.Position.Z != nz.Position.Z {
		t.Errorf("Y %+v and Z %+v differ in y/z", ny.Position, nz.Position)
	}
	if !near(ny.Position.X, -nz.Position.X) || ny.Position.X == nz.Position.X {
		t.Errorf("Y.x=%g Z.x=%g not symmetric about root", ny.Position.X, nz.Position.X)
	}
	if got := m.Children(x); len(got) != 2 {
		t.Errorf("Children(X) = %v", got)
	}
}

func TestGrandchildBelowParent(t *testing.T) {
	s := newTestStore()
	_, y, _ := buildXYZ(t, s)

	w, err := s.AddChild(y, "W")
	if err != nil {
		t.Fatalf("AddChild W: %v", err)
	}
	py, pw := mustNode(t, s, y).Position, mustNode(t, s, w).Position

	want := mindmap.Position{
		X: py.X,
		Y: py.Y - layout.DefaultLevelDrop - layout.DefaultBaseRadius,
		Z: py.Z + layout.DefaultLevelDepth,
	}
	if !nearPos(pw, want) {
		t.Errorf("W = %+v, want %+v", pw, want)
	}
}

func TestDeleteNodeLeavesChildrenUnattached(t *testing.T) {
	s := newTestStore()
	x, y, z := buildXYZ(t, s)
	w, _ := s.AddChild(y, "W")
	if err := s.Select(y); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if err := s.DeleteNode(y); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	m := s.Snapshot()

	if m.HasNode(y) {
		t.Error("Y still present")
	}
	if !m.HasNode(x) || !m.HasNode(z) || !m.HasNode(w) {
		t.Error("delete removed more than the target node")
	}
	if len(m.Edges) != 1 || m.Edges[0].From != x || m.Edges[0].To != z {
		t.Errorf("edges = %+v, want only X->Z", m.Edges)
	}
	if m.Selected != "" {
		t.Errorf("Selected = %q, want cleared", m.Selected)
	}

	// Z is now the only child of X.
	if got := mustNode(t, s, z).Position; !nearPos(got, mindmap.Position{Y: -layout.DefaultLevelDrop, Z: layout.DefaultLevelDepth}) {
		t.Errorf("Z = %+v, want directly below X", got)
	}
	// W has no path from the root.
	if got := mustNode(t, s, w).Position; got.Z != layout.DefaultOrphanDepth {
		t.Errorf("W z = %g, want orphan depth %g", got.Z, layout.DefaultOrphanDepth)
	}
}

func TestDeleteKeepsUnrelatedSelection(t *testing.T) {
	s := newTestStore()
	x, y, _ := buildXYZ(t, s)
	_ = s.Select(x)
	_ = s.DeleteNode(y)
	if got := s.Selected(); got != x {
		t.Errorf("Selected = %q, want %q", got, x)
	}
}

func TestInvariantViolationsAreNoOps(t *testing.T) {
	s := newTestStore()
	x, _, _ := buildXYZ(t, s)
	before := s.Snapshot()

	tests := []struct {
		name string
		run  func() error
		code errors.Code
	}{
		{"second root", func() error { _, err := s.AddRoot("again"); return err }, errors.ErrCodeRootExists},
		{"child of unknown", func() error { _, err := s.AddChild("nope", "c"); return err }, errors.ErrCodeNodeNotFound},
		{"delete unknown", func() error { return s.DeleteNode("nope") }, errors.ErrCodeNodeNotFound},
		{"label unknown", func() error { return s.UpdateLabel("nope", "x") }, errors.ErrCodeNodeNotFound},
		{"details unknown", func() error { return s.UpdateDetails("nope", mindmap.DetailsPatch{}) }, errors.ErrCodeNodeNotFound},
		{"move unknown", func() error { return s.UpdatePosition("nope", mindmap.Position{}) }, errors.ErrCodeNodeNotFound},
		{"release unknown", func() error { return s.EndDrag("nope") }, errors.ErrCodeNodeNotFound},
		{"select unknown", func() error { return s.Select("nope") }, errors.ErrCodeNodeNotFound},
		{"invalid label", func() error { return s.UpdateLabel(x, "bad\x00label") }, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			after := s.Snapshot()
			if after.Version != before.Version || len(after.Nodes) != len(before.Nodes) || len(after.Edges) != len(before.Edges) {
				t.Errorf("state changed: version %d->%d, nodes %d->%d", before.Version, after.Version, len(before.Nodes), len(after.Nodes))
			}
		})
	}
}

func TestFailedAddRootDoesNotAdvanceColor(t *testing.T) {
	s := newTestStore()
	x, _ := s.AddRoot("X")
	_, _ = s.AddRoot("again")
	c, _ := s.AddChild(x, "c")
	if got := mustNode(t, s, c).Color; got != mindmap.DefaultPalette[1] {
		t.Errorf("child color = %s, want %s", got, mindmap.DefaultPalette[1])
	}
}

func TestColorCycling(t *testing.T) {
	s := newTestStore()
	root, _ := s.AddRoot("r")
	ids := []string{root}
	for i := range 5 {
		id, err := s.AddChild(root, fmt.Sprint(i))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	p := mindmap.DefaultPalette
	for i, id := range ids {
		if got := mustNode(t, s, id).Color; got != p[i%len(p)] {
			t.Errorf("node %d color = %s, want %s", i, got, p[i%len(p)])
		}
	}

	s.Reset()
	m := s.Snapshot()
	if len(m.Nodes) != 0 || len(m.Edges) != 0 || m.Selected != "" {
		t.Fatalf("Reset left %d nodes, %d edges", len(m.Nodes), len(m.Edges))
	}
	again, _ := s.AddRoot("r2")
	if got := mustNode(t, s, again).Color; got != p[0] {
		t.Errorf("color after reset = %s, want %s", got, p[0])
	}
}

func TestCustomPalette(t *testing.T) {
	s := newTestStore(WithPalette(mindmap.Palette{"red", "green"}))
	r, _ := s.AddRoot("r")
	a, _ := s.AddChild(r, "a")
	b, _ := s.AddChild(r, "b")
	got := []string{mustNode(t, s, r).Color, mustNode(t, s, a).Color, mustNode(t, s, b).Color}
	if got[0] != "red" || got[1] != "green" || got[2] != "red" {
		t.Errorf("colors = %v", got)
	}
	if s.Engine().Config().PaletteSize != 2 {
		t.Errorf("layout palette size = %d, want 2", s.Engine().Config().PaletteSize)
	}
}

func TestUpdateLabelAndDetails(t *testing.T) {
	s := newTestStore()
	x, y, _ := buildXYZ(t, s)
	before := mustNode(t, s, y).Position

	if err := s.UpdateLabel(y, "Renamed"); err != nil {
		t.Fatal(err)
	}
	desc, status, due := "write tests", "InProgress", "2026-11-01"
	if err := s.UpdateDetails(y, mindmap.DetailsPatch{Description: &desc, Status: &status, DueDate: &due}); err != nil {
		t.Fatal(err)
	}

	n := mustNode(t, s, y)
	if n.Label != "Renamed" || n.Description != desc || n.Status != mindmap.StatusInProgress || n.DueDate != due {
		t.Errorf("node = %+v", n)
	}
	if n.Position != before {
		t.Error("metadata edit moved the node")
	}
	if mustNode(t, s, x).Label != "X" {
		t.Error("edit touched another node")
	}
}

func TestUpdateDetailsInvalidStatus(t *testing.T) {
	s := newTestStore()
	x, _ := s.AddRoot("X")
	v := s.Snapshot().Version

	desc, bad := "notes", "blocked"
	err := s.UpdateDetails(x, mindmap.DetailsPatch{Description: &desc, Status: &bad})
	if !errors.Is(err, errors.ErrCodeInvalidStatus) || !errors.IsWarning(err) {
		t.Fatalf("err = %v, want INVALID_STATUS warning", err)
	}
	n := mustNode(t, s, x)
	if n.Description != desc {
		t.Errorf("description = %q, want %q applied", n.Description, desc)
	}
	if n.Status != mindmap.StatusTodo {
		t.Errorf("status = %q, want unchanged todo", n.Status)
	}
	if s.Snapshot().Version != v+1 {
		t.Error("partially applied edit should publish a snapshot")
	}

	// Only an invalid status: nothing to apply, nothing published.
	err = s.UpdateDetails(x, mindmap.DetailsPatch{Status: &bad})
	if !errors.Is(err, errors.ErrCodeInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
	if s.Snapshot().Version != v+1 {
		t.Error("rejected status-only edit published a snapshot")
	}
}

func TestDragFollowUp(t *testing.T) {
	s := newTestStore()
	x, y, z := buildXYZ(t, s)
	w, _ := s.AddChild(y, "W")
	v, _ := s.AddChild(w, "V")
	before := s.Snapshot()

	at := mindmap.Position{X: 100, Y: 10, Z: 5}
	if err := s.UpdatePosition(y, at); err != nil {
		t.Fatal(err)
	}
	after := s.Snapshot()

	ny, _ := after.Node(y)
	if ny.Position != at {
		t.Errorf("Y = %+v, want %+v", ny.Position, at)
	}
	if pin, ok := ny.Pin.Position(); !ok || pin != at {
		t.Errorf("Y pin = %+v/%v, want pinned at %+v", pin, ok, at)
	}

	nw, _ := after.Node(w)
	want := mindmap.Position{
		X: at.X,
		Y: at.Y - layout.DefaultLevelDrop - layout.DefaultBaseRadius*layout.DefaultDragRadiusScale,
		Z: at.Z + layout.DefaultLevelDepth,
	}
	if !nearPos(nw.Position, want) {
		t.Errorf("W = %+v, want %+v", nw.Position, want)
	}

	// Nothing beyond the direct children moves.
	for _, id := range []string{x, z, v} {
		b, _ := before.Node(id)
		a, _ := after.Node(id)
		if a.Position != b.Position {
			t.Errorf("%s moved from %+v to %+v", id, b.Position, a.Position)
		}
	}
}

func TestPinSurvivesFullLayout(t *testing.T) {
	s := newTestStore()
	x, y, _ := buildXYZ(t, s)
	at := mindmap.Position{X: -500, Y: 300, Z: 0}
	_ = s.UpdatePosition(y, at)

	// A structural change mid-drag must not yank the node away.
	if _, err := s.AddChild(x, "late"); err != nil {
		t.Fatal(err)
	}
	if got := mustNode(t, s, y).Position; got != at {
		t.Errorf("pinned Y = %+v after relayout, want %+v", got, at)
	}

	if err := s.EndDrag(y); err != nil {
		t.Fatal(err)
	}
	if mustNode(t, s, y).Pin.IsPinned() {
		t.Error("EndDrag did not release the pin")
	}
	if got := mustNode(t, s, y).Position; got != at {
		t.Error("EndDrag moved the node")
	}

	// Next structural change reclaims the position.
	_, _ = s.AddChild(x, "later")
	if got := mustNode(t, s, y).Position; got == at {
		t.Error("released node kept its drag position after relayout")
	}

	// Releasing a free node publishes nothing.
	ver := s.Snapshot().Version
	_ = s.EndDrag(y)
	if s.Snapshot().Version != ver {
		t.Error("EndDrag on a free node published a snapshot")
	}
}

func TestSelection(t *testing.T) {
	s := newTestStore()
	x, y, _ := buildXYZ(t, s)

	if err := s.Select(x); err != nil {
		t.Fatal(err)
	}
	if got := s.Selected(); got != x {
		t.Errorf("Selected = %q, want %q", got, x)
	}

	got, err := s.ToggleSelect(y)
	if err != nil || got != y {
		t.Errorf("ToggleSelect(y) = %q, %v", got, err)
	}
	got, _ = s.ToggleSelect(y)
	if got != "" || s.Selected() != "" {
		t.Errorf("second ToggleSelect(y) = %q, want cleared", got)
	}

	_ = s.Select(x)
	if err := s.Select(""); err != nil || s.Selected() != "" {
		t.Errorf("Select(\"\") = %v, selected %q", err, s.Selected())
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore()

	var got []uint64
	unsubscribe := s.Subscribe(func(m mindmap.MindMap) {
		got = append(got, m.Version)
		// Listeners may read the store without deadlocking.
		_ = s.Snapshot()
	})

	x, _ := s.AddRoot("X")
	_, _ = s.AddRoot("dup") // rejected, no snapshot
	_ = s.UpdateLabel(x, "X2")
	unsubscribe()
	unsubscribe()
	_ = s.UpdateLabel(x, "X3")

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("listener saw versions %v, want [1 2]", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore()
	x, _ := s.AddRoot("X")

	m := s.Snapshot()
	m.Nodes[0].Label = "tampered"
	m.Nodes = append(m.Nodes, mindmap.Node{ID: "ghost"})

	if got := mustNode(t, s, x).Label; got != "X" {
		t.Errorf("label = %q after tampering with a snapshot", got)
	}
	if s.Snapshot().Len() != 1 {
		t.Error("store picked up a node appended to a snapshot")
	}
}

func TestLoad(t *testing.T) {
	s := newTestStore()
	in := mindmap.MindMap{
		Selected: "gone",
		Nodes: []mindmap.Node{
			{ID: "r", Label: "root", Root: true, Status: mindmap.StatusTodo},
			{ID: "a", Label: "a", Status: mindmap.StatusDone, Position: mindmap.Position{X: 999}},
		},
		Edges: []mindmap.Edge{{ID: "e", From: "r", To: "a"}},
	}
	if err := s.Load(in); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := s.Snapshot()
	if m.Selected != "" {
		t.Errorf("Selected = %q, want dangling selection dropped", m.Selected)
	}
	if a, _ := m.Node("a"); a.Position.X == 999 {
		t.Error("Load kept stale positions")
	}

	// The loaded children index is live.
	if _, err := s.AddChild("a", "b"); err != nil {
		t.Fatalf("AddChild after Load: %v", err)
	}

	bad := mindmap.MindMap{Nodes: []mindmap.Node{{ID: "r", Root: true}, {ID: "q", Root: true}}}
	if err := s.Load(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load(two roots) = %v, want INVALID_INPUT", err)
	}
	if s.Snapshot().Len() != 3 {
		t.Error("failed Load changed state")
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := New()
	root, _ := s.AddRoot("root")

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.AddChild(root, fmt.Sprint(i))
			if err != nil {
				t.Error(err)
				return
			}
			_ = s.UpdatePosition(id, mindmap.Position{X: float64(i)})
			_, _ = s.ToggleSelect(id)
		}()
	}
	wg.Wait()

	m := s.Snapshot()
	if m.Len() != 33 || len(m.Edges) != 32 {
		t.Fatalf("got %d nodes, %d edges", m.Len(), len(m.Edges))
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if m.Version != 1+32*3 {
		t.Errorf("Version = %d, want %d", m.Version, 1+32*3)
	}
}
