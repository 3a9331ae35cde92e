package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/mindtower/pkg/mindmap"
)

func TestFollowScalesRing(t *testing.T) {
	eng := New()
	at := mindmap.Position{X: 100, Y: 20, Z: 5}

	got := eng.Follow(at, []string{"a", "b", "c"})
	if len(got) != 3 {
		t.Fatalf("Follow returned %d positions, want 3", len(got))
	}

	wantR := DefaultBaseRadius * DefaultDragRadiusScale
	cx, cy := at.X, at.Y-DefaultLevelDrop
	for id, p := range got {
		if d := math.Hypot(p.X-cx, p.Y-cy); !near(d, wantR) {
			t.Errorf("%s distance from ring center = %g, want %g", id, d, wantR)
		}
		if !near(p.Z, at.Z+DefaultLevelDepth) {
			t.Errorf("%s z = %g, want %g", id, p.Z, at.Z+DefaultLevelDepth)
		}
	}
	if a := got["a"]; !near(a.X, at.X) || !near(a.Y, cy-wantR) {
		t.Errorf("first child = %+v, want directly below ring center", a)
	}
}

func TestFollowOnlyListedChildren(t *testing.T) {
	// Same tree as a full layout: the dragged node's grandchildren keep
	// whatever the caller had.
	nodes := []mindmap.Node{{ID: "x", Root: true}, {ID: "y"}, {ID: "w"}, {ID: "v"}}
	edges := []mindmap.Edge{{From: "x", To: "y"}, {From: "y", To: "w"}, {From: "w", To: "v"}}
	m := mindmap.MindMap{Nodes: nodes, Edges: edges}

	eng := New()
	got := eng.Follow(mindmap.Position{X: 7}, m.Children("y"))
	if len(got) != 1 {
		t.Fatalf("Follow moved %v, want only w", got)
	}
	if _, ok := got["w"]; !ok {
		t.Error("w was not moved")
	}
}

func TestFollowNoChildren(t *testing.T) {
	if got := New().Follow(mindmap.Position{}, nil); len(got) != 0 {
		t.Errorf("Follow(nil) = %v, want empty", got)
	}
}

func TestFollowTighterThanLayout(t *testing.T) {
	eng := New()
	parent := mindmap.Position{}
	full := Radial(eng.Config(), parent, 5, 1)
	follow := eng.Follow(parent, []string{"a", "b", "c", "d", "e"})

	center := mindmap.Position{Y: -DefaultLevelDrop}
	rFull := math.Hypot(full[0].X-center.X, full[0].Y-center.Y)
	rFollow := math.Hypot(follow["a"].X-center.X, follow["a"].Y-center.Y)
	if !(rFollow < rFull) {
		t.Errorf("drag radius %g not tighter than layout radius %g", rFollow, rFull)
	}
}
