package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/mindtower/pkg/mindmap"
)

func sample() mindmap.MindMap {
	return mindmap.MindMap{
		Selected: "b",
		Nodes: []mindmap.Node{
			{ID: "a", Label: "Root", Status: mindmap.StatusTodo, Root: true, Color: "#7df9ff"},
			{ID: "b", Label: "Idea", Status: mindmap.StatusDone, DueDate: "2026-03-01",
				Position: mindmap.Position{X: -30, Y: -50, Z: 20}, Color: "#ff5ecb"},
			{ID: "c", Label: "", Status: mindmap.StatusInProgress,
				Position: mindmap.Position{X: 30, Y: -50, Z: 20},
				Pin:      mindmap.Pinned(mindmap.Position{X: 30, Y: -50, Z: 20})},
		},
		Edges: []mindmap.Edge{
			{ID: "e1", From: "a", To: "b"},
			{ID: "e2", From: "a", To: "c"},
		},
	}
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name    string
		m       mindmap.MindMap
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "Empty",
			m:    mindmap.MindMap{},
			want: []string{"digraph G {", "layout=neato", "inputscale=72", "}"},
			notWant: []string{
				"->",
			},
		},
		{
			name: "Positions",
			m:    sample(),
			want: []string{
				`"a" [label="Root", pos="0.00,0.00!"`,
				`"b" [label="Idea", pos="-30.00,-50.00!"`,
				`"a" -> "b";`,
				`"a" -> "c";`,
			},
		},
		{
			name: "Scaled",
			m:    sample(),
			opts: Options{Scale: 2},
			want: []string{`pos="-60.00,-100.00!"`, `pos="60.00,-100.00!"`},
		},
		{
			name: "Styling",
			m:    sample(),
			want: []string{
				`fillcolor="#7df9ff", shape=ellipse`,
				`fillcolor="#ff5ecb", penwidth=3`,
				`style="rounded,filled,dashed"`,
			},
		},
		{
			name:    "LabelFallsBackToID",
			m:       sample(),
			want:    []string{`"c" [label="c"`},
			notWant: []string{`label=""`},
		},
		{
			name: "Detailed",
			m:    sample(),
			opts: Options{Detailed: true},
			want: []string{
				`label="Idea\nstatus: done\ndue: 2026-03-01\nz: 20"`,
				`label="Root\nstatus: todo\nz: 0"`,
			},
		},
		{
			name: "SkipsDanglingEdges",
			m: mindmap.MindMap{
				Nodes: []mindmap.Node{{ID: "a", Label: "A"}},
				Edges: []mindmap.Edge{{From: "a", To: "ghost"}},
			},
			want:    []string{`"a" [label="A"`},
			notWant: []string{"ghost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(tt.m, tt.opts)
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("DOT missing %q:\n%s", w, dot)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dot, w) {
					t.Errorf("DOT contains %q:\n%s", w, dot)
				}
			}
		})
	}
}

func TestToDOTDeterministic(t *testing.T) {
	m := sample()
	first := ToDOT(m, Options{Detailed: true})
	for i := 0; i < 5; i++ {
		if got := ToDOT(m, Options{Detailed: true}); got != first {
			t.Fatal("ToDOT output is not stable")
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Rewrites",
			in:   `<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.40 40.00" xmlns="x"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.40 40.00" width="100" height="40"><g/></svg>`,
		},
		{
			name: "NoViewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "ZeroSize",
			in:   `<svg viewBox="0 0 0 10"></svg>`,
			want: `<svg viewBox="0 0 0 10"></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "</svg>") {
		t.Fatalf("output is not SVG: %.200s", s)
	}
	if !strings.Contains(s, "Idea") {
		t.Error("node label missing from SVG")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected error for malformed DOT")
	}
}
