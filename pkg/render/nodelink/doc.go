// Package nodelink renders a flat preview of a laid-out mind map.
//
// # Overview
//
// The 3D scene is drawn by an external renderer. This package produces a 2D
// node-link diagram of the same snapshot using Graphviz, which is handy for
// checking layout output from the command line. Nodes are pinned at their
// (x, y) scene coordinates, so the picture is the 3D layout viewed along the
// z axis.
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include status, due date and z depth
//   - Scale: points per scene unit
//
// # DOT Format
//
// The generated DOT selects the neato engine (layout=neato) and sets
// inputscale=72 so pos attributes are read in points. Selected nodes get a
// thick outline and nodes held by a drag are dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
