// Package layout computes 3D positions for every node of a mind map.
//
// # Overview
//
// The engine is a deterministic function of the parent/child edges and the
// node ids. It never reads previous positions, so running it twice on the same
// input yields the same output. Two placement rules are combined:
//
//   - Horizontal spread: the direct children of a root are laid out on a
//     straight row centered under the root, one level down ([Config.LevelDrop])
//     and one level deeper ([Config.LevelDepth]).
//
//   - Radial spread: the children of every other node are placed evenly on a
//     circle whose center sits one level below and deeper than the parent. The
//     radius grows with the number of children so neighbours never overlap:
//     radius = max(BaseRadius, n × MinArcLength / 2π).
//
// Only the first branching uses the row; deeper levels stay compact, which
// keeps many-level trees from growing combinatorially wide.
//
// # Roots and orphans
//
// Roots are the nodes carrying the root marker. If no node carries it, every
// node without a parent is treated as a root. Roots are staggered along x by
// RootSpacing × PaletteSize. Nodes that cannot be reached from a root are
// placed at a pseudo-random but reproducible position (seeded from the node
// id) far along the z axis at [Config.OrphanDepth].
//
// # Ordering
//
// Roots and siblings are ordered by id (lexicographically) before placement,
// which makes layouts independent of insertion order.
//
// # Drag follow-up
//
// [Engine.Follow] re-places only the direct children of a dragged node around
// its live position with a slightly tighter radius ([Config.DragRadiusScale]).
// It is O(children) and meant to run on every pointer move. Deeper descendants
// stay where they are until the next full [Engine.Compute].
//
// # Usage
//
//	eng := layout.New(layout.WithBaseRadius(50))
//	positions := eng.Compute(m.Nodes, m.Edges)
//	laidOut := layout.Apply(m, positions)
package layout
