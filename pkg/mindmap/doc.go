// Package mindmap defines the data model of a 3D mind map: nodes, the
// parent/child edges between them, and the immutable snapshot handed to
// renderers.
//
// # Overview
//
// A [MindMap] is a forest. Each [Edge] points from a parent to a child and is
// the only source of truth for hierarchy: node positions never encode it. At
// most one [Node] carries the root marker, every non-root node has at most one
// incoming edge, and every edge endpoint refers to a node in the same map.
//
// # Snapshots
//
// Values of [MindMap] are treated as immutable snapshots. Producers (the graph
// store) always build a fresh map with [MindMap.Clone] instead of mutating the
// slices of a published snapshot, so consumers can detect changes by comparing
// [MindMap.Version].
//
// # Pinning
//
// While a drag gesture is in progress a node's position is user-driven. This is
// modelled explicitly with [Pin], a tagged union of [Free] and [Pinned]:
//
//	n.Pin = mindmap.Pinned(mindmap.Position{X: 10, Y: 4, Z: 0})
//	if at, ok := n.Pin.Position(); ok {
//	    // node is held by the pointer at `at`
//	}
//
// # Task metadata
//
// Nodes double as tasks. [Status] is a closed enum (todo, inprogress, done);
// use [ParseStatus] to validate free-text input.
//
// # Concurrency
//
// Snapshots are safe for concurrent reads. They must not be modified after
// they have been published.
package mindmap
