// Package pkg holds the libraries behind mindtower, an editor core for 3D
// task mind maps.
//
// # Overview
//
// A mind map is a single-rooted tree of task nodes. Each node has a label,
// a status, an optional description and due date, a color and a position in
// 3D space. The packages are layered:
//
//  1. [mindmap] - value types: nodes, edges, statuses, palettes
//  2. [layout] - deterministic hybrid placement and drag follow
//  3. [store] - the authoritative graph, versioned snapshots and listeners
//  4. [editor] - user-level actions driven through a prompter
//  5. [graph] - the JSON wire format
//  6. [server] - REST API and WebSocket snapshot stream
//  7. [render/nodelink] - flat DOT and SVG previews
//
// Support packages: [errors] for coded errors, [config] for the TOML config
// file, [observability] for hooks and Prometheus metrics, [buildinfo] for
// version stamping.
//
// # Data Flow
//
//	editor / HTTP request
//	         ↓
//	    [store] mutation (validated, copy-on-write)
//	         ↓
//	    [layout] engine (structural changes only)
//	         ↓
//	    snapshot published to listeners
//	         ↓
//	    WebSocket clients, previews, JSON files
//
// # Quick Start
//
//	st := store.New()
//	root, _ := st.AddRoot("Launch")
//	child, _ := st.AddChild(root, "Design")
//	snap := st.Snapshot()
//	n, _ := snap.Node(child)
//	fmt.Println(n.Position)
//
// [mindmap]: github.com/matzehuels/mindtower/pkg/mindmap
// [layout]: github.com/matzehuels/mindtower/pkg/layout
// [store]: github.com/matzehuels/mindtower/pkg/store
// [editor]: github.com/matzehuels/mindtower/pkg/editor
// [graph]: github.com/matzehuels/mindtower/pkg/graph
// [server]: github.com/matzehuels/mindtower/pkg/server
// [render/nodelink]: github.com/matzehuels/mindtower/pkg/render/nodelink
// [errors]: github.com/matzehuels/mindtower/pkg/errors
// [config]: github.com/matzehuels/mindtower/pkg/config
// [observability]: github.com/matzehuels/mindtower/pkg/observability
// [buildinfo]: github.com/matzehuels/mindtower/pkg/buildinfo
package pkg
