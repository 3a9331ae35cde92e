// Package graph provides the serialization format for mind-map snapshots.
//
// This package defines the canonical wire format for mindtower's data, used
// for JSON files, API responses, the WebSocket snapshot stream, and
// cross-tool interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [MindMap]: Serialization type (this package)
//   - pkg/mindmap.MindMap: Internal snapshot (positions, pins, metadata)
//
// Use [FromMindMap]/[ToMindMap] to convert between them.
//
// # Serialization
//
// Snapshots use a flat node-link JSON format:
//
//	{
//	  "version": 3,
//	  "selected": "b",
//	  "nodes": [
//	    {"id": "a", "label": "Central Topic", "status": "todo", "x": 0, "y": 0, "z": 0, "root": true, "color": "#7df9ff"},
//	    {"id": "b", "label": "Idea 1", "status": "todo", "x": 0, "y": -50, "z": 20, "color": "#ff5ecb"}
//	  ],
//	  "edges": [{"id": "e1", "from": "a", "to": "b"}]
//	}
//
// Common operations:
//
//	m, _ := graph.ReadFile("map.json")      // File → snapshot
//	graph.WriteFile(m, "output.json")       // snapshot → File
//	data, _ := graph.Marshal(m)             // snapshot → []byte
//	parsed, _ := graph.Unmarshal(data)      // []byte → snapshot
//
// Nodes are sorted by id and edges by endpoints, so equal snapshots encode
// to equal bytes. [Fingerprint] hashes that encoding for change detection
// (the HTTP ETag).
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph
