// Package store holds the live mind map and applies editing operations to it.
//
// A [Store] owns the node and edge collections, the selection, the palette
// cursor used to color new nodes, and a [layout.Engine]. Every successful
// mutation publishes a new immutable [mindmap.MindMap] snapshot with a higher
// Version and hands it to subscribers:
//
//	s := store.New(store.WithLogger(logger))
//	unsubscribe := s.Subscribe(func(m mindmap.MindMap) { render(m) })
//	defer unsubscribe()
//
//	rootID, _ := s.AddRoot("Central Topic")
//	childID, _ := s.AddChild(rootID, "Idea 1")
//
// Structural mutations (AddRoot, AddChild, DeleteNode, Load) run a full
// layout. UpdatePosition pins the dragged node and runs only the drag
// follow-up for its direct children. Label, detail and selection edits do not
// move anything.
//
// Operations that would break an invariant (a second root, an unknown node)
// leave the state untouched, publish nothing, log a warning and return a
// coded error from [github.com/matzehuels/mindtower/pkg/errors].
//
// A Store is safe for concurrent use. Subscribers are called synchronously
// on the mutating goroutine after the store lock has been released.
package store
