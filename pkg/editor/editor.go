// Package editor implements the interactive editing actions of a mind map on
// top of the graph store.
//
// User input is requested through a [Prompter] and warnings go to a
// [Notifier], so the same actions drive a terminal UI, a test with canned
// answers, or any other front end.
//
//	ed := editor.New(s, prompter, editor.WithNotifier(notifier))
//	if err := ed.EditDetails(ctx); err != nil {
//	    // the action was rejected; the notifier has already been told
//	}
//
// Rejected actions are reported to the notifier and returned as coded errors.
// Partially applied edits (an invalid status next to valid fields) are only
// reported to the notifier.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/mindtower/pkg/errors"
	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// Default labels for nodes created without one.
const (
	DefaultRootLabel  = "My Mind Map"
	DefaultChildLabel = "New Task"
)

// Question is a single free-text request for input.
type Question struct {
	Prompt  string
	Default string
}

// Prompter asks the user for input. Ask returns ok=false when the user
// cancelled the question, which is different from answering with an empty
// string.
type Prompter interface {
	Ask(ctx context.Context, q Question) (answer string, ok bool, err error)
	Confirm(ctx context.Context, message string) (bool, error)
}

// Notifier shows a warning to the user.
type Notifier interface {
	Warn(ctx context.Context, message string)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, message string)

// Warn calls f.
func (f NotifierFunc) Warn(ctx context.Context, message string) { f(ctx, message) }

// Graph is the part of the graph store the editor drives.
type Graph interface {
	Snapshot() mindmap.MindMap
	Selected() string
	AddRoot(label string) (string, error)
	AddChild(parentID, label string) (string, error)
	UpdateLabel(id, label string) error
	UpdateDetails(id string, patch mindmap.DetailsPatch) error
	UpdatePosition(id string, pos mindmap.Position) error
	EndDrag(id string) error
	DeleteNode(id string) error
	ToggleSelect(id string) (string, error)
	Select(id string) error
	Reset()
}

// Editor performs user-level editing actions.
type Editor struct {
	graph  Graph
	prompt Prompter
	notify Notifier
}

// Option configures an [Editor].
type Option func(*Editor)

// WithNotifier sets where warnings are shown. By default they are dropped.
func WithNotifier(n Notifier) Option {
	return func(e *Editor) {
		if n != nil {
			e.notify = n
		}
	}
}

// New creates an editor for g that asks p for input.
func New(g Graph, p Prompter, opts ...Option) *Editor {
	e := &Editor{
		graph:  g,
		prompt: p,
		notify: NotifierFunc(func(context.Context, string) {}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddRoot creates the root node. An empty label uses [DefaultRootLabel].
func (e *Editor) AddRoot(ctx context.Context, label string) (string, error) {
	if strings.TrimSpace(label) == "" {
		label = DefaultRootLabel
	}
	id, err := e.graph.AddRoot(label)
	return id, e.report(ctx, err)
}

// Click toggles the selection of id and returns the new selection.
func (e *Editor) Click(ctx context.Context, id string) (string, error) {
	sel, err := e.graph.ToggleSelect(id)
	return sel, e.report(ctx, err)
}

// Deselect clears the selection, as a click on empty canvas does.
func (e *Editor) Deselect(ctx context.Context) error {
	return e.report(ctx, e.graph.Select(""))
}

// AddChildToSelected creates a child of the selected node. An empty label
// uses [DefaultChildLabel].
func (e *Editor) AddChildToSelected(ctx context.Context, label string) (string, error) {
	parent := e.graph.Selected()
	if parent == "" {
		return "", e.report(ctx, errors.New(errors.ErrCodeNoSelection, "Please select a parent node first."))
	}
	if strings.TrimSpace(label) == "" {
		label = DefaultChildLabel
	}
	id, err := e.graph.AddChild(parent, label)
	return id, e.report(ctx, err)
}

// EditLabel asks for a new title for id, offering the current one. A
// cancelled or blank answer leaves the label unchanged.
func (e *Editor) EditLabel(ctx context.Context, id string) error {
	n, ok := e.graph.Snapshot().Node(id)
	if !ok {
		return e.report(ctx, errors.New(errors.ErrCodeNodeNotFound, "node %q does not exist", id))
	}
	answer, ok, err := e.prompt.Ask(ctx, Question{Prompt: "Edit Task Title:", Default: n.Label})
	if err != nil {
		return err
	}
	label := strings.TrimSpace(answer)
	if !ok || label == "" {
		return nil
	}
	return e.report(ctx, e.graph.UpdateLabel(id, label))
}

// EditDetails asks for the description, status and due date of the
// selected node. Cancelled questions leave their field unchanged.
func (e *Editor) EditDetails(ctx context.Context) error {
	id := e.graph.Selected()
	if id == "" {
		return e.report(ctx, errors.New(errors.ErrCodeNoSelection, "Please select a node to edit its details."))
	}
	n, ok := e.graph.Snapshot().Node(id)
	if !ok {
		return e.report(ctx, errors.New(errors.ErrCodeNodeNotFound, "node %q does not exist", id))
	}

	status := string(n.Status)
	if status == "" {
		status = string(mindmap.StatusTodo)
	}
	var patch mindmap.DetailsPatch
	questions := []struct {
		q   Question
		dst **string
	}{
		{Question{Prompt: "Description:", Default: n.Description}, &patch.Description},
		{Question{Prompt: "Status (todo, inprogress, done):", Default: status}, &patch.Status},
		{Question{Prompt: "Due Date (YYYY-MM-DD):", Default: n.DueDate}, &patch.DueDate},
	}
	for _, q := range questions {
		answer, ok, err := e.prompt.Ask(ctx, q.q)
		if err != nil {
			return err
		}
		if ok {
			*q.dst = &answer
		}
	}
	if patch.Empty() {
		return nil
	}
	return e.report(ctx, e.graph.UpdateDetails(id, patch))
}

// DeleteSelected deletes the selected node after confirmation.
func (e *Editor) DeleteSelected(ctx context.Context) error {
	id := e.graph.Selected()
	if id == "" {
		return e.report(ctx, errors.New(errors.ErrCodeNoSelection, "Please select a node to delete."))
	}
	n, ok := e.graph.Snapshot().Node(id)
	if !ok {
		return e.report(ctx, errors.New(errors.ErrCodeNodeNotFound, "node %q does not exist", id))
	}
	yes, err := e.prompt.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete %q and all its connections?", n.Label))
	if err != nil || !yes {
		return err
	}
	return e.report(ctx, e.graph.DeleteNode(id))
}

// Reset removes every node after confirmation.
func (e *Editor) Reset(ctx context.Context) error {
	yes, err := e.prompt.Confirm(ctx, "Are you sure you want to reset the entire layout? All nodes will be removed.")
	if err != nil || !yes {
		return err
	}
	e.graph.Reset()
	return nil
}

// Drag moves id to pos while a drag gesture is in progress.
func (e *Editor) Drag(ctx context.Context, id string, pos mindmap.Position) error {
	return e.report(ctx, e.graph.UpdatePosition(id, pos))
}

// Release ends the drag gesture on id.
func (e *Editor) Release(ctx context.Context, id string) error {
	return e.report(ctx, e.graph.EndDrag(id))
}

// report shows err to the user. Warnings are swallowed after being shown;
// other errors are returned.
func (e *Editor) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	e.notify.Warn(ctx, errors.UserMessage(err))
	if errors.IsWarning(err) {
		return nil
	}
	return err
}
