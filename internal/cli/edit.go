package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtower/pkg/editor"
	"github.com/matzehuels/mindtower/pkg/errors"
	"github.com/matzehuels/mindtower/pkg/graph"
	"github.com/matzehuels/mindtower/pkg/mindmap"
	"github.com/matzehuels/mindtower/pkg/store"
)

const editHelp = `Commands:
  root [label]            create the root node
  add [label]             add a child to the selected node
  click <id>              select a node, or deselect it if already selected
  deselect                clear the selection
  label <id>              edit a node's label
  details                 edit the selected node's description, status and due date
  drag <id> <x> <y> <z>   move a node and hold it there
  release <id>            end a drag
  delete                  delete the selected node
  reset                   remove every node
  show                    list all nodes
  save [file]             write the mind map as JSON
  help                    show this help
  quit                    leave the session

Node ids may be abbreviated to any unique prefix.`

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "edit [map.json]",
		Short: "Edit a mind map interactively",
		Long: `Edit a mind map interactively.

Starts an editing session on the given file, or on an empty map. Every change
is laid out immediately; use 'show' to inspect positions and 'save' to write
the result. Type 'help' in the session for the list of commands.

Input is read with an inline prompt when stdin is a terminal and line by line
otherwise, so sessions can be scripted:

  printf 'root Plan\nclick <id>\nadd Design\nsave\n' | mindtower edit plan.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runEdit(cmd.Context(), path, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "read input line by line even on a terminal")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, plain bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st := c.newStore(cfg)

	if path != "" {
		m, err := graph.ReadFile(path)
		switch {
		case err == nil:
			if err := st.Load(m); err != nil {
				return err
			}
			printInfo("Loaded %s (%d nodes)", path, m.Len())
		case os.IsNotExist(err):
			printInfo("New mind map %s", path)
		default:
			return fmt.Errorf("load mind map %s: %w", path, err)
		}
	}

	var p editor.Prompter = teaPrompter{in: os.Stdin, out: os.Stdout}
	if plain || !isTerminal(os.Stdin) {
		p = newLinePrompter(os.Stdin, os.Stdout)
	}

	s := newSession(st, p, os.Stdout, path)
	return s.run(ctx)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// =============================================================================
// Session
// =============================================================================

// session is an editing loop reading commands from a prompter.
type session struct {
	store  *store.Store
	editor *editor.Editor
	prompt editor.Prompter
	out    io.Writer
	path   string
}

func newSession(st *store.Store, p editor.Prompter, out io.Writer, path string) *session {
	s := &session{store: st, prompt: p, out: out, path: path}
	notify := editor.NotifierFunc(func(_ context.Context, msg string) { s.warn(msg) })
	s.editor = editor.New(st, p, editor.WithNotifier(notify))
	return s
}

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, StyleDim.Render("Type 'help' for commands."))
	for {
		line, ok, err := s.prompt.Ask(ctx, editor.Question{Prompt: appName + ">"})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		quit, err := s.exec(ctx, line)
		if err != nil && errors.GetCode(err) == "" {
			return err
		}
		if quit {
			return nil
		}
	}
}

// exec runs one command line. Coded errors have already been shown to the
// user by the editor and do not end the session.
func (s *session) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, editHelp)
	case "root":
		id, err := s.editor.AddRoot(ctx, rest)
		if err != nil {
			return false, err
		}
		s.printCreated(id)
	case "add":
		id, err := s.editor.AddChildToSelected(ctx, rest)
		if err != nil {
			return false, err
		}
		s.printCreated(id)
	case "click", "select":
		id, err := s.resolve(args)
		if err != nil {
			return false, err
		}
		selected, err := s.editor.Click(ctx, id)
		if err != nil {
			return false, err
		}
		if selected == "" {
			fmt.Fprintln(s.out, StyleDim.Render("selection cleared"))
		} else {
			fmt.Fprintln(s.out, StyleDim.Render("selected ")+StyleHighlight.Render(shortID(selected)))
		}
	case "deselect":
		return false, s.editor.Deselect(ctx)
	case "label":
		id, err := s.resolve(args)
		if err != nil {
			return false, err
		}
		return false, s.editor.EditLabel(ctx, id)
	case "details":
		return false, s.editor.EditDetails(ctx)
	case "drag":
		return false, s.drag(ctx, args)
	case "release":
		id, err := s.resolve(args)
		if err != nil {
			return false, err
		}
		return false, s.editor.Release(ctx, id)
	case "delete":
		return false, s.editor.DeleteSelected(ctx)
	case "reset":
		return false, s.editor.Reset(ctx)
	case "show", "ls":
		s.show()
	case "save":
		return false, s.save(rest)
	default:
		s.warn(fmt.Sprintf("unknown command %q, type 'help' for the list", cmd))
	}
	return false, nil
}

func (s *session) drag(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return s.fail(errors.New(errors.ErrCodeInvalidInput, "usage: drag <id> <x> <y> <z>"))
	}
	id, err := s.resolve(args[:1])
	if err != nil {
		return err
	}
	var coords [3]float64
	for i, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return s.fail(errors.New(errors.ErrCodeInvalidInput, "%q is not a number", a))
		}
		coords[i] = v
	}
	return s.editor.Drag(ctx, id, mindmap.Position{X: coords[0], Y: coords[1], Z: coords[2]})
}

// resolve expands a unique id prefix to a node id.
func (s *session) resolve(args []string) (string, error) {
	if len(args) != 1 {
		return "", s.fail(errors.New(errors.ErrCodeInvalidInput, "expected exactly one node id"))
	}
	prefix := args[0]
	var matches []string
	for _, n := range s.store.Snapshot().Nodes {
		if n.ID == prefix {
			return n.ID, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			matches = append(matches, n.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", s.fail(errors.New(errors.ErrCodeNodeNotFound, "no node matches %q", prefix))
	case 1:
		return matches[0], nil
	default:
		return "", s.fail(errors.New(errors.ErrCodeInvalidNodeID, "%q matches %d nodes", prefix, len(matches)))
	}
}

func (s *session) save(path string) error {
	if path == "" {
		path = s.path
	}
	if path == "" {
		return s.fail(errors.New(errors.ErrCodeInvalidInput, "usage: save <file>"))
	}
	if err := graph.WriteFile(s.store.Snapshot(), path); err != nil {
		return s.fail(errors.Wrap(errors.ErrCodeInternal, err, "cannot write %s: %v", path, err))
	}
	s.path = path
	fmt.Fprintln(s.out, styleIconSuccess.Render(iconSuccess)+" saved "+StyleValue.Render(path))
	return nil
}

func (s *session) show() {
	m := s.store.Snapshot()
	if m.Len() == 0 {
		fmt.Fprintln(s.out, StyleDim.Render("empty mind map, use 'root' to start"))
		return
	}

	nodes := slices.Clone(m.Nodes)
	slices.SortFunc(nodes, func(a, b mindmap.Node) int { return strings.Compare(a.ID, b.ID) })

	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		marker := "  "
		switch {
		case n.ID == m.Selected:
			marker = "▸ "
		case n.Root:
			marker = "◆ "
		}
		parent, _ := m.Parent(n.ID)
		rows = append(rows, []string{
			marker,
			shortID(n.ID),
			n.Label,
			string(n.Status),
			n.DueDate,
			shortID(parent),
			fmtPosition(n.Position, n.Pin.IsPinned()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Label", "Status", "Due", "Parent", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(nodes) && nodes[row].ID == m.Selected {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(s.out, t.Render())
	fmt.Fprintln(s.out, StyleDim.Render(fmt.Sprintf("  v%d · %d nodes · %d edges", m.Version, m.Len(), len(m.Edges))))
}

func (s *session) printCreated(id string) {
	fmt.Fprintln(s.out, styleIconSuccess.Render(iconSuccess)+" created "+StyleHighlight.Render(shortID(id)))
}

func (s *session) warn(msg string) {
	fmt.Fprintln(s.out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// fail shows a coded error and returns it so the caller stops.
func (s *session) fail(err error) error {
	s.warn(errors.UserMessage(err))
	return err
}

// shortID abbreviates UUIDs for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func fmtPosition(p mindmap.Position, pinned bool) string {
	s := fmt.Sprintf("(%.1f, %.1f, %.1f)", p.X, p.Y, p.Z)
	if pinned {
		s += " held"
	}
	return s
}
