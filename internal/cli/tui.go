package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mindtower/pkg/editor"
	"github.com/matzehuels/mindtower/pkg/errors"
)

var (
	promptQuestionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	promptHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PromptModel - single-line text question
// =============================================================================

// PromptModel is the bubbletea model for one free-text question.
type PromptModel struct {
	Question  string
	Input     textinput.Model
	Answer    string
	Done      bool
	Cancelled bool
}

// NewPromptModel creates a prompt prefilled with the question's default.
func NewPromptModel(q editor.Question) PromptModel {
	in := textinput.New()
	in.Prompt = iconInfo + " "
	in.CharLimit = errors.MaxLabelLength
	in.Width = 50
	in.SetValue(q.Default)
	in.CursorEnd()
	in.Focus()
	return PromptModel{Question: q.Prompt, Input: in}
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.Answer = m.Input.Value()
			m.Done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.Cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m PromptModel) View() string {
	if m.Done || m.Cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptQuestionStyle.Render(m.Question))
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")
	b.WriteString(promptHelpStyle.Render("⏎ confirm  esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Prompters
// =============================================================================

// teaPrompter asks each question in its own inline bubbletea program.
type teaPrompter struct {
	in  io.Reader
	out io.Writer
}

func (p teaPrompter) Ask(ctx context.Context, q editor.Question) (string, bool, error) {
	prog := tea.NewProgram(NewPromptModel(q),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		return "", false, err
	}
	m, ok := final.(PromptModel)
	if !ok || m.Cancelled {
		return "", false, nil
	}
	return m.Answer, true, nil
}

func (p teaPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	return confirmWith(ctx, p, message)
}

// linePrompter reads answers line by line, for piped input. End of input
// cancels the question.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) Ask(ctx context.Context, q editor.Question) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if q.Default != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", q.Prompt, q.Default)
	} else {
		fmt.Fprintf(p.out, "%s: ", q.Prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", false, nil
		}
		return "", false, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return q.Default, true, nil
	}
	return line, true, nil
}

func (p *linePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	return confirmWith(ctx, p, message)
}

// confirmWith asks a yes/no question. Anything but y or yes is no.
func confirmWith(ctx context.Context, p editor.Prompter, message string) (bool, error) {
	answer, ok, err := p.Ask(ctx, editor.Question{Prompt: message + " (y/N)"})
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
