package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mindtower/pkg/editor"
)

func TestPromptModel(t *testing.T) {
	tests := []struct {
		name          string
		key           tea.KeyMsg
		wantDone      bool
		wantCancelled bool
	}{
		{"enter confirms", tea.KeyMsg{Type: tea.KeyEnter}, true, false},
		{"esc cancels", tea.KeyMsg{Type: tea.KeyEsc}, false, true},
		{"ctrl+c cancels", tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPromptModel(editor.Question{Prompt: "Edit Task Title:", Default: "Plan"})
			if !strings.Contains(m.View(), "Edit Task Title:") {
				t.Error("view should show the question")
			}

			next, cmd := m.Update(tt.key)
			got := next.(PromptModel)
			if got.Done != tt.wantDone || got.Cancelled != tt.wantCancelled {
				t.Errorf("Done=%v Cancelled=%v", got.Done, got.Cancelled)
			}
			if cmd == nil {
				t.Error("expected quit command")
			}
			if tt.wantDone && got.Answer != "Plan" {
				t.Errorf("Answer = %q, want default", got.Answer)
			}
			if got.View() != "" {
				t.Error("finished prompt should render nothing")
			}
		})
	}
}

func TestPromptModelTyping(t *testing.T) {
	m := NewPromptModel(editor.Question{Prompt: "Description:"})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	next, _ = next.(PromptModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(PromptModel).Answer; got != "hi" {
		t.Errorf("Answer = %q, want %q", got, "hi")
	}
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("first\n\nlast"), &out)
	ctx := context.Background()

	tests := []struct {
		q      editor.Question
		want   string
		wantOK bool
	}{
		{editor.Question{Prompt: "A"}, "first", true},
		{editor.Question{Prompt: "B", Default: "todo"}, "todo", true},
		{editor.Question{Prompt: "C"}, "last", true},
		{editor.Question{Prompt: "D"}, "", false},
	}
	for _, tt := range tests {
		got, ok, err := p.Ask(ctx, tt.q)
		if err != nil {
			t.Fatalf("%s: %v", tt.q.Prompt, err)
		}
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.q.Prompt, got, ok, tt.want, tt.wantOK)
		}
	}
	if !strings.Contains(out.String(), "B [todo]: ") {
		t.Errorf("default not shown: %q", out.String())
	}
}

func TestLinePrompterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newLinePrompter(strings.NewReader("x\n"), &bytes.Buffer{})
	if _, _, err := p.Ask(ctx, editor.Question{Prompt: "A"}); err == nil {
		t.Error("expected context error")
	}
}

func TestConfirmWith(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := newLinePrompter(strings.NewReader(tt.input), &out)
		got, err := p.Confirm(context.Background(), "Delete?")
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Delete? (y/N)") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}
