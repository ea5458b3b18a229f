package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atlanticdynamic/coderunner/internal/fancy"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var _ resolver.Prompter = (*TUI)(nil)

// TUI shows a single-line text input pre-filled with the remembered value.
type TUI struct {
	in  io.Reader
	out io.Writer
}

// NewTUI creates a terminal prompter. Nil streams default to the process terminal.
func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out}
}

// Prompt implements resolver.Prompter.
func (t *TUI) Prompt(ctx context.Context, req resolver.Request) (string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.in != nil {
		opts = append(opts, tea.WithInput(t.in))
	}
	if t.out != nil {
		opts = append(opts, tea.WithOutput(t.out))
	}

	final, err := tea.NewProgram(newInputModel(req), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", fmt.Errorf("%w: %w", ErrAborted, err)
		}
		return "", err
	}

	m, ok := final.(inputModel)
	if !ok {
		return "", fmt.Errorf("%w: unexpected model %T", ErrAborted, final)
	}
	if m.aborted {
		return "", ErrAborted
	}
	return m.input.Value(), nil
}

type inputModel struct {
	label   string
	input   textinput.Model
	aborted bool
	done    bool
}

func newInputModel(req resolver.Request) inputModel {
	in := textinput.New()
	in.Prompt = "> "
	in.SetValue(req.Initial)
	in.CursorEnd()
	in.Focus()
	return inputModel{label: req.Label, input: in}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return fancy.PromptLabel(m.label) + "\n" + m.input.View() + "\n" +
		fancy.SummaryText("enter to accept, esc to cancel") + "\n"
}
