// Package picker prompts for a directory in the terminal.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/temirov/folderdump/internal/workspace"
)

const (
	titleText          = "Select a folder to dump"
	helpText           = "enter: choose highlighted folder • .: choose current folder • h/esc: up • q: cancel"
	cancelKey          = "q"
	interruptKey       = "ctrl+c"
	selectCurrentKey   = "."
	errorRunPickerText = "run folder picker: %w"
)

// ErrNotATerminal reports that no interactive terminal is attached.
var ErrNotATerminal = errors.New("interactive folder selection requires a terminal; pass the folder as an argument")

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	directoryStyle = lipgloss.NewStyle().Faint(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// DirectoryPicker implements workspace.Picker with a bubbletea file picker restricted to directories.
type DirectoryPicker struct {
	input  *os.File
	output *os.File
}

// NewDirectoryPicker constructs a picker reading from standard input and drawing on standard error.
func NewDirectoryPicker() *DirectoryPicker {
	return &DirectoryPicker{input: os.Stdin, output: os.Stderr}
}

// PickDirectory runs the picker until a directory is chosen or the prompt is dismissed.
func (picker *DirectoryPicker) PickDirectory(ctx context.Context, startDirectory string) (string, error) {
	if !isatty.IsTerminal(picker.input.Fd()) || !isatty.IsTerminal(picker.output.Fd()) {
		return "", ErrNotATerminal
	}
	return run(ctx, newModel(startDirectory), picker.input, picker.output)
}

func run(ctx context.Context, initial model, input io.Reader, output io.Writer) (string, error) {
	program := tea.NewProgram(initial,
		tea.WithContext(ctx),
		tea.WithInput(input),
		tea.WithOutput(output),
	)
	finalModel, runErr := program.Run()
	if runErr != nil {
		return "", fmt.Errorf(errorRunPickerText, runErr)
	}
	result, ok := finalModel.(model)
	if !ok || result.cancelled || result.selected == "" {
		return "", workspace.ErrNoSelection
	}
	return result.selected, nil
}

type model struct {
	filePicker filepicker.Model
	selected   string
	cancelled  bool
}

func newModel(startDirectory string) model {
	filePicker := filepicker.New()
	filePicker.DirAllowed = true
	filePicker.FileAllowed = false
	filePicker.ShowHidden = false
	filePicker.CurrentDirectory = startDirectory
	return model{filePicker: filePicker}
}

func (m model) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case cancelKey, interruptKey:
			m.cancelled = true
			return m, tea.Quit
		case selectCurrentKey:
			m.selected = filepath.Clean(m.filePicker.CurrentDirectory)
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)
	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.selected = filepath.Clean(path)
		return m, tea.Quit
	}
	return m, cmd
}

func (m model) View() string {
	if m.selected != "" || m.cancelled {
		return ""
	}
	return titleStyle.Render(titleText) + "\n" +
		directoryStyle.Render(m.filePicker.CurrentDirectory) + "\n\n" +
		m.filePicker.View() + "\n" +
		helpStyle.Render(helpText) + "\n"
}

var _ workspace.Picker = (*DirectoryPicker)(nil)
