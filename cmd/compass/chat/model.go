// Package chat implements the interactive terminal UI: enter a story,
// generate test cases, refine them in conversation and export the workbook.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RUBESHR7/compass-qa/internal/session"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// Mode is the current input mode.
type Mode int

const (
	// StoryMode collects the user story.
	StoryMode Mode = iota
	// RefineMode collects refinement instructions for the current cases.
	RefineMode
)

const (
	storyPlaceholder  = "Paste a user story... (Enter to generate, Alt+Enter for newline)"
	refinePlaceholder = "Tell me what to change... (Enter to send)"

	headerHeight = 2
	footerHeight = 2
	inputHeight  = 5
)

// ExportFunc saves the collection as a workbook and returns its path.
type ExportFunc func(result *testcase.GenerationResult) (string, error)

// Config wires the chat to the rest of the application.
type Config struct {
	Controller    *session.Controller
	AllowedCounts []int
	DefaultCount  int
	Screenshots   []story.Attachment
	Export        ExportFunc
	// Style is a render style name; empty means auto.
	Style string
	// Context bounds every model call.
	Context context.Context
}

// Model is the bubbletea model.
type Model struct {
	cfg  Config
	ctx  context.Context
	ctrl *session.Controller

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   styles

	mode    Mode
	count   int
	loading bool
	status  string
	err     error
	width   int
	ready   bool

	// rendered caches the terminal rendering of the collection at version.
	rendered        string
	renderedVersion int
}

type styles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	user   lipgloss.Style
	ai     lipgloss.Style
	err    lipgloss.Style
	status lipgloss.Style
	input  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4472C4")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		user:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		ai:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		input:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4472C4")),
	}
}

// New builds the chat model. A controller that already holds a collection
// starts in RefineMode.
func New(cfg Config) Model {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if len(cfg.AllowedCounts) == 0 {
		cfg.AllowedCounts = story.DefaultCounts
	}
	if cfg.DefaultCount == 0 {
		cfg.DefaultCount = story.DefaultCount
	}

	ta := textarea.New()
	ta.Placeholder = storyPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(76)
	ta.SetHeight(3)
	// Plain Enter submits.
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		cfg:             cfg,
		ctx:             cfg.Context,
		ctrl:            cfg.Controller,
		textarea:        ta,
		viewport:        viewport.New(80, 20),
		spinner:         sp,
		styles:          defaultStyles(),
		mode:            StoryMode,
		count:           cfg.DefaultCount,
		width:           80,
		renderedVersion: -1,
	}
	if m.ctrl.Snapshot() != nil {
		m.mode = RefineMode
		m.textarea.Placeholder = refinePlaceholder
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Mode returns the current input mode.
func (m Model) Mode() Mode { return m.mode }

// Count returns the selected test case count.
func (m Model) Count() int { return m.count }

// Run starts the chat in the alternate screen and blocks until it exits.
func Run(cfg Config) error {
	m := New(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
