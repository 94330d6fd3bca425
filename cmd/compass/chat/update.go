package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/render"
	"github.com/RUBESHR7/compass-qa/internal/session"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// Messages delivered by background commands.
type (
	generatedMsg struct {
		result *testcase.GenerationResult
		err    error
	}
	refinedMsg struct {
		before *testcase.GenerationResult
		after  *testcase.GenerationResult
		err    error
	}
	exportedMsg struct {
		path string
		err  error
	}
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			m.refresh()
			return m, nil
		}
		m.err = nil
		m.mode = RefineMode
		m.textarea.Placeholder = refinePlaceholder
		m.status = fmt.Sprintf("Generated %d test cases", len(msg.result.TestCases))
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case refinedMsg:
		m.loading = false
		if msg.err != nil {
			// The controller already recorded the apology in the transcript.
			m.err = nil
			m.status = ""
			if errors.Is(msg.err, session.ErrBusy) {
				m.status = msg.err.Error()
			}
			m.refresh()
			return m, nil
		}
		m.err = nil
		m.status = render.Changes(msg.before, msg.after).Summary()
		m.refresh()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.status = "Exported " + msg.path
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		if msg.Alt {
			break
		}
		if m.loading {
			return m, nil
		}
		return m.submit()

	case tea.KeyCtrlN:
		if m.mode == StoryMode && !m.loading {
			m.count = story.NextCount(m.cfg.AllowedCounts, m.count)
		}
		return m, nil

	case tea.KeyCtrlE:
		return m, m.export()

	case tea.KeyCtrlR:
		if m.loading {
			return m, nil
		}
		if err := m.ctrl.Reset(); err != nil {
			m.err = err
			return m, nil
		}
		m.mode = StoryMode
		m.textarea.Reset()
		m.textarea.Placeholder = storyPlaceholder
		m.status = "Started a new story"
		m.err = nil
		m.refresh()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	switch m.mode {
	case StoryMode:
		s := story.Story{Text: input, Count: m.count, Screenshots: m.cfg.Screenshots}
		if err := s.Validate(m.cfg.AllowedCounts); err != nil {
			m.err = err
			return m, nil
		}
		logging.UI("submitting story (%d cases)", m.count)
		m.textarea.Reset()
		m.loading = true
		m.err = nil
		m.status = fmt.Sprintf("Generating %d test cases...", m.count)
		return m, tea.Batch(m.spinner.Tick, m.generate(s))

	default:
		logging.UI("submitting refinement")
		m.textarea.Reset()
		m.loading = true
		m.err = nil
		m.status = "Refining..."
		// Show the user's message right away; the controller appends it too.
		m.viewport.SetContent(m.content(input))
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, m.refine(input))
	}
}

func (m Model) generate(s story.Story) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		result, err := ctrl.Generate(ctx, s)
		return generatedMsg{result: result, err: err}
	}
}

func (m Model) refine(instruction string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	before := ctrl.Snapshot()
	return func() tea.Msg {
		after, err := ctrl.Refine(ctx, instruction)
		return refinedMsg{before: before, after: after, err: err}
	}
}

func (m Model) export() tea.Cmd {
	current := m.ctrl.Snapshot()
	save := m.cfg.Export
	return func() tea.Msg {
		if save == nil {
			return exportedMsg{err: errors.New("export is not configured")}
		}
		if current == nil {
			return exportedMsg{err: errors.New("nothing to export yet")}
		}
		path, err := save(current)
		if err != nil {
			logging.UI("export failed: %v", err)
		}
		return exportedMsg{path: path, err: err}
	}
}

func (m *Model) resize(width, height int) {
	logging.UIDebug("resize %dx%d", width, height)
	m.width = width
	vh := height - headerHeight - footerHeight - inputHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.textarea.SetWidth(max(width-4, 10))
	m.ready = true
	// Width changed, so the cached rendering is stale.
	m.renderedVersion = -1
	m.refresh()
}
