package chat

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/render"
	"github.com/RUBESHR7/compass-qa/internal/session"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.input.Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(m.help()))
	return b.String()
}

func (m Model) header() string {
	title := m.styles.title.Render("Compass QA")
	switch m.mode {
	case StoryMode:
		return fmt.Sprintf("%s  %s", title, m.styles.muted.Render(fmt.Sprintf("new story · %d test cases", m.count)))
	default:
		current := m.ctrl.Snapshot()
		if current == nil {
			return title
		}
		return fmt.Sprintf("%s  %s", title,
			m.styles.muted.Render(fmt.Sprintf("%s · %d test cases", current.SuggestedFilename, len(current.TestCases))))
	}
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.err.Render("✗ " + m.err.Error())
	case m.loading:
		return m.spinner.View() + " " + m.styles.status.Render(m.status)
	case m.status != "":
		return m.styles.status.Render(m.status)
	}
	return ""
}

func (m Model) help() string {
	if m.mode == StoryMode {
		return "enter generate · ctrl+n count · esc quit"
	}
	return "enter refine · ctrl+e export · ctrl+r new story · pgup/pgdn scroll · esc quit"
}

// refresh re-renders the viewport from the controller state.
func (m *Model) refresh() {
	m.viewport.SetContent(m.content(""))
	if m.mode == RefineMode {
		m.viewport.GotoBottom()
	}
}

// content builds the viewport text. pending is a user message not yet in
// the transcript.
func (m *Model) content(pending string) string {
	if m.mode == StoryMode {
		return m.intro()
	}

	var b strings.Builder
	b.WriteString(m.cases())
	b.WriteString("\n")
	for _, msg := range m.ctrl.Transcript() {
		b.WriteString(m.message(msg.Role, msg.Text))
	}
	if pending != "" {
		b.WriteString(m.message(session.RoleUser, pending))
	}
	return b.String()
}

func (m *Model) intro() string {
	var b strings.Builder
	b.WriteString("Describe the feature to test as a user story, for example:\n\n")
	b.WriteString(m.styles.muted.Render("  As a registered user, I want to log in with my email and password\n  so that I can access my account."))
	b.WriteString("\n\n")
	if n := len(m.cfg.Screenshots); n > 0 {
		b.WriteString(fmt.Sprintf("%d screenshot(s) will be attached.\n", n))
	}
	return b.String()
}

func (m *Model) cases() string {
	version := m.ctrl.Version()
	if version == m.renderedVersion {
		return m.rendered
	}
	out, err := render.Terminal(m.ctrl.Snapshot(), m.cfg.Style, max(m.width-4, 20))
	if err != nil {
		logging.UI("render failed: %v", err)
		out = render.Markdown(m.ctrl.Snapshot())
	}
	m.rendered, m.renderedVersion = out, version
	return out
}

func (m *Model) message(role session.Role, text string) string {
	label := m.styles.ai.Render("AI")
	if role == session.RoleUser {
		label = m.styles.user.Render("You")
	}
	return fmt.Sprintf("%s: %s\n\n", label, wordwrap.String(text, max(m.width-6, 20)))
}
