package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

var (
	badgeBase = lipgloss.NewStyle().Padding(0, 1).Bold(true)

	priorityColors = map[testcase.Priority]lipgloss.Color{
		testcase.PriorityHigh:   lipgloss.Color("#EF4444"),
		testcase.PriorityMedium: lipgloss.Color("#F59E0B"),
		testcase.PriorityLow:    lipgloss.Color("#10B981"),
	}
	unknownPriority = lipgloss.Color("#6B7280")
)

// PriorityStyle returns the badge style for p. Unrecognized values get a
// neutral grey.
func PriorityStyle(p testcase.Priority) lipgloss.Style {
	c, ok := priorityColors[testcase.Priority(strings.TrimSpace(string(p)))]
	if !ok {
		c = unknownPriority
	}
	return badgeBase.Foreground(lipgloss.Color("#FFFFFF")).Background(c)
}

// Priority renders p as a colored badge.
func Priority(p testcase.Priority) string {
	label := strings.TrimSpace(string(p))
	if label == "" {
		label = "-"
	}
	return PriorityStyle(p).Render(label)
}
