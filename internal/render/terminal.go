package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// Style names accepted by Terminal. StyleAuto picks from the terminal
// background.
const (
	StyleAuto  = "auto"
	StyleDark  = styles.DarkStyle
	StyleLight = styles.LightStyle
	StyleNoTTY = styles.NoTTYStyle
)

// NewRenderer builds a glamour renderer wrapped at width.
func NewRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	opt := glamour.WithAutoStyle()
	if style != "" && style != StyleAuto {
		opt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(opt, glamour.WithWordWrap(width))
}

// Terminal renders result as styled terminal output.
func Terminal(result *testcase.GenerationResult, style string, width int) (string, error) {
	r, err := NewRenderer(style, width)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(Markdown(result))
	if err != nil {
		return "", fmt.Errorf("failed to render test cases: %w", err)
	}
	return out, nil
}
