package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/RUBESHR7/compass-qa/internal/export"
	"github.com/RUBESHR7/compass-qa/internal/generation"
	"github.com/RUBESHR7/compass-qa/internal/normalize"
	"github.com/RUBESHR7/compass-qa/internal/perception"
	"github.com/RUBESHR7/compass-qa/internal/render"
	"github.com/RUBESHR7/compass-qa/internal/session"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	mutedColor   = color.New(color.FgHiBlack)
)

func success(w io.Writer, format string, args ...any) {
	successColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "! "+format+"\n", args...)
}

func info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, format+"\n", args...)
}

// explain turns an error into the message shown to the user.
func explain(err error) string {
	var te *perception.TransportError
	switch {
	case errors.Is(err, perception.ErrMissingCredential):
		return errorColor.Sprint("No API key configured.") + " Set GEMINI_API_KEY or llm.api_key in the config file."
	case errors.Is(err, generation.ErrRefinementFailed):
		return errorColor.Sprint(session.RefinementFailed) + mutedColor.Sprintf(" (%v)", err)
	case errors.Is(err, normalize.ErrMalformedResponse):
		return errorColor.Sprint("The model reply could not be read as test cases.") + " Try again." + mutedColor.Sprintf(" (%v)", err)
	case errors.As(err, &te):
		return errorColor.Sprint("The model request failed: ") + te.Error()
	case errors.Is(err, story.ErrEmptyStory), errors.Is(err, story.ErrInvalidCount),
		errors.Is(err, story.ErrNotImage), errors.Is(err, export.ErrNothingToExport),
		errors.Is(err, session.ErrBusy):
		return errorColor.Sprint(err.Error())
	default:
		return errorColor.Sprint("Error: ") + err.Error()
	}
}

// printCases writes a compact one-line-per-case listing.
func printCases(w io.Writer, result *testcase.GenerationResult) {
	for _, tc := range result.TestCases {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			infoColor.Sprint(tc.ID),
			render.Priority(tc.Priority),
			tc.Summary,
			mutedColor.Sprintf("(%d steps)", len(tc.Steps)))
	}
}

func printChanges(w io.Writer, cs render.ChangeSet) {
	for _, c := range cs.Changes {
		switch c.Kind {
		case render.Added:
			successColor.Fprintln(w, "  "+c.String())
		case render.Removed:
			errorColor.Fprintln(w, "  "+c.String())
		default:
			mutedColor.Fprintln(w, "  "+c.String())
		}
	}
	info(w, "%s", cs.Summary())
}

// logUsage reports the call accounting of a traced client.
func logUsage(client perception.Client) {
	tc, ok := client.(*perception.TracingClient)
	if !ok {
		return
	}
	s := tc.Stats()
	logger.Debug("model usage",
		zap.String("model", tc.Model()),
		zap.Int("calls", s.Calls),
		zap.Int("failures", s.Failures),
		zap.Duration("total", s.TotalDuration))
}
