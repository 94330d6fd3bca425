// Package render turns a test case collection into markdown, styled
// terminal output and change summaries.
package render

import (
	"fmt"
	"strings"

	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return " "
	}
	return cellEscaper.Replace(s)
}

// Markdown renders result as a document: the filename as heading, then one
// section per test case with its metadata and a steps table.
func Markdown(result *testcase.GenerationResult) string {
	if result == nil || len(result.TestCases) == 0 {
		return "_No test cases._\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", result.SuggestedFilename)
	fmt.Fprintf(&sb, "%d test cases, %d steps\n\n", len(result.TestCases), result.StepCount())

	for i := range result.TestCases {
		tc := &result.TestCases[i]
		fmt.Fprintf(&sb, "## %s: %s\n\n", tc.ID, strings.TrimSpace(tc.Summary))

		var meta []string
		for _, kv := range [][2]string{
			{"Priority", string(tc.Priority)},
			{"Label", tc.Label},
			{"Category", tc.TestCategory},
			{"Folder", tc.CaseFolder},
			{"Status", tc.Status},
			{"Minutes", tc.ExecutionMinutes},
		} {
			if strings.TrimSpace(kv[1]) != "" {
				meta = append(meta, fmt.Sprintf("**%s:** %s", kv[0], strings.TrimSpace(kv[1])))
			}
		}
		if len(meta) > 0 {
			sb.WriteString(strings.Join(meta, " · "))
			sb.WriteString("\n\n")
		}
		if d := strings.TrimSpace(tc.Description); d != "" {
			sb.WriteString(d)
			sb.WriteString("\n\n")
		}
		if p := strings.TrimSpace(tc.PreConditions); p != "" {
			fmt.Fprintf(&sb, "**Preconditions:** %s\n\n", p)
		}

		sb.WriteString("| # | Step | Input | Expected |\n")
		sb.WriteString("|---|------|-------|----------|\n")
		for _, st := range tc.Steps {
			fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", st.StepNumber, cell(st.Description), cell(st.InputData), cell(st.ExpectedOutcome))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

