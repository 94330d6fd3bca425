package render

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// ChangeKind classifies a case in a refinement diff.
type ChangeKind int

const (
	Kept ChangeKind = iota
	Added
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

// Change is one case line in a refinement diff.
type Change struct {
	Kind     ChangeKind
	ID       string // ID on the side the case appears; new ID for kept cases
	Priority testcase.Priority
	Summary  string
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s [%s] %s", c.Kind, c.ID, c.Priority, c.Summary)
}

// ChangeSet is the outcome of Changes.
type ChangeSet struct {
	Changes []Change
	Added   int
	Removed int
	Kept    int
}

// Summary is a one-line count, e.g. "+1 -2 =3".
func (cs ChangeSet) Summary() string {
	return fmt.Sprintf("+%d -%d =%d", cs.Added, cs.Removed, cs.Kept)
}

// String renders every change on its own line.
func (cs ChangeSet) String() string {
	var sb strings.Builder
	for _, c := range cs.Changes {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// caseLine is the diff key. IDs are renumbered on every pass, so they are
// left out; a case that changed priority or summary counts as replaced.
func caseLine(tc *testcase.TestCase) string {
	return strings.ReplaceAll(string(tc.Priority)+" | "+strings.TrimSpace(tc.Summary), "\n", " ") + "\n"
}

func caseLines(r *testcase.GenerationResult) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for i := range r.TestCases {
		sb.WriteString(caseLine(&r.TestCases[i]))
	}
	return sb.String()
}

// Changes compares two collections case by case using a line diff over
// priority and summary.
func Changes(before, after *testcase.GenerationResult) ChangeSet {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(caseLines(before), caseLines(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var cs ChangeSet
	oldIdx, newIdx := 0, 0
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		for i := 0; i < n; i++ {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				tc := &after.TestCases[newIdx]
				cs.Changes = append(cs.Changes, Change{Kind: Kept, ID: tc.ID, Priority: tc.Priority, Summary: tc.Summary})
				cs.Kept++
				oldIdx++
				newIdx++
			case diffmatchpatch.DiffDelete:
				tc := &before.TestCases[oldIdx]
				cs.Changes = append(cs.Changes, Change{Kind: Removed, ID: tc.ID, Priority: tc.Priority, Summary: tc.Summary})
				cs.Removed++
				oldIdx++
			case diffmatchpatch.DiffInsert:
				tc := &after.TestCases[newIdx]
				cs.Changes = append(cs.Changes, Change{Kind: Added, ID: tc.ID, Priority: tc.Priority, Summary: tc.Summary})
				cs.Added++
				newIdx++
			}
		}
	}
	return cs
}
