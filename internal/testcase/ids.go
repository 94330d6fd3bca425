package testcase

import (
	"errors"
	"fmt"
)

// IDPrefix starts every test case identifier.
const IDPrefix = "TC_"

// ErrNoSteps is returned by Validate for a case without steps.
var ErrNoSteps = errors.New("test case has no steps")

// FormatID returns the identifier for the 1-based position n: TC_001, TC_002...
func FormatID(n int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, n)
}

// Renumber overwrites every case ID with its position and every step number
// with its index+1. The model's own numbering is never trusted.
func Renumber(cases []TestCase) {
	for i := range cases {
		cases[i].ID = FormatID(i + 1)
		for j := range cases[i].Steps {
			cases[i].Steps[j].StepNumber = j + 1
		}
	}
}

// Validate checks the structural invariants a normalized collection must hold.
func Validate(cases []TestCase) error {
	for i, tc := range cases {
		if len(tc.Steps) == 0 {
			return fmt.Errorf("case %d (%s): %w", i+1, tc.ID, ErrNoSteps)
		}
		if tc.ID != FormatID(i+1) {
			return fmt.Errorf("case %d has id %q, want %q", i+1, tc.ID, FormatID(i+1))
		}
		for j, st := range tc.Steps {
			if st.StepNumber != j+1 {
				return fmt.Errorf("case %s step %d has number %d", tc.ID, j+1, st.StepNumber)
			}
		}
	}
	return nil
}
