// Package testcase defines the QA test case collection exchanged with the
// model and held by a session.
package testcase

// Priority is the model-supplied urgency of a test case. The three nominal
// values drive display styling only; anything else is kept verbatim.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Step is one action/expectation pair within a test case.
type Step struct {
	StepNumber      int    `json:"stepNumber"`
	Description     string `json:"description"`
	InputData       string `json:"inputData"` // requested empty from the model; data lives in Description
	ExpectedOutcome string `json:"expectedOutcome"`
}

// TestCase is one QA scenario with ordered steps and classification metadata.
type TestCase struct {
	ID               string   `json:"id"`
	Summary          string   `json:"summary"`
	Description      string   `json:"description"`
	PreConditions    string   `json:"preConditions"`
	Steps            []Step   `json:"steps"`
	Label            string   `json:"label"`
	Priority         Priority `json:"priority"`
	Status           string   `json:"status"`
	ExecutionMinutes string   `json:"executionMinutes"`
	CaseFolder       string   `json:"caseFolder"`
	TestCategory     string   `json:"testCategory"`
}

// GenerationResult is the canonical collection produced by a generation or
// refinement pass.
type GenerationResult struct {
	SuggestedFilename string     `json:"suggestedFilename"`
	TestCases         []TestCase `json:"testCases"`
}

// StepCount returns the total number of steps across all cases.
func (r *GenerationResult) StepCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, tc := range r.TestCases {
		n += len(tc.Steps)
	}
	return n
}

// Clone returns a deep copy. Session snapshots are clones so callers can
// never mutate the authoritative collection.
func (r *GenerationResult) Clone() *GenerationResult {
	if r == nil {
		return nil
	}
	out := &GenerationResult{SuggestedFilename: r.SuggestedFilename}
	if r.TestCases == nil {
		return out
	}
	out.TestCases = make([]TestCase, len(r.TestCases))
	for i, tc := range r.TestCases {
		tc.Steps = append([]Step(nil), tc.Steps...)
		out.TestCases[i] = tc
	}
	return out
}
