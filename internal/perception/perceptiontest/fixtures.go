package perceptiontest

import (
	"encoding/json"
	"fmt"

	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// Cases returns n well-formed test cases with stepsEach steps. IDs are left
// as the model might send them, unnumbered.
func Cases(n, stepsEach int) []testcase.TestCase {
	out := make([]testcase.TestCase, n)
	for i := range out {
		steps := make([]testcase.Step, stepsEach)
		for j := range steps {
			steps[j] = testcase.Step{
				StepNumber:      j + 1,
				Description:     fmt.Sprintf("Case %d step %d", i+1, j+1),
				ExpectedOutcome: fmt.Sprintf("Outcome %d.%d", i+1, j+1),
			}
		}
		out[i] = testcase.TestCase{
			ID:               "TC_XXX",
			Summary:          fmt.Sprintf("Case %d", i+1),
			Description:      fmt.Sprintf("Verifies behavior %d", i+1),
			PreConditions:    "User is on the login page",
			Steps:            steps,
			Label:            "Functional",
			Priority:         []testcase.Priority{testcase.PriorityHigh, testcase.PriorityMedium, testcase.PriorityLow}[i%3],
			Status:           "Draft",
			ExecutionMinutes: "5",
			CaseFolder:       "Auth",
			TestCategory:     "Regression",
		}
	}
	return out
}

// ObjectReply renders cases in the current object shape, fenced the way
// the model usually answers.
func ObjectReply(filename string, cases []testcase.TestCase) string {
	data, err := json.MarshalIndent(testcase.GenerationResult{SuggestedFilename: filename, TestCases: cases}, "", "  ")
	if err != nil {
		panic(err)
	}
	return "```json\n" + string(data) + "\n```"
}
