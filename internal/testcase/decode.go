package testcase

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// text accepts any JSON scalar for a free-text field. Models sometimes emit
// "executionMinutes": 5 or "status": null; both decode to their text form.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		// Nested structures are flattened to their compact JSON text.
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = text(buf.String())
	default:
		*t = text(data)
	}
	return nil
}

type wireStep struct {
	StepNumber      json.RawMessage `json:"stepNumber"`
	Description     text            `json:"description"`
	InputData       text            `json:"inputData"`
	ExpectedOutcome text            `json:"expectedOutcome"`
}

// UnmarshalJSON decodes a step leniently. A stepNumber that is not an
// integer decodes to 0; normalization recomputes it anyway.
func (s *Step) UnmarshalJSON(data []byte) error {
	var w wireStep
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Step{
		StepNumber:      parseStepNumber(w.StepNumber),
		Description:     string(w.Description),
		InputData:       string(w.InputData),
		ExpectedOutcome: string(w.ExpectedOutcome),
	}
	return nil
}

func parseStepNumber(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

type wireCase struct {
	ID               text   `json:"id"`
	Summary          text   `json:"summary"`
	Description      text   `json:"description"`
	PreConditions    text   `json:"preConditions"`
	Steps            []Step `json:"steps"`
	Label            text   `json:"label"`
	Priority         text   `json:"priority"`
	Status           text   `json:"status"`
	ExecutionMinutes text   `json:"executionMinutes"`
	CaseFolder       text   `json:"caseFolder"`
	TestCategory     text   `json:"testCategory"`
}

// UnmarshalJSON decodes a test case leniently; see text.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	var w wireCase
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*tc = TestCase{
		ID:               string(w.ID),
		Summary:          string(w.Summary),
		Description:      string(w.Description),
		PreConditions:    string(w.PreConditions),
		Steps:            w.Steps,
		Label:            string(w.Label),
		Priority:         Priority(strings.TrimSpace(string(w.Priority))),
		Status:           string(w.Status),
		ExecutionMinutes: string(w.ExecutionMinutes),
		CaseFolder:       string(w.CaseFolder),
		TestCategory:     string(w.TestCategory),
	}
	return nil
}
