package prompt

import "google.golang.org/genai"

func stringField(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

// ResponseSchema describes the GenerationResult wire shape for structured
// output requests.
func ResponseSchema() *genai.Schema {
	step := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"stepNumber":      {Type: genai.TypeInteger},
			"description":     stringField("Action to perform, including all input data"),
			"inputData":       stringField("Always empty"),
			"expectedOutcome": stringField("Expected result of the step"),
		},
		PropertyOrdering: []string{"stepNumber", "description", "inputData", "expectedOutcome"},
		Required:         []string{"stepNumber", "description", "expectedOutcome"},
	}

	caseFields := []string{
		"id", "summary", "description", "preConditions", "steps", "label",
		"priority", "status", "executionMinutes", "caseFolder", "testCategory",
	}
	testCase := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":            stringField("TC_XXX"),
			"summary":       stringField("Concise summary of the test case"),
			"description":   stringField("Detailed description including the purpose"),
			"preConditions": stringField("Prerequisites required"),
			"steps": {
				Type:  genai.TypeArray,
				Items: step,
			},
			"label":            stringField("Functional/UI/Security/Performance"),
			"priority":         {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
			"status":           stringField("Draft"),
			"executionMinutes": stringField("Estimated time in minutes"),
			"caseFolder":       stringField("Module/Feature Name"),
			"testCategory":     stringField("Regression/Smoke/Sanity"),
		},
		PropertyOrdering: caseFields,
		Required:         []string{"id", "summary", "steps"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedFilename": stringField("Concise, professional .xlsx filename"),
			"testCases": {
				Type:  genai.TypeArray,
				Items: testCase,
			},
		},
		PropertyOrdering: []string{"suggestedFilename", "testCases"},
		Required:         []string{"suggestedFilename", "testCases"},
	}
}
