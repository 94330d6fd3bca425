package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/normalize"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// SaveJSON writes result in the wire shape so later commands can pick it
// up with LoadJSON.
func SaveJSON(path string, result *testcase.GenerationResult) error {
	if result == nil || len(result.TestCases) == 0 {
		return ErrNothingToExport
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal test cases: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Export("saved %d test cases to %s", len(result.TestCases), path)
	return nil
}

// LoadJSON reads a collection file. Both the object and the bare array
// shape are accepted, fences and all, since the file is run through the
// same normalization as a model reply.
func LoadJSON(path string) (*testcase.GenerationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	result, err := normalize.Normalize(string(data), normalize.Options{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}
