// Package normalize turns raw model replies into canonical test case
// collections.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// DefaultFilename is used when neither the reply nor the caller names a file.
const DefaultFilename = "TestCases.xlsx"

// ErrMalformedResponse reports a reply that cannot be turned into a usable
// test case collection.
var ErrMalformedResponse = errors.New("malformed model response")

// Options tunes a normalization pass.
type Options struct {
	// FallbackFilename replaces a missing or empty suggestedFilename.
	FallbackFilename string
}

// replyShape tags which of the two accepted wire shapes a reply used.
type replyShape int

const (
	shapeObject replyShape = iota // {"suggestedFilename": ..., "testCases": [...]}
	shapeArray                    // bare [...] (legacy)
)

func (s replyShape) String() string {
	if s == shapeArray {
		return "array"
	}
	return "object"
}

// reply is the tagged-variant decode target: the object shape is tried first
// and a bare array falls back to filling TestCases.
type reply struct {
	shape             replyShape
	SuggestedFilename string
	TestCases         []testcase.TestCase
	hasCases          bool
}

type objectReply struct {
	SuggestedFilename json.RawMessage     `json:"suggestedFilename"`
	TestCases         []testcase.TestCase `json:"testCases"`
}

func (r *reply) UnmarshalJSON(data []byte) error {
	var obj objectReply
	objErr := json.Unmarshal(data, &obj)
	if objErr == nil {
		r.shape = shapeObject
		r.SuggestedFilename = filenameText(obj.SuggestedFilename)
		r.TestCases = obj.TestCases
		r.hasCases = obj.TestCases != nil
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(objErr, &typeErr) || typeErr.Value != "array" || typeErr.Field != "" {
		return objErr
	}

	var arr []testcase.TestCase
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	r.shape = shapeArray
	r.TestCases = arr
	r.hasCases = arr != nil
	return nil
}

// filenameText reads suggestedFilename leniently: strings as-is, numbers
// and booleans as their text, anything else as absent.
func filenameText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

// Normalize parses a raw model reply into a GenerationResult:
// fences stripped, both shapes accepted, filename defaulted, IDs and step
// numbers renumbered. Every failure wraps ErrMalformedResponse.
func Normalize(raw string, opts Options) (*testcase.GenerationResult, error) {
	payload, err := decode(raw)
	if err != nil {
		return nil, err
	}
	logging.GenerationDebug("normalize: shape=%s cases=%d", payload.shape, len(payload.TestCases))

	if !payload.hasCases {
		return nil, fmt.Errorf("%w: reply has no testCases collection", ErrMalformedResponse)
	}
	if len(payload.TestCases) == 0 {
		return nil, fmt.Errorf("%w: reply contains zero test cases", ErrMalformedResponse)
	}

	cases := payload.TestCases
	testcase.Renumber(cases)
	if err := testcase.Validate(cases); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	filename := strings.TrimSpace(payload.SuggestedFilename)
	if filename == "" {
		filename = opts.FallbackFilename
	}
	if filename == "" {
		filename = DefaultFilename
	}

	return &testcase.GenerationResult{
		SuggestedFilename: filename,
		TestCases:         cases,
	}, nil
}

// decode strips fences and decodes the reply without renumbering. A reply
// that is already valid JSON is used as-is, so fence markers inside string
// values survive.
func decode(raw string) (*reply, error) {
	cleaned := strings.TrimSpace(raw)
	if !json.Valid([]byte(cleaned)) {
		cleaned = StripCodeFences(cleaned)
	}
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	data := []byte(cleaned)
	if !json.Valid(data) {
		embedded := extractEmbeddedJSON(cleaned)
		if embedded == "" {
			return nil, fmt.Errorf("%w: reply is not JSON: %s", ErrMalformedResponse, preview(cleaned))
		}
		data = []byte(embedded)
	}

	first := bytes.TrimSpace(data)[0]
	if first != '{' && first != '[' {
		return nil, fmt.Errorf("%w: reply is a JSON scalar, not a collection", ErrMalformedResponse)
	}

	var r reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &r, nil
}

func preview(s string) string {
	const limit = 80
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
