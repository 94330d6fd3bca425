// Package story holds the user input a generation starts from: the user
// story text, the number of test cases wanted and optional screenshots.
package story

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultCounts are the test case counts offered to the user.
var DefaultCounts = []int{3, 5, 7, 10, 15, 20}

// DefaultCount is preselected when the user does not choose.
const DefaultCount = 5

var (
	// ErrEmptyStory is returned when the story text is blank.
	ErrEmptyStory = errors.New("user story is required")
	// ErrInvalidCount is returned for a count outside the offered set.
	ErrInvalidCount = errors.New("invalid test case count")
)

// Story is one generation request.
type Story struct {
	Text        string
	Count       int
	Screenshots []Attachment
}

// Validate checks the story against the allowed counts. A nil allowed list
// means DefaultCounts.
func (s Story) Validate(allowed []int) error {
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptyStory
	}
	if allowed == nil {
		allowed = DefaultCounts
	}
	if !slices.Contains(allowed, s.Count) {
		return fmt.Errorf("%w: %d (choose one of %v)", ErrInvalidCount, s.Count, allowed)
	}
	return nil
}

// NextCount cycles through allowed counts; used by the chat UI selector.
func NextCount(allowed []int, current int) int {
	if len(allowed) == 0 {
		allowed = DefaultCounts
	}
	i := slices.Index(allowed, current)
	return allowed[(i+1)%len(allowed)]
}
