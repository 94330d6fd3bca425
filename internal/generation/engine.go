// Package generation turns a story into test cases and applies chat-driven
// refinements, composing the prompt builder, model transport and normalizer.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/normalize"
	"github.com/RUBESHR7/compass-qa/internal/perception"
	"github.com/RUBESHR7/compass-qa/internal/prompt"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// slowCall is the generation duration past which a warning is logged.
const slowCall = 60 * time.Second

var (
	// ErrRefinementFailed wraps every refinement failure. The caller keeps
	// the prior collection.
	ErrRefinementFailed = errors.New("refinement failed")
	// ErrEmptyInstruction is returned when a refinement has nothing to do.
	ErrEmptyInstruction = errors.New("refinement instruction is required")
	// ErrNothingToRefine is returned when there is no current collection.
	ErrNothingToRefine = errors.New("no test cases to refine")
)

// Options tunes an Engine.
type Options struct {
	// AllowedCounts restricts story counts; nil means story.DefaultCounts.
	AllowedCounts []int
	// FallbackFilename is used when a generation reply has no filename.
	FallbackFilename string
}

// Engine runs generation and refinement calls. It holds no collection
// state; callers own the current GenerationResult.
type Engine struct {
	client  perception.Client
	prompts *prompt.Builder
	opts    Options
}

// NewEngine creates an engine over client.
func NewEngine(client perception.Client, prompts *prompt.Builder, opts Options) *Engine {
	if opts.FallbackFilename == "" {
		opts.FallbackFilename = normalize.DefaultFilename
	}
	return &Engine{client: client, prompts: prompts, opts: opts}
}

// Generate produces a fresh collection for s. Transport failures come back
// as *perception.TransportError, unusable replies as
// normalize.ErrMalformedResponse.
func (e *Engine) Generate(ctx context.Context, s story.Story) (*testcase.GenerationResult, error) {
	timer := logging.StartTimer(logging.CategoryGeneration, "Generate")
	defer timer.StopWithThreshold(slowCall)

	if err := s.Validate(e.opts.AllowedCounts); err != nil {
		return nil, err
	}
	text, err := e.prompts.Generation(s)
	if err != nil {
		return nil, err
	}

	logging.Generation("generating %d test cases (story_len=%d screenshots=%d)", s.Count, len(s.Text), len(s.Screenshots))
	raw, err := e.client.Generate(ctx, perception.Request{
		Prompt: text,
		Images: images(s.Screenshots),
	})
	if err != nil {
		logging.GenerationError("generation call failed: %v", err)
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	result, err := normalize.Normalize(raw, normalize.Options{FallbackFilename: e.opts.FallbackFilename})
	if err != nil {
		logging.GenerationError("unusable generation reply: %v", err)
		return nil, err
	}
	if len(result.TestCases) != s.Count {
		logging.GenerationDebug("requested %d test cases, model returned %d", s.Count, len(result.TestCases))
	}
	logging.Generation("generated %d test cases -> %s", len(result.TestCases), result.SuggestedFilename)
	return result, nil
}

// Refine sends the entire current collection with the instruction and
// returns the replacement. current is never modified. The reply goes
// through the same normalization as generation, with the current filename
// as the fallback.
func (e *Engine) Refine(ctx context.Context, current *testcase.GenerationResult, instruction string) (*testcase.GenerationResult, error) {
	timer := logging.StartTimer(logging.CategoryRefinement, "Refine")
	defer timer.Stop()

	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("%w: %w", ErrRefinementFailed, ErrEmptyInstruction)
	}
	if current == nil || len(current.TestCases) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrRefinementFailed, ErrNothingToRefine)
	}

	text, err := e.prompts.Refinement(current, instruction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefinementFailed, err)
	}

	logging.Refinement("refining %d test cases: %q", len(current.TestCases), instruction)
	logging.RefinementDebug("refinement prompt_len=%d", len(text))
	raw, err := e.client.Generate(ctx, perception.Request{Prompt: text})
	if err != nil {
		logging.RefinementError("refinement call failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrRefinementFailed, err)
	}

	fallback := current.SuggestedFilename
	if fallback == "" {
		fallback = e.opts.FallbackFilename
	}
	result, err := normalize.Normalize(raw, normalize.Options{FallbackFilename: fallback})
	if err != nil {
		logging.RefinementError("unusable refinement reply: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrRefinementFailed, err)
	}
	logging.Refinement("refined %d -> %d test cases, filename %s", len(current.TestCases), len(result.TestCases), result.SuggestedFilename)
	return result, nil
}

func images(atts []story.Attachment) []perception.Image {
	if len(atts) == 0 {
		return nil
	}
	out := make([]perception.Image, len(atts))
	for i, a := range atts {
		out[i] = perception.Image{MIMEType: a.MIMEType, Data: a.Data}
	}
	return out
}
