// Package session holds the state of one interactive session: the single
// authoritative test case collection and the refinement chat transcript.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/RUBESHR7/compass-qa/internal/generation"
	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

// ErrBusy is returned when a call is started while another is in flight.
var ErrBusy = errors.New("a generation or refinement is already in progress")

// Chat transcript texts.
const (
	Greeting         = `I can help you refine these test cases. Just tell me what to change! (e.g., "Add a negative case for invalid email")`
	RefinedFormat    = `Done! I've updated the test cases and set the filename to "%s".`
	RefinementFailed = "Sorry, I encountered an error while refining the test cases. Please try again."
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleAI   Role = "ai"
	RoleUser Role = "user"
)

// Message is one chat transcript entry.
type Message struct {
	Role Role
	Text string
	At   time.Time
}

// Engine performs the model calls. *generation.Engine satisfies it.
type Engine interface {
	Generate(ctx context.Context, s story.Story) (*testcase.GenerationResult, error)
	Refine(ctx context.Context, current *testcase.GenerationResult, instruction string) (*testcase.GenerationResult, error)
}

// Controller owns the session state. The collection is only ever replaced
// as a whole, and at most one model call runs at a time.
type Controller struct {
	id     string
	engine Engine

	sem      *semaphore.Weighted
	inFlight atomic.Bool

	mu         sync.RWMutex
	result     *testcase.GenerationResult
	transcript []Message
	version    int

	now func() time.Time
}

// New creates an empty session.
func New(engine Engine) *Controller {
	c := &Controller{
		id:     uuid.NewString(),
		engine: engine,
		sem:    semaphore.NewWeighted(1),
		now:    time.Now,
	}
	logging.Session("session %s created", c.id)
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// InFlight reports whether a model call is outstanding.
func (c *Controller) InFlight() bool { return c.inFlight.Load() }

func (c *Controller) acquire(op string) error {
	if !c.sem.TryAcquire(1) {
		logging.SessionWarn("session %s: %s rejected, call in flight", c.id, op)
		return ErrBusy
	}
	c.inFlight.Store(true)
	return nil
}

func (c *Controller) release() {
	c.inFlight.Store(false)
	c.sem.Release(1)
}

// Generate runs a fresh generation. On success the collection is replaced
// and the transcript restarts with the greeting; on failure nothing changes.
func (c *Controller) Generate(ctx context.Context, s story.Story) (*testcase.GenerationResult, error) {
	if err := c.acquire("generate"); err != nil {
		return nil, err
	}
	defer c.release()

	result, err := c.engine.Generate(ctx, s)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.result = result
	c.transcript = []Message{{Role: RoleAI, Text: Greeting, At: c.now()}}
	c.version++
	c.mu.Unlock()

	logging.Session("session %s: collection replaced by generation (%d cases)", c.id, len(result.TestCases))
	return result.Clone(), nil
}

// Refine applies a chat instruction to the current collection. Both the
// instruction and the outcome are recorded in the transcript. On failure the
// collection is left exactly as it was and the error wraps
// generation.ErrRefinementFailed.
func (c *Controller) Refine(ctx context.Context, instruction string) (*testcase.GenerationResult, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, fmt.Errorf("%w: %w", generation.ErrRefinementFailed, generation.ErrEmptyInstruction)
	}
	if err := c.acquire("refine"); err != nil {
		return nil, err
	}
	defer c.release()

	c.mu.Lock()
	current := c.result.Clone()
	c.transcript = append(c.transcript, Message{Role: RoleUser, Text: instruction, At: c.now()})
	c.mu.Unlock()

	result, err := c.engine.Refine(ctx, current, instruction)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.transcript = append(c.transcript, Message{Role: RoleAI, Text: RefinementFailed, At: c.now()})
		logging.SessionWarn("session %s: refinement failed, collection kept: %v", c.id, err)
		return nil, err
	}
	c.result = result
	c.version++
	c.transcript = append(c.transcript, Message{
		Role: RoleAI,
		Text: fmt.Sprintf(RefinedFormat, result.SuggestedFilename),
		At:   c.now(),
	})
	logging.Session("session %s: collection replaced by refinement (%d cases)", c.id, len(result.TestCases))
	return result.Clone(), nil
}

// Load replaces the collection with one obtained elsewhere, e.g. a saved
// JSON file.
func (c *Controller) Load(result *testcase.GenerationResult) error {
	if err := c.acquire("load"); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = result.Clone()
	c.transcript = []Message{{Role: RoleAI, Text: Greeting, At: c.now()}}
	c.version++
	logging.SessionDebug("session %s: collection loaded (version %d)", c.id, c.version)
	return nil
}

// Reset discards the collection and transcript.
func (c *Controller) Reset() error {
	if err := c.acquire("reset"); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = nil
	c.transcript = nil
	c.version++
	logging.Session("session %s reset", c.id)
	return nil
}

// Snapshot returns a deep copy of the current collection, or nil.
func (c *Controller) Snapshot() *testcase.GenerationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result.Clone()
}

// Transcript returns a copy of the chat transcript.
func (c *Controller) Transcript() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Version increments on every replacement of the collection.
func (c *Controller) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
