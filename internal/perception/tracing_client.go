package perception

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RUBESHR7/compass-qa/internal/logging"
)

// maxTraces bounds the in-memory trace history.
const maxTraces = 32

// Trace captures one model interaction.
type Trace struct {
	ID          string
	Model       string
	PromptLen   int
	Images      int
	ResponseLen int
	Duration    time.Duration
	Success     bool
	Error       string
	Timestamp   time.Time
}

// Stats summarizes the calls made through a TracingClient.
type Stats struct {
	Calls         int
	Failures      int
	TotalDuration time.Duration
}

// TracingClient wraps any Client and records every interaction.
type TracingClient struct {
	underlying Client

	mu     sync.RWMutex
	traces []Trace
	stats  Stats
}

// NewTracingClient creates a tracing wrapper around an existing client.
func NewTracingClient(underlying Client) *TracingClient {
	return &TracingClient{underlying: underlying}
}

// Model returns the underlying model name.
func (tc *TracingClient) Model() string { return tc.underlying.Model() }

// Generate implements Client with tracing.
func (tc *TracingClient) Generate(ctx context.Context, req Request) (string, error) {
	id := uuid.NewString()
	start := time.Now()
	log := logging.Get(logging.CategoryAPI).With("trace", id)
	log.Info("LLM call started: model=%s prompt_len=%d images=%d", tc.Model(), len(req.Prompt), len(req.Images))

	response, err := tc.underlying.Generate(ctx, req)

	duration := time.Since(start)
	if err != nil {
		log.Error("LLM call failed: duration=%v error=%s", duration, err.Error())
	} else {
		log.Info("LLM call completed: duration=%v response_len=%d", duration, len(response))
		log.Debug("LLM response head: %q", head(response, 200))
	}

	trace := Trace{
		ID:          id,
		Model:       tc.Model(),
		PromptLen:   len(req.Prompt),
		Images:      len(req.Images),
		ResponseLen: len(response),
		Duration:    duration,
		Success:     err == nil,
		Timestamp:   start,
	}
	if err != nil {
		trace.Error = err.Error()
	}
	tc.record(trace)

	return response, err
}

func (tc *TracingClient) record(t Trace) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.stats.Calls++
	tc.stats.TotalDuration += t.Duration
	if !t.Success {
		tc.stats.Failures++
	}
	tc.traces = append(tc.traces, t)
	if len(tc.traces) > maxTraces {
		tc.traces = tc.traces[len(tc.traces)-maxTraces:]
	}
}

// ListModels delegates to the underlying client when it can list models.
func (tc *TracingClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	lister, ok := tc.underlying.(ModelLister)
	if !ok {
		return nil, errors.New("model listing not supported by this provider")
	}
	timer := logging.StartTimer(logging.CategoryAPI, "ListModels")
	defer timer.Stop()
	logging.API("listing models for %s", tc.Model())
	models, err := lister.ListModels(ctx)
	if err != nil {
		logging.APIError("model listing failed: %v", err)
		return nil, err
	}
	logging.APIDebug("model listing returned %d models", len(models))
	return models, nil
}

// Stats returns call counters.
func (tc *TracingClient) Stats() Stats {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.stats
}

// Traces returns the most recent traces, oldest first.
func (tc *TracingClient) Traces() []Trace {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	out := make([]Trace, len(tc.traces))
	copy(out, tc.traces)
	return out
}

// GetUnderlying returns the wrapped client.
func (tc *TracingClient) GetUnderlying() Client {
	return tc.underlying
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
