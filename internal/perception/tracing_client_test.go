package perception

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RUBESHR7/compass-qa/internal/logging"
)

// mockClient is a scripted Client for testing.
type mockClient struct {
	response string
	err      error
	requests []Request
}

func (m *mockClient) Generate(ctx context.Context, req Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

func (m *mockClient) Model() string { return "mock-model" }

type mockLister struct {
	mockClient
	models []ModelInfo
}

func (m *mockLister) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return m.models, nil
}

func TestTracingClient_RecordsSuccess(t *testing.T) {
	under := &mockClient{response: "reply"}
	tc := NewTracingClient(under)

	got, err := tc.Generate(context.Background(), Request{Prompt: "prompt", Images: []Image{{MIMEType: "image/png"}}})
	require.NoError(t, err)
	assert.Equal(t, "reply", got)
	assert.Equal(t, "mock-model", tc.Model())
	require.Len(t, under.requests, 1)

	traces := tc.Traces()
	require.Len(t, traces, 1)
	tr := traces[0]
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "mock-model", tr.Model)
	assert.Equal(t, len("prompt"), tr.PromptLen)
	assert.Equal(t, 1, tr.Images)
	assert.Equal(t, len("reply"), tr.ResponseLen)
	assert.True(t, tr.Success)
	assert.Empty(t, tr.Error)

	stats := tc.Stats()
	assert.Equal(t, 1, stats.Calls)
	assert.Equal(t, 0, stats.Failures)
}

func TestTracingClient_RecordsFailure(t *testing.T) {
	boom := &TransportError{Provider: "gemini", Code: 500, Message: "boom"}
	tc := NewTracingClient(&mockClient{err: boom})

	_, err := tc.Generate(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, boom, "errors pass through unwrapped")

	stats := tc.Stats()
	assert.Equal(t, 1, stats.Calls)
	assert.Equal(t, 1, stats.Failures)
	tr := tc.Traces()[0]
	assert.False(t, tr.Success)
	assert.Contains(t, tr.Error, "status 500")
}

func TestTracingClient_BoundsHistory(t *testing.T) {
	tc := NewTracingClient(&mockClient{response: "r"})
	for i := 0; i < maxTraces+5; i++ {
		_, _ = tc.Generate(context.Background(), Request{Prompt: "p"})
	}
	assert.Len(t, tc.Traces(), maxTraces)
	assert.Equal(t, maxTraces+5, tc.Stats().Calls)

	ids := make(map[string]bool)
	for _, tr := range tc.Traces() {
		ids[tr.ID] = true
	}
	assert.Len(t, ids, maxTraces, "trace IDs are unique")
}

func TestTracingClient_ListModels(t *testing.T) {
	t.Run("delegates", func(t *testing.T) {
		tc := NewTracingClient(&mockLister{models: []ModelInfo{{Name: "m1"}}})
		models, err := tc.ListModels(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []ModelInfo{{Name: "m1"}}, models)
	})

	t.Run("unsupported", func(t *testing.T) {
		tc := NewTracingClient(&mockClient{})
		_, err := tc.ListModels(context.Background())
		assert.Error(t, err)
	})
}

func TestTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &TransportError{Provider: "gemini", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "gemini request failed: dial tcp: connection refused", err.Error())

	err = &TransportError{Provider: "gemini", Message: "prompt blocked: SAFETY"}
	assert.Equal(t, "gemini request failed: prompt blocked: SAFETY", err.Error())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTracingClient_LogsTraceID(t *testing.T) {
	out := &lockedBuffer{}
	logging.InitializeWithWriter(logging.Options{Level: "debug", Format: "json"}, out)
	defer logging.CloseAll()

	tc := NewTracingClient(&mockClient{err: errors.New("boom")})
	_, err := tc.Generate(context.Background(), Request{Prompt: "prompt"})
	require.Error(t, err)

	id := tc.Traces()[0].ID
	logs := out.String()
	assert.Contains(t, logs, `"trace":"`+id+`"`)
	assert.Contains(t, logs, "LLM call started: model=mock-model")
	assert.Contains(t, logs, "LLM call failed")
}
