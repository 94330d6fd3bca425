package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer; zap may write from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisabledByDefault(t *testing.T) {
	require.NoError(t, Initialize(Options{}))
	defer CloseAll()

	assert.False(t, IsDebugMode())
	assert.False(t, IsCategoryEnabled(CategoryAPI))

	// No-op loggers must be safe to call.
	API("call %d", 1)
	Get(CategorySession).With("k", "v").Error("nothing")
}

func TestInitializeWithWriter(t *testing.T) {
	buf := &syncBuffer{}
	InitializeWithWriter(Options{Level: "debug", Format: "json"}, buf)
	defer CloseAll()

	API("generate model=%s", "gemini-flash-latest")
	SessionDebug("state replaced cases=%d", 3)

	out := buf.String()
	assert.Contains(t, out, `"logger":"api"`)
	assert.Contains(t, out, "generate model=gemini-flash-latest")
	assert.Contains(t, out, "state replaced cases=3")
}

func TestLevelFiltering(t *testing.T) {
	buf := &syncBuffer{}
	InitializeWithWriter(Options{Level: "warn"}, buf)
	defer CloseAll()

	Get(CategoryExport).Info("hidden")
	Get(CategoryExport).Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestCategoryToggles(t *testing.T) {
	buf := &syncBuffer{}
	InitializeWithWriter(Options{
		Level:      "debug",
		Categories: map[string]bool{"ui": false},
	}, buf)
	defer CloseAll()

	assert.False(t, IsCategoryEnabled(CategoryUI))
	assert.True(t, IsCategoryEnabled(CategoryRefinement), "unlisted categories default to enabled")

	UI("should not appear")
	Refinement("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestInitializeWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "compass.log")

	require.NoError(t, Initialize(Options{
		DebugMode: true,
		Level:     "info",
		File:      logPath,
		MaxSizeMB: 1,
	}))
	Generation("generated %d cases", 5)
	CloseAll()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "generated 5 cases"))
	assert.Contains(t, string(data), "compass logging initialized")
}

func TestInitializeRequiresFile(t *testing.T) {
	err := Initialize(Options{DebugMode: true})
	assert.Error(t, err)
}

func TestTimerThreshold(t *testing.T) {
	buf := &syncBuffer{}
	InitializeWithWriter(Options{Level: "debug"}, buf)
	defer CloseAll()

	timer := StartTimer(CategoryAPI, "slow call")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.Greater(t, elapsed, time.Duration(0))
	assert.Contains(t, buf.String(), "slow call took")
}
