package story

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestStoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		story   Story
		allowed []int
		wantErr error
	}{
		{"valid default counts", Story{Text: "As a user, I want to log in", Count: 5}, nil, nil},
		{"blank text", Story{Text: "  \n\t", Count: 5}, nil, ErrEmptyStory},
		{"count not offered", Story{Text: "story", Count: 4}, nil, ErrInvalidCount},
		{"zero count", Story{Text: "story", Count: 0}, nil, ErrInvalidCount},
		{"custom allowed", Story{Text: "story", Count: 4}, []int{2, 4}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.story.Validate(tt.allowed)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNextCount(t *testing.T) {
	assert.Equal(t, 7, NextCount(nil, 5))
	assert.Equal(t, 3, NextCount(nil, 20))
	assert.Equal(t, 3, NextCount(nil, 99), "unknown count restarts at the first option")
	assert.Equal(t, 4, NextCount([]int{2, 4}, 2))
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()

	t.Run("png accepted", func(t *testing.T) {
		path := filepath.Join(dir, "login.png")
		require.NoError(t, os.WriteFile(path, pngPixel, 0644))

		a, err := LoadAttachment(path)
		require.NoError(t, err)
		assert.Equal(t, "login.png", a.Name)
		assert.Equal(t, "image/png", a.MIMEType)
		assert.Equal(t, pngPixel, a.Data)
	})

	t.Run("text rejected", func(t *testing.T) {
		path := filepath.Join(dir, "notes.png")
		require.NoError(t, os.WriteFile(path, []byte("just some notes"), 0644))

		_, err := LoadAttachment(path)
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadAttachment(filepath.Join(dir, "absent.png"))
		assert.Error(t, err)
	})

	t.Run("batch stops at first failure", func(t *testing.T) {
		good := filepath.Join(dir, "a.png")
		require.NoError(t, os.WriteFile(good, pngPixel, 0644))

		list, err := LoadAttachments([]string{good, filepath.Join(dir, "absent.png")})
		assert.Error(t, err)
		assert.Nil(t, list)

		list, err = LoadAttachments([]string{good, good})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(text string) { changes <- text })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	select {
	case got := <-changes:
		assert.Equal(t, "v2", got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
