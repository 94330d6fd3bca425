package story

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxAttachmentBytes bounds a single screenshot. Inline request parts are
// limited by the provider, so large files are rejected up front.
const MaxAttachmentBytes = 15 << 20

// ErrNotImage is returned when a screenshot file is not an image.
var ErrNotImage = errors.New("attachment is not an image")

// Attachment is one screenshot supplied with the story.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// LoadAttachment reads a screenshot from disk, sniffing its content type.
// Only image/* content is accepted, mirroring the drop zone of the web form.
func LoadAttachment(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to stat screenshot: %w", err)
	}
	if info.Size() > MaxAttachmentBytes {
		return Attachment{}, fmt.Errorf("screenshot %s is %d bytes (max %d)", path, info.Size(), MaxAttachmentBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read screenshot: %w", err)
	}
	return NewAttachment(filepath.Base(path), data)
}

// NewAttachment wraps in-memory image bytes, e.g. pasted from a clipboard.
func NewAttachment(name string, data []byte) (Attachment, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Attachment{}, fmt.Errorf("%w: %s is %s", ErrNotImage, name, mt.String())
	}
	return Attachment{
		Name:     name,
		MIMEType: mt.String(),
		Data:     data,
	}, nil
}

// LoadAttachments loads every path, stopping at the first failure.
func LoadAttachments(paths []string) ([]Attachment, error) {
	out := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := LoadAttachment(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
