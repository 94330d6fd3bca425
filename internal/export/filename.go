package export

import (
	"path/filepath"
	"strings"

	"github.com/RUBESHR7/compass-qa/internal/normalize"
)

const extension = ".xlsx"

var unsafeChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// EnsureExtension turns a model-suggested name into a safe file name with
// an .xlsx extension. A blank name becomes fallback, or the default
// filename when fallback is blank too.
func EnsureExtension(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(fallback)
	}
	if name == "" {
		name = normalize.DefaultFilename
	}
	name = unsafeChars.Replace(filepath.Base(filepath.ToSlash(name)))
	if !strings.HasSuffix(strings.ToLower(name), extension) {
		name += extension
	}
	return name
}
