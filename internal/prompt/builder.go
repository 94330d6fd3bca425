// Package prompt builds the instructions sent to the model. Templates are
// YAML files baked into the binary and rendered with text/template.
package prompt

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

//go:embed templates
var embeddedTemplates embed.FS

// Template IDs.
const (
	GenerationID = "generation"
	RefinementID = "refinement"
)

// Template is one prompt file.
type Template struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Content     string `yaml:"content"`

	tmpl *template.Template
}

// Builder renders prompts from the embedded templates.
type Builder struct {
	templates map[string]*Template
}

// NewBuilder loads and parses every embedded template.
func NewBuilder() (*Builder, error) {
	timer := logging.StartTimer(logging.CategoryGeneration, "prompt.NewBuilder")
	defer timer.Stop()

	b := &Builder{templates: make(map[string]*Template)}
	err := fs.WalkDir(embeddedTemplates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		t, err := parseTemplate(path)
		if err != nil {
			return err
		}
		b.templates[t.ID] = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	for _, id := range []string{GenerationID, RefinementID} {
		if _, ok := b.templates[id]; !ok {
			return nil, fmt.Errorf("prompt template %q not embedded", id)
		}
	}
	logging.GenerationDebug("loaded %d prompt templates", len(b.templates))
	return b, nil
}

func parseTemplate(path string) (*Template, error) {
	data, err := embeddedTemplates.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("%s: missing id", path)
	}
	t.tmpl, err = template.New(t.ID).Option("missingkey=error").Parse(t.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &t, nil
}

func (b *Builder) render(id string, data any) (string, error) {
	t, ok := b.templates[id]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", id)
	}
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", id, err)
	}
	return sb.String(), nil
}

type generationData struct {
	Story       string
	Count       int
	Screenshots int
}

// Generation builds the instruction for a fresh set of test cases. The
// screenshots themselves travel as separate request parts; the prompt only
// tells the model they are there.
func (b *Builder) Generation(s story.Story) (string, error) {
	return b.render(GenerationID, generationData{
		Story:       strings.TrimSpace(s.Text),
		Count:       s.Count,
		Screenshots: len(s.Screenshots),
	})
}

type refinementData struct {
	Cases       string
	Filename    string
	Instruction string
}

// Refinement builds the instruction for editing the current collection.
func (b *Builder) Refinement(current *testcase.GenerationResult, instruction string) (string, error) {
	if current == nil {
		return "", fmt.Errorf("no test cases to refine")
	}
	cases := current.TestCases
	if cases == nil {
		cases = []testcase.TestCase{}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize test cases: %w", err)
	}
	return b.render(RefinementID, refinementData{
		Cases:       string(data),
		Filename:    current.SuggestedFilename,
		Instruction: strings.TrimSpace(instruction),
	})
}
