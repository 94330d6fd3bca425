package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RUBESHR7/compass-qa/internal/export"
	"github.com/RUBESHR7/compass-qa/internal/generation"
	"github.com/RUBESHR7/compass-qa/internal/perception"
	"github.com/RUBESHR7/compass-qa/internal/prompt"
	"github.com/RUBESHR7/compass-qa/internal/session"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

var (
	storyFile   string
	caseCount   int
	screenshots []string
	casesOut    string
	writeXLSX   bool
	outputDir   string
	watchStory  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [story]",
	Short: "Generate test cases from a user story",
	Long: `Sends the user story (and any screenshots) to the model and saves the
resulting test cases as JSON. Pass the story as an argument or with --story-file.

With --watch the story file is regenerated every time it is saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&storyFile, "story-file", "f", "", "Read the user story from a file")
	generateCmd.Flags().IntVarP(&caseCount, "count", "n", 0, "Number of test cases (default from config)")
	generateCmd.Flags().StringSliceVarP(&screenshots, "screenshot", "s", nil, "Screenshot image to attach (repeatable)")
	generateCmd.Flags().StringVarP(&casesOut, "out", "o", "cases.json", "Where to save the generated test cases")
	generateCmd.Flags().BoolVar(&writeXLSX, "xlsx", false, "Also export the workbook")
	generateCmd.Flags().StringVar(&outputDir, "dir", "", "Workbook directory (default from config)")
	generateCmd.Flags().BoolVarP(&watchStory, "watch", "w", false, "Regenerate whenever --story-file changes")
}

// newEngine wires the configured model client into a generation engine.
func newEngine(ctx context.Context) (*generation.Engine, perception.Client, error) {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	prompts, err := prompt.NewBuilder()
	if err != nil {
		return nil, nil, err
	}
	return generation.NewEngine(client, prompts, generation.Options{
		AllowedCounts:    cfg.Generation.AllowedCounts,
		FallbackFilename: cfg.Generation.FallbackFilename,
	}), client, nil
}

func readStory(args []string) (string, error) {
	if storyFile != "" {
		data, err := os.ReadFile(storyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read story: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", story.ErrEmptyStory
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if watchStory && storyFile == "" {
		return errors.New("--watch requires --story-file")
	}

	text, err := readStory(args)
	if err != nil {
		return err
	}
	count := caseCount
	if count == 0 {
		count = cfg.Generation.DefaultCount
	}
	shots, err := story.LoadAttachments(screenshots)
	if err != nil {
		return err
	}

	engine, client, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer logUsage(client)
	ctrl := session.New(engine)
	out := cmd.OutOrStdout()

	generate := func(text string) error {
		s := story.Story{Text: text, Count: count, Screenshots: shots}
		if err := s.Validate(cfg.Generation.AllowedCounts); err != nil {
			return err
		}
		info(out, "Generating %d test cases...", count)
		logger.Info("generating", zap.Int("count", count), zap.Int("screenshots", len(shots)))

		result, err := ctrl.Generate(ctx, s)
		if err != nil {
			return err
		}
		return saveGenerated(cmd, result)
	}

	if err := generate(text); err != nil {
		if !watchStory {
			return err
		}
		warn(out, "%s", explain(err))
	}
	if !watchStory {
		return nil
	}

	info(out, "Watching %s for changes (Ctrl+C to stop)", storyFile)
	return story.Watch(ctx, storyFile, story.DefaultDebounce, func(text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		if err := generate(text); err != nil {
			if errors.Is(err, session.ErrBusy) {
				logger.Debug("skipping change while busy")
				return
			}
			warn(out, "%s", explain(err))
		}
	})
}

func saveGenerated(cmd *cobra.Command, result *testcase.GenerationResult) error {
	out := cmd.OutOrStdout()
	if err := export.SaveJSON(casesOut, result); err != nil {
		return err
	}
	success(out, "Generated %d test cases → %s", len(result.TestCases), casesOut)
	printCases(out, result)

	if !writeXLSX {
		return nil
	}
	path, err := saveWorkbook(result, "", outputDir)
	if err != nil {
		return err
	}
	success(out, "Exported %s", path)
	return nil
}

func saveWorkbook(result *testcase.GenerationResult, name, dir string) (string, error) {
	if dir == "" {
		dir = cfg.Export.OutputDir
	}
	if name != "" {
		result = result.Clone()
		result.SuggestedFilename = name
	}
	return export.SaveWorkbook(dir, result, cfg.Generation.FallbackFilename,
		export.Options{SheetName: cfg.Export.SheetName})
}
