package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RUBESHR7/compass-qa/internal/export"
	"github.com/RUBESHR7/compass-qa/internal/render"
	"github.com/RUBESHR7/compass-qa/internal/session"
)

var (
	casesIn    string
	refinedOut string
)

var refineCmd = &cobra.Command{
	Use:   "refine <instruction>",
	Short: "Refine saved test cases with a plain-language instruction",
	Long: `Applies an instruction such as "Add a negative case for invalid email"
to a saved collection and writes the updated collection back.

The input file is left untouched if the refinement fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVarP(&casesIn, "in", "i", "cases.json", "Test cases to refine")
	refineCmd.Flags().StringVarP(&refinedOut, "out", "o", "", "Where to save the result (default: overwrite --in)")
}

func runRefine(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instruction := strings.Join(args, " ")
	current, err := export.LoadJSON(casesIn)
	if err != nil {
		return err
	}

	engine, client, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer logUsage(client)
	ctrl := session.New(engine)
	if err := ctrl.Load(current); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	info(out, "Refining %d test cases...", len(current.TestCases))
	logger.Info("refining", zap.String("instruction", instruction), zap.String("in", casesIn))

	updated, err := ctrl.Refine(ctx, instruction)
	if err != nil {
		return err
	}

	dest := refinedOut
	if dest == "" {
		dest = casesIn
	}
	if err := export.SaveJSON(dest, updated); err != nil {
		return err
	}

	success(out, session.RefinedFormat, updated.SuggestedFilename)
	printChanges(out, render.Changes(current, updated))
	return nil
}
