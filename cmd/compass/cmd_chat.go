package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RUBESHR7/compass-qa/cmd/compass/chat"
	"github.com/RUBESHR7/compass-qa/internal/export"
	"github.com/RUBESHR7/compass-qa/internal/session"
	"github.com/RUBESHR7/compass-qa/internal/story"
	"github.com/RUBESHR7/compass-qa/internal/testcase"
)

var (
	chatIn    string
	chatStyle string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive generator (default)",
	Long: `Opens the interactive UI. Paste a user story to generate test cases, then
refine them conversationally and press Ctrl+E to export the workbook.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatIn, "in", "i", "", "Start from saved test cases")
	chatCmd.Flags().StringSliceVarP(&screenshots, "screenshot", "s", nil, "Screenshot image to attach (repeatable)")
	chatCmd.Flags().StringVar(&chatStyle, "style", "", "Render style: auto, dark, light or notty")
	chatCmd.Flags().StringVar(&outputDir, "dir", "", "Workbook directory (default from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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
	if chatIn != "" {
		current, err := export.LoadJSON(chatIn)
		if err != nil {
			return err
		}
		if err := ctrl.Load(current); err != nil {
			return err
		}
	}

	return chat.Run(chat.Config{
		Controller:    ctrl,
		AllowedCounts: cfg.Generation.AllowedCounts,
		DefaultCount:  cfg.Generation.DefaultCount,
		Screenshots:   shots,
		Style:         chatStyle,
		Context:       ctx,
		Export: func(result *testcase.GenerationResult) (string, error) {
			return saveWorkbook(result, "", outputDir)
		},
	})
}
