// Command compass generates QA test cases from a user story with Gemini,
// refines them conversationally and exports them to a spreadsheet.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RUBESHR7/compass-qa/internal/config"
	"github.com/RUBESHR7/compass-qa/internal/logging"
	"github.com/RUBESHR7/compass-qa/internal/perception"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger

	// newClient builds the model transport; replaced in tests.
	newClient = func(ctx context.Context, c *config.Config) (perception.Client, error) {
		return perception.NewClientFromConfig(ctx, c)
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Generate QA test cases from user stories",
	Long: `compass turns a user story into structured QA test cases using Google Gemini.

Generate a set of cases, refine them with plain-language instructions and
export them to an Excel workbook, either one command at a time or in the
interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		if err := logging.Initialize(cfg.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		if logging.IsDebugMode() {
			logger.Debug("file logging enabled", zap.String("file", cfg.Logging.File))
		}
		logging.Boot("compass %s: model=%s", cmd.Name(), cfg.LLM.Model)
		if !cfg.LLM.HasAPIKey() {
			logging.BootWarn("no API key configured; model calls will fail")
		}
		logger.Debug("config loaded",
			zap.String("path", configPath),
			zap.String("model", cfg.LLM.Model),
			zap.Bool("api_key", cfg.LLM.HasAPIKey()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runChat(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, explain(err))
		os.Exit(1)
	}
}
