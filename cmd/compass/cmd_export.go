package main

import (
	"github.com/spf13/cobra"

	"github.com/RUBESHR7/compass-qa/internal/export"
)

var (
	exportName string
	exportDir  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved test cases to an Excel workbook",
	Long: `Writes one row per step with the case columns merged across a case's rows.
The file name defaults to the name the model suggested.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&casesIn, "in", "i", "cases.json", "Test cases to export")
	exportCmd.Flags().StringVar(&exportName, "name", "", "Workbook file name (.xlsx is appended if missing)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	result, err := export.LoadJSON(casesIn)
	if err != nil {
		return err
	}
	path, err := saveWorkbook(result, exportName, exportDir)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Exported %d test cases → %s", len(result.TestCases), path)
	return nil
}
