package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RUBESHR7/compass-qa/internal/export"
	"github.com/RUBESHR7/compass-qa/internal/render"
)

var (
	showMarkdown bool
	showStyle    string
	showWidth    int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display saved test cases",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVarP(&casesIn, "in", "i", "cases.json", "Test cases to display")
	showCmd.Flags().BoolVar(&showMarkdown, "markdown", false, "Print raw markdown instead of rendering it")
	showCmd.Flags().StringVar(&showStyle, "style", render.StyleAuto, "Render style: auto, dark, light or notty")
	showCmd.Flags().IntVar(&showWidth, "width", 100, "Wrap width")
}

func runShow(cmd *cobra.Command, args []string) error {
	result, err := export.LoadJSON(casesIn)
	if err != nil {
		return err
	}
	if showMarkdown {
		fmt.Fprint(cmd.OutOrStdout(), render.Markdown(result))
		return nil
	}
	out, err := render.Terminal(result, showStyle, showWidth)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
