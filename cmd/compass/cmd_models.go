package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RUBESHR7/compass-qa/internal/perception"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List Gemini models that can generate test cases",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	lister, ok := client.(perception.ModelLister)
	if !ok {
		return errors.New("the configured provider cannot list models")
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, m := range models {
		marker := " "
		if m.Name == client.Model() {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\n", marker, m.Name, m.DisplayName)
	}
	return tw.Flush()
}
