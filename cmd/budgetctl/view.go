package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show spending against the budget",
		RunE:  runView,
	}
	addBudgetFlags(cmd)
	cmd.Flags().Bool("json", false, "print the full view as JSON")
	return cmd
}

func runView(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	s.applyBudget(cmd)

	view := s.tracker.View()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return renderSummary(cmd.OutOrStdout(), view)
}
