package main

import (
	"github.com/spf13/cobra"

	"budgettracker/internal/core"
)

func chartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw monthly spending as a bar chart",
		RunE:  runChart,
	}
	addBudgetFlags(cmd)
	return cmd
}

func runChart(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	s.applyBudget(cmd)
	return renderChart(cmd.OutOrStdout(), core.BuildChart(s.tracker.View()))
}
