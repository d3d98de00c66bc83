package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgettracker/internal/core"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record an expense on the budget server and print the updated summary.

The date defaults to now. Amounts accept a dot or a comma as decimal
separator.`,
		Example: `  budgetctl add --amount 12,50 --category Food --description Lunch
  budgetctl add --amount 900 --category Rent --date 2024-03-01 --budget 1000`,
		RunE: runAdd,
	}

	cmd.Flags().String("amount", "", "expense amount (required)")
	cmd.Flags().String("category", "", "expense category")
	cmd.Flags().String("description", "", "free-form description")
	cmd.Flags().String("date", "", "expense date, YYYY-MM-DD or RFC 3339")
	_ = cmd.MarkFlagRequired("amount")
	addBudgetFlags(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	s.applyBudget(cmd)

	raw := core.RawExpense{}
	raw.Amount, _ = cmd.Flags().GetString("amount")
	raw.Category, _ = cmd.Flags().GetString("category")
	raw.Description, _ = cmd.Flags().GetString("description")
	raw.Date, _ = cmd.Flags().GetString("date")

	e, err := s.tracker.AddExpense(raw)
	if err != nil {
		return fmt.Errorf("--amount %q: %w", raw.Amount, err)
	}

	stored, err := s.client.CreateExpense(cmd.Context(), e)
	if err != nil {
		return fmt.Errorf("store expense: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %s %s (%s) on %s\n\n", stored.Amount, stored.Category, stored.ID, stored.Date.Format("2006-01-02"))
	return renderSummary(out, s.tracker.View())
}
