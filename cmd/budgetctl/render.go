package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"budgettracker/internal/core"
)

const chartWidth = 40

func renderSummary(w io.Writer, v core.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Expenses\t%d\n", len(v.Expenses))
	fmt.Fprintf(tw, "Spent\t%s\n", v.Actual)
	fmt.Fprintf(tw, "Budget\t%s\n", v.Budget)
	fmt.Fprintf(tw, "Savings goal\t%s\n", v.SavingsGoal)
	fmt.Fprintf(tw, "Left for savings\t%s\n", v.RemainingForSavings)
	if v.Shortfall.IsPositive() {
		fmt.Fprintf(tw, "Goal shortfall\t%s\n", v.Shortfall)
	}
	if v.Budget.IsPositive() {
		fmt.Fprintf(tw, "Budget used\t%.2f%%\n", v.SpentPercent)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Advice != nil {
		if _, err := fmt.Fprintf(w, "\n%s\n", *v.Advice); err != nil {
			return err
		}
	}
	return nil
}

// renderChart draws one bar per month scaled to the largest value, with a
// marker where the budget line falls.
func renderChart(w io.Writer, c core.Chart) error {
	var peak int64
	for i := range c.Expenses {
		peak = max(peak, c.Expenses[i].Cents, c.Budget[i].Cents)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for i, label := range c.Labels {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", label[:3], bar(c.Expenses[i].Cents, c.Budget[i].Cents, peak), c.Expenses[i])
	}
	return tw.Flush()
}

func bar(value, budget, peak int64) string {
	if peak <= 0 {
		return strings.Repeat(".", chartWidth)
	}
	filled := int(value * chartWidth / peak)
	mark := -1
	if budget > 0 {
		mark = int(budget * chartWidth / peak)
		if mark >= chartWidth {
			mark = chartWidth - 1
		}
	}

	var b strings.Builder
	for i := 0; i < chartWidth; i++ {
		switch {
		case i == mark:
			b.WriteByte('|')
		case i < filled:
			b.WriteByte('#')
		default:
			b.WriteByte('.')
		}
	}
	return b.String()
}
