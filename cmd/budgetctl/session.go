package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"budgettracker/internal/core"
	"budgettracker/internal/gateway/rest"
)

// session is a tracker rebuilt from the server's stored expenses.
type session struct {
	client  *rest.Client
	tracker *core.Tracker
}

func openSession(cmd *cobra.Command) (*session, error) {
	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}
	client := rest.NewClient(apiURL, nil)

	items, err := client.ListExpenses(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("load expenses from %s: %w", apiURL, err)
	}

	tracker := core.NewTracker()
	for _, item := range items {
		if err := tracker.Record(item.Expense); err != nil {
			slog.Warn("Skipping stored expense", "id", item.ID, "error", err)
		}
	}
	return &session{client: client, tracker: tracker}, nil
}

func addBudgetFlags(cmd *cobra.Command) {
	cmd.Flags().String("budget", "", "monthly budget, e.g. 1500 or 1500,00")
	cmd.Flags().String("goal", "", "savings goal")
}

// applyBudget sets the budget and goal flags that were given. A flag that
// cannot be parsed is ignored with a warning on stderr; the other flag still
// applies.
func (s *session) applyBudget(cmd *cobra.Command) {
	budget, _ := cmd.Flags().GetString("budget")
	goal, _ := cmd.Flags().GetString("goal")
	if budget == "" && goal == "" {
		return
	}

	err := s.tracker.SetBudgetAndGoal(budget, goal)
	if budget != "" && errors.Is(err, core.ErrInvalidBudget) {
		warnIgnored(cmd, "budget", budget, core.ErrInvalidBudget)
	}
	if goal != "" && errors.Is(err, core.ErrInvalidGoal) {
		warnIgnored(cmd, "goal", goal, core.ErrInvalidGoal)
	}
}

func warnIgnored(cmd *cobra.Command, flag, value string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignoring --%s %q: %v\n", flag, value, err)
}
