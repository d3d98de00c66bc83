package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budgettracker/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "budgetctl",
		Short: "Track expenses against a monthly budget",
		Long: `budgetctl records expenses on a budget server and shows how spending
compares to a budget and a savings goal.

Stored expenses are replayed locally on every run, so the budget and
savings goal given on the command line apply to the whole history.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("api-url", defaultAPIURL(), "budget server base URL (env API_BASE_URL)")

	root.AddCommand(addCmd())
	root.AddCommand(viewCmd())
	root.AddCommand(chartCmd())
	return root
}

func defaultAPIURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return config.Defaults().APIBaseURL
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
