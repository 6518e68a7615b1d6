package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/simal-lang/simal/internal/cli/config"
	"github.com/simal-lang/simal/internal/cli/ui"
	"github.com/simal-lang/simal/internal/history"
)

var (
	historyLimit  int
	historyFailed bool
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent compile attempts",
		Long:  "List the most recent build/watch/serve compile attempts recorded in the history store.",
		RunE:  runHistory,
	}

	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&historyFailed, "failed", false, "Only show failed runs")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := history.Open(cfg.History.Driver, cfg.History.DSN)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(historyLimit, historyFailed)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(runs) == 0 {
		color.New(color.FgYellow).Println("no recorded runs")
		return nil
	}

	table := ui.NewTable(os.Stdout, []string{"ID", "TIME", "INPUT", "SUCCESS", "ERRORS", "FIRST ERROR"}, nil)
	for _, r := range runs {
		success := "yes"
		if !r.Success {
			success = "no"
		}
		table.AddRow(
			fmt.Sprintf("%d", r.ID),
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.InputPath,
			success,
			fmt.Sprintf("%d", r.ErrorCount),
			r.FirstError,
		)
	}
	table.Render()
	return nil
}
