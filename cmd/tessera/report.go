package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/internal/presentation/report"
	"github.com/tessera-io/tessera/internal/presentation/tui"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Print the markdown summary of a run",
	Long:  `Loads a persisted run and renders its summary. Without an argument the most recent run is used.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReport(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	ctx := cmd.Context()

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	} else {
		ids, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no runs recorded yet")
		}
		runID = ids[0] // newest first
	}

	state, err := store.Load(ctx, runID)
	if err != nil {
		return err
	}

	render := tui.NewRenderer()
	out, err := render(report.Markdown(state))
	if err != nil {
		out = report.Markdown(state)
	}
	fmt.Println(out)
	return nil
}
