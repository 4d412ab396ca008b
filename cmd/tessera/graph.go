package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the runbook as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the runbook. With --run, steps are colored by their result.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGraph(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("run", "", "Run ID to overlay pass/fail state from")
}

func runGraph(cmd *cobra.Command) error {
	rb, err := loadRunbook(cmd)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		store, closeStore, err := newStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()
		state, err := store.Load(cmd.Context(), runID)
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{State: state}
	}

	fmt.Println(graph.GenerateMermaid(rb, overlay))
	return nil
}
