package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRunsList(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Dump the raw state of a run as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRunsShow(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRunsDelete(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}

func runRunsList(cmd *cobra.Command) error {
	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	for _, id := range ids {
		state, err := store.Load(cmd.Context(), id)
		if err != nil {
			fmt.Printf("%s\t(unreadable: %v)\n", id, err)
			continue
		}
		fmt.Printf("%s\t%s\t%d step(s)\n", id, state.Status, len(state.Steps))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, runID string) error {
	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	state, err := store.Load(cmd.Context(), runID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runRunsDelete(cmd *cobra.Command, runID string) error {
	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(cmd.Context(), runID); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", runID)
	return nil
}
