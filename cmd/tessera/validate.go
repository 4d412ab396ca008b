package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the runbook for consistency",
	Long:  `Parses the runbook and reports duplicate names, empty stages, unknown variables and other defects.`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := loadRunbook(cmd); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Runbook is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
