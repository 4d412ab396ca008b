package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tessera",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tessera version %s\n", strings.TrimSpace(tessera.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
