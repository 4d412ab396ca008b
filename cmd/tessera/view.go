package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/internal/viewer"
	"github.com/tessera-io/tessera/pkg/mesh"
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view [shape]",
	Short: "Open the interactive mesh viewer",
	Long: `Shows a shape in an interactive viewer. The button assigns a random color
and reports its name; the slider moves the mesh along x. By default the
viewer runs in the terminal; --window opens a native window instead.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		shape := "torus"
		if len(args) > 0 {
			shape = args[0]
		}
		if err := runView(cmd, shape); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().Bool("window", false, "Open a native window instead of the terminal UI")
	viewCmd.Flags().Int64("seed", 0, "Seed for the random color generator (0 means time-based)")
}

func runView(cmd *cobra.Command, shape string) error {
	m, ok := mesh.ByName(shape)
	if !ok {
		return fmt.Errorf("unknown shape %q (supported: torus, sphere, cube, plane)", shape)
	}

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if window, _ := cmd.Flags().GetBool("window"); window {
		return viewer.NewWindow(m, rng).Run("tessera", 960, 720)
	}

	p := tea.NewProgram(viewer.NewModel(m, rng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
