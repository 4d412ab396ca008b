package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/render"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <shape>",
	Short: "Render a built-in mesh to a PNG file",
	Long:  `Renders one of the built-in shapes (torus, sphere, cube, plane) with the software rasterizer.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRender(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("output", "o", "snapshot.png", "Output PNG path")
	renderCmd.Flags().Int("width", 800, "Image width in pixels")
	renderCmd.Flags().Int("height", 600, "Image height in pixels")
	renderCmd.Flags().Bool("wireframe", false, "Draw as anti-aliased wireframe")
	renderCmd.Flags().String("caption", "", "Caption text drawn under the image")
}

func runRender(cmd *cobra.Command, shape string) error {
	m, ok := mesh.ByName(shape)
	if !ok {
		return fmt.Errorf("unknown shape %q (supported: torus, sphere, cube, plane)", shape)
	}

	out, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	wireframe, _ := cmd.Flags().GetBool("wireframe")
	caption, _ := cmd.Flags().GetString("caption")

	if err := render.WriteSnapshot(render.NewScene(m), out, render.SnapshotOptions{
		Width:     width,
		Height:    height,
		Wireframe: wireframe,
		Caption:   caption,
	}); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}
