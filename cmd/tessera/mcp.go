package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera"
	"github.com/tessera-io/tessera/internal/adapters/mcpsrv"
	"github.com/tessera-io/tessera/internal/runtime"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts tessera as an MCP server, so AI agents can launch runs, inspect
results and render mesh snapshots as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMCP(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("workdir", "", "Directory steps run in (default current directory)")
}

func runMCP(cmd *cobra.Command) error {
	logger := newLogger(cmd)

	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	var launcher mcpsrv.Launcher
	rb, err := loadRunbook(cmd)
	if err != nil {
		logger.Warn("runbook unavailable, run_runbook tool disabled", "error", err)
		rb = nil
	} else {
		workDir, _ := cmd.Flags().GetString("workdir")
		engine, err := runtime.New(rb,
			runtime.WithLogger(logger),
			runtime.WithStore(store),
			runtime.WithWorkDir(workDir),
		)
		if err != nil {
			return err
		}
		launcher = engine
	}

	srv := mcpsrv.NewServer(strings.TrimSpace(tessera.Version), rb, store, launcher, logger)

	transport, _ := cmd.Flags().GetString("transport")
	switch transport {
	case "stdio":
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("starting mcp server", "transport", "stdio")
		return srv.ServeStdio()
	case "sse":
		port, _ := cmd.Flags().GetInt("port")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
			return err
		}
		logger.Info("mcp server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
}
