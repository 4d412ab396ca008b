package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/internal/adapters/file"
	"github.com/tessera-io/tessera/internal/adapters/middleware"
	"github.com/tessera-io/tessera/internal/adapters/redis"
	"github.com/tessera-io/tessera/internal/logging"
	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/runbook"
)

var rootCmd = &cobra.Command{
	Use:   "tessera",
	Short: "Tessera is a runbook engine for release checklists",
	Long: `Tessera runs release checklists as ordered, resumable runbooks.
It captures the output of every step, scans it for failure patterns and
persists state so an interrupted run can pick up where it left off.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("runbook", "f", "runbook.yaml", "Path to the runbook definition")
	rootCmd.PersistentFlags().String("store", "file", "Run store backend: 'file' or 'redis'")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for the file store (default .tessera/runs)")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (only for --store redis)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

func loadRunbook(cmd *cobra.Command) (*runbook.Runbook, error) {
	path, _ := cmd.Flags().GetString("runbook")
	return runbook.Load(path)
}

// newStore builds the run store from the persistent flags, wrapped so that
// secret-looking variables never land in the store in the clear. The returned
// closer is a no-op for the file backend.
func newStore(cmd *cobra.Command) (ports.RunStore, func() error, error) {
	redact := middleware.NewRedactMiddleware(middleware.DefaultSecretPatterns)

	backend, _ := cmd.Flags().GetString("store")
	switch backend {
	case "file":
		dir, _ := cmd.Flags().GetString("data-dir")
		return redact(file.New(dir)), func() error { return nil }, nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		s := redis.New(addr, "", 0)
		return redact(s), s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q (supported: file, redis)", backend)
	}
}
