package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tessera-io/tessera/internal/adapters/httpapi"
	"github.com/tessera-io/tessera/internal/metrics"
	"github.com/tessera-io/tessera/internal/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes runs and snapshot rendering over HTTP. POST /runs starts a run of
the configured runbook in the background; /metrics serves Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("workdir", "", "Directory steps run in (default current directory)")
}

func runServe(cmd *cobra.Command) error {
	logger := newLogger(cmd)

	store, closeStore, err := newStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	m := metrics.New()
	if err := m.Register(registry); err != nil {
		return err
	}

	cfg := httpapi.Config{
		Store:    store,
		Logger:   logger,
		Metrics:  m,
		Registry: registry,
	}

	// Without a readable runbook the server still serves stored runs, it
	// just cannot start new ones.
	if rb, err := loadRunbook(cmd); err != nil {
		logger.Warn("runbook unavailable, POST /runs disabled", "error", err)
	} else {
		workDir, _ := cmd.Flags().GetString("workdir")
		engine, err := runtime.New(rb,
			runtime.WithLogger(logger),
			runtime.WithStore(store),
			runtime.WithWorkDir(workDir),
			runtime.WithHooks(m.Hooks()),
		)
		if err != nil {
			return err
		}
		cfg.Launcher = engine
	}

	handler, err := httpapi.NewHandler(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetString("port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		fmt.Printf("Starting tessera server on %s\n", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		fmt.Println("tessera server stopped gracefully")
		return nil
	}
}
