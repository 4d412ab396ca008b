// Package mcpsrv exposes tessera over the Model Context Protocol, so agent
// tooling can launch runs, inspect results and render snapshots.
package mcpsrv

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tessera-io/tessera/internal/logging"
	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/render"
	"github.com/tessera-io/tessera/pkg/runbook"
)

// Launcher starts a run in the background and returns its ID.
type Launcher interface {
	Start(ctx context.Context, vars map[string]string) string
}

// Server wraps the runbook engine and store as an MCP server.
type Server struct {
	rb        *runbook.Runbook
	store     ports.RunStore
	launcher  Launcher
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server instance. The runbook may be nil when only
// run inspection and rendering are wanted.
func NewServer(version string, rb *runbook.Runbook, store ports.RunStore, launcher Launcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		rb:        rb,
		store:     store,
		launcher:  launcher,
		logger:    logger,
		mcpServer: server.NewMCPServer("tessera-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening", "transport", "sse", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: run_runbook
	s.mcpServer.AddTool(mcp.NewTool("run_runbook",
		mcp.WithDescription("Start a run of the configured runbook. Returns the run ID; poll get_run for progress."),
		mcp.WithString("vars", mcp.Description("JSON object of variable overrides (optional)")),
	), s.handleRunRunbook)

	// TOOL: get_run
	s.mcpServer.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Get the state of a run: step results, scan matches, status."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("The run ID")),
	), s.handleGetRun)

	// TOOL: render_mesh
	s.mcpServer.AddTool(mcp.NewTool("render_mesh",
		mcp.WithDescription("Render a built-in mesh shape to a PNG image."),
		mcp.WithString("shape", mcp.Required(), mcp.Description("One of: torus, sphere, cube, plane")),
		mcp.WithBoolean("wireframe", mcp.Description("Draw as anti-aliased wireframe")),
	), s.handleRenderMesh)
}

func (s *Server) registerResources() {
	if s.rb == nil {
		return
	}
	s.mcpServer.AddResource(mcp.NewResource(
		"tessera://runbook",
		"Runbook definition",
		mcp.WithResourceDescription("The configured runbook: stages, steps, variables and fail patterns."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.MarshalIndent(s.rb, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal runbook: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tessera://runbook",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleRunRunbook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.launcher == nil {
		return mcp.NewToolResultError("no runbook configured"), nil
	}
	vars := map[string]string{}
	if raw := request.GetString("vars", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &vars); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("vars must be a JSON object of strings: %v", err)), nil
		}
	}
	runID := s.launcher.Start(ctx, vars)
	s.logger.Info("mcp run started", "run_id", runID)
	return mcp.NewToolResultText(fmt.Sprintf(`{"run_id": %q}`, runID)), nil
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.store.Load(ctx, runID)
	if err != nil {
		if err == runbook.ErrRunNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("run %q not found", runID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("load run: %v", err)), nil
	}
	data, _ := json.Marshal(state)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRenderMesh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shape, err := request.RequireString("shape")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, ok := mesh.ByName(shape)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown shape %q", shape)), nil
	}

	img := render.Snapshot(render.NewScene(m), render.SnapshotOptions{
		Width:     512,
		Height:    384,
		Wireframe: request.GetBool("wireframe", false),
	})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode png: %v", err)), nil
	}
	return mcp.NewToolResultImage(
		fmt.Sprintf("rendered %s (%d bytes)", shape, buf.Len()),
		base64.StdEncoding.EncodeToString(buf.Bytes()),
		"image/png",
	), nil
}
