package mcpsrv

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/internal/adapters/file"
	"github.com/tessera-io/tessera/pkg/runbook"
)

type stubLauncher struct {
	lastVars map[string]string
}

func (s *stubLauncher) Start(ctx context.Context, vars map[string]string) string {
	s.lastVars = vars
	return "20260301-100000.000"
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func newTestMCP(t *testing.T) (*Server, *stubLauncher) {
	t.Helper()
	store := file.New(t.TempDir())
	launcher := &stubLauncher{}
	rb, err := runbook.NewBuilder("release").
		Stage("test").Shell("unit", "make test").
		Build()
	require.NoError(t, err)

	srv := NewServer("0.0.0", rb, store, launcher, nil)
	require.NoError(t, store.Save(context.Background(), "r1", &runbook.RunState{
		ID: "r1", Runbook: "release", Status: runbook.StatusPassed,
	}))
	return srv, launcher
}

func TestRunRunbookTool(t *testing.T) {
	srv, launcher := newTestMCP(t)

	res, err := srv.handleRunRunbook(context.Background(), toolRequest(map[string]any{
		"vars": `{"version": "2.0.0"}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "2.0.0", launcher.lastVars["version"])

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	assert.Equal(t, "20260301-100000.000", out["run_id"])
}

func TestRunRunbookToolBadVars(t *testing.T) {
	srv, _ := newTestMCP(t)

	res, err := srv.handleRunRunbook(context.Background(), toolRequest(map[string]any{
		"vars": "not json",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetRunTool(t *testing.T) {
	srv, _ := newTestMCP(t)

	res, err := srv.handleGetRun(context.Background(), toolRequest(map[string]any{
		"run_id": "r1",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var state runbook.RunState
	require.NoError(t, json.Unmarshal([]byte(text.Text), &state))
	assert.Equal(t, runbook.StatusPassed, state.Status)
}

func TestGetRunToolNotFound(t *testing.T) {
	srv, _ := newTestMCP(t)

	res, err := srv.handleGetRun(context.Background(), toolRequest(map[string]any{
		"run_id": "ghost",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRenderMeshTool(t *testing.T) {
	srv, _ := newTestMCP(t)

	res, err := srv.handleRenderMesh(context.Background(), toolRequest(map[string]any{
		"shape": "cube",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var found bool
	for _, c := range res.Content {
		if img, ok := c.(mcp.ImageContent); ok {
			found = true
			assert.Equal(t, "image/png", img.MIMEType)
			assert.NotEmpty(t, img.Data)
		}
	}
	assert.True(t, found, "expected image content")
}

func TestRenderMeshToolUnknownShape(t *testing.T) {
	srv, _ := newTestMCP(t)

	res, err := srv.handleRenderMesh(context.Background(), toolRequest(map[string]any{
		"shape": "teapot",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
