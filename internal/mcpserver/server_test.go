package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runbook = "# Runbook\n" +
	"<!--CodeRunnerCONFIG-->\n" +
	"env = staging\n" +
	"<!--/CodeRunnerCONFIG-->\n" +
	"## Greet\n" +
	"```sh\n" +
	"echo \"$env $who\"\n" +
	"```\n" +
	"<!--CodeRunnerOUT-->\n" +
	"<!--/CodeRunnerOUT-->\n" +
	"## Fail\n" +
	"```sh\n" +
	"echo bad; exit 2\n" +
	"```\n"

func writeRunbook(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "runbook.md")
	require.NoError(t, os.WriteFile(path, []byte(runbook), 0o644))
	return path
}

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := t.Context()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (T, *mcp.CallToolResult) {
	t.Helper()
	var out T

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if res.IsError {
		return out, res
	}

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out, res
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	session := connect(t, New("test"))
	tools, err := session.ListTools(t.Context(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolListBlocks, ToolRunBlock}, names)
}

func TestServer_ListBlocks(t *testing.T) {
	t.Parallel()

	path := writeRunbook(t)
	session := connect(t, New("test"))

	out, res := callTool[ListBlocksOutput](t, session, ToolListBlocks, map[string]any{"path": path})
	require.False(t, res.IsError)
	assert.Equal(t, path, out.Path)
	require.Len(t, out.Blocks, 2)
	assert.Equal(t, "Greet", out.Blocks[0].Name)
	assert.Equal(t, 6, out.Blocks[0].Line)
	assert.Equal(t, []string{"env", "who"}, out.Blocks[0].Params)
	assert.Equal(t, []string{"who"}, out.Blocks[0].Prompted)
	assert.Equal(t, "Fail", out.Blocks[1].Name)
	assert.Empty(t, out.Blocks[1].SyntaxError)
}

func TestServer_ListBlocksMissingFile(t *testing.T) {
	t.Parallel()

	session := connect(t, New("test"))
	_, res := callTool[ListBlocksOutput](t, session, ToolListBlocks,
		map[string]any{"path": filepath.Join(t.TempDir(), "absent.md")})
	assert.True(t, res.IsError)
}

func TestServer_RunBlock(t *testing.T) {
	t.Parallel()

	path := writeRunbook(t)
	var transcript bytes.Buffer
	srv := New("test", WithTranscript(&transcript))
	session := connect(t, srv)

	out, res := callTool[RunBlockOutput](t, session, ToolRunBlock, map[string]any{
		"path":  path,
		"block": "greet",
		"args":  map[string]any{"who": "ops"},
	})
	require.False(t, res.IsError)
	assert.Equal(t, "Greet", out.Name)
	assert.Equal(t, "staging ops", out.Tail)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, ".CodeRunner/runbook/Greet.sh", out.Script)
	assert.True(t, out.Saved)
	assert.NotEmpty(t, out.RunID)
	assert.NotEmpty(t, out.Log)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "* [Script](.CodeRunner/runbook/Greet.sh)\n```\nstaging ops\n```\n")
	assert.Contains(t, transcript.String(), "staging ops\n---\n\n\n")

	// the remembered value answers the next call
	out, res = callTool[RunBlockOutput](t, session, ToolRunBlock, map[string]any{
		"path":     path,
		"line":     7,
		"no_write": true,
	})
	require.False(t, res.IsError)
	assert.Equal(t, "staging ops", out.Tail)
	assert.False(t, out.Saved)
}

func TestServer_RunBlockExitCode(t *testing.T) {
	t.Parallel()

	path := writeRunbook(t)
	session := connect(t, New("test"))

	out, res := callTool[RunBlockOutput](t, session, ToolRunBlock, map[string]any{
		"path":  path,
		"block": "2",
	})
	require.False(t, res.IsError)
	assert.Equal(t, 2, out.ExitCode)
	assert.Equal(t, "bad", out.Tail)
}

func TestServer_RunBlockDryRun(t *testing.T) {
	t.Parallel()

	path := writeRunbook(t)
	session := connect(t, New("test"))

	out, res := callTool[RunBlockOutput](t, session, ToolRunBlock, map[string]any{
		"path":    path,
		"dry_run": true,
		"args":    map[string]any{"who": "qa"},
	})
	require.False(t, res.IsError)
	assert.True(t, out.DryRun)
	assert.Contains(t, out.Output, "who=\"qa\"\n")
	assert.Equal(t, `echo "staging qa"`, out.Command)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, runbook, string(saved))
}

func TestServer_RunBlockMissingArgument(t *testing.T) {
	t.Parallel()

	path := writeRunbook(t)
	session := connect(t, New("test"))

	_, res := callTool[RunBlockOutput](t, session, ToolRunBlock, map[string]any{
		"path":  path,
		"block": "Greet",
	})
	assert.True(t, res.IsError)
}

func TestServer_RunAndStop(t *testing.T) {
	t.Parallel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	var exited atomic.Bool
	srv := New("test", WithTransport(serverTransport), WithOnExit(func() { exited.Store(true) }))
	assert.Equal(t, "mcpserver.Server", srv.String())

	done := make(chan error, 1)
	go func() { done <- srv.Run(t.Context()) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(t.Context(), clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(t.Context(), nil)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 2)

	srv.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, exited.Load())
}
