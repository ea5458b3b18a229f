// Package mcpserver exposes script blocks as Model Context Protocol tools, so an agent can
// list the blocks of a Markdown document and run one with explicit argument values.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/pipeline"
	"github.com/atlanticdynamic/coderunner/internal/prompt"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/atlanticdynamic/coderunner/internal/runner"
	"github.com/atlanticdynamic/coderunner/internal/settings"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Runnable = (*Server)(nil)

const (
	ServerName = "coderunner"

	ToolListBlocks = "list_blocks"
	ToolRunBlock   = "run_block"
)

// Server answers tool calls. Runs are serialized; values supplied to one call are offered
// as defaults to later calls for the lifetime of the Server.
type Server struct {
	settings   *settings.Settings
	handler    slog.Handler
	logger     *slog.Logger
	transcript io.Writer
	memory     *resolver.Memory
	server     *mcp.Server
	transport  mcp.Transport
	onExit     func()

	runMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Server with its tools registered.
func New(version string, opts ...Option) *Server {
	s := &Server{
		settings:   settings.Default(),
		handler:    slog.Default().Handler(),
		transcript: io.Discard,
		memory:     resolver.NewMemory(),
		transport:  &mcp.StdioTransport{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = slog.New(s.handler).WithGroup("mcpserver")

	s.server = mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListBlocks,
		Description: "List the fenced script blocks of a Markdown document with their parameters.",
	}, s.listBlocks)
	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolRunBlock,
		Description: "Run one script block of a Markdown document. Parameters not set in the " +
			"document's config block must be given in args.",
	}, s.runBlock)

	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run implements the supervisor.Runnable interface. It serves on the transport (stdin and
// stdout by default) until ctx is done, Stop is called, or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if s.onExit != nil {
		defer s.onExit()
	}

	s.logger.Info("Serving MCP")
	err := s.server.Run(runCtx, s.transport)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop implements the supervisor.Runnable interface
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// String implements the supervisor.Runnable interface
func (s *Server) String() string {
	return "mcpserver.Server"
}

func (s *Server) session(opts ...pipeline.Option) *pipeline.Session {
	base := []pipeline.Option{
		pipeline.WithSettings(s.settings),
		pipeline.WithLogHandler(s.handler),
		pipeline.WithMemory(s.memory),
		pipeline.WithTranscript(s.transcript),
	}
	return pipeline.New(append(base, opts...)...)
}

// ListBlocksInput names the document to inspect.
type ListBlocksInput struct {
	Path string `json:"path" jsonschema:"path of the Markdown document"`
}

// BlockSummary describes one block.
type BlockSummary struct {
	Index       int      `json:"index"`
	Line        int      `json:"line"`
	Name        string   `json:"name"`
	Shell       bool     `json:"shell"`
	WorkingDir  string   `json:"working_dir,omitempty"`
	Params      []string `json:"params,omitempty"`
	Prompted    []string `json:"prompted,omitempty"`
	SyntaxError string   `json:"syntax_error,omitempty"`
}

// ListBlocksOutput is the result of list_blocks.
type ListBlocksOutput struct {
	Path   string         `json:"path"`
	Blocks []BlockSummary `json:"blocks"`
}

func (s *Server) listBlocks(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in ListBlocksInput,
) (*mcp.CallToolResult, ListBlocksOutput, error) {
	doc, err := document.Open(in.Path)
	if err != nil {
		return nil, ListBlocksOutput{}, err
	}

	infos, err := s.session().Blocks(doc)
	if err != nil {
		return nil, ListBlocksOutput{}, err
	}

	out := ListBlocksOutput{Path: doc.FileName(), Blocks: make([]BlockSummary, 0, len(infos))}
	for _, info := range infos {
		summary := BlockSummary{
			Index:      info.Index,
			Line:       info.Line,
			Name:       info.Name,
			Shell:      info.Shell,
			WorkingDir: info.WorkingDir,
			Params:     info.Params,
			Prompted:   info.Prompted,
		}
		if info.SyntaxErr != nil {
			summary.SyntaxError = info.SyntaxErr.Error()
		}
		out.Blocks = append(out.Blocks, summary)
	}
	s.logger.Debug("Listed blocks", "path", out.Path, "count", len(out.Blocks))
	return nil, out, nil
}

// RunBlockInput selects a block and supplies its arguments.
type RunBlockInput struct {
	Path    string            `json:"path" jsonschema:"path of the Markdown document"`
	Block   string            `json:"block,omitempty" jsonschema:"block index (1-based) or script name; defaults to the first block"`
	Line    int               `json:"line,omitempty" jsonschema:"1-based line inside the block, used when block is empty"`
	Args    map[string]string `json:"args,omitempty" jsonschema:"values for parameters the config block does not set"`
	DryRun  bool              `json:"dry_run,omitempty" jsonschema:"resolve and render the script without running it"`
	NoWrite bool              `json:"no_write,omitempty" jsonschema:"run without writing the output summary into the document"`
}

// RunBlockOutput is the result of run_block.
type RunBlockOutput struct {
	Name     string `json:"name"`
	RunID    string `json:"run_id,omitempty"`
	Command  string `json:"command"`
	Script   string `json:"script,omitempty"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output,omitempty"`
	Tail     string `json:"tail,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Saved    bool   `json:"saved"`
	DryRun   bool   `json:"dry_run,omitempty"`

	Log []runner.LogEntry `json:"log,omitempty"`
}

func (s *Server) runBlock(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in RunBlockInput,
) (*mcp.CallToolResult, RunBlockOutput, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	doc, err := document.Open(in.Path)
	if err != nil {
		return nil, RunBlockOutput{}, err
	}

	sess := s.session(
		pipeline.WithPrompter(prompt.NewFixed(in.Args)),
		pipeline.WithDryRun(in.DryRun),
		pipeline.WithNoWrite(in.NoWrite),
	)

	switch {
	case in.Block != "":
		err = sess.SelectBlock(doc, in.Block)
	case in.Line > 0:
		err = pipeline.SelectLine(doc, in.Line)
	default:
		err = sess.SelectBlock(doc, "1")
	}
	if err != nil {
		return nil, RunBlockOutput{}, err
	}

	outcome, err := sess.Run(ctx, doc)
	if err != nil {
		return nil, RunBlockOutput{}, fmt.Errorf("run failed: %w", err)
	}

	plan := outcome.Plan
	out := RunBlockOutput{
		Name:    plan.Name,
		Command: plan.Invocation.Command,
		Summary: outcome.Summary,
		Saved:   outcome.Saved,
		DryRun:  outcome.DryRun,
	}
	if plan.Artifact != nil {
		out.Script = plan.Artifact.RelPath()
	}
	if outcome.DryRun {
		out.Output = plan.Invocation.Source
	}
	if res := outcome.Result; res != nil {
		out.RunID = outcome.RunID.String()
		out.ExitCode = res.ExitCode
		out.Output = res.Output
		out.Tail = res.Tail
	}
	out.Log = outcome.Log

	s.logger.Info("Ran block", "path", doc.FileName(), "name", out.Name, "exitCode", out.ExitCode)
	return nil, out, nil
}
