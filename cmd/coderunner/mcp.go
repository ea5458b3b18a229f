package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/atlanticdynamic/coderunner/internal/logging/writers"
	"github.com/atlanticdynamic/coderunner/internal/mcpserver"
	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"
)

func newMCPCmd() *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "Serve the list_blocks and run_block tools over MCP on stdin and stdout",
		Action: mcpAction,
	}
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	transcript, err := mcpTranscript(s.Transcript)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to open transcript: %w", err), 1)
	}
	defer func() { _ = transcript.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := mcpserver.New(cmd.Root().Version,
		mcpserver.WithOnExit(cancel),
		mcpserver.WithSettings(s),
		mcpserver.WithLogHandler(slog.Default().Handler()),
		mcpserver.WithTranscript(transcript),
	)

	super, err := supervisor.New(
		supervisor.WithRunnables(srv),
		supervisor.WithLogHandler(slog.Default().Handler()),
		supervisor.WithContext(ctx),
	)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create supervisor: %w", err), 1)
	}
	if err := super.Run(); err != nil {
		return cli.Exit(fmt.Errorf("failed to run MCP server: %w", err), 1)
	}
	return nil
}

// mcpTranscript opens the transcript writer. Stdout carries the protocol, so a transcript
// configured for stdout goes to stderr instead.
func mcpTranscript(dest string) (io.WriteCloser, error) {
	kind, _, err := writers.Parse(dest)
	if err != nil {
		return nil, err
	}
	if kind == writers.KindStdout {
		return writers.Open(string(writers.KindStderr))
	}
	return writers.Open(dest)
}

