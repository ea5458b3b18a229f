package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/fancy"
	"github.com/atlanticdynamic/coderunner/internal/pipeline"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"
)

func newBlocksCmd() *cli.Command {
	return &cli.Command{
		Name:      "blocks",
		Usage:     "List the script blocks of Markdown documents",
		ArgsUsage: "<document or glob>...",
		Action:    blocksAction,
	}
}

func blocksAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return cli.Exit("at least one document or glob pattern required", 1)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	paths, err := expandGlobs(cmd.Args().Slice())
	if err != nil {
		return cli.Exit(err, 1)
	}
	if len(paths) == 0 {
		return cli.Exit("no documents matched", 1)
	}

	sess := pipeline.New(
		pipeline.WithSettings(s),
		pipeline.WithLogHandler(slog.Default().Handler()),
	)

	for _, path := range paths {
		doc, err := document.Open(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		infos, err := sess.Blocks(doc)
		if err != nil {
			return cli.Exit(fmt.Errorf("%s: %w", path, err), 1)
		}

		t := fancy.DocumentTree(path)
		for _, info := range infos {
			node := fancy.BlockNode(info.Index, info.Name, info.Line, info.Params)
			if !info.Shell {
				node.Child(fancy.SummaryText("not a shell block"))
			}
			if info.SyntaxErr != nil {
				node.Child(fancy.ErrorText(info.SyntaxErr.Error()))
			}
			t.Child(node)
		}
		if len(infos) == 0 {
			t.Child(fancy.SummaryText("no blocks"))
		}
		fmt.Fprintln(stdout(cmd), t)
	}
	return nil
}

// expandGlobs resolves each pattern, `**` included. A pattern without glob characters is
// kept as given, so a missing file is reported when it is opened.
func expandGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern '%s'", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand '%s': %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			matches = []string{pattern}
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
