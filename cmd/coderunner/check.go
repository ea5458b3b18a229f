package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/fancy"
	"github.com/atlanticdynamic/coderunner/internal/pipeline"
	"github.com/urfave/cli/v3"
)

func newCheckCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check the shell syntax of every block in Markdown documents",
		ArgsUsage: "<document or glob>...",
		Action:    checkAction,
	}
}

func checkAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return cli.Exit("at least one document required", 1)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	paths, err := expandGlobs(cmd.Args().Slice())
	if err != nil {
		return cli.Exit(err, 1)
	}

	sess := pipeline.New(
		pipeline.WithSettings(s),
		pipeline.WithLogHandler(slog.Default().Handler()),
	)

	w := stdout(cmd)
	var checked, failed int
	for _, path := range paths {
		doc, err := document.Open(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		infos, err := sess.Blocks(doc)
		if err != nil {
			return cli.Exit(fmt.Errorf("%s: %w", path, err), 1)
		}

		for _, info := range infos {
			if !info.Shell {
				continue
			}
			checked++
			where := fancy.PathText(fmt.Sprintf("%s:%d", path, info.Line))
			if info.SyntaxErr != nil {
				failed++
				fmt.Fprintf(w, "%s %s %s\n", fancy.ErrorText("✗"), where, info.SyntaxErr)
				continue
			}
			fmt.Fprintf(w, "%s %s %s\n", fancy.ValidText("✓"), where, fancy.BlockText(info.Name))
		}
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d blocks failed the syntax check", failed, checked), 1)
	}
	fmt.Fprintf(w, "%s\n", fancy.SummaryText(fmt.Sprintf("%d blocks checked", checked)))
	return nil
}
