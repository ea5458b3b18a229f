package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/fancy"
	"github.com/atlanticdynamic/coderunner/internal/logging/writers"
	"github.com/atlanticdynamic/coderunner/internal/pipeline"
	"github.com/atlanticdynamic/coderunner/internal/prompt"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// blockFlags select the block a command works on.
func blockFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "line",
			Aliases: []string{"l"},
			Usage:   "1-based line inside the block",
		},
		&cli.StringFlag{
			Name:    "block",
			Aliases: []string{"b"},
			Usage:   "Block index (1-based) or script name",
		},
	}
}

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a script block of a Markdown document",
		ArgsUsage: "<document>",
		Flags: append(blockFlags(),
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Parameter value as name=value, may be repeated",
			},
			&cli.BoolFlag{
				Name:  "no-prompt",
				Usage: "Fail instead of prompting for values not given with --set",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and print the script without writing or running it",
			},
			&cli.BoolFlag{
				Name:  "no-write",
				Usage: "Do not write the output summary into the document",
			},
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "Print output lines as the script produces them",
			},
		),
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return cli.Exit("document path required", 1)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	values, err := parseAssignments(cmd.StringSlice("set"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	doc, err := document.Open(cmd.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	transcript, err := writers.Open(s.Transcript)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to open transcript: %w", err), 1)
	}
	defer func() { _ = transcript.Close() }()

	opts := []pipeline.Option{
		pipeline.WithSettings(s),
		pipeline.WithLogHandler(slog.Default().Handler()),
		pipeline.WithPrompter(newPrompter(values, cmd.Bool("no-prompt"))),
		pipeline.WithTranscript(transcript),
		pipeline.WithDryRun(cmd.Bool("dry-run")),
		pipeline.WithNoWrite(cmd.Bool("no-write")),
	}
	if cmd.Bool("follow") {
		opts = append(opts, pipeline.WithLiveOutput(stdout(cmd)))
	}
	sess := pipeline.New(opts...)

	if err := selectBlock(sess, doc, cmd); err != nil {
		return cli.Exit(err, 1)
	}

	out, err := sess.Run(ctx, doc)
	if err != nil {
		return cli.Exit(fmt.Errorf("run failed: %w", err), 1)
	}

	printOutcome(stdout(cmd), out, cmd.Bool("follow"))
	return nil
}

// selectBlock moves the selection to the block named by --block or --line, or to the
// first block.
func selectBlock(sess *pipeline.Session, doc pipeline.Navigable, cmd *cli.Command) error {
	switch {
	case cmd.String("block") != "":
		return sess.SelectBlock(doc, cmd.String("block"))
	case cmd.Int("line") > 0:
		return pipeline.SelectLine(doc, int(cmd.Int("line")))
	default:
		return sess.SelectBlock(doc, "1")
	}
}

// newPrompter answers from --set values first. The rest are asked for on the terminal,
// with a text input when both stdin and stdout are terminals.
func newPrompter(values map[string]string, noPrompt bool) resolver.Prompter {
	if noPrompt {
		return prompt.NewFixed(values)
	}

	var next resolver.Prompter
	if isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		next = prompt.NewTUI(os.Stdin, os.Stdout)
	} else {
		next = prompt.NewLine(os.Stdin, os.Stderr)
	}
	return prompt.NewPreset(values, next)
}

// parseAssignments turns name=value pairs into a map. Later pairs win.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment '%s': expected name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}

func printOutcome(w io.Writer, out *pipeline.Outcome, followed bool) {
	plan := out.Plan
	if out.DryRun {
		fmt.Fprintf(w, "%s %s\n\n", fancy.BlockText(plan.Name), fancy.SummaryText("(dry run)"))
		fmt.Fprintln(w, plan.Invocation.Source)
		fmt.Fprintf(w, "%s %s\n", fancy.SummaryText("command:"), plan.Invocation.Command)
		return
	}

	status := fancy.ValidText("exit 0")
	if out.Result.ExitCode != 0 {
		status = fancy.ErrorText(fmt.Sprintf("exit %d", out.Result.ExitCode))
	}
	fmt.Fprintf(w, "%s %s %s\n",
		fancy.BlockText(plan.Name),
		status,
		fancy.SummaryText(fmt.Sprintf("%d lines in %s", out.Result.Lines, out.Result.Duration.Round(time.Millisecond))),
	)
	if plan.Artifact != nil {
		fmt.Fprintf(w, "%s %s\n", fancy.SummaryText("script:"), fancy.PathText(plan.Artifact.Path))
	}
	if !followed && out.Result.Tail != "" {
		fmt.Fprintln(w, out.Result.Tail)
	}
}
