package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/settings"
	"github.com/urfave/cli/v3"
)

func newValidateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"lint"},
		Usage:     "Validate a settings file",
		ArgsUsage: "[settings file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "tree",
				Aliases: []string{"t"},
				Usage:   "Show detailed tree view of the validated settings",
			},
		},
		Action: validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		path = cmd.String("settings")
	}
	if path == "" {
		return cli.Exit(
			"settings file path required (use the --settings flag, or provide the file as positional argument)", 1)
	}

	s, err := settings.Load(path)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to load settings: %w", err), 1)
	}
	if err := s.Validate(); err != nil {
		return cli.Exit(fmt.Errorf("validation failed: %w", err), 1)
	}

	w := stdout(cmd)
	fmt.Fprintf(w, "Settings file %s is valid\n", path)
	if cmd.Bool("tree") {
		fmt.Fprintln(w, s)
		return nil
	}
	fmt.Fprintln(w, renderSettingsSummary(path, s))
	return nil
}

// renderSettingsSummary creates a formatted summary string for the settings
func renderSettingsSummary(path string, s *settings.Settings) string {
	var summary strings.Builder

	summary.WriteString("\nSettings Summary:\n")
	fmt.Fprintf(&summary, "- Path: %s\n", path)
	fmt.Fprintf(&summary, "- Interpreter: %s (%s)\n", s.Interpreter, s.Shell())
	fmt.Fprintf(&summary, "- Commands: %d\n", len(s.Commands))
	fmt.Fprintf(&summary, "- Tail lines: %d\n", s.TailLines)
	fmt.Fprintf(&summary, "- Transcript: %s\n", s.Transcript)
	summary.WriteString("\nUse --tree for a more detailed view of the settings.")

	return summary.String()
}
