package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "coderunner",
		Version: Version,
		Usage:   "Run the shell blocks of Markdown documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "Path to a TOML or YAML settings file",
				Sources: cli.EnvVars("CODERUNNER_SETTINGS"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (trace, debug, info, warn, error); overrides the settings file",
			},
		},
		Commands: []*cli.Command{
			newRunCmd(),
			newParamsCmd(),
			newBlocksCmd(),
			newCheckCmd(),
			newValidateCmd(),
			newMCPCmd(),
			newVersionCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stdout returns the writer command output goes to.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
