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

func newParamsCmd() *cli.Command {
	return &cli.Command{
		Name:      "params",
		Usage:     "Show the parameters of a script block and where their values come from",
		ArgsUsage: "<document>",
		Flags:     blockFlags(),
		Action:    paramsAction,
	}
}

func paramsAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return cli.Exit("document path required", 1)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}

	doc, err := document.Open(cmd.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	sess := pipeline.New(
		pipeline.WithSettings(s),
		pipeline.WithLogHandler(slog.Default().Handler()),
	)
	if err := selectBlock(sess, doc, cmd); err != nil {
		return cli.Exit(err, 1)
	}

	plan, err := sess.Prepare(doc)
	if err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Fprintln(stdout(cmd), paramsTree(doc.FileName(), plan))
	return nil
}

func paramsTree(path string, plan *pipeline.Plan) string {
	t := fancy.Tree().Root(fmt.Sprintf("%s %s",
		fancy.BlockText(plan.Name),
		fancy.PathText(fmt.Sprintf("%s:%d", path, plan.Line)),
	))

	if len(plan.Params) == 0 {
		t.Child(fancy.SummaryText("no parameters"))
	}
	for _, name := range plan.Params {
		label := fancy.ParamText("$" + name)
		switch {
		case plan.Seed.Has(name):
			v, _ := plan.Seed.Get(name)
			t.Child(fmt.Sprintf("%s %s %s", label, fancy.SummaryText("implicit"), v))
		case plan.Config.Has(name):
			v, _ := plan.Config.Get(name)
			t.Child(fmt.Sprintf("%s %s %s", label, fancy.ConfigText("config"), v))
		default:
			t.Child(fmt.Sprintf("%s %s", label, fancy.PromptLabel("prompt")))
		}
	}
	return t.String()
}
