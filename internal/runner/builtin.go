package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func (r *Runner) runBuiltin(ctx context.Context, inv Invocation) (*Result, error) {
	source := inv.Source
	if source == "" {
		source = inv.Command
	}

	file, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(source), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	dir := inv.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
		}
	}

	pr, pw := io.Pipe()
	shell, err := interp.New(
		interp.StdIO(nil, pw, pw),
		interp.Env(expand.ListEnviron(r.env...)),
		interp.Dir(dir),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	logger := r.logger.With("interpreter", Builtin)
	logger.Debug("Running script", "dir", dir)

	start := time.Now()
	c := newCollector(r.tailLines, r.live)
	var runErr error
	g := new(errgroup.Group)
	g.Go(func() error {
		return c.consume(pr)
	})
	g.Go(func() error {
		runErr = shell.Run(ctx, file)
		return pw.Close()
	})
	readErr := g.Wait()

	res := c.result(time.Since(start))

	var status interp.ExitStatus
	switch {
	case ctx.Err() != nil:
		res.ExitCode = -1
		return res, ctx.Err()
	case errors.As(runErr, &status):
		res.ExitCode = int(status)
	case runErr != nil:
		return res, fmt.Errorf("builtin interpreter failed: %w", runErr)
	}
	if readErr != nil {
		return res, fmt.Errorf("failed reading script output: %w", readErr)
	}

	logger.Debug("Script finished", "exitCode", res.ExitCode, "lines", res.Lines, "duration", res.Duration)
	return res, nil
}
