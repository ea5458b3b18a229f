// Package runner executes a materialized script with an external shell, or with the
// in-process mvdan.cc/sh interpreter, and collects its merged output.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/atlanticdynamic/coderunner/internal/tail"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultInterpreter is the command mapping key used when none is configured.
	DefaultInterpreter = "sh"

	// Builtin as a command mapping value runs scripts with the embedded interpreter.
	Builtin = "builtin"
)

// DefaultCommands maps interpreter ids to executables.
func DefaultCommands() map[string]string {
	return map[string]string{DefaultInterpreter: "/bin/sh"}
}

// Invocation is what to run. An external shell receives Command via `-c`; the builtin
// interpreter runs Source, falling back to Command when Source is empty.
type Invocation struct {
	Command string
	Source  string

	// Dir is the working directory of the builtin interpreter. External shells always
	// start in their own directory.
	Dir string
}

// Result is the outcome of a finished script.
type Result struct {
	// Output is every non-empty line, each terminated by a newline.
	Output string

	// Tail is the last lines of output, joined by newlines.
	Tail string

	// Lines is the number of lines in Output.
	Lines int

	ExitCode int
	Duration time.Duration
}

// Runner starts scripts. It holds no per-run state and is safe for concurrent use.
type Runner struct {
	commands    map[string]string
	interpreter string
	tailLines   int
	env         []string
	live        io.Writer
	logger      *slog.Logger
}

// New creates a Runner. The process environment is copied once here.
func New(opts ...Option) *Runner {
	r := &Runner{
		commands:    DefaultCommands(),
		interpreter: DefaultInterpreter,
		tailLines:   tail.DefaultCapacity,
		env:         os.Environ(),
		logger:      slog.Default().WithGroup("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interpreter returns the configured interpreter id.
func (r *Runner) Interpreter() string {
	return r.interpreter
}

// IsBuiltin reports whether scripts run in-process.
func (r *Runner) IsBuiltin() bool {
	return r.commands[r.interpreter] == Builtin
}

// ShellPath returns the configured shell with symlinks resolved.
func (r *Runner) ShellPath() (string, error) {
	configured, ok := r.commands[r.interpreter]
	if !ok || configured == "" {
		return "", fmt.Errorf("%w: no command configured for interpreter '%s'", ErrSpawn, r.interpreter)
	}
	if configured == Builtin {
		return Builtin, nil
	}

	path, err := exec.LookPath(configured)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return resolved, nil
}

// Run executes inv and blocks until the script exits and its output is drained. A non-zero
// exit status is reported in the Result, not as an error. Cancelling ctx kills the script;
// the partial Result is returned together with the context error.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	shell, err := r.ShellPath()
	if err != nil {
		return nil, err
	}
	if shell == Builtin {
		return r.runBuiltin(ctx, inv)
	}
	return r.runShell(ctx, shell, inv)
}

func (r *Runner) runShell(ctx context.Context, shell string, inv Invocation) (*Result, error) {
	shellDir := filepath.Dir(shell)
	command := wrapCommand(shellDir, inv.Command)

	logger := r.logger.With("shell", shell, "interpreter", r.interpreter)
	logger.Debug("Running script", "command", command)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	defer func() { _ = pr.Close() }()

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = shellDir
	cmd.Env = r.env
	cmd.Stdout = pw
	cmd.Stderr = pw

	start := time.Now()
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	// the child holds its own copy of the write end, EOF arrives once every holder exits
	_ = pw.Close()

	c := newCollector(r.tailLines, r.live)
	var waitErr error
	g := new(errgroup.Group)
	g.Go(func() error {
		return c.consume(pr)
	})
	g.Go(func() error {
		waitErr = cmd.Wait()
		return nil
	})
	readErr := g.Wait()

	res := c.result(time.Since(start))
	res.ExitCode = cmd.ProcessState.ExitCode()

	if ctx.Err() != nil {
		logger.Debug("Script cancelled", "exitCode", res.ExitCode)
		return res, ctx.Err()
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return res, fmt.Errorf("failed waiting for script: %w", waitErr)
	}
	if readErr != nil {
		return res, fmt.Errorf("failed reading script output: %w", readErr)
	}

	logger.Debug("Script finished", "exitCode", res.ExitCode, "lines", res.Lines, "duration", res.Duration)
	return res, nil
}

// wrapCommand converts the command to a POSIX path with cygpath when the shell comes from a
// Cygwin or MSYS installation.
func wrapCommand(shellDir, command string) string {
	if _, err := os.Stat(filepath.Join(shellDir, "cygpath.exe")); err == nil {
		return `$(cygpath -u "` + command + `")`
	}
	return command
}

// collector splits output into lines for the full transcript and the bounded tail.
type collector struct {
	tail  *tail.Buffer
	out   strings.Builder
	lines int
	live  io.Writer
}

func newCollector(tailLines int, live io.Writer) *collector {
	return &collector{tail: tail.New(tailLines), live: live}
}

func (c *collector) consume(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			c.add(line)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			// keep draining so the script is not blocked on a full pipe
			_, _ = io.Copy(io.Discard, r)
			return err
		}
	}
}

func (c *collector) add(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	c.tail.Add(line)
	c.out.WriteString(line)
	c.out.WriteByte('\n')
	c.lines++
	if c.live != nil {
		_, _ = io.WriteString(c.live, line+"\n")
	}
}

func (c *collector) result(d time.Duration) *Result {
	return &Result{
		Output:   c.out.String(),
		Tail:     c.tail.Text(),
		Lines:    c.lines,
		Duration: d,
	}
}
