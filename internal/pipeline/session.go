// Package pipeline runs one script block end to end: locate the block around the selection,
// resolve its parameters, materialize it, execute it under a supervisor, then record the
// output in the transcript and between the document's output markers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/atlanticdynamic/coderunner/internal/configblock"
	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/placeholder"
	"github.com/atlanticdynamic/coderunner/internal/prompt"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/atlanticdynamic/coderunner/internal/results"
	"github.com/atlanticdynamic/coderunner/internal/runner"
	"github.com/atlanticdynamic/coderunner/internal/script"
	"github.com/atlanticdynamic/coderunner/internal/settings"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-supervisor/supervisor"
)

// TimestampLayout formats the implicit timestamp argument.
const TimestampLayout = "2006-01-02T15:04:05"

// Plan is everything known about a block before it runs.
type Plan struct {
	// Name is the script name derived from the nearest preceding header.
	Name string

	// Region covers the block, fences included.
	Region document.Region

	// Line is the 1-based line of the opening fence, 0 when the document cannot tell.
	Line int

	Block  script.Block
	Config *placeholder.Values
	Params []string

	// Seed holds the implicit arguments: timestamp, and working_dir when one is known.
	Seed *placeholder.Values

	// Args is set by Resolve.
	Args *placeholder.Values

	// Artifact is set by Materialize when the script was written to disk.
	Artifact *script.Artifact

	// Invocation is set by Materialize.
	Invocation runner.Invocation

	documentPath string
	dir          string
}

// Outcome describes a finished run.
type Outcome struct {
	Plan   *Plan
	RunID  uuid.UUID
	Result *runner.Result

	// Summary is the text spliced between the output markers.
	Summary string

	// Log is the job's own log history for this run.
	Log []runner.LogEntry

	Transcribed bool
	Spliced     bool
	Saved       bool
	DryRun      bool
}

// Session runs blocks with one set of settings. Values typed at a prompt are remembered for
// the lifetime of the session and offered again as the initial value.
type Session struct {
	settings      *settings.Settings
	runner        *runner.Runner
	memory        *resolver.Memory
	prompter      resolver.Prompter
	transcript    *results.Transcript
	transcriptOut io.Writer
	live          io.Writer
	handler       slog.Handler
	logger        *slog.Logger
	now           func() time.Time
	dryRun        bool
	noWrite       bool
}

// New creates a Session. Without options it uses default settings, a non-interactive
// prompter with no values, and discards the transcript.
func New(opts ...Option) *Session {
	s := &Session{
		settings:      settings.Default(),
		memory:        resolver.NewMemory(),
		prompter:      prompt.NewFixed(nil),
		transcriptOut: io.Discard,
		handler:       slog.Default().Handler(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = slog.New(s.handler).WithGroup("pipeline")
	s.transcript = results.NewTranscript(s.transcriptOut)
	if s.runner == nil {
		s.runner = runner.New(
			runner.WithCommands(s.settings.CommandsCopy()),
			runner.WithInterpreter(s.settings.Interpreter),
			runner.WithTailLines(s.settings.TailLines),
			runner.WithLogHandler(s.handler),
			runner.WithOutput(s.live),
		)
	}
	return s
}

// Memory returns the values remembered by this session.
func (s *Session) Memory() *resolver.Memory {
	return s.memory
}

// Run prepares, resolves, materializes and executes the block at the document selection.
func (s *Session) Run(ctx context.Context, doc document.Document) (*Outcome, error) {
	plan, err := s.Prepare(doc)
	if err != nil {
		return nil, err
	}
	if err := s.Resolve(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.Materialize(plan); err != nil {
		return nil, err
	}
	return s.Execute(ctx, doc, plan)
}

// Prepare reads the block at the document selection along with the config block and
// header that apply to it.
func (s *Session) Prepare(doc document.Document) (*Plan, error) {
	pos := doc.Selection()
	if !doc.MatchScope(pos, s.settings.BlockScope) {
		return nil, fmt.Errorf("%w: offset %d", ErrNotInBlock, pos)
	}

	region := document.ExpandToScope(doc, pos, s.settings.BlockScope)
	block := script.Parse(document.RegionText(doc, region))

	config, err := configblock.Extract(doc, s.settings.ConfigTag, s.logger)
	if err != nil {
		return nil, err
	}

	header, _ := document.HeaderBefore(doc, region.A, s.settings.HeaderScope)

	plan := &Plan{
		Name:         script.Name(header),
		Region:       region,
		Block:        block,
		Config:       config,
		Params:       block.Parameters(),
		Seed:         placeholder.NewValues(resolver.ArgTimestamp, s.now().Format(TimestampLayout)),
		documentPath: doc.FileName(),
	}
	if lines, ok := doc.(interface{ LineNumber(int) int }); ok {
		plan.Line = lines.LineNumber(region.A)
	}
	if plan.documentPath != "" {
		plan.dir = filepath.Dir(plan.documentPath)
	}

	switch {
	case block.WorkingDir != "":
		plan.Seed.Set(resolver.ArgWorkingDir, block.WorkingDir)
	case plan.dir != "":
		plan.Seed.Set(resolver.ArgWorkingDir, plan.dir)
	}

	s.logger.Debug("Prepared block",
		"name", plan.Name,
		"region", region.String(),
		"params", plan.Params,
		"config", config.Len(),
	)
	return plan, nil
}

// Resolve fills plan.Args from the config block, then from the prompter.
func (s *Session) Resolve(ctx context.Context, plan *Plan) error {
	r, err := resolver.New(plan.Params, plan.Config, s.memory, plan.Seed,
		resolver.WithLogHandler(s.handler))
	if err != nil {
		return err
	}

	args, err := resolver.Drive(ctx, r, s.prompter)
	if err != nil {
		return err
	}
	plan.Args = args
	return nil
}

// Materialize writes the script file next to the document, or falls back to a single
// joined command for a document with no file. A dry run only renders.
func (s *Session) Materialize(plan *Plan) error {
	if plan.Args == nil {
		return ErrNotResolved
	}

	code := plan.Block.Code()
	inv := runner.Invocation{
		Command: plan.Block.Command(plan.Args),
		Source:  script.Render(plan.Args, code),
		Dir:     plan.dir,
	}

	if !s.dryRun {
		art, err := script.Write(script.ArtifactRequest{
			DocumentPath: plan.documentPath,
			RunDirectory: s.settings.RunDirectory,
			Name:         plan.Name,
			Args:         plan.Args,
			Code:         code,
		})
		switch {
		case errors.Is(err, script.ErrNoBackingFile):
			s.logger.Debug("Document has no file, running the joined command")
			inv.Source = ""
		case err != nil:
			return err
		default:
			s.logger.Debug("Script written", "path", art.Path)
			plan.Artifact = art
			inv.Command = art.Path
		}
	}

	if s.checksSyntax() {
		source := inv.Source
		if source == "" {
			source = inv.Command
		}
		if err := script.Check(plan.Name, source); err != nil {
			return err
		}
	}

	plan.Invocation = inv
	return nil
}

// checksSyntax reports whether scripts are checked with the POSIX parser before they run.
// Other shells accept syntax the parser rejects.
func (s *Session) checksSyntax() bool {
	return s.settings.Interpreter == settings.DefaultInterpreter || s.runner.IsBuiltin()
}

// Execute runs a materialized plan under a supervisor, so an interrupt stops the script.
// The complete output goes to the transcript. When the run succeeds and output markers
// follow the block, the summary replaces their content and a file-backed document is saved.
func (s *Session) Execute(ctx context.Context, doc document.Document, plan *Plan) (*Outcome, error) {
	if plan.Args == nil {
		return nil, ErrNotResolved
	}
	if s.dryRun {
		return &Outcome{Plan: plan, DryRun: true}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	job, err := runner.NewJob(s.runner, plan.Invocation,
		runner.WithJobLogHandler(s.handler),
		runner.WithCompletion(func(uuid.UUID, *runner.Result, error) { cancel() }),
	)
	if err != nil {
		return nil, err
	}

	super, err := supervisor.New(
		supervisor.WithContext(runCtx),
		supervisor.WithLogHandler(s.handler),
		supervisor.WithRunnables(job),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create supervisor: %w", err)
	}

	superErr := super.Run()

	res, runErr := job.Result()
	if errors.Is(runErr, runner.ErrJobNotDone) {
		if superErr != nil {
			return nil, superErr
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", runErr, ctx.Err())
		}
		return nil, runErr
	}
	if res == nil {
		return &Outcome{Plan: plan, RunID: job.ID, Log: job.LogEntries()}, runErr
	}

	out := &Outcome{Plan: plan, RunID: job.ID, Result: res, Log: job.LogEntries()}
	s.logger.Info("Script finished",
		"name", plan.Name,
		"id", job.ID,
		"exitCode", res.ExitCode,
		"lines", res.Lines,
	)

	written, err := s.transcript.Append(results.Entry{
		Args:    plan.Args,
		Command: plan.Invocation.Command,
		Output:  res.Output,
	})
	if err != nil {
		return out, err
	}
	out.Transcribed = written

	if runErr != nil {
		return out, runErr
	}
	if s.noWrite {
		return out, nil
	}
	return out, s.writeSummary(doc, plan, out)
}

func (s *Session) writeSummary(doc document.Document, plan *Plan, out *Outcome) error {
	region, ok := results.LocateOutput(doc, s.settings.OutputTag, plan.Region.B)
	if !ok {
		s.logger.Debug("No output markers after block", "tag", s.settings.OutputTag)
		return nil
	}

	var link string
	if plan.Artifact != nil {
		link = plan.Artifact.RelPath()
	}
	out.Summary = results.Summary(link, out.Result.Tail)

	if err := results.Splice(doc, region, out.Summary); err != nil {
		return fmt.Errorf("failed to write output summary: %w", err)
	}
	out.Spliced = true

	if saver, ok := doc.(interface{ Save() error }); ok {
		if err := saver.Save(); err != nil {
			return err
		}
		out.Saved = true
	}
	return nil
}
