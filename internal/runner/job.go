package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atlanticdynamic/coderunner/internal/finitestate"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-loglater/storage"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Job)(nil)
	_ supervisor.Stateable = (*Job)(nil)
)

// CompletionFunc is called once when a job finishes, with whatever Run produced.
type CompletionFunc func(id uuid.UUID, res *Result, err error)

// JobOption configures a Job.
type JobOption func(*Job)

// WithJobLogHandler sets the handler that receives the job's log records.
func WithJobLogHandler(handler slog.Handler) JobOption {
	return func(j *Job) {
		if handler != nil {
			j.handler = handler
		}
	}
}

// WithCompletion registers a function called when the script finishes.
func WithCompletion(fn CompletionFunc) JobOption {
	return func(j *Job) {
		j.onComplete = fn
	}
}

// Job is one script run hosted by a supervisor. It runs the script once, records the
// outcome, then returns from Run.
type Job struct {
	ID         uuid.UUID
	runner     *Runner
	invocation Invocation
	onComplete CompletionFunc

	handler      slog.Handler
	logger       *slog.Logger
	logCollector *loglater.LogCollector
	fsm          finitestate.Machine

	mu         sync.Mutex
	runCancel  context.CancelFunc
	result     *Result
	err        error
	done       chan struct{}
	finishOnce sync.Once
}

// NewJob prepares a run of inv on r.
func NewJob(r *Runner, inv Invocation, opts ...JobOption) (*Job, error) {
	j := &Job{
		ID:         uuid.Must(uuid.NewV6()),
		runner:     r,
		invocation: inv,
		handler:    slog.Default().Handler(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}

	j.logCollector = loglater.NewLogCollector(j.handler)
	j.logger = slog.New(j.logCollector).WithGroup("runner.Job").With("id", j.ID)

	machine, err := finitestate.NewJobMachine(j.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("%s failed to create state machine: %w", j.ID, err)
	}
	j.fsm = machine

	j.logger.Debug("Job created", "interpreter", r.Interpreter())
	return j, nil
}

// String implements the supervisor.Runnable interface
func (j *Job) String() string {
	return "runner.Job"
}

// Run implements the supervisor.Runnable interface
func (j *Job) Run(ctx context.Context) error {
	if err := j.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	j.mu.Lock()
	j.runCancel = cancel
	j.mu.Unlock()

	if err := j.fsm.Transition(finitestate.StatusRunning); err != nil {
		if j.fsm.TransitionIfCurrentState(finitestate.StatusStopping, finitestate.StatusStopped) == nil {
			j.finish(nil, context.Canceled)
			return nil
		}
		err = fmt.Errorf("failed to transition to running state: %w", err)
		j.finish(nil, err)
		return err
	}
	j.logger.Info("Script started")

	res, err := j.runner.Run(runCtx, j.invocation)

	switch {
	case err == nil:
		j.logger.Info("Script finished", "exitCode", res.ExitCode, "duration", res.Duration)
	case errors.Is(err, context.Canceled):
		j.logger.Warn("Script cancelled")
	default:
		j.logger.Error("Script failed", "error", err)
		if !j.fsm.TransitionBool(finitestate.StatusError) {
			j.logger.Error("Failed to transition to error state", "state", j.fsm.GetState())
		}
		j.finish(res, err)
		return err
	}

	// Stop may already have moved the job to Stopping.
	if err := j.fsm.TransitionIfCurrentState(finitestate.StatusRunning, finitestate.StatusStopping); err != nil {
		j.logger.Debug("Job already stopping", "state", j.fsm.GetState())
	}
	stopErr := j.fsm.Transition(finitestate.StatusStopped)
	j.finish(res, err)
	if stopErr != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", stopErr)
	}
	return nil
}

func (j *Job) finish(res *Result, err error) {
	j.finishOnce.Do(func() {
		j.mu.Lock()
		j.result = res
		j.err = err
		j.mu.Unlock()
		close(j.done)

		if j.onComplete != nil {
			j.onComplete(j.ID, res, err)
		}
	})
}

// Stop implements the supervisor.Runnable interface. It kills a running script.
func (j *Job) Stop() {
	j.logger.Debug("Stopping job")
	if !j.fsm.TransitionBool(finitestate.StatusStopping) {
		j.logger.Debug("Job not running", "state", j.fsm.GetState())
	}

	j.mu.Lock()
	cancel := j.runCancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once the script has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the outcome of the run.
func (j *Job) Result() (*Result, error) {
	select {
	case <-j.done:
	default:
		return nil, ErrJobNotDone
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// GetLogs returns every record the job logged.
func (j *Job) GetLogs() []storage.Record {
	return j.logCollector.GetLogs()
}

// LogEntry is one record from a job's log history.
type LogEntry struct {
	Time    string            `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// LogEntries converts the job's log history for callers that report it alongside a result.
func (j *Job) LogEntries() []LogEntry {
	records := j.GetLogs()
	entries := make([]LogEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, convertRecord(record))
	}
	return entries
}

func convertRecord(record storage.Record) LogEntry {
	entry := LogEntry{
		Time:    record.Time.Format(time.RFC3339Nano),
		Level:   record.Level.String(),
		Message: record.Message,
	}
	if len(record.Attrs) > 0 {
		entry.Attrs = make(map[string]string, len(record.Attrs))
		for _, attr := range record.Attrs {
			entry.Attrs[attr.Key] = attr.Value.String()
		}
	}
	return entry
}

func (j *Job) GetState() string {
	return j.fsm.GetState()
}

func (j *Job) GetStateChan(ctx context.Context) <-chan string {
	return j.fsm.GetStateChan(ctx)
}

func (j *Job) IsRunning() bool {
	return j.fsm.GetState() == finitestate.StatusRunning
}
