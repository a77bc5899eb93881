// Package pipeline runs an ordered list of scaffolding tasks one at a time.
//
// Each task receives a TaskLog scoped to its title and returns a Result. The
// first failure aborts the run; tasks that already completed are not undone.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mountstack/mountstack/internal/logging"
)

// ErrTaskFailed is wrapped by every error Run returns for a failed task.
var ErrTaskFailed = errors.New("task failed")

// Outcome is the terminal state of a task.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// Result is what a task action reports back to the pipeline.
type Result struct {
	Outcome Outcome
	Message string
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }

// Success returns a successful result carrying message.
func Success(message string) Result {
	return Result{Outcome: OutcomeSuccess, Message: message}
}

// Failure returns a failed result carrying message.
func Failure(message string) Result {
	return Result{Outcome: OutcomeFailure, Message: message}
}

// Failuref returns a failed result with a formatted message.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// FromError converts err into a result. A nil error is a success with
// message ok; otherwise the failure message is "<failed>: <err>".
func FromError(ok, failed string, err error) Result {
	if err != nil {
		return Failuref("%s: %v", failed, err)
	}
	return Success(ok)
}

// Action performs a task's work.
type Action func(ctx context.Context, log *TaskLog) Result

// Task is one titled step of a pipeline.
type Task struct {
	Title  string
	Action Action
}

// TaskError reports the task that stopped a run.
type TaskError struct {
	Index   int
	Title   string
	Message string
}

func (e *TaskError) Error() string { return e.Message }

func (e *TaskError) Unwrap() error { return ErrTaskFailed }

// Option configures Run.
type Option func(*runner)

// WithConsole renders task logs on c instead of standard output.
func WithConsole(c *Console) Option {
	return func(r *runner) { r.console = c }
}

type runner struct {
	console *Console
}

// Run executes tasks sequentially in list order. Each task completes before
// the next starts. A failed result, or a panic inside an action, marks the
// task's log as failed and returns a *TaskError without starting any later
// task. Run also stops before the next task once ctx is done.
func Run(ctx context.Context, tasks []Task, opts ...Option) error {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.console == nil {
		r.console = NewConsole(os.Stdout)
	}

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("before %q: %w", task.Title, err)
		}

		log := newTaskLog(task.Title, r.console)
		log.start()
		result := invoke(ctx, task, log)
		if result.OK() {
			log.Success(result.Message)
			continue
		}

		log.Error(result.Message)
		return &TaskError{Index: i, Title: task.Title, Message: result.Message}
	}
	return nil
}

// invoke runs the task's action behind a failure boundary.
func invoke(ctx context.Context, task Task, log *TaskLog) (result Result) {
	if task.Action == nil {
		return Failuref("%s: no action", task.Title)
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("task", task.Title).Interface("panic", r).Msg("task panicked")
			result = Failuref("%v", r)
		}
	}()
	return task.Action(ctx, log)
}
