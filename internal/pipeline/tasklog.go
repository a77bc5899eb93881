package pipeline

import (
	"strings"

	"github.com/mountstack/mountstack/internal/logging"
)

// TaskLog is the live log of a single running task. Lines are shown as they
// arrive and retained after the task ends.
type TaskLog struct {
	title   string
	console *Console
	lines   []string
	done    bool
}

func newTaskLog(title string, console *Console) *TaskLog {
	return &TaskLog{title: title, console: console}
}

func (l *TaskLog) start() {
	logging.Info().Str("task", l.title).Msg("task started")
	l.console.taskStart(l.title)
}

// Message appends a line to the log. Its signature matches the process
// output sinks so it can be passed to process.Options directly.
func (l *TaskLog) Message(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	l.lines = append(l.lines, line)
	logging.Debug().Str("task", l.title).Msg(line)
	l.console.taskLine(line)
}

// Success closes the log as succeeded.
func (l *TaskLog) Success(message string) {
	if l.done {
		return
	}
	l.done = true
	logging.Info().Str("task", l.title).Msg(message)
	l.console.taskSuccess(message)
}

// Error closes the log as failed.
func (l *TaskLog) Error(message string) {
	if l.done {
		return
	}
	l.done = true
	logging.Error().Str("task", l.title).Msg(message)
	l.console.taskFailure(message)
}

// Lines returns a copy of the retained lines.
func (l *TaskLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
