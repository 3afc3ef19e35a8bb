package runner

import (
	"context"
	"sync"
)

// Recorder is a Runner that records commands instead of executing them.
// Handler, when set, decides the result of each command.
type Recorder struct {
	Handler func(cmd Command) (*Result, error)

	mu       sync.Mutex
	commands []Command
}

// NewRecorder returns a Recorder where every command succeeds with empty output
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Run records cmd and returns the handler's result
func (r *Recorder) Run(_ context.Context, cmd Command) (*Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.Handler != nil {
		return r.Handler(cmd)
	}
	return &Result{}, nil
}

// Commands returns the recorded commands in invocation order
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Lines returns the recorded commands rendered as command lines
func (r *Recorder) Lines() []string {
	commands := r.Commands()
	lines := make([]string, len(commands))
	for i, cmd := range commands {
		lines[i] = cmd.String()
	}
	return lines
}
