package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog/log"
)

// Command is a request to invoke an external program
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
	// Interactive attaches the child to the terminal instead of capturing output
	Interactive bool
}

// String renders the command line for display
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, part := range parts {
		if part == "" || strings.ContainsAny(part, " \t\"'") {
			parts[i] = fmt.Sprintf("%q", part)
		}
	}
	return strings.Join(parts, " ")
}

// Result is the captured outcome of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError is returned when a command could not be started or exited non-zero
type ExitError struct {
	Command  Command
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command.String())
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.ExitCode)
	}
	if e.Err != nil && e.ExitCode <= 0 {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg = fmt.Sprintf("%s, output: %s", msg, stderr)
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Parse tokenizes a shell-like command line into a Command
func Parse(line string, dir string) (Command, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("failed to parse command %q: %w", line, err)
	}
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	return Command{Name: tokens[0], Args: tokens[1:], Dir: dir}, nil
}

// ExecRunner runs commands as child processes
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates a runner that streams interactive commands to the process stdio
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes cmd and waits for it to finish
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	log.Debug().Str("command", cmd.String()).Str("dir", cmd.Dir).Msg("Running command")

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	if cmd.Interactive {
		c.Stdin = os.Stdin
		c.Stdout = r.Stdout
		c.Stderr = io.MultiWriter(r.Stderr, &stderr)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		exitErr := &ExitError{Command: cmd, ExitCode: -1, Stderr: result.Stderr, Err: err}
		var processErr *exec.ExitError
		if errors.As(err, &processErr) {
			exitErr.ExitCode = processErr.ExitCode()
			result.ExitCode = exitErr.ExitCode
			if exitErr.Stderr == "" {
				exitErr.Stderr = result.Stdout
			}
		}
		log.Trace().Str("command", cmd.String()).Int("exitCode", exitErr.ExitCode).Str("stderr", result.Stderr).Msg("Command failed")
		return result, exitErr
	}

	log.Trace().Str("command", cmd.String()).Str("stdout", result.Stdout).Msg("Command finished")
	return result, nil
}
