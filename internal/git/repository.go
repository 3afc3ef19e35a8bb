package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mxcd/bumper/internal/runner"
	"github.com/rs/zerolog/log"
)

// NewRepository creates a new repository instance
func NewRepository(workingDirectory string, r runner.Runner, actor *Actor) *Repository {
	return &Repository{
		WorkingDirectory: workingDirectory,
		Runner:           r,
		Actor:            actor,
	}
}

// FindRoot finds the root directory of the git repository containing startPath
func FindRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := absPath
	if !isDirectory(absPath) {
		dir = filepath.Dir(absPath)
	}

	for {
		if exists(filepath.Join(dir, ".git")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a git repository (or any parent up to mount point)")
		}
		dir = parent
	}
}

func (r *Repository) command(args ...string) runner.Command {
	cmd := runner.Command{Name: "git", Args: args, Dir: r.WorkingDirectory}
	if r.Actor != nil && r.Actor.Name != "" && r.Actor.Email != "" {
		cmd.Env = []string{
			fmt.Sprintf("GIT_AUTHOR_NAME=%s", r.Actor.Name),
			fmt.Sprintf("GIT_AUTHOR_EMAIL=%s", r.Actor.Email),
			fmt.Sprintf("GIT_COMMITTER_NAME=%s", r.Actor.Name),
			fmt.Sprintf("GIT_COMMITTER_EMAIL=%s", r.Actor.Email),
		}
	}
	return cmd
}

// CommitCommand builds the commit invocation without running it
func (r *Repository) CommitCommand(options *CommitOptions) runner.Command {
	args := []string{"commit"}
	if options.All {
		args = append(args, "--all")
	}
	if options.NoVerify {
		args = append(args, "--no-verify")
	}
	if options.Sign {
		args = append(args, "--gpg-sign")
	}
	args = append(args, "--message", options.Message)
	if !options.All && len(options.Files) > 0 {
		args = append(args, "--")
		args = append(args, options.Files...)
	}
	return r.command(args...)
}

// TagCommand builds the tag invocation without running it
func (r *Repository) TagCommand(options *TagOptions) runner.Command {
	args := []string{"tag"}
	if options.Message != "" {
		args = append(args, "--annotate", "--message", options.Message)
	}
	if options.Sign {
		args = append(args, "--sign")
	}
	args = append(args, options.Name)
	return r.command(args...)
}

// TagExists reports whether a tag with the given name exists
func (r *Repository) TagExists(ctx context.Context, name string) (bool, error) {
	_, err := r.Runner.Run(ctx, r.command("rev-parse", "--quiet", "--verify", "refs/tags/"+name))
	if err == nil {
		return true, nil
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
}

// PushCommands builds the push invocations without running them
func (r *Repository) PushCommands(options *PushOptions) []runner.Command {
	remote := options.Remote
	if remote == "" {
		remote = "origin"
	}

	commands := make([]runner.Command, 0, 2)
	if options.Branch {
		commands = append(commands, r.command("push", remote))
	}
	if options.Tag != "" {
		commands = append(commands, r.command("push", remote, "refs/tags/"+options.Tag))
	}
	return commands
}

// Status returns the porcelain status of the working tree
func (r *Repository) Status(ctx context.Context) (string, error) {
	result, err := r.Runner.Run(ctx, r.command("status", "--porcelain"))
	if err != nil {
		return "", fmt.Errorf("failed to check git status: %w", err)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// HasUncommittedChanges checks if there are uncommitted changes in the working directory
func (r *Repository) HasUncommittedChanges(ctx context.Context) (bool, error) {
	status, err := r.Status(ctx)
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// LatestTag returns the most recent tag reachable from HEAD, or "" if there is none
func (r *Repository) LatestTag(ctx context.Context) (string, error) {
	result, err := r.Runner.Run(ctx, r.command("describe", "--tags", "--abbrev=0"))
	if err != nil {
		log.Debug().Err(err).Msg("No tag reachable from HEAD")
		return "", nil
	}
	return strings.TrimSpace(result.Stdout), nil
}

// isDirectory checks if a path is a directory
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// exists checks if a path exists
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
