package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/git"
	"github.com/mxcd/bumper/internal/version"
	"github.com/rs/zerolog/log"
)

var commitTypeColors = map[string]*color.Color{
	"feat":     color.New(color.FgGreen),
	"feature":  color.New(color.FgGreen),
	"fix":      color.New(color.FgYellow),
	"perf":     color.New(color.FgMagenta),
	"refactor": color.New(color.FgBlue),
	"docs":     color.New(color.FgCyan),
}

// PrintCommits lists the commits since the latest tag, newest first
func PrintCommits(out io.Writer, commits []*git.Commit) {
	if len(commits) == 0 {
		fmt.Fprintln(out, color.New(color.Faint).Sprint("No commits since the last tag"))
		return
	}

	for _, commit := range commits {
		hash := color.New(color.Faint).Sprint(commit.ShortHash)
		if commit.Type == "" {
			fmt.Fprintf(out, "%s %s\n", hash, commit.Description)
			continue
		}

		header := commit.Type
		if commit.Scope != "" {
			header = fmt.Sprintf("%s(%s)", commit.Type, commit.Scope)
		}
		if commit.Breaking {
			header = color.New(color.FgRed, color.Bold).Sprint(header + "!")
		} else if c, ok := commitTypeColors[commit.Type]; ok {
			header = c.Sprint(header)
		}
		fmt.Fprintf(out, "%s %s: %s\n", hash, header, commit.Description)
	}
	fmt.Fprintln(out)
}

// suggestRelease reads the commits since the latest tag when the release or the
// options need them and returns the release type they imply. Commits are listed
// on console when PrintCommits is set.
func suggestRelease(ctx context.Context, opts *configuration.Options, repo *git.Repository, console io.Writer) version.ReleaseType {
	if !opts.PrintCommits && !wantsCommitHistory(opts.Release) {
		return ""
	}
	if _, err := git.FindRoot(opts.Cwd); err != nil {
		return ""
	}

	commits, err := repo.RecentCommits(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read commits since the last tag")
		return ""
	}
	if opts.PrintCommits {
		PrintCommits(console, commits)
	}
	if len(commits) == 0 {
		return ""
	}
	return version.ReleaseType(git.SuggestRelease(commits))
}

func wantsCommitHistory(release string) bool {
	release = strings.ToLower(strings.TrimSpace(release))
	return version.IsPromptSpec(release) || release == string(version.ReleaseConventional)
}

// consoleWriter picks where human progress goes. Machine readable reports own
// stdout, so progress moves to stderr for them.
func consoleWriter(console, out io.Writer, format string) io.Writer {
	if console != nil {
		return console
	}
	if format == OutputJSON || format == OutputYAML {
		return os.Stderr
	}
	return out
}
