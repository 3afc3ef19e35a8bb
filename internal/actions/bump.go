package actions

import (
	"context"
	"io"
	"os"

	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/git"
	"github.com/mxcd/bumper/internal/operation"
	"github.com/mxcd/bumper/internal/pipeline"
	"github.com/mxcd/bumper/internal/prompt"
	"github.com/mxcd/bumper/internal/runner"
	"github.com/rs/zerolog/log"
)

type BumpOptions struct {
	Options      *configuration.Options
	OutputFormat string
	Progress     bool
	Out          io.Writer
	// Console receives progress, diffs and commit lists. Defaults to Out, or
	// stderr when the report is json or yaml.
	Console io.Writer
	// Runner and Prompter replace the process runner and the terminal prompts
	Runner   runner.Runner
	Prompter pipeline.Prompter
}

// Bump validates the options, checks the working tree and runs the pipeline
func Bump(ctx context.Context, options *BumpOptions) (*operation.Results, error) {
	opts := options.Options
	if opts == nil {
		opts = configuration.DefaultOptions()
	}
	if err := opts.Normalize(); err != nil {
		return nil, bumperr.Wrap(bumperr.KindInvalidReleaseSpec, err, "invalid options")
	}
	out := options.Out
	if out == nil {
		out = os.Stdout
	}
	console := consoleWriter(options.Console, out, options.OutputFormat)

	validationResult := configuration.ValidateOptions(opts)
	if !validationResult.Valid {
		for _, validationErr := range validationResult.Errors {
			log.Error().Str("field", validationErr.Field).Msg(validationErr.Message)
		}
		return nil, bumperr.New(bumperr.KindInvalidReleaseSpec, "configuration validation failed")
	}

	r := options.Runner
	if r == nil {
		r = &runner.ExecRunner{Stdout: console, Stderr: os.Stderr}
	}
	var actor *git.Actor
	if opts.GitActor != nil {
		actor = &git.Actor{Name: opts.GitActor.Name, Email: opts.GitActor.Email}
	}
	repo := git.NewRepository(opts.Cwd, r, actor)

	_, rootErr := git.FindRoot(opts.Cwd)
	inRepository := rootErr == nil
	if !inRepository {
		log.Debug().Str("cwd", opts.Cwd).Msg("Not inside a git repository")
	}

	if inRepository && needsCleanWorkingTree(opts) {
		dirty, err := repo.HasUncommittedChanges(ctx)
		if err != nil {
			return nil, bumperr.Wrap(bumperr.KindExternalCommandFailed, err, "unable to check the working tree")
		}
		if dirty {
			return nil, bumperr.New(bumperr.KindExternalCommandFailed, "git working tree is not clean, commit your changes or pass --no-git-check")
		}
	}

	suggested := suggestRelease(ctx, opts, repo, console)

	prompter := options.Prompter
	if prompter == nil {
		prompter = prompt.NewHuhPrompter()
	}
	observer := NewConsoleObserver(console, options.Progress)

	p := pipeline.New(
		pipeline.WithRunner(r),
		pipeline.WithVersionControl(repo),
		pipeline.WithPrompter(prompter),
		pipeline.WithObserver(observer),
		pipeline.WithSuggestedRelease(suggested),
	)

	results, err := p.Run(ctx, opts)
	observer.Close()
	if err != nil {
		return nil, err
	}

	if err := OutputBumpReport(out, NewBumpReport(results), options.OutputFormat); err != nil {
		log.Error().Err(err).Msg("Failed to output results")
	}
	return results, nil
}

// needsCleanWorkingTree reports whether uncommitted changes must block the run
func needsCleanWorkingTree(opts *configuration.Options) bool {
	if opts.NoGitCheck || opts.DryRun || opts.Commit.All {
		return false
	}
	return opts.Commit.Enabled || opts.Tag.Enabled
}
