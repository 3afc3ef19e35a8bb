// Package pipeline runs a version bump through its stages in a fixed order.
// A failing stage stops the run; completed stages are never undone.
package pipeline

import (
	"context"
	"errors"

	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/git"
	"github.com/mxcd/bumper/internal/operation"
	"github.com/mxcd/bumper/internal/pkgmanager"
	"github.com/mxcd/bumper/internal/runner"
	"github.com/mxcd/bumper/internal/target"
	"github.com/mxcd/bumper/internal/version"
	"github.com/rs/zerolog/log"
)

// Pipeline holds the capabilities a run is executed with
type Pipeline struct {
	runner      runner.Runner
	vcs         VersionControl
	detector    pkgmanager.Detector
	scripts     ScriptResolver
	prompter    Prompter
	observers   []Observer
	executeFunc operation.ExecuteFunc
	suggested   version.ReleaseType
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithRunner sets the runner external commands are executed with
func WithRunner(r runner.Runner) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithVersionControl replaces the git repository of the working directory
func WithVersionControl(vcs VersionControl) Option {
	return func(p *Pipeline) {
		if vcs != nil {
			p.vcs = vcs
		}
	}
}

// WithDetector sets the package manager capability used for install and hooks
func WithDetector(detector pkgmanager.Detector) Option {
	return func(p *Pipeline) {
		if detector != nil {
			p.detector = detector
		}
	}
}

// WithScriptResolver sets how hook names become commands
func WithScriptResolver(scripts ScriptResolver) Option {
	return func(p *Pipeline) {
		if scripts != nil {
			p.scripts = scripts
		}
	}
}

// WithPrompter enables the version menu and the confirmation gate
func WithPrompter(prompter Prompter) Option {
	return func(p *Pipeline) {
		if prompter != nil {
			p.prompter = prompter
		}
	}
}

// WithObserver adds an observer notified of every event
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		if observer != nil {
			p.observers = append(p.observers, observer)
		}
	}
}

// WithExecuteFunc installs a callback run in the execute stage
func WithExecuteFunc(fn operation.ExecuteFunc) Option {
	return func(p *Pipeline) {
		p.executeFunc = fn
	}
}

// WithSuggestedRelease sets the release the conventional keyword resolves to
func WithSuggestedRelease(release version.ReleaseType) Option {
	return func(p *Pipeline) {
		p.suggested = release
	}
}

// New creates a pipeline. Without options it runs real processes, detects the
// package manager from lockfiles and drives git in the working directory.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		runner:   runner.NewExecRunner(),
		detector: pkgmanager.NewLockfileDetector(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.scripts == nil {
		p.scripts = NewManifestScripts(p.detector)
	}
	return p
}

// Run starts an operation for opts and executes it
func (p *Pipeline) Run(ctx context.Context, opts *configuration.Options) (*operation.Results, error) {
	op, err := operation.Start(opts)
	if err != nil {
		return nil, err
	}
	if p.executeFunc != nil {
		op.ExecuteFunc = p.executeFunc
	}

	if err := p.Execute(ctx, op); err != nil {
		return nil, err
	}
	return op.Results(), nil
}

// Execute runs every stage of op. The operation ends completed, or aborted
// with the reason of the first failure.
func (p *Pipeline) Execute(ctx context.Context, op *operation.Operation) error {
	if err := p.execute(ctx, op); err != nil {
		op.Abort(err.Error())
		return err
	}
	op.Complete()
	log.Debug().Strs("updated", op.UpdatedFiles()).Strs("skipped", op.SkippedFiles()).Msg("Operation completed")
	return nil
}

func (p *Pipeline) execute(ctx context.Context, op *operation.Operation) error {
	opts := op.Options

	p.enter(operation.StageResolveCurrent)
	current, err := ResolveCurrentVersion(opts)
	if err != nil {
		return err
	}
	if err := op.SetCurrentVersion(current); err != nil {
		return err
	}

	p.enter(operation.StageResolveNew)
	resolveOptions := version.ResolveOptions{
		Preid:            opts.Preid,
		AllowSameVersion: opts.AllowSameVersion,
		Suggested:        p.suggested,
	}
	if p.prompter != nil {
		resolveOptions.Chooser = chooser{prompter: p.prompter}
	}
	next, err := version.ResolveNext(ctx, current, opts.Release, resolveOptions)
	if err != nil {
		return err
	}
	if err := op.SetNewVersion(next); err != nil {
		return err
	}

	targets, err := target.Locate(opts.Cwd, opts)
	if err != nil {
		return bumperr.Wrap(bumperr.KindFileWriteFailed, err, "unable to locate files")
	}

	if opts.Confirm {
		p.enter(operation.StageConfirm)
		if err := p.confirm(ctx, op, targets); err != nil {
			return err
		}
	}

	if err := p.runHook(ctx, op, operation.StagePreVersionHook, opts.Hooks.PreVersion); err != nil {
		return err
	}

	p.enter(operation.StageUpdateFiles)
	if err := p.updateFiles(op, current, next, targets); err != nil {
		return err
	}

	if opts.Install {
		p.enter(operation.StageInstall)
		cmd, err := p.detector.InstallCommand(opts.Cwd)
		if err != nil {
			return bumperr.Wrap(bumperr.KindExternalCommandFailed, err, "unable to determine the install command")
		}
		if err := p.runCommand(ctx, op, operation.StageInstall, cmd, bumperr.KindExternalCommandFailed); err != nil {
			return err
		}
	}

	if err := p.runExecute(ctx, op); err != nil {
		return err
	}

	if err := p.runHook(ctx, op, operation.StageVersionHook, opts.Hooks.Version); err != nil {
		return err
	}

	vcs := p.versionControl(opts)

	committed := false
	if opts.Commit.Enabled {
		if !opts.Commit.All && len(op.UpdatedFiles()) == 0 {
			log.Warn().Msg("No files were updated, skipping commit")
		} else {
			p.enter(operation.StageCommit)
			cmd := vcs.CommitCommand(&git.CommitOptions{
				Message:  op.CommitMessage(),
				Files:    op.UpdatedFiles(),
				All:      opts.Commit.All,
				NoVerify: opts.Commit.NoVerify,
				Sign:     opts.Commit.Sign,
			})
			if err := p.runCommand(ctx, op, operation.StageCommit, cmd, bumperr.KindExternalCommandFailed); err != nil {
				return err
			}
			committed = true
		}
	}

	if opts.Tag.Enabled {
		p.enter(operation.StageTag)
		if err := p.tag(ctx, op, vcs); err != nil {
			return err
		}
	}

	if err := p.runHook(ctx, op, operation.StagePostVersionHook, opts.Hooks.PostVersion); err != nil {
		return err
	}

	if opts.Push.Enabled {
		pushOptions := &git.PushOptions{Remote: opts.Push.Remote, Branch: committed}
		if opts.Tag.Enabled {
			pushOptions.Tag = op.TagName()
		}
		commands := vcs.PushCommands(pushOptions)
		if len(commands) > 0 {
			p.enter(operation.StagePush)
		}
		for _, cmd := range commands {
			if err := p.runCommand(ctx, op, operation.StagePush, cmd, bumperr.KindExternalCommandFailed); err != nil {
				return err
			}
		}
	}

	return nil
}

// ResolveCurrentVersion returns the configured current version, or reads it
// from the primary manifest
func ResolveCurrentVersion(opts *configuration.Options) (version.Version, error) {
	if opts.CurrentVersion != "" {
		return version.ResolveCurrentLiteral(opts.CurrentVersion)
	}
	manifest := opts.PrimaryManifest()
	source := target.NewManifestSource(opts.Cwd, manifest, target.StrategyFor(opts.Files, manifest))
	return version.ResolveCurrent(source)
}

func (p *Pipeline) confirm(ctx context.Context, op *operation.Operation, targets []*target.FileTarget) error {
	if p.prompter == nil {
		return bumperr.New(bumperr.KindInvalidReleaseSpec, "confirmation is enabled but no prompt is available")
	}

	files := make([]string, 0, len(targets))
	for _, t := range targets {
		files = append(files, t.Path)
	}

	proceed, err := p.prompter.Confirm(ctx, op.Summary(files))
	if err != nil {
		return err
	}
	if !proceed {
		op.Abort("user declined")
		return bumperr.New(bumperr.KindUserAborted, "user declined")
	}
	return nil
}

// updateFiles applies the new version to every target in discovery order and
// stops at the first failed file. Files written before it stay written.
func (p *Pipeline) updateFiles(op *operation.Operation, current, next version.Version, targets []*target.FileTarget) error {
	engine := target.NewEngine(current.String(), next.String(), op.Options.Replace, op.Options.DryRun)

	for _, t := range targets {
		outcome := engine.Apply(t)
		event := operation.Event{
			Stage:  operation.StageUpdateFiles,
			File:   t.Path,
			Reason: outcome.Reason,
			Before: outcome.Before,
			After:  outcome.After,
			DryRun: op.Options.DryRun,
			Err:    outcome.Err,
		}

		switch outcome.Status {
		case target.StatusUpdated:
			if err := op.RecordUpdated(t.Path); err != nil {
				return err
			}
			event.Type = operation.EventFileUpdated
			p.emit(event)
		case target.StatusSkipped:
			if err := op.RecordSkipped(t.Path); err != nil {
				return err
			}
			event.Type = operation.EventFileSkipped
			p.emit(event)
		default:
			event.Type = operation.EventFileFailed
			p.emit(event)
			return bumperr.Wrap(bumperr.KindFileWriteFailed, outcome.Err, "failed to update %s", t.Path)
		}
	}
	return nil
}

func (p *Pipeline) runHook(ctx context.Context, op *operation.Operation, stage operation.Stage, name string) error {
	if name == "" || op.Options.IgnoreScripts {
		return nil
	}

	cmd, err := p.scripts.ScriptCommand(op.Options.Cwd, name)
	if err != nil {
		return bumperr.Wrap(bumperr.KindHookFailed, err, "unable to resolve the %s hook", name)
	}
	if cmd == nil {
		return nil
	}

	p.enter(stage)
	return p.runCommand(ctx, op, stage, *cmd, bumperr.KindHookFailed)
}

func (p *Pipeline) runExecute(ctx context.Context, op *operation.Operation) error {
	if op.Options.Execute == "" && op.ExecuteFunc == nil {
		return nil
	}
	p.enter(operation.StageExecute)

	if op.Options.Execute != "" {
		cmd, err := runner.Parse(op.Options.Execute, op.Options.Cwd)
		if err != nil {
			return bumperr.Wrap(bumperr.KindExternalCommandFailed, err, "invalid execute command")
		}
		cmd.Interactive = true
		if err := p.runCommand(ctx, op, operation.StageExecute, cmd, bumperr.KindExternalCommandFailed); err != nil {
			return err
		}
	}

	if op.ExecuteFunc != nil {
		event := operation.Event{Type: operation.EventCommandStarting, Stage: operation.StageExecute, Command: "function", DryRun: op.Options.DryRun}
		p.emit(event)
		if op.Options.DryRun {
			return nil
		}
		err := op.ExecuteFunc(ctx, op)
		event.Type = operation.EventCommandFinished
		event.Err = err
		p.emit(event)
		if err != nil {
			return bumperr.Wrap(bumperr.KindExternalCommandFailed, err, "execute function failed")
		}
	}
	return nil
}

func (p *Pipeline) tag(ctx context.Context, op *operation.Operation, vcs VersionControl) error {
	name := op.TagName()
	if !op.Options.DryRun {
		exists, err := vcs.TagExists(ctx, name)
		if err != nil {
			return bumperr.Wrap(bumperr.KindExternalCommandFailed, err, "unable to check tag %s", name)
		}
		if exists {
			return bumperr.Wrap(bumperr.KindExternalCommandFailed, &git.TagExistsError{Name: name}, "cannot create tag")
		}
	}

	cmd := vcs.TagCommand(&git.TagOptions{
		Name:    name,
		Message: op.TagMessage(),
		Sign:    op.Options.Tag.Sign,
	})
	return p.runCommand(ctx, op, operation.StageTag, cmd, bumperr.KindExternalCommandFailed)
}

// runCommand announces cmd to the observers and runs it unless the run is a
// dry run. Failures are wrapped with kind.
func (p *Pipeline) runCommand(ctx context.Context, op *operation.Operation, stage operation.Stage, cmd runner.Command, kind bumperr.Kind) error {
	display := redactCommand(cmd)
	event := operation.Event{Type: operation.EventCommandStarting, Stage: stage, Command: display.String(), DryRun: op.Options.DryRun}
	p.emit(event)
	if op.Options.DryRun {
		log.Debug().Str("command", event.Command).Msg("Dry run, command not executed")
		return nil
	}

	_, err := p.runner.Run(ctx, cmd)
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		exitErr.Command = display
	}

	event.Type = operation.EventCommandFinished
	event.Err = err
	p.emit(event)

	if err != nil {
		return bumperr.Wrap(kind, err, "%s failed", stage)
	}
	return nil
}

func (p *Pipeline) versionControl(opts *configuration.Options) VersionControl {
	if p.vcs != nil {
		return p.vcs
	}
	var actor *git.Actor
	if opts.GitActor != nil {
		actor = &git.Actor{Name: opts.GitActor.Name, Email: opts.GitActor.Email}
	}
	return git.NewRepository(opts.Cwd, p.runner, actor)
}

func (p *Pipeline) enter(stage operation.Stage) {
	log.Debug().Str("stage", string(stage)).Msg("Entering stage")
	p.emit(operation.Event{Type: operation.EventStageEntered, Stage: stage})
}

func (p *Pipeline) emit(event operation.Event) {
	for _, observer := range p.observers {
		observer.OnEvent(event)
	}
}

// redactCommand hides credentials of remote URLs passed as arguments
func redactCommand(cmd runner.Command) runner.Command {
	redacted := cmd
	redacted.Args = make([]string, len(cmd.Args))
	for i, arg := range cmd.Args {
		redacted.Args[i] = git.RedactURL(arg)
	}
	return redacted
}
