package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/mxcd/bumper/internal/git"
	"github.com/mxcd/bumper/internal/operation"
	"github.com/mxcd/bumper/internal/pkgmanager"
	"github.com/mxcd/bumper/internal/runner"
	"github.com/mxcd/bumper/internal/version"
	"github.com/rs/zerolog/log"
)

// Observer is notified at defined points of a run
type Observer interface {
	OnEvent(event operation.Event)
}

// ObserverFunc adapts a function to an Observer
type ObserverFunc func(event operation.Event)

func (f ObserverFunc) OnEvent(event operation.Event) {
	f(event)
}

// Prompter answers the interactive questions of a run
type Prompter interface {
	SelectVersion(ctx context.Context, current version.Version, candidates []version.Candidate) (string, error)
	Confirm(ctx context.Context, summary operation.Summary) (bool, error)
}

// VersionControl builds the commit, tag and push invocations. Only TagExists
// talks to the repository, everything else is run by the pipeline.
type VersionControl interface {
	CommitCommand(options *git.CommitOptions) runner.Command
	TagCommand(options *git.TagOptions) runner.Command
	TagExists(ctx context.Context, name string) (bool, error)
	PushCommands(options *git.PushOptions) []runner.Command
}

// ScriptResolver maps a hook name to the command running it. A nil command
// means the hook is not declared and is skipped.
type ScriptResolver interface {
	ScriptCommand(root, name string) (*runner.Command, error)
}

// ManifestScripts resolves hooks to the scripts declared in package.json and
// runs them through the detected package manager
type ManifestScripts struct {
	Detector pkgmanager.Detector
}

func NewManifestScripts(detector pkgmanager.Detector) *ManifestScripts {
	return &ManifestScripts{Detector: detector}
}

func (s *ManifestScripts) ScriptCommand(root, name string) (*runner.Command, error) {
	manifest, err := pkgmanager.ReadManifest(filepath.Join(root, "package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !manifest.HasScript(name) {
		log.Trace().Str("script", name).Msg("Script not declared")
		return nil, nil
	}

	cmd, err := s.Detector.RunScriptCommand(root, name)
	if err != nil {
		return nil, err
	}
	return &cmd, nil
}

// chooser lets a Prompter answer the version resolver
type chooser struct {
	prompter Prompter
}

func (c chooser) ChooseVersion(ctx context.Context, current version.Version, candidates []version.Candidate) (string, error) {
	return c.prompter.SelectVersion(ctx, current, candidates)
}
