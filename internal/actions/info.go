package actions

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/git"
	"github.com/mxcd/bumper/internal/pipeline"
	"github.com/mxcd/bumper/internal/runner"
	"github.com/mxcd/bumper/internal/target"
	"github.com/mxcd/bumper/internal/version"
	"github.com/rs/zerolog/log"
)

type InfoOptions struct {
	Options      *configuration.Options
	OutputFormat string
	Out          io.Writer
	Console      io.Writer
	Runner       runner.Runner
}

// InfoResult describes what a bump would do without doing it
type InfoResult struct {
	Manifest       string           `json:"manifest" yaml:"manifest"`
	CurrentVersion string           `json:"currentVersion" yaml:"currentVersion"`
	Release        string           `json:"release,omitempty" yaml:"release,omitempty"`
	NewVersion     string           `json:"newVersion,omitempty" yaml:"newVersion,omitempty"`
	Candidates     []*InfoCandidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Files          []*InfoFile      `json:"files" yaml:"files"`
}

type InfoCandidate struct {
	Release string `json:"release" yaml:"release"`
	Version string `json:"version" yaml:"version"`
}

type InfoFile struct {
	Path     string `json:"path" yaml:"path"`
	Strategy string `json:"strategy" yaml:"strategy"`
}

// Info resolves the current version and the next version of the configured
// release, or every menu candidate when the release is interactive
func Info(ctx context.Context, options *InfoOptions) (*InfoResult, error) {
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

	current, err := pipeline.ResolveCurrentVersion(opts)
	if err != nil {
		return nil, err
	}

	r := options.Runner
	if r == nil {
		r = runner.NewExecRunner()
	}
	console := consoleWriter(options.Console, out, options.OutputFormat)
	suggested := suggestRelease(ctx, opts, git.NewRepository(opts.Cwd, r, nil), console)

	result := &InfoResult{
		Manifest:       opts.PrimaryManifest(),
		CurrentVersion: current.String(),
	}
	if opts.CurrentVersion != "" {
		result.Manifest = ""
	}

	if version.IsPromptSpec(opts.Release) {
		for _, candidate := range version.MenuCandidates(current, opts.Preid, suggested) {
			result.Candidates = append(result.Candidates, &InfoCandidate{
				Release: string(candidate.Release),
				Version: candidate.Version.String(),
			})
		}
	} else {
		next, err := version.ResolveNext(ctx, current, opts.Release, version.ResolveOptions{
			Preid:            opts.Preid,
			AllowSameVersion: opts.AllowSameVersion,
			Suggested:        suggested,
		})
		if err != nil {
			return nil, err
		}
		result.NewVersion = next.String()
		result.Release = string(version.Diff(current, next))
	}

	targets, err := target.Locate(opts.Cwd, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to locate files: %w", err)
	}
	for _, t := range targets {
		result.Files = append(result.Files, &InfoFile{Path: t.Path, Strategy: string(t.Strategy)})
	}

	log.Debug().Str("current", result.CurrentVersion).Int("files", len(result.Files)).Msg("Resolved info")

	if err := outputInfo(out, result, options.OutputFormat); err != nil {
		return nil, fmt.Errorf("output error: %w", err)
	}
	return result, nil
}

func outputInfo(out io.Writer, result *InfoResult, format string) error {
	switch format {
	case OutputTable:
		return outputInfoTable(out, result)
	case OutputJSON:
		return writeJSON(out, result)
	case OutputYAML:
		return writeYAML(out, result)
	case OutputNone:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputInfoTable(out io.Writer, result *InfoResult) error {
	source := result.Manifest
	if source == "" {
		source = "configured"
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Version Info")
	t.AppendHeader(table.Row{"Release", "Version"})
	t.AppendRow(table.Row{fmt.Sprintf("current (%s)", source), result.CurrentVersion})
	t.AppendSeparator()
	if result.NewVersion != "" {
		release := result.Release
		if release == "" {
			release = "same"
		}
		t.AppendRow(table.Row{release, result.NewVersion})
	}
	for _, candidate := range result.Candidates {
		t.AppendRow(table.Row{candidate.Release, candidate.Version})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	files := table.NewWriter()
	files.SetOutputMirror(out)
	files.SetTitle("Files")
	files.AppendHeader(table.Row{"Path", "Strategy"})
	for _, file := range result.Files {
		files.AppendRow(table.Row{file.Path, file.Strategy})
	}
	if len(result.Files) == 0 {
		files.AppendRow(table.Row{"-", "-"})
	}
	files.SetStyle(table.StyleRounded)
	files.Render()
	return nil
}
