package operation

import (
	"context"
	"fmt"
	"strings"

	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/version"
	"github.com/rs/zerolog/log"
)

// ExecuteFunc is a custom execute step run with the populated operation
type ExecuteFunc func(ctx context.Context, op *Operation) error

// State is the lifecycle state of a run
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Operation is the record threaded through the pipeline. Versions are set
// once, file lists only grow and a path is recorded at most once.
type Operation struct {
	Options     *configuration.Options
	ExecuteFunc ExecuteFunc

	state       State
	abortReason string

	currentVersion *version.Version
	newVersion     *version.Version

	updatedFiles []string
	skippedFiles []string
	recorded     map[string]bool
}

// Results is returned to the caller once the run has completed
type Results struct {
	CurrentVersion string                 `json:"currentVersion" yaml:"currentVersion"`
	NewVersion     string                 `json:"newVersion" yaml:"newVersion"`
	UpdatedFiles   []string               `json:"updatedFiles" yaml:"updatedFiles"`
	SkippedFiles   []string               `json:"skippedFiles" yaml:"skippedFiles"`
	Options        *configuration.Options `json:"-" yaml:"-"`
}

// Start creates the operation for a run. Nil options start from the defaults.
func Start(opts *configuration.Options) (*Operation, error) {
	if opts == nil {
		opts = configuration.DefaultOptions()
	}
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	return &Operation{
		Options:  opts,
		state:    StateRunning,
		recorded: make(map[string]bool),
	}, nil
}

// State returns the lifecycle state
func (o *Operation) State() State {
	return o.state
}

// AbortReason is set when the run was aborted
func (o *Operation) AbortReason() string {
	return o.abortReason
}

// Abort moves the run to its aborted terminal state
func (o *Operation) Abort(reason string) {
	if o.state != StateRunning {
		return
	}
	o.state = StateAborted
	o.abortReason = reason
	log.Debug().Str("reason", reason).Msg("Operation aborted")
}

// Complete moves the run to its completed terminal state
func (o *Operation) Complete() {
	if o.state == StateRunning {
		o.state = StateCompleted
	}
}

// SetCurrentVersion records the discovered version. It can only be set once.
func (o *Operation) SetCurrentVersion(v version.Version) error {
	if o.currentVersion != nil {
		return fmt.Errorf("current version is already set to %s", o.currentVersion)
	}
	o.currentVersion = &v
	log.Debug().Str("version", v.String()).Msg("Current version set")
	return nil
}

// SetNewVersion records the resolved version. It can only be set once, after
// the current version, and must differ from it unless same versions are allowed.
func (o *Operation) SetNewVersion(v version.Version) error {
	if o.newVersion != nil {
		return fmt.Errorf("new version is already set to %s", o.newVersion)
	}
	if o.currentVersion == nil {
		return fmt.Errorf("new version set before the current version")
	}
	if v.Equal(*o.currentVersion) && !o.Options.AllowSameVersion {
		return bumperr.New(bumperr.KindInvalidReleaseSpec, "new version %s equals the current version", v)
	}
	o.newVersion = &v
	log.Debug().Str("version", v.String()).Msg("New version set")
	return nil
}

// CurrentVersion returns the current version and whether it is set
func (o *Operation) CurrentVersion() (version.Version, bool) {
	if o.currentVersion == nil {
		return version.Version{}, false
	}
	return *o.currentVersion, true
}

// NewVersion returns the new version and whether it is set
func (o *Operation) NewVersion() (version.Version, bool) {
	if o.newVersion == nil {
		return version.Version{}, false
	}
	return *o.newVersion, true
}

// RecordUpdated appends path to the updated files
func (o *Operation) RecordUpdated(path string) error {
	if err := o.record(path); err != nil {
		return err
	}
	o.updatedFiles = append(o.updatedFiles, path)
	return nil
}

// RecordSkipped appends path to the skipped files
func (o *Operation) RecordSkipped(path string) error {
	if err := o.record(path); err != nil {
		return err
	}
	o.skippedFiles = append(o.skippedFiles, path)
	return nil
}

func (o *Operation) record(path string) error {
	if o.recorded[path] {
		return fmt.Errorf("file %s is already recorded", path)
	}
	o.recorded[path] = true
	return nil
}

// UpdatedFiles returns the updated files in discovery order
func (o *Operation) UpdatedFiles() []string {
	return append([]string(nil), o.updatedFiles...)
}

// SkippedFiles returns the skipped files in discovery order
func (o *Operation) SkippedFiles() []string {
	return append([]string(nil), o.skippedFiles...)
}

func (o *Operation) newVersionString() string {
	if o.newVersion == nil {
		return ""
	}
	return o.newVersion.String()
}

// CommitMessage is the commit message template with the new version
func (o *Operation) CommitMessage() string {
	return FormatTemplate(o.Options.Commit.Message, o.newVersionString())
}

// TagName is the tag name template with the new version
func (o *Operation) TagName() string {
	return FormatTemplate(o.Options.Tag.Name, o.newVersionString())
}

// TagMessage is the annotated tag message, the commit message unless configured
func (o *Operation) TagMessage() string {
	if o.Options.Tag.Message == "" {
		return o.CommitMessage()
	}
	return FormatTemplate(o.Options.Tag.Message, o.newVersionString())
}

// Results snapshots the operation for the caller
func (o *Operation) Results() *Results {
	results := &Results{
		NewVersion:   o.newVersionString(),
		UpdatedFiles: o.UpdatedFiles(),
		SkippedFiles: o.SkippedFiles(),
		Options:      o.Options,
	}
	if o.currentVersion != nil {
		results.CurrentVersion = o.currentVersion.String()
	}
	return results
}

// FormatTemplate substitutes the version for every %s and {version} token.
// A template without either token gets the version appended.
func FormatTemplate(template, version string) string {
	if !strings.Contains(template, "%s") && !strings.Contains(template, "{version}") {
		return template + version
	}
	formatted := strings.ReplaceAll(template, "%s", version)
	return strings.ReplaceAll(formatted, "{version}", version)
}
