package configuration

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath      = ".bumperconfig.yml"
	DefaultPrimaryManifest = "package.json"
	DefaultCommitMessage   = "chore: release v%s"
	DefaultTagName         = "v%s"
	DefaultRemote          = "origin"
)

// Options is the single configuration value a bump run is driven by
type Options struct {
	Cwd              string         `yaml:"cwd,omitempty"`
	Release          string         `yaml:"release,omitempty"`
	Preid            string         `yaml:"preid,omitempty"`
	CurrentVersion   string         `yaml:"currentVersion,omitempty"`
	AllowSameVersion bool           `yaml:"allowSameVersion,omitempty"`
	Files            []*FileSpec    `yaml:"files,omitempty"`
	Replace          []*ReplaceRule `yaml:"replace,omitempty"`
	Recursive        bool           `yaml:"recursive,omitempty"`
	Commit           *CommitOptions `yaml:"commit,omitempty"`
	Tag              *TagOptions    `yaml:"tag,omitempty"`
	Push             *PushOptions   `yaml:"push,omitempty"`
	Install          bool           `yaml:"install,omitempty"`
	Execute          string         `yaml:"execute,omitempty"`
	Confirm          bool           `yaml:"confirm"`
	IgnoreScripts    bool           `yaml:"ignoreScripts,omitempty"`
	Hooks            *HookOptions   `yaml:"hooks,omitempty"`
	PrintCommits     bool           `yaml:"printCommits,omitempty"`
	NoGitCheck       bool           `yaml:"noGitCheck,omitempty"`
	DryRun           bool           `yaml:"dryRun,omitempty"`
	GitActor         *GitActor      `yaml:"gitActor,omitempty"`
}

type CommitOptions struct {
	Enabled  bool   `yaml:"enabled"`
	Message  string `yaml:"message,omitempty"`
	All      bool   `yaml:"all,omitempty"`
	NoVerify bool   `yaml:"noVerify,omitempty"`
	Sign     bool   `yaml:"sign,omitempty"`
}

type TagOptions struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name,omitempty"`
	// Message of the annotated tag, defaults to the commit message
	Message string `yaml:"message,omitempty"`
	Sign    bool   `yaml:"sign,omitempty"`
}

type PushOptions struct {
	Enabled bool   `yaml:"enabled"`
	Remote  string `yaml:"remote,omitempty"`
}

// HookOptions names the scripts run around the version change
type HookOptions struct {
	PreVersion  string `yaml:"preversion,omitempty"`
	Version     string `yaml:"version,omitempty"`
	PostVersion string `yaml:"postversion,omitempty"`
}

type GitActor struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type StrategyType string

const (
	StrategyAuto StrategyType = ""
	StrategyJSON StrategyType = "json"
	StrategyYAML StrategyType = "yaml"
	StrategyTOML StrategyType = "toml"
	StrategyText StrategyType = "text"
)

// FileSpec is a file pattern with an optional strategy override.
// In YAML it is either a plain string or a mapping with path and strategy.
type FileSpec struct {
	Path     string       `yaml:"path"`
	Strategy StrategyType `yaml:"strategy,omitempty"`
}

func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type plain FileSpec
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return fmt.Errorf("line %d: invalid file entry: %w", node.Line, err)
	}
	*f = FileSpec(decoded)
	return nil
}

func (f *FileSpec) MarshalYAML() (interface{}, error) {
	if f.Strategy == StrategyAuto {
		return f.Path, nil
	}
	type plain FileSpec
	return (*plain)(f), nil
}

// ReplaceRule is a custom find/replace applied to text files
type ReplaceRule struct {
	// Pattern is a regular expression; {current} expands to the quoted current version
	Pattern string `yaml:"pattern"`
	// Replacement is used when Pattern has no named group "version"; {version} and %s expand to the new version
	Replacement string `yaml:"replacement,omitempty"`
	// Files limits the rule to matching paths
	Files []string `yaml:"files,omitempty"`
}

// Files builds file specs from plain patterns
func Files(patterns ...string) []*FileSpec {
	specs := make([]*FileSpec, 0, len(patterns))
	for _, pattern := range patterns {
		specs = append(specs, &FileSpec{Path: pattern})
	}
	return specs
}

// DefaultOptions returns the options a run starts from before the config file and flags apply
func DefaultOptions() *Options {
	return &Options{
		Cwd: ".",
		Commit: &CommitOptions{
			Enabled: true,
			Message: DefaultCommitMessage,
		},
		Tag: &TagOptions{
			Enabled: true,
			Name:    DefaultTagName,
		},
		Push: &PushOptions{
			Enabled: true,
			Remote:  DefaultRemote,
		},
		Confirm: true,
		Hooks: &HookOptions{
			PreVersion:  "preversion",
			Version:     "version",
			PostVersion: "postversion",
		},
	}
}

// FromRelease normalizes the string shorthand into a full configuration value
func FromRelease(release string) *Options {
	opts := DefaultOptions()
	opts.Release = release
	return opts
}
