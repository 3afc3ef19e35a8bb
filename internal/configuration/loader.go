package configuration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LoadOptions reads the configuration from the given path on top of DefaultOptions.
// If the path is a directory, all .yml files within it are applied in name order.
// A missing file is only an error when required is set.
// It also performs environment variable and SOPS substitution.
func LoadOptions(configPath string, required bool) (*Options, error) {
	opts := DefaultOptions()

	fileInfo, err := os.Stat(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		log.Debug().Str("config", configPath).Msg("No configuration file found, using defaults")
		return opts, opts.Normalize()
	case err != nil:
		return nil, fmt.Errorf("failed to access configuration path: %w", err)
	}

	if fileInfo.IsDir() {
		if err := loadConfigurationFromDirectory(configPath, opts); err != nil {
			return nil, err
		}
	} else if err := loadSingleConfigurationFile(configPath, opts); err != nil {
		return nil, err
	}

	ctx := NewSubstitutionContext()
	if err := ctx.SubstituteInOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to substitute variables: %w", err)
	}

	return opts, opts.Normalize()
}

// loadSingleConfigurationFile decodes a single configuration file into opts
func loadSingleConfigurationFile(configPath string, opts *Options) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(opts); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse configuration YAML %s: %w", configPath, err)
	}

	return nil
}

// loadConfigurationFromDirectory applies all .yml files from a directory, later files win
func loadConfigurationFromDirectory(dirPath string, opts *Options) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read configuration directory: %w", err)
	}

	var configFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			configFiles = append(configFiles, filepath.Join(dirPath, name))
		}
	}
	sort.Strings(configFiles)

	if len(configFiles) == 0 {
		return fmt.Errorf("no .yml or .yaml files found in directory: %s", dirPath)
	}

	log.Debug().
		Str("directory", dirPath).
		Int("fileCount", len(configFiles)).
		Msg("Loading configuration from directory")

	for _, filePath := range configFiles {
		if err := loadSingleConfigurationFile(filePath, opts); err != nil {
			return fmt.Errorf("failed to load %s: %w", filePath, err)
		}
	}

	return nil
}

// Normalize fills unset sections with defaults and resolves the working directory
func (o *Options) Normalize() error {
	defaults := DefaultOptions()

	if o.Cwd == "" {
		o.Cwd = defaults.Cwd
	}
	cwd, err := filepath.Abs(o.Cwd)
	if err != nil {
		return fmt.Errorf("failed to resolve working directory %s: %w", o.Cwd, err)
	}
	o.Cwd = cwd

	if o.Commit == nil {
		o.Commit = &CommitOptions{}
	}
	if o.Commit.Message == "" {
		o.Commit.Message = defaults.Commit.Message
	}

	if o.Tag == nil {
		o.Tag = &TagOptions{}
	}
	if o.Tag.Name == "" {
		o.Tag.Name = defaults.Tag.Name
	}

	if o.Push == nil {
		o.Push = &PushOptions{}
	}
	if o.Push.Remote == "" {
		o.Push.Remote = defaults.Push.Remote
	}

	if o.Hooks == nil {
		o.Hooks = &HookOptions{}
	}

	return nil
}

// PrimaryManifest is the first concrete file pattern, or the default manifest name
func (o *Options) PrimaryManifest() string {
	for _, spec := range o.Files {
		if spec == nil || spec.Path == "" {
			continue
		}
		if strings.HasPrefix(spec.Path, "!") || strings.ContainsAny(spec.Path, "*?[") {
			continue
		}
		return filepath.ToSlash(filepath.Clean(spec.Path))
	}
	return DefaultPrimaryManifest
}

// IsExcluded reports whether a negated pattern removes path
func (o *Options) IsExcluded(path string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	for _, spec := range o.Files {
		if spec == nil || !strings.HasPrefix(spec.Path, "!") {
			continue
		}
		pattern := filepath.ToSlash(filepath.Clean(strings.TrimPrefix(spec.Path, "!")))
		if MatchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// MatchPattern matches a slash separated path against a glob that may contain **
func MatchPattern(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if !strings.Contains(pattern, "**") {
		matched, _ := filepath.Match(pattern, path)
		return matched
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

func matchSegments(pattern, path []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(path); i++ {
				if matchSegments(rest, path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if matched, _ := filepath.Match(pattern[0], path[0]); !matched {
			return false
		}
		pattern, path = pattern[1:], path[1:]
	}
	return len(path) == 0
}
