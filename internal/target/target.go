package target

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mxcd/bumper/internal/configuration"
)

// FileTarget is a located file and the strategy used to update it
type FileTarget struct {
	// Path is relative to Root and slash separated
	Path     string
	Root     string
	Strategy configuration.StrategyType
}

// AbsPath returns the file's location on disk
func (t *FileTarget) AbsPath() string {
	return filepath.Join(t.Root, filepath.FromSlash(t.Path))
}

func (t *FileTarget) String() string {
	return fmt.Sprintf("%s (%s)", t.Path, t.Strategy)
}

// DetectStrategy assigns a strategy by file extension
func DetectStrategy(path string) configuration.StrategyType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return configuration.StrategyJSON
	case ".yaml", ".yml":
		return configuration.StrategyYAML
	case ".toml":
		return configuration.StrategyTOML
	default:
		return configuration.StrategyText
	}
}

// IsStructured reports whether the strategy edits a parsed document field
func IsStructured(strategy configuration.StrategyType) bool {
	switch strategy {
	case configuration.StrategyJSON, configuration.StrategyYAML, configuration.StrategyTOML:
		return true
	default:
		return false
	}
}

// span is the byte range of one version value inside a document
type span struct {
	Field string
	Start int
	End   int
	Value string
}

// locateFields finds the version fields of a structured document
func locateFields(strategy configuration.StrategyType, content []byte) ([]span, error) {
	switch strategy {
	case configuration.StrategyJSON:
		return locateJSONFields(content)
	case configuration.StrategyYAML:
		return locateYAMLFields(content)
	case configuration.StrategyTOML:
		return locateTOMLFields(content)
	default:
		return nil, &UnsupportedStrategyError{Strategy: strategy}
	}
}

// replaceSpans substitutes value into every span whose content differs from it
func replaceSpans(content []byte, spans []span, value string) ([]byte, int) {
	replaced := 0
	out := make([]byte, 0, len(content))
	last := 0
	for _, s := range spans {
		if s.Value == value {
			continue
		}
		out = append(out, content[last:s.Start]...)
		out = append(out, value...)
		last = s.End
		replaced++
	}
	out = append(out, content[last:]...)
	return out, replaced
}

// ManifestSource reads the version of the primary manifest
type ManifestSource struct {
	Target *FileTarget
}

// NewManifestSource creates a source for the manifest at path relative to root
func NewManifestSource(root, path string, strategy configuration.StrategyType) *ManifestSource {
	if strategy == configuration.StrategyAuto {
		strategy = DetectStrategy(path)
	}
	return &ManifestSource{Target: &FileTarget{Path: filepath.ToSlash(path), Root: root, Strategy: strategy}}
}

func (s *ManifestSource) Path() string {
	return s.Target.Path
}

// ReadVersion returns the first version field of the manifest
func (s *ManifestSource) ReadVersion() (string, error) {
	content, err := os.ReadFile(s.Target.AbsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", &FileNotFoundError{Path: s.Target.Path}
		}
		return "", fmt.Errorf("failed to read file %s: %w", s.Target.Path, err)
	}

	if !IsStructured(s.Target.Strategy) {
		return "", &InvalidFileFormatError{File: s.Target.Path, Reason: "the primary manifest must be a JSON, YAML or TOML document"}
	}

	spans, err := locateFields(s.Target.Strategy, content)
	if err != nil {
		return "", &InvalidFileFormatError{File: s.Target.Path, Reason: err.Error()}
	}
	if len(spans) == 0 {
		return "", &FieldNotFoundError{Field: "version", File: s.Target.Path}
	}
	return spans[0].Value, nil
}
