package configuration

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/shlex"
	"github.com/mxcd/bumper/internal/version"
)

// CurrentVersionToken expands to the quoted current version inside replace patterns
const CurrentVersionToken = "{current}"

var (
	preidPattern    = regexp.MustCompile(`^[0-9A-Za-z-]+$`)
	hookNamePattern = regexp.MustCompile(`^[^\s]+$`)
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the results of configuration validation
type ValidationResult struct {
	Valid  bool
	Errors []*ValidationError
}

// AddError adds a validation error to the result
func (r *ValidationResult) AddError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, &ValidationError{
		Field:   field,
		Message: message,
	})
}

// Compile builds the rule's regular expression for the given current version
func (r *ReplaceRule) Compile(current string) (*regexp.Regexp, error) {
	expanded := strings.ReplaceAll(r.Pattern, CurrentVersionToken, regexp.QuoteMeta(current))
	return regexp.Compile(expanded)
}

// AppliesTo reports whether the rule is scoped to path
func (r *ReplaceRule) AppliesTo(path string) bool {
	if len(r.Files) == 0 {
		return true
	}
	path = filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range r.Files {
		if MatchPattern(filepath.ToSlash(filepath.Clean(pattern)), path) {
			return true
		}
	}
	return false
}

// ValidateOptions performs validation on the options
func ValidateOptions(opts *Options) *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: make([]*ValidationError, 0),
	}

	if !version.IsReleaseSpec(opts.Release) {
		result.AddError("release", fmt.Sprintf("invalid release: %s (expected a version, a release type or prompt)", opts.Release))
	}

	if opts.Preid != "" && !preidPattern.MatchString(opts.Preid) {
		result.AddError("preid", fmt.Sprintf("invalid prerelease identifier: %s", opts.Preid))
	}

	if opts.CurrentVersion != "" && !version.IsValid(opts.CurrentVersion) {
		result.AddError("currentVersion", fmt.Sprintf("invalid version: %s", opts.CurrentVersion))
	}

	for i, spec := range opts.Files {
		fieldPrefix := fmt.Sprintf("files[%d]", i)
		if spec == nil || strings.TrimSpace(strings.TrimPrefix(spec.Path, "!")) == "" {
			result.AddError(fmt.Sprintf("%s.path", fieldPrefix), "file path cannot be empty")
			continue
		}
		if _, err := filepath.Match(strings.TrimPrefix(spec.Path, "!"), ""); err != nil {
			result.AddError(fmt.Sprintf("%s.path", fieldPrefix), fmt.Sprintf("invalid pattern: %v", err))
		}
		if !isValidStrategy(spec.Strategy) {
			result.AddError(fmt.Sprintf("%s.strategy", fieldPrefix), fmt.Sprintf("invalid strategy: %s", spec.Strategy))
		}
		if strings.HasPrefix(spec.Path, "!") && spec.Strategy != StrategyAuto {
			result.AddError(fmt.Sprintf("%s.strategy", fieldPrefix), "exclusions cannot carry a strategy")
		}
	}

	for i, rule := range opts.Replace {
		fieldPrefix := fmt.Sprintf("replace[%d]", i)
		if rule == nil || strings.TrimSpace(rule.Pattern) == "" {
			result.AddError(fmt.Sprintf("%s.pattern", fieldPrefix), "pattern cannot be empty")
			continue
		}
		re, err := rule.Compile("0.0.0")
		if err != nil {
			result.AddError(fmt.Sprintf("%s.pattern", fieldPrefix), fmt.Sprintf("invalid regular expression: %v", err))
			continue
		}
		if re.SubexpIndex("version") < 0 && rule.Replacement == "" {
			result.AddError(fmt.Sprintf("%s.pattern", fieldPrefix), "pattern needs a named group 'version' or a replacement")
		}
		for j, pattern := range rule.Files {
			if _, err := filepath.Match(pattern, ""); err != nil {
				result.AddError(fmt.Sprintf("%s.files[%d]", fieldPrefix, j), fmt.Sprintf("invalid pattern: %v", err))
			}
		}
	}

	commitEnabled := opts.Commit != nil && opts.Commit.Enabled
	tagEnabled := opts.Tag != nil && opts.Tag.Enabled

	if commitEnabled && strings.TrimSpace(opts.Commit.Message) == "" {
		result.AddError("commit.message", "commit message cannot be empty")
	}
	if tagEnabled && strings.TrimSpace(opts.Tag.Name) == "" {
		result.AddError("tag.name", "tag name cannot be empty")
	}
	if tagEnabled && strings.ContainsAny(opts.Tag.Name, " ~^:?*[\\") {
		result.AddError("tag.name", fmt.Sprintf("invalid tag name: %s", opts.Tag.Name))
	}
	if opts.Push != nil && opts.Push.Enabled && !commitEnabled && !tagEnabled {
		result.AddError("push.enabled", "push requires commit or tag to be enabled")
	}

	if opts.Execute != "" {
		if tokens, err := shlex.Split(opts.Execute); err != nil || len(tokens) == 0 {
			result.AddError("execute", fmt.Sprintf("invalid command: %s", opts.Execute))
		}
	}

	if opts.Hooks != nil {
		hooks := map[string]string{
			"hooks.preversion":  opts.Hooks.PreVersion,
			"hooks.version":     opts.Hooks.Version,
			"hooks.postversion": opts.Hooks.PostVersion,
		}
		for _, field := range []string{"hooks.preversion", "hooks.version", "hooks.postversion"} {
			if name := hooks[field]; name != "" && !hookNamePattern.MatchString(name) {
				result.AddError(field, fmt.Sprintf("invalid script name: %s", name))
			}
		}
	}

	if opts.GitActor != nil && (strings.TrimSpace(opts.GitActor.Name) == "") != (strings.TrimSpace(opts.GitActor.Email) == "") {
		result.AddError("gitActor", "name and email must be set together")
	}

	return result
}

func isValidStrategy(strategy StrategyType) bool {
	switch strategy {
	case StrategyAuto, StrategyJSON, StrategyYAML, StrategyTOML, StrategyText:
		return true
	default:
		return false
	}
}
