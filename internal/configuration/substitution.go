package configuration

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// SubstitutionContext holds the state for variable substitution
type SubstitutionContext struct {
	sopsCache map[string]map[string]interface{}
	decrypt   func(filePath string) (map[string]interface{}, error)
}

// NewSubstitutionContext creates a new substitution context
func NewSubstitutionContext() *SubstitutionContext {
	return &SubstitutionContext{
		sopsCache: make(map[string]map[string]interface{}),
		decrypt:   DecryptSOPSFile,
	}
}

// SubstituteVariables replaces environment variables and SOPS references in the input string
// Supports:
// - ${VAR_NAME} for environment variables
// - ${SOPS[path/to/file.yml].yaml.path.to.value} for SOPS encrypted files
// Version placeholders such as %s and {version} are left untouched.
func (ctx *SubstitutionContext) SubstituteVariables(input string) (string, error) {
	var firstErr error
	result := placeholderPattern.ReplaceAllStringFunc(input, func(placeholder string) string {
		if firstErr != nil {
			return placeholder
		}
		expression := placeholderPattern.FindStringSubmatch(placeholder)[1]

		if strings.HasPrefix(expression, "SOPS[") {
			value, err := ctx.resolveSOPSReference(expression)
			if err != nil {
				firstErr = fmt.Errorf("failed to resolve SOPS reference %s: %w", placeholder, err)
				return placeholder
			}
			return value
		}

		value, ok := os.LookupEnv(expression)
		if !ok || value == "" {
			firstErr = fmt.Errorf("environment variable %s is not set", expression)
			return placeholder
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// resolveSOPSReference resolves a SOPS reference like SOPS[file.yml].path.to.value
func (ctx *SubstitutionContext) resolveSOPSReference(expression string) (string, error) {
	closeBracketIdx := strings.Index(expression, "]")
	if closeBracketIdx == -1 {
		return "", fmt.Errorf("invalid SOPS reference format (missing ]): %s", expression)
	}

	filePath := expression[len("SOPS["):closeBracketIdx]
	rest := expression[closeBracketIdx+1:]
	if !strings.HasPrefix(rest, ".") || len(rest) < 2 {
		return "", fmt.Errorf("SOPS reference must include a YAML path: %s", expression)
	}
	yamlPath := rest[1:]

	data, err := ctx.loadSOPSFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to load SOPS file %s: %w", filePath, err)
	}

	value, err := GetYAMLValue(data, yamlPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %s in SOPS file %s: %w", yamlPath, filePath, err)
	}

	return fmt.Sprintf("%v", value), nil
}

// loadSOPSFile loads and decrypts a SOPS file, with caching
func (ctx *SubstitutionContext) loadSOPSFile(filePath string) (map[string]interface{}, error) {
	if data, ok := ctx.sopsCache[filePath]; ok {
		return data, nil
	}

	data, err := ctx.decrypt(filePath)
	if err != nil {
		return nil, err
	}

	ctx.sopsCache[filePath] = data
	return data, nil
}

type substitutionField struct {
	name  string
	value *string
}

// SubstituteInOptions substitutes variables in every free-text option
func (ctx *SubstitutionContext) SubstituteInOptions(opts *Options) error {
	fields := []substitutionField{{"execute", &opts.Execute}}
	if opts.Commit != nil {
		fields = append(fields, substitutionField{"commit.message", &opts.Commit.Message})
	}
	if opts.Tag != nil {
		fields = append(fields,
			substitutionField{"tag.name", &opts.Tag.Name},
			substitutionField{"tag.message", &opts.Tag.Message},
		)
	}
	if opts.Push != nil {
		fields = append(fields, substitutionField{"push.remote", &opts.Push.Remote})
	}
	if opts.GitActor != nil {
		fields = append(fields,
			substitutionField{"gitActor.name", &opts.GitActor.Name},
			substitutionField{"gitActor.email", &opts.GitActor.Email},
		)
	}

	for _, field := range fields {
		if *field.value == "" {
			continue
		}
		substituted, err := ctx.SubstituteVariables(*field.value)
		if err != nil {
			return fmt.Errorf("failed to substitute %s: %w", field.name, err)
		}
		*field.value = substituted
	}

	return nil
}

// GetYAMLValue retrieves a value from a nested YAML structure using dot notation
// Example: "credentials.token" accesses data["credentials"]["token"]
func GetYAMLValue(data map[string]interface{}, path string) (interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	parts := strings.Split(path, ".")
	current := interface{}(data)

	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid path: empty segment at position %d", i)
		}

		switch v := current.(type) {
		case map[string]interface{}:
			value, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s (missing key '%s')", path, part)
			}
			current = value
		case map[interface{}]interface{}:
			value, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("path not found: %s (missing key '%s')", path, part)
			}
			current = value
		default:
			return nil, fmt.Errorf("path not found: %s (cannot traverse into non-map at '%s')", path, part)
		}
	}

	return current, nil
}
