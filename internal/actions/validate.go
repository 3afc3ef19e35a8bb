package actions

import (
	"fmt"
	"io"
	"os"

	"github.com/mxcd/bumper/internal/configuration"
	"github.com/rs/zerolog/log"
)

type ValidateOptions struct {
	ConfigPath   string
	OutputFormat string
	ToolVersion  string
	Out          io.Writer
	// Override is applied on top of the loaded file, e.g. command line flags
	Override func(opts *configuration.Options)
}

// Validate loads the configuration and prints its validation result
func Validate(options *ValidateOptions) (*configuration.ValidationResult, error) {
	log.Debug().Str("config", options.ConfigPath).Msg("Loading configuration...")
	out := options.Out
	if out == nil {
		out = os.Stdout
	}

	opts, err := configuration.LoadOptions(options.ConfigPath, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, fmt.Errorf("configuration load error: %w", err)
	}
	if options.Override != nil {
		options.Override(opts)
	}

	log.Debug().Msg("Configuration loaded successfully")

	validationResult := configuration.ValidateOptions(opts)

	if err := outputValidationResult(out, validationResult, options.OutputFormat, options.ToolVersion); err != nil {
		log.Error().Err(err).Msg("Failed to output validation results")
		return nil, fmt.Errorf("output error: %w", err)
	}

	if validationResult.Valid {
		log.Info().Msg("Configuration is valid")
	}
	return validationResult, nil
}

func outputValidationResult(out io.Writer, result *configuration.ValidationResult, format, toolVersion string) error {
	switch format {
	case OutputTable:
		return outputValidationTable(out, result)
	case OutputJSON:
		return writeJSON(out, validationOutput(result))
	case OutputYAML:
		return writeYAML(out, validationOutput(result))
	case "sarif":
		return outputValidationSARIF(out, result, toolVersion)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputValidationTable(out io.Writer, result *configuration.ValidationResult) error {
	if result.Valid {
		fmt.Fprintf(out, "%s Configuration is valid\n", symbolOK())
		return nil
	}

	fmt.Fprintf(out, "%s Configuration validation failed:\n", symbolFail())
	fmt.Fprintln(out)
	for _, err := range result.Errors {
		fmt.Fprintf(out, "  • %s\n", err.Error())
	}
	fmt.Fprintf(out, "\nTotal errors: %d\n", len(result.Errors))
	return nil
}

func validationOutput(result *configuration.ValidationResult) map[string]interface{} {
	return map[string]interface{}{
		"valid":      result.Valid,
		"errorCount": len(result.Errors),
		"errors":     result.Errors,
	}
}

func outputValidationSARIF(out io.Writer, result *configuration.ValidationResult, toolVersion string) error {
	// Basic SARIF 2.1.0 format
	sarif := map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []interface{}{
			map[string]interface{}{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "bumper-validate",
						"informationUri": "https://github.com/mxcd/bumper",
						"version":        toolVersion,
					},
				},
				"results": convertErrorsToSARIF(result.Errors),
			},
		},
	}
	return writeJSON(out, sarif)
}

func convertErrorsToSARIF(errors []*configuration.ValidationError) []interface{} {
	results := make([]interface{}, len(errors))
	for i, err := range errors {
		results[i] = map[string]interface{}{
			"ruleId": "configuration-error",
			"level":  "error",
			"message": map[string]interface{}{
				"text": err.Message,
			},
			"locations": []interface{}{
				map[string]interface{}{
					"logicalLocations": []interface{}{
						map[string]interface{}{
							"fullyQualifiedName": err.Field,
						},
					},
				},
			},
		}
	}
	return results
}
