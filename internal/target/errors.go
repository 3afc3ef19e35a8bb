package target

import (
	"fmt"

	"github.com/mxcd/bumper/internal/configuration"
)

// UnsupportedStrategyError is returned when a strategy has no implementation
type UnsupportedStrategyError struct {
	Strategy configuration.StrategyType
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("unsupported update strategy: %s", e.Strategy)
}

// FileNotFoundError is returned when a target file is not found
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("target file not found: %s", e.Path)
}

// FieldNotFoundError is returned when a document has no version field
type FieldNotFoundError struct {
	Field string
	File  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field '%s' not found in file: %s", e.Field, e.File)
}

// InvalidFileFormatError is returned when a target file cannot be parsed
type InvalidFileFormatError struct {
	File   string
	Reason string
}

func (e *InvalidFileFormatError) Error() string {
	return fmt.Sprintf("invalid file format '%s': %s", e.File, e.Reason)
}
