package actions

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mxcd/bumper/internal/operation"
	"github.com/mxcd/bumper/internal/version"
	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputNone  = "none"
)

// BumpReport is the printed form of a finished run
type BumpReport struct {
	CurrentVersion string   `json:"currentVersion" yaml:"currentVersion"`
	NewVersion     string   `json:"newVersion" yaml:"newVersion"`
	Release        string   `json:"release,omitempty" yaml:"release,omitempty"`
	UpdatedFiles   []string `json:"updatedFiles" yaml:"updatedFiles"`
	SkippedFiles   []string `json:"skippedFiles" yaml:"skippedFiles"`
	DryRun         bool     `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
}

// NewBumpReport builds the report for results
func NewBumpReport(results *operation.Results) *BumpReport {
	report := &BumpReport{
		CurrentVersion: results.CurrentVersion,
		NewVersion:     results.NewVersion,
		UpdatedFiles:   results.UpdatedFiles,
		SkippedFiles:   results.SkippedFiles,
	}
	if results.Options != nil {
		report.DryRun = results.Options.DryRun
	}

	current, errCurrent := version.Parse(results.CurrentVersion)
	next, errNext := version.Parse(results.NewVersion)
	if errCurrent == nil && errNext == nil {
		report.Release = string(version.Diff(current, next))
	}
	return report
}

// OutputBumpReport writes the report in the given format
func OutputBumpReport(out io.Writer, report *BumpReport, format string) error {
	switch format {
	case OutputTable:
		return outputBumpReportTable(out, report)
	case OutputJSON:
		return writeJSON(out, report)
	case OutputYAML:
		return writeYAML(out, report)
	case OutputNone:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputBumpReportTable(out io.Writer, report *BumpReport) error {
	title := "Version Bump"
	if report.DryRun {
		title = "Version Bump (dry run)"
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"File", "Status"})
	for _, file := range report.UpdatedFiles {
		t.AppendRow(table.Row{file, "updated"})
	}
	for _, file := range report.SkippedFiles {
		t.AppendRow(table.Row{file, "skipped"})
	}

	release := report.Release
	if release == "" {
		release = "-"
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%s → %s", report.CurrentVersion, report.NewVersion), release})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func writeJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeYAML(out io.Writer, value interface{}) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(value)
}
