package target

import (
	"fmt"
	"os"

	"github.com/mxcd/bumper/internal/configuration"
	"github.com/rs/zerolog/log"
)

// Status is the per-file result of an update
type Status string

const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Skip reasons
const (
	ReasonUpToDate      = "already up to date"
	ReasonFieldNotFound = "no version field"
	ReasonNoMatch       = "no version found"
	ReasonUnparseable   = "unparseable"
)

// Outcome describes what happened to one file
type Outcome struct {
	Target *FileTarget
	Status Status
	Reason string
	// Fields lists the rewritten fields of structured documents
	Fields   []string
	Replaced int
	Err      error
	Before   []byte
	After    []byte
}

// Engine applies the new version to located files one at a time. A failure
// on one file is reported in its outcome and never affects another file.
type Engine struct {
	Current string
	Next    string
	Rules   []*configuration.ReplaceRule
	// DryRun computes outcomes without writing
	DryRun bool
}

// NewEngine creates an engine moving files from current to next
func NewEngine(current, next string, rules []*configuration.ReplaceRule, dryRun bool) *Engine {
	return &Engine{
		Current: current,
		Next:    next,
		Rules:   rules,
		DryRun:  dryRun,
	}
}

// Apply updates a single file
func (e *Engine) Apply(target *FileTarget) *Outcome {
	outcome := &Outcome{Target: target}
	path := target.AbsPath()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return outcome.fail(&FileNotFoundError{Path: target.Path})
		}
		return outcome.fail(fmt.Errorf("failed to access file %s: %w", target.Path, err))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return outcome.fail(fmt.Errorf("failed to read file %s: %w", target.Path, err))
	}
	outcome.Before = content
	outcome.After = content

	var updated []byte
	if IsStructured(target.Strategy) {
		spans, err := locateFields(target.Strategy, content)
		if err != nil {
			log.Debug().Err(err).Str("file", target.Path).Msg("Skipping unparseable file")
			return outcome.skip(ReasonUnparseable)
		}
		if len(spans) == 0 {
			return outcome.skip(ReasonFieldNotFound)
		}
		for _, s := range spans {
			if s.Value != e.Next {
				outcome.Fields = append(outcome.Fields, s.Field)
			}
		}
		updated, outcome.Replaced = replaceSpans(content, spans, e.Next)
		if outcome.Replaced == 0 {
			return outcome.skip(ReasonUpToDate)
		}
	} else {
		replacer := &TextReplacer{Current: e.Current, Next: e.Next, Rules: e.Rules}
		updated, outcome.Replaced, err = replacer.Replace(target.Path, content)
		if err != nil {
			return outcome.fail(err)
		}
		if outcome.Replaced == 0 {
			return outcome.skip(ReasonNoMatch)
		}
	}

	outcome.After = updated
	outcome.Status = StatusUpdated

	if e.DryRun {
		log.Debug().Str("file", target.Path).Int("replaced", outcome.Replaced).Msg("Dry run, not writing file")
		return outcome
	}

	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		outcome.After = content
		return outcome.fail(fmt.Errorf("failed to write file %s: %w", target.Path, err))
	}

	log.Debug().
		Str("file", target.Path).
		Str("version", e.Next).
		Int("replaced", outcome.Replaced).
		Msg("Updated file")
	return outcome
}

func (o *Outcome) skip(reason string) *Outcome {
	o.Status = StatusSkipped
	o.Reason = reason
	log.Debug().Str("file", o.Target.Path).Str("reason", reason).Msg("Skipped file")
	return o
}

func (o *Outcome) fail(err error) *Outcome {
	o.Status = StatusFailed
	o.Reason = err.Error()
	o.Err = err
	return o
}
