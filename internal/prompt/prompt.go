// Package prompt implements the interactive version menu and confirmation.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/git"
	"github.com/mxcd/bumper/internal/operation"
	"github.com/mxcd/bumper/internal/version"
	"golang.org/x/term"
)

const customChoice = "custom"

var (
	labelStyle   = lipgloss.NewStyle().Faint(true).Width(8).Align(lipgloss.Right)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	versionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

var terminalCheck = term.IsTerminal

// IsInteractive reports whether stdin and stderr are interactive terminals.
// Forms render on stderr, so stdout may be piped.
func IsInteractive() bool {
	return terminalCheck(int(os.Stdin.Fd())) && terminalCheck(int(os.Stderr.Fd()))
}

// HuhPrompter asks on the terminal using charmbracelet/huh forms
type HuhPrompter struct {
	isTerminal func() bool
	runForm    func(ctx context.Context, form *huh.Form) error
}

func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{
		isTerminal: IsInteractive,
		runForm: func(ctx context.Context, form *huh.Form) error {
			return form.RunWithContext(ctx)
		},
	}
}

func (p *HuhPrompter) run(ctx context.Context, form *huh.Form) error {
	if !p.isTerminal() {
		return bumperr.New(bumperr.KindInvalidReleaseSpec, "interactive prompt requires a terminal, pass a release and --yes")
	}
	form.WithProgramOptions(tea.WithOutput(os.Stderr))

	err := p.runForm(ctx, form)
	if errors.Is(err, huh.ErrUserAborted) {
		return bumperr.New(bumperr.KindUserAborted, "user aborted")
	}
	return err
}

// SelectVersion shows the candidate menu plus a custom entry. It returns the
// chosen release keyword or the typed version.
func (p *HuhPrompter) SelectVersion(ctx context.Context, current version.Version, candidates []version.Candidate) (string, error) {
	options := make([]huh.Option[string], 0, len(candidates)+1)
	for _, candidate := range candidates {
		label := fmt.Sprintf("%-12s %s", candidate.Release, candidate.Version)
		options = append(options, huh.NewOption(label, string(candidate.Release)))
	}
	options = append(options, huh.NewOption(fmt.Sprintf("%-12s ...", customChoice), customChoice))

	choice := ""
	if len(candidates) > 0 {
		choice = string(candidates[0].Release)
	}
	err := p.run(ctx, huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Current version %s", valueStyle.Render(current.String()))).
				Options(options...).
				Value(&choice),
		),
	))
	if err != nil {
		return "", err
	}
	if choice != customChoice {
		return choice, nil
	}

	custom := current.String()
	err = p.run(ctx, huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter the new version number").
				Value(&custom).
				Validate(validateCustomVersion),
		),
	))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(custom), nil
}

func validateCustomVersion(value string) error {
	if !version.IsValid(strings.TrimSpace(value)) {
		return fmt.Errorf("%q is not a valid semantic version", value)
	}
	return nil
}

// ChooseVersion lets the prompter act as the resolver's chooser
func (p *HuhPrompter) ChooseVersion(ctx context.Context, current version.Version, candidates []version.Candidate) (string, error) {
	return p.SelectVersion(ctx, current, candidates)
}

// Confirm shows the summary and asks whether to proceed
func (p *HuhPrompter) Confirm(ctx context.Context, summary operation.Summary) (bool, error) {
	proceed := true
	err := p.run(ctx, huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Bump?").
				Description(RenderSummary(summary)).
				Affirmative("Yes").
				Negative("No").
				Value(&proceed),
		),
	))
	if err != nil {
		return false, err
	}
	return proceed, nil
}

// RenderSummary formats the confirmation summary
func RenderSummary(summary operation.Summary) string {
	var lines []string
	row := func(label, value string) {
		lines = append(lines, labelStyle.Render(label)+" "+value)
	}

	for i, file := range summary.Files {
		label := ""
		if i == 0 {
			label = "files"
		}
		row(label, valueStyle.Render(file))
	}
	if summary.CommitMessage != "" {
		row("commit", valueStyle.Render(summary.CommitMessage))
	}
	if summary.TagName != "" {
		row("tag", valueStyle.Render(summary.TagName))
	}
	if summary.Execute != "" {
		row("execute", valueStyle.Render(summary.Execute))
	}
	if summary.Push {
		row("push", valueStyle.Render(git.DescribeRemote(summary.Remote)))
	}
	if summary.Install {
		row("install", valueStyle.Render("yes"))
	}
	lines = append(lines, "")
	row("from", valueStyle.Render(summary.CurrentVersion))
	row("to", versionStyle.Render(summary.NewVersion))

	return strings.Join(lines, "\n")
}
