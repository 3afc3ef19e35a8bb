package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fatih/color"
	"github.com/mxcd/bumper/internal/operation"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

var (
	diffColorAdded   = color.New(color.FgGreen)
	diffColorRemoved = color.New(color.FgRed)
	diffColorHunk    = color.New(color.FgCyan)
)

func symbolOK() string      { return color.GreenString("✔") }
func symbolSkip() string    { return color.YellowString("–") }
func symbolFail() string    { return color.RedString("✖") }
func symbolCommand() string { return color.CyanString("$") }

// ConsoleObserver prints pipeline events for a terminal user
type ConsoleObserver struct {
	out      io.Writer
	progress bool
	bar      *progressbar.ProgressBar
}

// NewConsoleObserver creates an observer writing to out. With progress set,
// file updates drive a progress bar instead of one line per file.
func NewConsoleObserver(out io.Writer, progress bool) *ConsoleObserver {
	return &ConsoleObserver{out: out, progress: progress}
}

func (o *ConsoleObserver) OnEvent(event operation.Event) {
	switch event.Type {
	case operation.EventStageEntered:
		o.finishBar()
		if event.Stage == operation.StageUpdateFiles && o.progress {
			o.bar = newFileProgressBar(o.out)
		}
	case operation.EventFileUpdated:
		if o.tick() {
			return
		}
		fmt.Fprintf(o.out, "%s Updated %s\n", symbolOK(), event.File)
		if event.DryRun {
			o.printDiff(event.File, event.Before, event.After)
		}
	case operation.EventFileSkipped:
		if o.tick() {
			return
		}
		fmt.Fprintf(o.out, "%s Skipped %s (%s)\n", symbolSkip(), event.File, event.Reason)
	case operation.EventFileFailed:
		o.finishBar()
		fmt.Fprintf(o.out, "%s Failed to update %s: %v\n", symbolFail(), event.File, event.Err)
	case operation.EventCommandStarting:
		o.finishBar()
		if event.DryRun {
			fmt.Fprintf(o.out, "%s %s %s\n", symbolCommand(), event.Command, color.New(color.Faint).Sprint("(dry run)"))
			return
		}
		fmt.Fprintf(o.out, "%s %s\n", symbolCommand(), event.Command)
	case operation.EventCommandFinished:
		if event.Err != nil {
			fmt.Fprintf(o.out, "%s %s failed\n", symbolFail(), event.Command)
			return
		}
		log.Debug().Str("command", event.Command).Msg("Command finished")
	}
}

// Close finishes a progress bar still on screen
func (o *ConsoleObserver) Close() {
	o.finishBar()
}

func (o *ConsoleObserver) tick() bool {
	if o.bar == nil {
		return false
	}
	if err := o.bar.Add(1); err != nil {
		log.Trace().Err(err).Msg("Failed to advance progress bar")
	}
	return true
}

func (o *ConsoleObserver) finishBar() {
	if o.bar == nil {
		return
	}
	_ = o.bar.Finish()
	fmt.Fprintln(o.out)
	o.bar = nil
}

func (o *ConsoleObserver) printDiff(file string, before, after []byte) {
	diff := udiff.Unified("a/"+file, "b/"+file, string(before), string(after))
	if diff == "" {
		return
	}
	fmt.Fprint(o.out, colorizeDiff(diff))
}

func newFileProgressBar(out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Updating files:"),
		progressbar.OptionSetItsString("file"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// colorizeDiff colors the lines of a unified diff
func colorizeDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(diffColorHunk.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(diffColorAdded.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(diffColorRemoved.Sprint(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
