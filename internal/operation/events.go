package operation

// Stage is one step of the pipeline
type Stage string

const (
	StageResolveCurrent  Stage = "resolve-current-version"
	StageResolveNew      Stage = "resolve-new-version"
	StageConfirm         Stage = "confirm"
	StagePreVersionHook  Stage = "preversion"
	StageUpdateFiles     Stage = "update-files"
	StageInstall         Stage = "install"
	StageExecute         Stage = "execute"
	StageVersionHook     Stage = "version"
	StageCommit          Stage = "commit"
	StageTag             Stage = "tag"
	StagePostVersionHook Stage = "postversion"
	StagePush            Stage = "push"
)

// Stages lists every stage in execution order
var Stages = []Stage{
	StageResolveCurrent,
	StageResolveNew,
	StageConfirm,
	StagePreVersionHook,
	StageUpdateFiles,
	StageInstall,
	StageExecute,
	StageVersionHook,
	StageCommit,
	StageTag,
	StagePostVersionHook,
	StagePush,
}

type EventType string

const (
	EventStageEntered    EventType = "stage-entered"
	EventFileUpdated     EventType = "file-updated"
	EventFileSkipped     EventType = "file-skipped"
	EventFileFailed      EventType = "file-failed"
	EventCommandStarting EventType = "command-starting"
	EventCommandFinished EventType = "command-finished"
)

// Event is emitted by the pipeline at defined points of a run
type Event struct {
	Type  EventType
	Stage Stage
	// File is set for file events
	File   string
	Reason string
	// Before and After hold the file content around an update
	Before []byte
	After  []byte
	// Command is set for command events
	Command string
	// DryRun marks a command that was planned but not run
	DryRun bool
	Err    error
}

// Summary is what the confirmation gate shows before anything is changed
type Summary struct {
	CurrentVersion string
	NewVersion     string
	Files          []string
	CommitMessage  string
	TagName        string
	Execute        string
	Push           bool
	Remote         string
	Install        bool
}

// Summary builds the confirmation summary for the located files
func (o *Operation) Summary(files []string) Summary {
	summary := Summary{
		NewVersion: o.newVersionString(),
		Files:      files,
		Execute:    o.Options.Execute,
		Install:    o.Options.Install,
	}
	if current, ok := o.CurrentVersion(); ok {
		summary.CurrentVersion = current.String()
	}
	if summary.Execute == "" && o.ExecuteFunc != nil {
		summary.Execute = "function"
	}
	if o.Options.Commit.Enabled {
		summary.CommitMessage = o.CommitMessage()
	}
	if o.Options.Tag.Enabled {
		summary.TagName = o.TagName()
	}
	if o.Options.Push.Enabled {
		summary.Push = true
		summary.Remote = o.Options.Push.Remote
	}
	return summary
}
