package operation

import (
	"testing"

	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/mxcd/bumper/internal/configuration"
	"github.com/mxcd/bumper/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestOperation(t *testing.T) *Operation {
	t.Helper()
	opts := configuration.DefaultOptions()
	opts.Cwd = t.TempDir()
	op, err := Start(opts)
	require.NoError(t, err)
	return op
}

func TestStartDefaults(t *testing.T) {
	op, err := Start(nil)
	require.NoError(t, err)

	assert.Equal(t, StateRunning, op.State())
	assert.True(t, op.Options.Confirm)
	_, ok := op.CurrentVersion()
	assert.False(t, ok)
	_, ok = op.NewVersion()
	assert.False(t, ok)
}

func TestVersionsAreSetOnce(t *testing.T) {
	op := startTestOperation(t)

	require.Error(t, op.SetNewVersion(version.MustParse("1.0.1")), "new version before current")

	require.NoError(t, op.SetCurrentVersion(version.MustParse("1.0.0")))
	require.Error(t, op.SetCurrentVersion(version.MustParse("1.0.5")))

	require.NoError(t, op.SetNewVersion(version.MustParse("1.1.0")))
	require.Error(t, op.SetNewVersion(version.MustParse("2.0.0")))

	current, _ := op.CurrentVersion()
	next, _ := op.NewVersion()
	assert.Equal(t, "1.0.0", current.String())
	assert.Equal(t, "1.1.0", next.String())
}

func TestNewVersionMustDiffer(t *testing.T) {
	op := startTestOperation(t)
	require.NoError(t, op.SetCurrentVersion(version.MustParse("1.0.0")))

	err := op.SetNewVersion(version.MustParse("1.0.0"))
	require.Error(t, err)
	assert.Equal(t, bumperr.KindInvalidReleaseSpec, bumperr.KindOf(err))

	op.Options.AllowSameVersion = true
	require.NoError(t, op.SetNewVersion(version.MustParse("1.0.0")))
}

func TestRecordFiles(t *testing.T) {
	op := startTestOperation(t)

	require.NoError(t, op.RecordUpdated("package.json"))
	require.NoError(t, op.RecordSkipped("README.md"))
	require.NoError(t, op.RecordUpdated("package-lock.json"))

	assert.Error(t, op.RecordSkipped("package.json"))
	assert.Error(t, op.RecordUpdated("README.md"))

	assert.Equal(t, []string{"package.json", "package-lock.json"}, op.UpdatedFiles())
	assert.Equal(t, []string{"README.md"}, op.SkippedFiles())

	// returned slices are copies
	files := op.UpdatedFiles()
	files[0] = "changed"
	assert.Equal(t, "package.json", op.UpdatedFiles()[0])
}

func TestTemplates(t *testing.T) {
	op := startTestOperation(t)
	require.NoError(t, op.SetCurrentVersion(version.MustParse("1.0.0")))
	require.NoError(t, op.SetNewVersion(version.MustParse("1.1.0-beta.0")))

	assert.Equal(t, "chore: release v1.1.0-beta.0", op.CommitMessage())
	assert.Equal(t, "v1.1.0-beta.0", op.TagName())
	assert.Equal(t, op.CommitMessage(), op.TagMessage())

	op.Options.Tag.Message = "Release {version}"
	assert.Equal(t, "Release 1.1.0-beta.0", op.TagMessage())
}

func TestFormatTemplate(t *testing.T) {
	tests := []struct {
		template string
		expected string
	}{
		{"v%s", "v2.0.0"},
		{"release {version}", "release 2.0.0"},
		{"%s and {version}", "2.0.0 and 2.0.0"},
		{"v", "v2.0.0"},
		{"release {unknown} %s", "release {unknown} 2.0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatTemplate(tt.template, "2.0.0"), tt.template)
	}
}

func TestLifecycle(t *testing.T) {
	op := startTestOperation(t)
	op.Abort("user declined")
	assert.Equal(t, StateAborted, op.State())
	assert.Equal(t, "user declined", op.AbortReason())

	op.Complete()
	assert.Equal(t, StateAborted, op.State(), "terminal state is final")

	other := startTestOperation(t)
	other.Complete()
	other.Abort("late")
	assert.Equal(t, StateCompleted, other.State())
	assert.Empty(t, other.AbortReason())
}

func TestSummaryAndResults(t *testing.T) {
	op := startTestOperation(t)
	op.Options.Push.Enabled = false
	op.Options.Install = true
	require.NoError(t, op.SetCurrentVersion(version.MustParse("1.0.0")))
	require.NoError(t, op.SetNewVersion(version.MustParse("2.0.0")))
	require.NoError(t, op.RecordUpdated("package.json"))

	summary := op.Summary([]string{"package.json"})
	assert.Equal(t, "1.0.0", summary.CurrentVersion)
	assert.Equal(t, "2.0.0", summary.NewVersion)
	assert.Equal(t, "chore: release v2.0.0", summary.CommitMessage)
	assert.Equal(t, "v2.0.0", summary.TagName)
	assert.False(t, summary.Push)
	assert.True(t, summary.Install)

	results := op.Results()
	assert.Equal(t, "1.0.0", results.CurrentVersion)
	assert.Equal(t, "2.0.0", results.NewVersion)
	assert.Equal(t, []string{"package.json"}, results.UpdatedFiles)
	assert.Empty(t, results.SkippedFiles)
	assert.Same(t, op.Options, results.Options)
}
