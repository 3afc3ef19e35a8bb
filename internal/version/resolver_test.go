package version

import (
	"context"
	"errors"
	"testing"

	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	path  string
	value string
	err   error
}

func (s *staticSource) Path() string { return s.path }

func (s *staticSource) ReadVersion() (string, error) { return s.value, s.err }

type scriptedChooser struct {
	answer     string
	err        error
	calls      int
	candidates []Candidate
}

func (c *scriptedChooser) ChooseVersion(_ context.Context, _ Version, candidates []Candidate) (string, error) {
	c.calls++
	c.candidates = candidates
	return c.answer, c.err
}

func TestResolveCurrent(t *testing.T) {
	v, err := ResolveCurrent(&staticSource{path: "package.json", value: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.String())

	_, err = ResolveCurrent(&staticSource{path: "package.json", err: errors.New("field not found")})
	require.Error(t, err)
	assert.Equal(t, bumperr.KindVersionNotFound, bumperr.KindOf(err))

	_, err = ResolveCurrent(&staticSource{path: "package.json", value: "not-a-version"})
	require.Error(t, err)
	assert.Equal(t, bumperr.KindVersionNotFound, bumperr.KindOf(err))
}

func TestResolveNextKeywords(t *testing.T) {
	ctx := context.Background()
	current := MustParse("1.0.0")

	next, err := ResolveNext(ctx, current, "major", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", next.String())

	next, err = ResolveNext(ctx, MustParse("1.2.3-beta.1"), "prerelease", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-beta.2", next.String())

	next, err = ResolveNext(ctx, current, "conventional", ResolveOptions{Suggested: ReleaseMinor})
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", next.String())

	next, err = ResolveNext(ctx, current, "conventional", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", next.String())
}

func TestResolveNextExplicit(t *testing.T) {
	ctx := context.Background()
	current := MustParse("1.2.3")

	tests := []struct {
		name      string
		spec      string
		allowSame bool
		want      string
		wantKind  bumperr.Kind
	}{
		{name: "greater", spec: "1.3.0", want: "1.3.0"},
		{name: "v prefixed", spec: "v2.0.0", want: "2.0.0"},
		{name: "equal rejected", spec: "1.2.3", wantKind: bumperr.KindInvalidReleaseSpec},
		{name: "equal allowed", spec: "1.2.3", allowSame: true, want: "1.2.3"},
		{name: "lower rejected", spec: "1.2.2", wantKind: bumperr.KindInvalidReleaseSpec},
		{name: "lower rejected even when same allowed", spec: "1.0.0", allowSame: true, wantKind: bumperr.KindInvalidReleaseSpec},
		{name: "garbage", spec: "bigger", wantKind: bumperr.KindInvalidReleaseSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ResolveNext(ctx, current, tt.spec, ResolveOptions{AllowSameVersion: tt.allowSame})
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, bumperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.String())
		})
	}
}

func TestResolveNextInteractive(t *testing.T) {
	ctx := context.Background()
	current := MustParse("1.2.3")

	chooser := &scriptedChooser{answer: "minor"}
	next, err := ResolveNext(ctx, current, "", ResolveOptions{Chooser: chooser})
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", next.String())
	assert.Equal(t, 1, chooser.calls)

	require.Len(t, chooser.candidates, len(MenuOrder))
	labels := make([]string, 0, len(chooser.candidates))
	for _, c := range chooser.candidates {
		labels = append(labels, c.Label())
	}
	assert.Equal(t, []string{
		"patch 1.2.4",
		"minor 1.3.0",
		"major 2.0.0",
		"prepatch 1.2.4-0",
		"preminor 1.3.0-0",
		"premajor 2.0.0-0",
		"prerelease 1.2.4-0",
	}, labels)

	suggesting := &scriptedChooser{answer: "conventional"}
	next, err = ResolveNext(ctx, current, "", ResolveOptions{Chooser: suggesting, Suggested: ReleaseMinor})
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", next.String())
	require.Len(t, suggesting.candidates, len(MenuOrder)+1)
	assert.Equal(t, "conventional 1.3.0", suggesting.candidates[0].Label())

	custom := &scriptedChooser{answer: "1.5.0"}
	next, err = ResolveNext(ctx, current, "prompt", ResolveOptions{Chooser: custom})
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", next.String())

	lower := &scriptedChooser{answer: "0.1.0"}
	_, err = ResolveNext(ctx, current, "prompt", ResolveOptions{Chooser: lower})
	assert.Equal(t, bumperr.KindInvalidReleaseSpec, bumperr.KindOf(err))

	aborted := &scriptedChooser{err: bumperr.New(bumperr.KindUserAborted, "user aborted")}
	_, err = ResolveNext(ctx, current, "", ResolveOptions{Chooser: aborted})
	assert.Equal(t, bumperr.KindUserAborted, bumperr.KindOf(err))
}

func TestResolveNextSkipsChooserForNonInteractiveSpecs(t *testing.T) {
	chooser := &scriptedChooser{answer: "major"}
	_, err := ResolveNext(context.Background(), MustParse("1.0.0"), "patch", ResolveOptions{Chooser: chooser})
	require.NoError(t, err)
	assert.Zero(t, chooser.calls)

	_, err = ResolveNext(context.Background(), MustParse("1.0.0"), "", ResolveOptions{})
	assert.Equal(t, bumperr.KindInvalidReleaseSpec, bumperr.KindOf(err))
}

func TestMenuCandidates(t *testing.T) {
	current := MustParse("1.0.0")

	plain := MenuCandidates(current, "", "")
	assert.Equal(t, Candidates(current, ""), plain)

	led := MenuCandidates(current, "", ReleaseMinor)
	require.Len(t, led, len(plain)+1)
	assert.Equal(t, ReleaseConventional, led[0].Release)
	assert.Equal(t, "1.1.0", led[0].Version.String())
	assert.Equal(t, plain, led[1:])
}
