package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "release", input: "1.2.3", want: "1.2.3"},
		{name: "v prefix", input: "v1.2.3", want: "1.2.3"},
		{name: "prerelease", input: "1.2.3-beta.1", want: "1.2.3-beta.1"},
		{name: "build metadata", input: "1.2.3+build.5", want: "1.2.3+build.5"},
		{name: "prerelease and build", input: "2.0.0-rc.1+sha.abc", want: "2.0.0-rc.1+sha.abc"},
		{name: "shorthand rejected", input: "1.2", wantErr: true},
		{name: "major only rejected", input: "1", wantErr: true},
		{name: "leading zero rejected", input: "01.2.3", wantErr: true},
		{name: "garbage rejected", input: "latest", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var invalid *InvalidVersionError
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestCompareFollowsPrecedence(t *testing.T) {
	ordered := []string{
		"1.0.0-0",
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.0.1",
		"1.1.0",
		"2.0.0",
	}

	for i := 0; i < len(ordered)-1; i++ {
		lower := MustParse(ordered[i])
		higher := MustParse(ordered[i+1])
		assert.True(t, higher.GreaterThan(lower), "%s should be greater than %s", higher, lower)
		assert.Equal(t, -1, lower.Compare(higher))
	}

	assert.True(t, MustParse("1.0.0+a").Equal(MustParse("1.0.0+b")), "build metadata must not affect precedence")
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		current string
		release ReleaseType
		preid   string
		want    string
	}{
		{"1.2.3", ReleaseMajor, "", "2.0.0"},
		{"1.2.3", ReleaseMinor, "", "1.3.0"},
		{"1.2.3", ReleasePatch, "", "1.2.4"},
		{"1.2.3-beta.1", ReleasePatch, "", "1.2.4"},
		{"1.2.3-beta.1", ReleaseMajor, "", "2.0.0"},
		{"2.0.0-rc.1", ReleaseMajor, "", "3.0.0"},
		{"1.3.0-rc.1", ReleaseMinor, "", "1.4.0"},
		{"1.2.4-rc.1", ReleasePatch, "", "1.2.5"},
		{"1.2.3", ReleasePremajor, "", "2.0.0-0"},
		{"1.2.3", ReleasePremajor, "beta", "2.0.0-beta.0"},
		{"1.2.3", ReleasePreminor, "alpha", "1.3.0-alpha.0"},
		{"1.2.3", ReleasePrepatch, "", "1.2.4-0"},
		{"1.2.3", ReleasePrerelease, "", "1.2.4-0"},
		{"1.2.3", ReleasePrerelease, "rc", "1.2.4-rc.0"},
		{"1.2.3-beta.1", ReleasePrerelease, "", "1.2.3-beta.2"},
		{"1.2.3-beta", ReleasePrerelease, "", "1.2.3-beta.0"},
		{"1.2.3-alpha.3", ReleasePrerelease, "beta", "1.2.3-beta.0"},
		{"1.2.3-beta.3", ReleasePrerelease, "alpha", "1.2.3-beta.4"},
		{"1.2.3-beta.1", ReleaseNext, "", "1.2.3-beta.2"},
		{"1.2.3", ReleaseNext, "", "1.2.4"},
		{"1.2.3+build", ReleasePatch, "", "1.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.current+" "+string(tt.release)+" "+tt.preid, func(t *testing.T) {
			current := MustParse(tt.current)
			next, err := current.Increment(tt.release, tt.preid)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.String())
			assert.True(t, next.GreaterThan(current))
		})
	}
}

func TestIncrementIsDeterministic(t *testing.T) {
	for _, raw := range []string{"0.0.0", "1.2.3", "1.2.3-beta.1", "3.0.0-rc"} {
		current := MustParse(raw)
		for _, release := range MenuOrder {
			first, err := current.Increment(release, "beta")
			require.NoError(t, err)
			second, err := current.Increment(release, "beta")
			require.NoError(t, err)
			assert.Equal(t, first.String(), second.String())
			assert.True(t, first.GreaterThan(current), "%s %s -> %s", raw, release, first)
		}
	}
}

func TestIsReleaseSpec(t *testing.T) {
	assert.True(t, IsReleaseSpec(""))
	assert.True(t, IsReleaseSpec("prompt"))
	assert.True(t, IsReleaseSpec("MINOR"))
	assert.True(t, IsReleaseSpec("conventional"))
	assert.True(t, IsReleaseSpec("4.0.0-rc.1"))
	assert.False(t, IsReleaseSpec("huge"))
	assert.False(t, IsReleaseSpec("4.0"))
}
