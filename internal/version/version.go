package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is an immutable semantic version value
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease []string
	Build      []string
}

// InvalidVersionError is returned when a string is not a full semantic version
type InvalidVersionError struct {
	Value string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid semantic version: %q", e.Value)
}

// Parse parses a MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] string. A leading "v" is tolerated.
func Parse(value string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "v")
	prefixed := "v" + trimmed
	if !semver.IsValid(prefixed) {
		return Version{}, &InvalidVersionError{Value: value}
	}

	// semver.IsValid accepts the v1 and v1.2 shorthands, Canonical expands them
	core := trimmed
	if idx := strings.IndexByte(core, '+'); idx >= 0 {
		core = core[:idx]
	}
	if strings.TrimPrefix(semver.Canonical(prefixed), "v") != core {
		return Version{}, &InvalidVersionError{Value: value}
	}

	v := Version{}
	rest := trimmed
	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		v.Build = strings.Split(rest[idx+1:], ".")
		rest = rest[:idx]
	}
	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		v.Prerelease = strings.Split(rest[idx+1:], ".")
		rest = rest[:idx]
	}

	parts := strings.Split(rest, ".")
	numbers := make([]uint64, 3)
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, &InvalidVersionError{Value: value}
		}
		numbers[i] = n
	}
	v.Major, v.Minor, v.Patch = numbers[0], numbers[1], numbers[2]

	return v, nil
}

// MustParse is Parse for known-good literals
func MustParse(value string) Version {
	v, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether value parses as a full semantic version
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Prerelease) > 0 {
		b.WriteByte('-')
		b.WriteString(strings.Join(v.Prerelease, "."))
	}
	if len(v.Build) > 0 {
		b.WriteByte('+')
		b.WriteString(strings.Join(v.Build, "."))
	}
	return b.String()
}

// IsPrerelease reports whether the version carries pre-release identifiers
func (v Version) IsPrerelease() bool {
	return len(v.Prerelease) > 0
}

// Compare returns -1, 0 or +1 following semantic version precedence. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	return semver.Compare("v"+v.String(), "v"+other.String())
}

// GreaterThan reports whether v has higher precedence than other
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal reports equal precedence
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func (v Version) release() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

func (v Version) withPrerelease(identifiers []string) Version {
	next := v.release()
	next.Prerelease = identifiers
	return next
}

// preIdentifiers returns the identifiers a fresh pre-release starts with
func preIdentifiers(preid string) []string {
	if preid == "" {
		return []string{"0"}
	}
	return []string{preid, "0"}
}

// incrementPrerelease bumps the trailing numeric identifier, appending 0 when there is none
func incrementPrerelease(identifiers []string) []string {
	next := make([]string, len(identifiers))
	copy(next, identifiers)
	for i := len(next) - 1; i >= 0; i-- {
		n, err := strconv.ParseUint(next[i], 10, 64)
		if err == nil {
			next[i] = strconv.FormatUint(n+1, 10)
			return next
		}
	}
	return append(next, "0")
}
