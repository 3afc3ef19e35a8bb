package version

import (
	"fmt"
	"strings"
)

// ReleaseType is a named increment keyword
type ReleaseType string

const (
	ReleaseMajor        ReleaseType = "major"
	ReleaseMinor        ReleaseType = "minor"
	ReleasePatch        ReleaseType = "patch"
	ReleasePremajor     ReleaseType = "premajor"
	ReleasePreminor     ReleaseType = "preminor"
	ReleasePrepatch     ReleaseType = "prepatch"
	ReleasePrerelease   ReleaseType = "prerelease"
	ReleaseNext         ReleaseType = "next"
	ReleaseConventional ReleaseType = "conventional"
)

// SpecPrompt requests interactive resolution
const SpecPrompt = "prompt"

// MenuOrder is the fixed order of the interactive candidates
var MenuOrder = []ReleaseType{
	ReleasePatch,
	ReleaseMinor,
	ReleaseMajor,
	ReleasePrepatch,
	ReleasePreminor,
	ReleasePremajor,
	ReleasePrerelease,
}

var releaseTypes = map[ReleaseType]bool{
	ReleaseMajor:        true,
	ReleaseMinor:        true,
	ReleasePatch:        true,
	ReleasePremajor:     true,
	ReleasePreminor:     true,
	ReleasePrepatch:     true,
	ReleasePrerelease:   true,
	ReleaseNext:         true,
	ReleaseConventional: true,
}

// IsReleaseType reports whether s names an increment keyword
func IsReleaseType(s string) bool {
	return releaseTypes[ReleaseType(strings.ToLower(s))]
}

// IsPromptSpec reports whether spec asks for interactive resolution
func IsPromptSpec(spec string) bool {
	spec = strings.TrimSpace(spec)
	return spec == "" || strings.EqualFold(spec, SpecPrompt)
}

// IsReleaseSpec reports whether spec is syntactically acceptable: a keyword, a version or a prompt request
func IsReleaseSpec(spec string) bool {
	return IsPromptSpec(spec) || IsReleaseType(spec) || IsValid(spec)
}

// Increment computes the next version for a keyword. Every increment produces a
// version with strictly higher precedence than v. major, minor and patch always
// raise their component, also on a prerelease: 2.0.0-rc.1 major is 3.0.0.
func (v Version) Increment(release ReleaseType, preid string) (Version, error) {
	switch release {
	case ReleaseMajor:
		return Version{Major: v.Major + 1}, nil
	case ReleaseMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case ReleasePatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	case ReleasePremajor:
		return Version{Major: v.Major + 1}.withPrerelease(preIdentifiers(preid)), nil
	case ReleasePreminor:
		return Version{Major: v.Major, Minor: v.Minor + 1}.withPrerelease(preIdentifiers(preid)), nil
	case ReleasePrepatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}.withPrerelease(preIdentifiers(preid)), nil
	case ReleasePrerelease:
		return v.incrementPrerelease(preid), nil
	case ReleaseNext:
		if v.IsPrerelease() {
			return v.incrementPrerelease(preid), nil
		}
		return v.Increment(ReleasePatch, preid)
	default:
		return Version{}, fmt.Errorf("unknown release type: %s", release)
	}
}

func (v Version) incrementPrerelease(preid string) Version {
	if !v.IsPrerelease() {
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}.withPrerelease(preIdentifiers(preid))
	}

	if preid != "" && v.Prerelease[0] != preid {
		switched := v.withPrerelease(preIdentifiers(preid))
		if switched.GreaterThan(v) {
			return switched
		}
	}

	return v.withPrerelease(incrementPrerelease(v.Prerelease))
}
