package version

import (
	"context"
	"strings"

	"github.com/mxcd/bumper/internal/bumperr"
	"github.com/rs/zerolog/log"
)

// Source provides the raw version string of the primary manifest
type Source interface {
	Path() string
	ReadVersion() (string, error)
}

// Candidate is one entry of the interactive menu
type Candidate struct {
	Release ReleaseType
	Version Version
}

// Label renders the candidate the way the menu shows it
func (c Candidate) Label() string {
	return string(c.Release) + " " + c.Version.String()
}

// Chooser answers the interactive request. It returns either a release keyword or
// a literal version typed by the user.
type Chooser interface {
	ChooseVersion(ctx context.Context, current Version, candidates []Candidate) (string, error)
}

// ResolveOptions tunes ResolveNext
type ResolveOptions struct {
	Preid            string
	AllowSameVersion bool
	// Suggested is the keyword the conventional release type maps to
	Suggested ReleaseType
	Chooser   Chooser
}

// ResolveCurrent reads and parses the version of the primary manifest
func ResolveCurrent(source Source) (Version, error) {
	raw, err := source.ReadVersion()
	if err != nil {
		return Version{}, bumperr.Wrap(bumperr.KindVersionNotFound, err, "unable to read version from %s", source.Path())
	}

	v, err := Parse(raw)
	if err != nil {
		return Version{}, bumperr.Wrap(bumperr.KindVersionNotFound, err, "%s does not contain a valid version", source.Path())
	}

	log.Debug().Str("file", source.Path()).Str("version", v.String()).Msg("Resolved current version")
	return v, nil
}

// ResolveCurrentLiteral parses an explicitly configured current version
func ResolveCurrentLiteral(raw string) (Version, error) {
	v, err := Parse(raw)
	if err != nil {
		return Version{}, bumperr.Wrap(bumperr.KindVersionNotFound, err, "configured current version is invalid")
	}
	return v, nil
}

// Candidates computes the fixed, ordered interactive menu for current
func Candidates(current Version, preid string) []Candidate {
	candidates := make([]Candidate, 0, len(MenuOrder))
	for _, release := range MenuOrder {
		next, err := current.Increment(release, preid)
		if err != nil {
			continue
		}
		candidates = append(candidates, Candidate{Release: release, Version: next})
	}
	return candidates
}

// MenuCandidates is Candidates led by the conventional entry when the commit
// history suggests a release
func MenuCandidates(current Version, preid string, suggested ReleaseType) []Candidate {
	candidates := Candidates(current, preid)
	if suggested == "" {
		return candidates
	}
	next, err := current.Increment(suggested, preid)
	if err != nil {
		return candidates
	}
	return append([]Candidate{{Release: ReleaseConventional, Version: next}}, candidates...)
}

// ResolveNext computes the next version for spec. Interactive resolution is only
// requested when spec is empty or "prompt".
func ResolveNext(ctx context.Context, current Version, spec string, opts ResolveOptions) (Version, error) {
	spec = strings.TrimSpace(spec)

	if IsPromptSpec(spec) {
		if opts.Chooser == nil {
			return Version{}, bumperr.New(bumperr.KindInvalidReleaseSpec, "no release specified and interactive selection is unavailable")
		}
		candidates := MenuCandidates(current, opts.Preid, opts.Suggested)
		choice, err := opts.Chooser.ChooseVersion(ctx, current, candidates)
		if err != nil {
			return Version{}, err
		}
		if IsPromptSpec(choice) {
			return Version{}, bumperr.New(bumperr.KindInvalidReleaseSpec, "no version selected")
		}
		opts.Chooser = nil
		return ResolveNext(ctx, current, choice, opts)
	}

	if IsReleaseType(spec) {
		release := ReleaseType(strings.ToLower(spec))
		if release == ReleaseConventional {
			release = opts.Suggested
			if release == "" {
				release = ReleasePatch
			}
		}
		next, err := current.Increment(release, opts.Preid)
		if err != nil {
			return Version{}, bumperr.Wrap(bumperr.KindInvalidReleaseSpec, err, "cannot apply release %q", spec)
		}
		log.Debug().Str("release", string(release)).Str("from", current.String()).Str("to", next.String()).Msg("Incremented version")
		return next, nil
	}

	next, err := Parse(spec)
	if err != nil {
		return Version{}, bumperr.Wrap(bumperr.KindInvalidReleaseSpec, err, "invalid release %q", spec)
	}

	switch cmp := next.Compare(current); {
	case cmp > 0:
		return next, nil
	case cmp == 0 && opts.AllowSameVersion:
		return next, nil
	case cmp == 0:
		return Version{}, bumperr.New(bumperr.KindInvalidReleaseSpec, "version %s equals the current version", next)
	default:
		return Version{}, bumperr.New(bumperr.KindInvalidReleaseSpec, "version %s is lower than the current version %s", next, current)
	}
}
