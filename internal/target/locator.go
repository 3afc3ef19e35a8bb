package target

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mxcd/bumper/internal/configuration"
	"github.com/rs/zerolog/log"
)

// RecursivePattern is added to the patterns in recursive mode
const RecursivePattern = "**/package.json"

// companionLockfiles lists the lockfiles that carry the manifest version
var companionLockfiles = map[string][]string{
	"package.json": {"package-lock.json", "npm-shrinkwrap.json"},
}

// skippedDirectories are never descended into when expanding ** patterns
var skippedDirectories = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Locate enumerates the files to update in discovery order. The primary manifest
// and its companion lockfiles come first, then every configured pattern in order.
// Negated patterns remove paths, the first pattern matching a path assigns its strategy.
func Locate(root string, opts *configuration.Options) ([]*FileTarget, error) {
	var specs []*configuration.FileSpec

	primary := opts.PrimaryManifest()
	specs = append(specs, &configuration.FileSpec{Path: primary, Strategy: StrategyFor(opts.Files, primary)})
	for _, companion := range companionLockfiles[path.Base(primary)] {
		specs = append(specs, &configuration.FileSpec{Path: path.Join(path.Dir(primary), companion)})
	}
	for _, spec := range opts.Files {
		if spec == nil || strings.HasPrefix(spec.Path, "!") {
			continue
		}
		specs = append(specs, spec)
	}
	if opts.Recursive {
		specs = append(specs, &configuration.FileSpec{Path: RecursivePattern})
	}

	seen := make(map[string]bool)
	targets := make([]*FileTarget, 0, len(specs))
	for _, spec := range specs {
		matches, err := expandPattern(root, spec.Path)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			if opts.IsExcluded(match) {
				log.Debug().Str("file", match).Msg("File excluded by pattern")
				continue
			}

			strategy := spec.Strategy
			if strategy == configuration.StrategyAuto {
				strategy = DetectStrategy(match)
			}
			targets = append(targets, &FileTarget{Path: match, Root: root, Strategy: strategy})
		}
	}

	log.Debug().Int("files", len(targets)).Msg("Located files")
	return targets, nil
}

// StrategyFor returns the strategy override of the file entry naming p, if any
func StrategyFor(specs []*configuration.FileSpec, p string) configuration.StrategyType {
	for _, spec := range specs {
		if spec != nil && filepath.ToSlash(filepath.Clean(spec.Path)) == p {
			return spec.Strategy
		}
	}
	return configuration.StrategyAuto
}

// expandPattern returns the existing files matching pattern relative to root,
// as sorted slash separated relative paths
func expandPattern(root, pattern string) ([]string, error) {
	pattern = filepath.ToSlash(filepath.Clean(pattern))

	if !strings.ContainsAny(pattern, "*?[") {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil || info.IsDir() {
			log.Debug().Str("file", pattern).Msg("File does not exist")
			return nil, nil
		}
		return []string{pattern}, nil
	}

	if !strings.Contains(pattern, "**") {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, err
		}
		return relativeFiles(root, matches), nil
	}

	return recursiveGlob(root, pattern)
}

// recursiveGlob walks the directory before the first ** and matches every file below it
func recursiveGlob(root, pattern string) ([]string, error) {
	parts := strings.Split(pattern, "/")
	base := ""
	for _, part := range parts {
		if strings.ContainsAny(part, "*?[") {
			break
		}
		base = path.Join(base, part)
	}

	var matches []string
	walkRoot := filepath.Join(root, filepath.FromSlash(base))
	err := filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip directories we can't read
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != walkRoot && skippedDirectories[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if configuration.MatchPattern(pattern, rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

func relativeFiles(root string, matches []string) []string {
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(root, match)
		if err != nil {
			continue
		}
		files = append(files, filepath.ToSlash(rel))
	}
	sort.Strings(files)
	return files
}
