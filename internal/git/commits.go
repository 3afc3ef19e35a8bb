package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	fieldSeparator  = "\x1f"
	recordSeparator = "\x1e"
)

var conventionalHeader = regexp.MustCompile(`^(\w+)(?:\(([^)]*)\))?(!)?:\s*(.+)$`)

// RecentCommits returns the commits since the latest tag, newest first
func (r *Repository) RecentCommits(ctx context.Context) ([]*Commit, error) {
	latestTag, err := r.LatestTag(ctx)
	if err != nil {
		return nil, err
	}

	args := []string{"log", "--format=%h" + fieldSeparator + "%s" + fieldSeparator + "%b" + recordSeparator}
	if latestTag != "" {
		args = append(args, latestTag+"..HEAD")
	}

	result, err := r.Runner.Run(ctx, r.command(args...))
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}

	return ParseLog(result.Stdout), nil
}

// ParseLog parses the record-separated log output produced by RecentCommits
func ParseLog(output string) []*Commit {
	commits := make([]*Commit, 0)
	for _, record := range strings.Split(output, recordSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSeparator, 3)
		if len(fields) < 2 {
			continue
		}
		body := ""
		if len(fields) == 3 {
			body = fields[2]
		}
		commits = append(commits, ParseCommit(fields[0], fields[1], body))
	}
	return commits
}

// ParseCommit parses a conventional commit subject. Non-conventional subjects get an empty type.
func ParseCommit(shortHash, subject, body string) *Commit {
	commit := &Commit{ShortHash: shortHash, Description: strings.TrimSpace(subject)}

	if match := conventionalHeader.FindStringSubmatch(commit.Description); match != nil {
		commit.Type = strings.ToLower(match[1])
		commit.Scope = match[2]
		commit.Breaking = match[3] == "!"
		commit.Description = match[4]
	}

	if strings.Contains(body, "BREAKING CHANGE:") || strings.Contains(body, "BREAKING-CHANGE:") {
		commit.Breaking = true
	}

	return commit
}

// SuggestRelease picks the increment keyword implied by conventional commits:
// major for breaking changes, minor for features, patch otherwise.
func SuggestRelease(commits []*Commit) string {
	release := "patch"
	for _, commit := range commits {
		if commit.Breaking {
			return "major"
		}
		if commit.Type == "feat" || commit.Type == "feature" {
			release = "minor"
		}
	}
	return release
}
