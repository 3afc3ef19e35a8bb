package git

import "github.com/mxcd/bumper/internal/runner"

// Repository represents a git working tree driven through the git CLI
type Repository struct {
	WorkingDirectory string
	Runner           runner.Runner
	Actor            *Actor
}

// Actor overrides the author and committer identity
type Actor struct {
	Name  string
	Email string
}

// CommitOptions represents options for creating a commit
type CommitOptions struct {
	Message  string
	Files    []string
	All      bool
	NoVerify bool
	Sign     bool
}

// TagOptions represents options for creating a tag
type TagOptions struct {
	Name    string
	Message string
	Sign    bool
}

// PushOptions represents options for pushing to a remote
type PushOptions struct {
	Remote string
	Branch bool
	Tag    string
}

// Commit is a parsed conventional commit
type Commit struct {
	ShortHash   string
	Type        string
	Scope       string
	Description string
	Breaking    bool
}
