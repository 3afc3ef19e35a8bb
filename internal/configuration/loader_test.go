package configuration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErr       bool
		errContains   string
		validate      func(*testing.T, *Options)
	}{
		{
			name:          "empty file keeps defaults",
			configContent: "",
			validate: func(t *testing.T, opts *Options) {
				if !opts.Commit.Enabled || !opts.Tag.Enabled || !opts.Push.Enabled {
					t.Errorf("expected commit, tag and push enabled by default")
				}
				if opts.Commit.Message != DefaultCommitMessage {
					t.Errorf("expected commit message '%s', got '%s'", DefaultCommitMessage, opts.Commit.Message)
				}
				if opts.Tag.Name != DefaultTagName {
					t.Errorf("expected tag name '%s', got '%s'", DefaultTagName, opts.Tag.Name)
				}
				if !opts.Confirm {
					t.Errorf("expected confirm to default to true")
				}
				if !filepath.IsAbs(opts.Cwd) {
					t.Errorf("expected absolute cwd, got '%s'", opts.Cwd)
				}
			},
		},
		{
			name: "files accept strings and mappings",
			configContent: `release: minor
files:
  - package.json
  - path: Cargo.toml
    strategy: toml
  - "!packages/internal/**"
`,
			validate: func(t *testing.T, opts *Options) {
				if opts.Release != "minor" {
					t.Errorf("expected release 'minor', got '%s'", opts.Release)
				}
				if len(opts.Files) != 3 {
					t.Fatalf("expected 3 files, got %d", len(opts.Files))
				}
				if opts.Files[0].Path != "package.json" || opts.Files[0].Strategy != StrategyAuto {
					t.Errorf("unexpected first file spec: %+v", opts.Files[0])
				}
				if opts.Files[1].Path != "Cargo.toml" || opts.Files[1].Strategy != StrategyTOML {
					t.Errorf("unexpected second file spec: %+v", opts.Files[1])
				}
				if opts.Files[2].Path != "!packages/internal/**" {
					t.Errorf("unexpected third file spec: %+v", opts.Files[2])
				}
			},
		},
		{
			name: "partial sections are completed",
			configContent: `commit:
  enabled: false
tag:
  enabled: true
  message: "release %s"
push:
  enabled: false
`,
			validate: func(t *testing.T, opts *Options) {
				if opts.Commit.Enabled {
					t.Errorf("expected commit disabled")
				}
				if opts.Commit.Message != DefaultCommitMessage {
					t.Errorf("expected default commit message, got '%s'", opts.Commit.Message)
				}
				if opts.Tag.Name != DefaultTagName {
					t.Errorf("expected default tag name, got '%s'", opts.Tag.Name)
				}
				if opts.Tag.Message != "release %s" {
					t.Errorf("expected tag message 'release %%s', got '%s'", opts.Tag.Message)
				}
				if opts.Push.Remote != DefaultRemote {
					t.Errorf("expected remote '%s', got '%s'", DefaultRemote, opts.Push.Remote)
				}
			},
		},
		{
			name: "replace rules",
			configContent: `replace:
  - pattern: 'VERSION = "(?P<version>[^"]+)"'
    files:
      - src/version.py
`,
			validate: func(t *testing.T, opts *Options) {
				if len(opts.Replace) != 1 {
					t.Fatalf("expected 1 replace rule, got %d", len(opts.Replace))
				}
				if len(opts.Replace[0].Files) != 1 || opts.Replace[0].Files[0] != "src/version.py" {
					t.Errorf("unexpected replace files: %v", opts.Replace[0].Files)
				}
			},
		},
		{
			name:          "unknown field is rejected",
			configContent: "releas: minor\n",
			wantErr:       true,
			errContains:   "field releas not found",
		},
		{
			name:          "malformed yaml",
			configContent: "files: [package.json\n",
			wantErr:       true,
			errContains:   "failed to parse configuration YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, DefaultConfigPath)
			if err := os.WriteFile(configPath, []byte(tt.configContent), 0644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}

			opts, err := LoadOptions(configPath, true)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing '%s', got '%v'", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, opts)
			}
		})
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yml")

	opts, err := LoadOptions(missing, false)
	if err != nil {
		t.Fatalf("expected defaults for missing optional file, got error: %v", err)
	}
	if opts.Commit.Message != DefaultCommitMessage {
		t.Errorf("expected default commit message, got '%s'", opts.Commit.Message)
	}

	if _, err := LoadOptions(missing, true); err == nil {
		t.Errorf("expected error for missing required file")
	}
}

func TestLoadOptionsFromDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{
		"10-base.yml":  "release: patch\npreid: alpha\n",
		"20-local.yml": "release: major\n",
		"notes.txt":    "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	opts, err := LoadOptions(tmpDir, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Release != "major" {
		t.Errorf("expected later file to win with release 'major', got '%s'", opts.Release)
	}
	if opts.Preid != "alpha" {
		t.Errorf("expected preid 'alpha' from first file, got '%s'", opts.Preid)
	}
}

func TestLoadOptionsEmptyDirectory(t *testing.T) {
	_, err := LoadOptions(t.TempDir(), true)
	if err == nil || !strings.Contains(err.Error(), "no .yml or .yaml files") {
		t.Errorf("expected empty directory error, got %v", err)
	}
}

func TestLoadOptionsSubstitutesEnvironment(t *testing.T) {
	t.Setenv("BUMPER_TEST_ACTOR", "release-bot")
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, DefaultConfigPath)
	content := `gitActor:
  name: ${BUMPER_TEST_ACTOR}
  email: bot@example.com
commit:
  enabled: true
  message: "chore(${BUMPER_TEST_ACTOR}): release %s"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	opts, err := LoadOptions(configPath, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.GitActor.Name != "release-bot" {
		t.Errorf("expected actor name 'release-bot', got '%s'", opts.GitActor.Name)
	}
	if opts.Commit.Message != "chore(release-bot): release %s" {
		t.Errorf("unexpected commit message '%s'", opts.Commit.Message)
	}
}

func TestPrimaryManifest(t *testing.T) {
	tests := []struct {
		name  string
		files []*FileSpec
		want  string
	}{
		{name: "no files", files: nil, want: "package.json"},
		{name: "first concrete file", files: Files("**/package.json", "!vendor/**", "./jsr.json", "Cargo.toml"), want: "jsr.json"},
		{name: "only globs", files: Files("packages/*/package.json"), want: "package.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{Files: tt.files}
			if got := opts.PrimaryManifest(); got != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestIsExcluded(t *testing.T) {
	opts := &Options{Files: Files("**/package.json", "!packages/private/**", "!docs/package.json")}

	tests := []struct {
		path string
		want bool
	}{
		{"package.json", false},
		{"packages/core/package.json", false},
		{"packages/private/package.json", true},
		{"packages/private/nested/package.json", true},
		{"docs/package.json", true},
	}

	for _, tt := range tests {
		if got := opts.IsExcluded(tt.path); got != tt.want {
			t.Errorf("IsExcluded(%s): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"package.json", "package.json", true},
		{"*.json", "jsr.json", true},
		{"*.json", "a/jsr.json", false},
		{"**/package.json", "package.json", true},
		{"**/package.json", "a/b/package.json", true},
		{"packages/**/*.toml", "packages/x/y/Cargo.toml", true},
		{"packages/**/*.toml", "other/Cargo.toml", false},
	}

	for _, tt := range tests {
		if got := MatchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("MatchPattern(%s, %s): expected %v, got %v", tt.pattern, tt.path, tt.want, got)
		}
	}
}
