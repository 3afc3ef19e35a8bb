package configuration

import (
	"strings"
	"testing"
)

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Options)
		wantValid     bool
		wantField     string
		wantContained string
	}{
		{
			name:      "defaults are valid",
			mutate:    func(o *Options) {},
			wantValid: true,
		},
		{
			name:      "release keyword",
			mutate:    func(o *Options) { o.Release = "premajor" },
			wantValid: true,
		},
		{
			name:      "explicit version",
			mutate:    func(o *Options) { o.Release = "2.0.0-rc.1" },
			wantValid: true,
		},
		{
			name:      "invalid release",
			mutate:    func(o *Options) { o.Release = "huge" },
			wantField: "release",
		},
		{
			name:      "invalid preid",
			mutate:    func(o *Options) { o.Preid = "beta.1" },
			wantField: "preid",
		},
		{
			name:      "invalid current version",
			mutate:    func(o *Options) { o.CurrentVersion = "1.2" },
			wantField: "currentVersion",
		},
		{
			name:      "empty file path",
			mutate:    func(o *Options) { o.Files = Files("package.json", "!") },
			wantField: "files[1].path",
		},
		{
			name: "unknown strategy",
			mutate: func(o *Options) {
				o.Files = []*FileSpec{{Path: "version.ini", Strategy: "ini"}}
			},
			wantField: "files[0].strategy",
		},
		{
			name: "exclusion with strategy",
			mutate: func(o *Options) {
				o.Files = []*FileSpec{{Path: "!Cargo.toml", Strategy: StrategyTOML}}
			},
			wantField: "files[0].strategy",
		},
		{
			name: "replace rule with version group",
			mutate: func(o *Options) {
				o.Replace = []*ReplaceRule{{Pattern: `VERSION = "(?P<version>[^"]+)"`}}
			},
			wantValid: true,
		},
		{
			name: "replace rule with current token and replacement",
			mutate: func(o *Options) {
				o.Replace = []*ReplaceRule{{Pattern: `image:{current}`, Replacement: "image:{version}"}}
			},
			wantValid: true,
		},
		{
			name: "replace rule without group or replacement",
			mutate: func(o *Options) {
				o.Replace = []*ReplaceRule{{Pattern: `VERSION = ".*"`}}
			},
			wantField:     "replace[0].pattern",
			wantContained: "named group",
		},
		{
			name: "replace rule does not compile",
			mutate: func(o *Options) {
				o.Replace = []*ReplaceRule{{Pattern: `(?P<version>[`}}
			},
			wantField:     "replace[0].pattern",
			wantContained: "invalid regular expression",
		},
		{
			name:      "empty commit message",
			mutate:    func(o *Options) { o.Commit.Message = " " },
			wantField: "commit.message",
		},
		{
			name:      "disabled commit ignores message",
			mutate:    func(o *Options) { o.Commit.Enabled = false; o.Commit.Message = "" },
			wantValid: true,
		},
		{
			name:      "tag name with space",
			mutate:    func(o *Options) { o.Tag.Name = "release %s" },
			wantField: "tag.name",
		},
		{
			name: "push without commit or tag",
			mutate: func(o *Options) {
				o.Commit.Enabled = false
				o.Tag.Enabled = false
			},
			wantField: "push.enabled",
		},
		{
			name:      "unbalanced execute quote",
			mutate:    func(o *Options) { o.Execute = `sh -c "echo` },
			wantField: "execute",
		},
		{
			name:      "hook name with whitespace",
			mutate:    func(o *Options) { o.Hooks.Version = "run build" },
			wantField: "hooks.version",
		},
		{
			name:      "half git actor",
			mutate:    func(o *Options) { o.GitActor = &GitActor{Name: "bot"} },
			wantField: "gitActor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(opts)

			result := ValidateOptions(opts)
			if result.Valid != tt.wantValid {
				t.Fatalf("expected valid=%v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if tt.wantValid {
				return
			}

			found := false
			for _, e := range result.Errors {
				if e.Field == tt.wantField && strings.Contains(e.Message, tt.wantContained) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field '%s', got %v", tt.wantField, result.Errors)
			}
		})
	}
}

func TestReplaceRuleCompile(t *testing.T) {
	rule := &ReplaceRule{Pattern: `v{current}\b`}
	re, err := rule.Compile("1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !re.MatchString("tag v1.2.3 here") {
		t.Errorf("expected pattern to match the current version")
	}
	if re.MatchString("tag v1x2x3 here") {
		t.Errorf("expected dots in the current version to be quoted")
	}
}

func TestReplaceRuleAppliesTo(t *testing.T) {
	scoped := &ReplaceRule{Pattern: "x", Files: []string{"src/**/*.go"}}
	if !scoped.AppliesTo("src/pkg/version.go") {
		t.Errorf("expected rule to apply to src/pkg/version.go")
	}
	if scoped.AppliesTo("README.md") {
		t.Errorf("expected rule not to apply to README.md")
	}

	global := &ReplaceRule{Pattern: "x"}
	if !global.AppliesTo("anything.txt") {
		t.Errorf("expected unscoped rule to apply everywhere")
	}
}
