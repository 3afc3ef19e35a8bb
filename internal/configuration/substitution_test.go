package configuration

import (
	"errors"
	"strings"
	"testing"
)

func TestGetYAMLValue(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]interface{}
		path      string
		want      interface{}
		wantError bool
	}{
		{
			name: "top-level access",
			data: map[string]interface{}{"token": "secret123"},
			path: "token",
			want: "secret123",
		},
		{
			name: "nested access",
			data: map[string]interface{}{
				"git": map[string]interface{}{"email": "bot@example.com"},
			},
			path: "git.email",
			want: "bot@example.com",
		},
		{
			name: "interface keyed map",
			data: map[string]interface{}{
				"git": map[interface{}]interface{}{"name": "bot"},
			},
			path: "git.name",
			want: "bot",
		},
		{
			name:      "missing key",
			data:      map[string]interface{}{"token": "x"},
			path:      "password",
			wantError: true,
		},
		{
			name:      "traverse into scalar",
			data:      map[string]interface{}{"token": "x"},
			path:      "token.value",
			wantError: true,
		},
		{
			name:      "empty segment",
			data:      map[string]interface{}{"token": "x"},
			path:      "token..value",
			wantError: true,
		},
		{
			name:      "empty path",
			data:      map[string]interface{}{},
			path:      "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetYAMLValue(tt.data, tt.path)
			if tt.wantError {
				if err == nil {
					t.Errorf("expected error, got value %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func newTestSubstitutionContext(files map[string]map[string]interface{}, calls *int) *SubstitutionContext {
	ctx := NewSubstitutionContext()
	ctx.decrypt = func(filePath string) (map[string]interface{}, error) {
		*calls++
		data, ok := files[filePath]
		if !ok {
			return nil, errors.New("file does not exist")
		}
		return data, nil
	}
	return ctx
}

func TestSubstituteVariables(t *testing.T) {
	t.Setenv("BUMPER_TEST_REMOTE", "upstream")
	t.Setenv("BUMPER_TEST_EMPTY", "")

	calls := 0
	ctx := newTestSubstitutionContext(map[string]map[string]interface{}{
		"secrets.enc.yml": {
			"git": map[string]interface{}{"email": "bot@example.com"},
		},
	}, &calls)

	tests := []struct {
		name        string
		input       string
		want        string
		errContains string
	}{
		{name: "plain text", input: "chore: release v%s", want: "chore: release v%s"},
		{name: "version placeholder untouched", input: "release {version}", want: "release {version}"},
		{name: "environment variable", input: "${BUMPER_TEST_REMOTE}", want: "upstream"},
		{name: "mixed", input: "push to ${BUMPER_TEST_REMOTE} as %s", want: "push to upstream as %s"},
		{name: "sops reference", input: "${SOPS[secrets.enc.yml].git.email}", want: "bot@example.com"},
		{name: "missing variable", input: "${BUMPER_TEST_MISSING}", errContains: "BUMPER_TEST_MISSING is not set"},
		{name: "empty variable", input: "${BUMPER_TEST_EMPTY}", errContains: "BUMPER_TEST_EMPTY is not set"},
		{name: "sops without path", input: "${SOPS[secrets.enc.yml]}", errContains: "must include a YAML path"},
		{name: "sops missing bracket", input: "${SOPS[secrets.enc.yml.git}", errContains: "missing ]"},
		{name: "sops missing file", input: "${SOPS[other.yml].a}", errContains: "failed to load SOPS file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctx.SubstituteVariables(tt.input)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing '%s', got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestSOPSFileIsCached(t *testing.T) {
	calls := 0
	ctx := newTestSubstitutionContext(map[string]map[string]interface{}{
		"secrets.enc.yml": {"name": "bot", "email": "bot@example.com"},
	}, &calls)

	for _, input := range []string{"${SOPS[secrets.enc.yml].name}", "${SOPS[secrets.enc.yml].email}"} {
		if _, err := ctx.SubstituteVariables(input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 decrypt call, got %d", calls)
	}
}

func TestSubstituteInOptions(t *testing.T) {
	t.Setenv("BUMPER_TEST_PM", "pnpm")

	opts := DefaultOptions()
	opts.Execute = "${BUMPER_TEST_PM} run build"
	opts.Tag.Message = "${BUMPER_TEST_PM} release %s"

	if err := NewSubstitutionContext().SubstituteInOptions(opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Execute != "pnpm run build" {
		t.Errorf("expected execute 'pnpm run build', got '%s'", opts.Execute)
	}
	if opts.Tag.Message != "pnpm release %s" {
		t.Errorf("unexpected tag message '%s'", opts.Tag.Message)
	}
	if opts.Commit.Message != DefaultCommitMessage {
		t.Errorf("expected commit message untouched, got '%s'", opts.Commit.Message)
	}

	opts.Push.Remote = "${BUMPER_TEST_UNSET_REMOTE}"
	err := NewSubstitutionContext().SubstituteInOptions(opts)
	if err == nil || !strings.Contains(err.Error(), "push.remote") {
		t.Errorf("expected error naming push.remote, got %v", err)
	}
}
