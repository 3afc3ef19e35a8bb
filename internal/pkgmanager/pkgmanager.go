package pkgmanager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mxcd/bumper/internal/runner"
	"github.com/rs/zerolog/log"
)

// Manager is a JavaScript package manager
type Manager struct {
	Name      string
	Lockfiles []string
}

// Managers in detection priority order
var (
	Bun  = Manager{Name: "bun", Lockfiles: []string{"bun.lockb", "bun.lock"}}
	Pnpm = Manager{Name: "pnpm", Lockfiles: []string{"pnpm-lock.yaml"}}
	Yarn = Manager{Name: "yarn", Lockfiles: []string{"yarn.lock"}}
	Npm  = Manager{Name: "npm", Lockfiles: []string{"package-lock.json", "npm-shrinkwrap.json"}}

	Managers = []Manager{Bun, Pnpm, Yarn, Npm}
)

// ErrNotDetected is returned when no package manager can be determined
var ErrNotDetected = errors.New("could not detect package manager")

// Detector resolves the package manager commands of a project
type Detector interface {
	InstallCommand(root string) (runner.Command, error)
	RunScriptCommand(root, script string) (runner.Command, error)
}

// LockfileDetector detects the package manager from lockfiles, then the
// packageManager field of package.json, and falls back to npm when a
// package.json exists
type LockfileDetector struct{}

func NewLockfileDetector() *LockfileDetector {
	return &LockfileDetector{}
}

// Detect returns the package manager used in root
func (d *LockfileDetector) Detect(root string) (Manager, error) {
	for _, manager := range Managers {
		for _, lockfile := range manager.Lockfiles {
			if fileExists(filepath.Join(root, lockfile)) {
				log.Debug().Str("manager", manager.Name).Str("lockfile", lockfile).Msg("Detected package manager")
				return manager, nil
			}
		}
	}

	manifest, err := ReadManifest(filepath.Join(root, "package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manager{}, ErrNotDetected
		}
		return Manager{}, err
	}

	if manifest.PackageManager != "" {
		name, _, _ := strings.Cut(manifest.PackageManager, "@")
		for _, manager := range Managers {
			if manager.Name == name {
				log.Debug().Str("manager", name).Msg("Detected package manager from package.json")
				return manager, nil
			}
		}
	}

	return Npm, nil
}

// InstallCommand returns the dependency install command for root
func (d *LockfileDetector) InstallCommand(root string) (runner.Command, error) {
	manager, err := d.Detect(root)
	if err != nil {
		return runner.Command{}, err
	}
	return runner.Command{Name: manager.Name, Args: []string{"install"}, Dir: root, Interactive: true}, nil
}

// RunScriptCommand returns the command running a package script in root
func (d *LockfileDetector) RunScriptCommand(root, script string) (runner.Command, error) {
	manager, err := d.Detect(root)
	if err != nil {
		return runner.Command{}, err
	}
	args := []string{"run", script}
	if manager.Name == Npm.Name {
		args = append(args, "--silent")
	}
	return runner.Command{Name: manager.Name, Args: args, Dir: root, Interactive: true}, nil
}

// Manifest holds the package.json fields used for scripts and detection
type Manifest struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	PackageManager string            `json:"packageManager"`
	Scripts        map[string]string `json:"scripts"`
}

// ReadManifest decodes a package.json
func ReadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	manifest := &Manifest{}
	if err := json.Unmarshal(content, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return manifest, nil
}

// HasScript reports whether the manifest declares a non-empty script
func (m *Manifest) HasScript(name string) bool {
	return strings.TrimSpace(m.Scripts[name]) != ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
