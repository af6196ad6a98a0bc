package detect

import (
	"os"
	"path/filepath"
)

// Kind names a supported Node package manager
type Kind string

const (
	KindNpm  Kind = "npm"
	KindYarn Kind = "yarn"
	KindPnpm Kind = "pnpm"
)

// DependencyDir is the dependency cache directory every supported manager installs into
const DependencyDir = "node_modules"

// lockFiles lists lock files in detection precedence order; first match wins
var lockFiles = []struct {
	file string
	kind Kind
}{
	{"yarn.lock", KindYarn},
	{"pnpm-lock.yaml", KindPnpm},
	{"package-lock.json", KindNpm},
}

// DetectionResult contains the result of project detection
type DetectionResult struct {
	Manager Kind     // Selected package manager
	Reason  string   // Why this manager was selected
	Signals []string // Lock files that were found, in precedence order
}

// DetectPackageManager analyzes the project directory and returns the package manager to use
// Priority:
// 1. yarn.lock → yarn
// 2. pnpm-lock.yaml → pnpm
// 3. otherwise → npm (with or without package-lock.json)
func DetectPackageManager(rootDir string) *DetectionResult {
	result := &DetectionResult{
		Manager: KindNpm,
		Reason:  "no lock file found - defaulting to npm",
		Signals: []string{},
	}

	matched := false
	for _, lf := range lockFiles {
		if !fileExists(filepath.Join(rootDir, lf.file)) {
			continue
		}
		result.Signals = append(result.Signals, lf.file)
		if !matched {
			result.Manager = lf.kind
			result.Reason = lf.file + " found"
			matched = true
		}
	}

	if len(result.Signals) > 1 {
		result.Reason += " (multiple lock files present, using first by precedence)"
	}

	return result
}

// LockFiles returns every lock file name the detector knows about
func LockFiles() []string {
	names := make([]string, 0, len(lockFiles))
	for _, lf := range lockFiles {
		names = append(names, lf.file)
	}
	return names
}

// DependenciesInstalled reports whether the dependency directory exists and is non-empty
func DependenciesInstalled(rootDir string) bool {
	entries, err := os.ReadDir(filepath.Join(rootDir, DependencyDir))
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// dirExists checks if a directory exists
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ProjectSignals returns the conventional project files present in rootDir (for logging)
func ProjectSignals(rootDir string) []string {
	var signals []string

	for _, f := range []string{"package.json", "tsconfig.json", ".nvmrc", "aether.hcl"} {
		if fileExists(filepath.Join(rootDir, f)) {
			signals = append(signals, f)
		}
	}
	if dirExists(filepath.Join(rootDir, DependencyDir)) {
		signals = append(signals, DependencyDir+"/")
	}

	return signals
}
