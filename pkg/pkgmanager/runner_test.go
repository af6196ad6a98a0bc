package pkgmanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/component"
	"github.com/aetherengine/aether-cli/pkg/detect"
	"github.com/aetherengine/aether-cli/pkg/manifest"
)

// fakeRunner records invocations. An install populates node_modules the way a
// real package manager would.
type fakeRunner struct {
	calls  [][]string
	stderr string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, dir string, env []string, argv []string) ([]byte, error) {
	f.calls = append(f.calls, argv)
	if f.err != nil {
		return []byte(f.stderr), f.err
	}
	if len(argv) > 1 && argv[1] == "install" {
		pkgDir := filepath.Join(dir, detect.DependencyDir, "express")
		if err := os.MkdirAll(pkgDir, 0755); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func TestForKind(t *testing.T) {
	tests := []struct {
		kind        detect.Kind
		wantInstall string
		wantBuild   string
	}{
		{detect.KindNpm, "npm install --production", "npm run build"},
		{detect.KindYarn, "yarn install --production", "yarn run build"},
		{detect.KindPnpm, "pnpm install --prod", "pnpm run build"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			mgr, err := ForKind(tt.kind)
			if err != nil {
				t.Fatalf("ForKind failed: %v", err)
			}
			if mgr.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", mgr.Kind(), tt.kind)
			}
			if got := strings.Join(mgr.InstallCommand(), " "); got != tt.wantInstall {
				t.Errorf("InstallCommand() = %q, want %q", got, tt.wantInstall)
			}
			if got := strings.Join(mgr.BuildCommand("build"), " "); got != tt.wantBuild {
				t.Errorf("BuildCommand() = %q, want %q", got, tt.wantBuild)
			}
		})
	}

	if _, err := ForKind("bun"); err == nil {
		t.Error("expected error for unsupported manager")
	}
}

func TestEnsureDependenciesIdempotent(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRunner{}
	runner := NewRunner(fake, hclog.NewNullLogger())

	var notices []string
	runner.Notify = func(msg string) { notices = append(notices, msg) }

	if err := runner.EnsureDependencies(context.Background(), dir); err != nil {
		t.Fatalf("first EnsureDependencies failed: %v", err)
	}
	if err := runner.EnsureDependencies(context.Background(), dir); !errors.Is(err, component.ErrSkipped) {
		t.Fatalf("second EnsureDependencies should be skipped, got %v", err)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected exactly one subprocess invocation, got %d: %v", len(fake.calls), fake.calls)
	}
	if got := strings.Join(fake.calls[0], " "); got != "npm install --production" {
		t.Errorf("unexpected command %q", got)
	}

	last := notices[len(notices)-1]
	if !strings.Contains(last, "skipping") {
		t.Errorf("expected skip notice on second call, got %q", last)
	}
}

func TestEnsureDependenciesUsesLockFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pnpm-lock.yaml"), []byte("lockfileVersion: 6"), 0644); err != nil {
		t.Fatalf("Failed to write lock file: %v", err)
	}
	fake := &fakeRunner{}

	if err := NewRunner(fake, nil).EnsureDependencies(context.Background(), dir); err != nil {
		t.Fatalf("EnsureDependencies failed: %v", err)
	}
	if got := strings.Join(fake.calls[0], " "); got != "pnpm install --prod" {
		t.Errorf("unexpected command %q", got)
	}
}

func TestEnsureDependenciesFailure(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRunner{err: errors.New("exit status 1"), stderr: "npm ERR! 404 Not Found"}

	err := NewRunner(fake, nil).EnsureDependencies(context.Background(), dir)
	if !errors.Is(err, ErrDependencyInstallFailed) {
		t.Fatalf("expected ErrDependencyInstallFailed, got %v", err)
	}
	if errors.Is(err, ErrBuildScriptFailed) {
		t.Error("install failure must not match ErrBuildScriptFailed")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T", err)
	}
	if cmdErr.Stderr != "npm ERR! 404 Not Found" {
		t.Errorf("Stderr = %q", cmdErr.Stderr)
	}
	if !strings.Contains(err.Error(), "npm ERR! 404") {
		t.Errorf("error message should include stderr: %v", err)
	}
}

func TestRunBuildScript(t *testing.T) {
	tests := []struct {
		name      string
		scripts   map[string]string
		preferred string
		lockFile  string
		wantCmd   string
	}{
		{name: "build with npm", scripts: map[string]string{"build": "tsc"}, wantCmd: "npm run build"},
		{name: "compile with yarn", scripts: map[string]string{"compile": "babel src"}, lockFile: "yarn.lock", wantCmd: "yarn run compile"},
		{name: "prepare with pnpm", scripts: map[string]string{"prepare": "husky"}, lockFile: "pnpm-lock.yaml", wantCmd: "pnpm run prepare"},
		{name: "preferred script", scripts: map[string]string{"build": "tsc", "bundle": "esbuild"}, preferred: "bundle", wantCmd: "npm run bundle"},
		{name: "no script", scripts: map[string]string{"start": "node ."}, wantCmd: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.lockFile != "" {
				if err := os.WriteFile(filepath.Join(dir, tt.lockFile), []byte(""), 0644); err != nil {
					t.Fatalf("Failed to write lock file: %v", err)
				}
			}

			fake := &fakeRunner{}
			runner := NewRunner(fake, nil)
			runner.Script = tt.preferred

			m := &manifest.Manifest{Name: "demo", Scripts: tt.scripts}
			err := runner.RunBuildScript(context.Background(), dir, m)

			if tt.wantCmd == "" {
				if !errors.Is(err, component.ErrSkipped) {
					t.Errorf("expected ErrSkipped, got %v", err)
				}
				if len(fake.calls) != 0 {
					t.Errorf("expected no subprocess, got %v", fake.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("RunBuildScript failed: %v", err)
			}
			if len(fake.calls) != 1 {
				t.Fatalf("expected one subprocess, got %d", len(fake.calls))
			}
			if got := strings.Join(fake.calls[0], " "); got != tt.wantCmd {
				t.Errorf("command = %q, want %q", got, tt.wantCmd)
			}
		})
	}
}

func TestRunBuildScriptFailure(t *testing.T) {
	fake := &fakeRunner{err: errors.New("exit status 2"), stderr: "TS2304: Cannot find name 'foo'"}
	m := &manifest.Manifest{Name: "demo", Scripts: map[string]string{"build": "tsc"}}

	err := NewRunner(fake, nil).RunBuildScript(context.Background(), t.TempDir(), m)
	if !errors.Is(err, ErrBuildScriptFailed) {
		t.Fatalf("expected ErrBuildScriptFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "TS2304") {
		t.Errorf("error should carry stderr: %v", err)
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh available")
	}

	var live strings.Builder
	r := &ExecRunner{Stderr: &live}

	stderr, err := r.Run(context.Background(), t.TempDir(), []string{"AETHER_TEST=1"},
		[]string{"/bin/sh", "-c", "echo \"$AETHER_TEST\" >&2; exit 3"})
	if err == nil {
		t.Fatal("expected non-zero exit error")
	}
	if strings.TrimSpace(string(stderr)) != "1" {
		t.Errorf("captured stderr = %q, want %q", stderr, "1")
	}
	if strings.TrimSpace(live.String()) != "1" {
		t.Errorf("live stderr = %q, want %q", live.String(), "1")
	}
}
