package pkgmanager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/component"
	"github.com/aetherengine/aether-cli/pkg/detect"
	"github.com/aetherengine/aether-cli/pkg/manifest"
)

var (
	// ErrDependencyInstallFailed is matched by install failures.
	ErrDependencyInstallFailed = errors.New("dependency install failed")

	// ErrBuildScriptFailed is matched by build script failures.
	ErrBuildScriptFailed = errors.New("build script failed")
)

// CommandError reports a package manager subprocess that exited unsuccessfully.
type CommandError struct {
	Op      string // "install" or "build"
	Dir     string
	Command []string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed: `%s` in %s: %v", e.Op, strings.Join(e.Command, " "), e.Dir, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is maps the operation onto the exported sentinels.
func (e *CommandError) Is(target error) bool {
	switch target {
	case ErrDependencyInstallFailed:
		return e.Op == "install"
	case ErrBuildScriptFailed:
		return e.Op == "build"
	}
	return false
}

// CommandRunner executes one subprocess and returns its captured stderr.
type CommandRunner interface {
	Run(ctx context.Context, dir string, env []string, argv []string) (stderr []byte, err error)
}

// ExecRunner runs commands with os/exec. Stdout and Stderr, when set, receive
// a live copy of the subprocess output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, dir string, env []string, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	logger := hclog.FromContext(ctx)
	logger.Debug("executing package manager", "dir", dir, "args", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
	}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	err := cmd.Run()

	if flusher, ok := r.Stdout.(interface{ Flush() error }); ok {
		flusher.Flush()
	}
	if flusher, ok := r.Stderr.(interface{ Flush() error }); ok {
		flusher.Flush()
	}

	if stdout.Len() > 0 {
		logger.Trace("package manager stdout", "output", stdout.String())
	}

	return stderr.Bytes(), err
}

// Runner is the build stage: it ensures dependencies are installed and runs
// the project's build script. It keeps no state between calls.
type Runner struct {
	exec   CommandRunner
	logger hclog.Logger

	// Script is the preferred build script; see manifest.BuildScript.
	Script string

	// Env is appended to the subprocess environment.
	Env []string

	// Timeout bounds each subprocess when non-zero.
	Timeout time.Duration

	// Notify receives user-facing progress notices.
	Notify func(msg string)
}

// NewRunner creates a Runner. A nil runner uses ExecRunner.
func NewRunner(runner CommandRunner, logger hclog.Logger) *Runner {
	if runner == nil {
		runner = &ExecRunner{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{exec: runner, logger: logger}
}

// Configure sets the preferred build script and the extra subprocess
// environment, typically taken from aether.hcl.
func (r *Runner) Configure(script string, env []string) {
	r.Script = script
	r.Env = env
}

func (r *Runner) notify(msg string) {
	r.logger.Info(msg)
	if r.Notify != nil {
		r.Notify(msg)
	}
}

// EnsureDependencies installs production dependencies unless node_modules is
// already present and non-empty, in which case it runs nothing and returns
// component.ErrSkipped.
func (r *Runner) EnsureDependencies(ctx context.Context, projectDir string) error {
	if detect.DependenciesInstalled(projectDir) {
		r.notify("node_modules already present, skipping dependency install")
		return fmt.Errorf("node_modules already present: %w", component.ErrSkipped)
	}

	detection := detect.DetectPackageManager(projectDir)
	mgr, err := ForKind(detection.Manager)
	if err != nil {
		return err
	}
	r.logger.Debug("selected package manager", "manager", mgr.Kind(), "reason", detection.Reason)
	r.notify(fmt.Sprintf("Installing dependencies with %s", mgr.Kind()))

	return r.run(ctx, "install", projectDir, mgr.InstallCommand())
}

// RunBuildScript runs the first defined build script. A project without one
// gets component.ErrSkipped.
func (r *Runner) RunBuildScript(ctx context.Context, projectDir string, m *manifest.Manifest) error {
	script := m.BuildScript(r.Script)
	if script == "" {
		r.notify("No build script defined, skipping build")
		return fmt.Errorf("no build script defined: %w", component.ErrSkipped)
	}

	mgr := Detect(projectDir)
	r.notify(fmt.Sprintf("Running %s script with %s", script, mgr.Kind()))

	return r.run(ctx, "build", projectDir, mgr.BuildCommand(script))
}

func (r *Runner) run(ctx context.Context, op, dir string, argv []string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	ctx = hclog.WithContext(ctx, r.logger)

	start := time.Now()
	stderr, err := r.exec.Run(ctx, dir, r.Env, argv)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", r.Timeout, err)
		}
		r.logger.Error("package manager command failed", "op", op, "args", argv, "error", err)
		return &CommandError{Op: op, Dir: dir, Command: argv, Stderr: string(stderr), Err: err}
	}

	r.logger.Debug("package manager command completed", "op", op, "duration", time.Since(start))
	return nil
}
