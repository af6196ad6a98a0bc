// Package pipeline drives a deploy through validate, resolve, install, build,
// package, upload and register, in that order, and owns the temporary
// artifact for the duration of the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/internal/config"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
	"github.com/aetherengine/aether-cli/pkg/component"
	"github.com/aetherengine/aether-cli/pkg/deployment"
	"github.com/aetherengine/aether-cli/pkg/manifest"
)

// Components are the stage implementations an Executor drives
type Components struct {
	Auth      component.Authenticator
	Builder   component.Builder
	Packager  component.Packager
	Uploader  component.Uploader
	Registrar component.Registrar
}

// Executor runs deploys
type Executor struct {
	components Components
	listeners  []Listener
	logger     hclog.Logger
}

// NewExecutor creates a new pipeline executor
func NewExecutor(components Components, logger hclog.Logger) *Executor {
	if logger == nil {
		logger = hclog.Default()
	}

	return &Executor{
		components: components,
		logger:     logger.Named("pipeline"),
	}
}

// AddListener registers a listener for stage events
func (e *Executor) AddListener(l Listener) {
	if l != nil {
		e.listeners = append(e.listeners, l)
	}
}

// Execute runs one deploy. The returned Result is never nil. A declined
// redeploy returns a nil error with Result.Declined set. Any stage failure is
// returned as a *StageError and leaves Result.State at StateFailed. The
// artifact, once created, is removed before Execute returns on every path.
func (e *Executor) Execute(ctx context.Context, opts Options) (res *Result, err error) {
	res = &Result{State: StateInit, StartedAt: time.Now()}
	defer func() {
		res.Duration = time.Since(res.StartedAt)
	}()

	if e.components.Auth != nil && !e.components.Auth.IsAuthenticated() {
		res.State = StateFailed
		return res, api.ErrNotAuthenticated
	}

	defer e.cleanup(res)

	e.logger.Info("starting deploy", "path", opts.Path)

	if err := e.run(res, StageValidate, StateValidated, func() error {
		return e.validate(res, opts)
	}); err != nil {
		return res, err
	}

	proceed := true
	if err := e.run(res, StageResolve, StateValidated, func() error {
		var err error
		proceed, err = e.resolve(ctx, res, opts)
		return err
	}); err != nil {
		return res, err
	}
	if !proceed {
		res.Declined = true
		e.logger.Info("redeploy declined", "app", res.AppName)
		return res, nil
	}

	if err := e.run(res, StageInstall, StateDependenciesReady, func() error {
		return e.components.Builder.EnsureDependencies(ctx, res.ProjectDir)
	}); err != nil {
		return res, err
	}

	if err := e.run(res, StageBuild, StateBuilt, func() error {
		return e.components.Builder.RunBuildScript(ctx, res.ProjectDir, res.Manifest)
	}); err != nil {
		return res, err
	}

	if err := e.run(res, StagePackage, StatePackaged, func() error {
		dest := opts.ArtifactPath
		if dest == "" {
			dest = artifact.DefaultPath(res.AppName)
		}
		art, err := e.components.Packager.Pack(res.ProjectDir, res.Manifest, dest)
		if err != nil {
			return err
		}
		res.Artifact = art
		return nil
	}); err != nil {
		return res, err
	}

	if err := e.run(res, StageUpload, StateUploaded, func() error {
		return e.upload(ctx, res)
	}); err != nil {
		return res, err
	}

	if err := e.run(res, StageRegister, StateRegistered, func() error {
		dep, err := e.components.Registrar.RegisterDeployment(ctx, res.Target.AppID, res.Version, res.Upload.StorageURL)
		if err != nil {
			return err
		}
		res.Deployment = dep
		return nil
	}); err != nil {
		return res, err
	}

	res.State = StateDone
	e.logger.Info("deploy completed", "app", res.AppName, "version", res.Version, "deployment", res.Deployment.ID)
	return res, nil
}

// run executes one stage and moves res to next when it succeeds
func (e *Executor) run(res *Result, stage Stage, next State, fn func() error) error {
	e.emit(res, Event{Stage: stage, Status: StatusStarted, State: res.State})
	e.logger.Debug("stage started", "stage", stage)

	start := time.Now()
	err := fn()
	if errors.Is(err, component.ErrSkipped) {
		res.State = next
		e.logger.Debug("stage skipped", "stage", stage, "reason", err)
		e.emit(res, Event{Stage: stage, Status: StatusSkipped, State: res.State, Message: strings.TrimSuffix(err.Error(), ": "+component.ErrSkipped.Error())})
		return nil
	}
	if err != nil {
		res.State = StateFailed
		res.FailedStage = stage
		e.logger.Error("stage failed", "stage", stage, "error", err)
		e.emit(res, Event{Stage: stage, Status: StatusFailed, State: res.State, Err: err})
		return &StageError{Stage: stage, Err: err}
	}

	res.State = next
	e.logger.Debug("stage completed", "stage", stage, "duration", time.Since(start))
	e.emit(res, Event{Stage: stage, Status: StatusSucceeded, State: res.State})
	return nil
}

func (e *Executor) emit(res *Result, ev Event) {
	ev.App = res.AppName
	ev.Version = res.Version
	for _, l := range e.listeners {
		l(ev)
	}
}

// validate reads package.json and aether.hcl and settles name, runtime and
// version. It never runs a subprocess or touches the network.
func (e *Executor) validate(res *Result, opts Options) error {
	dir, err := projectDir(opts.Path)
	if err != nil {
		return err
	}
	res.ProjectDir = dir

	m, err := manifest.Read(dir)
	if err != nil {
		return err
	}
	res.Manifest = m
	res.Version = m.Version

	project, err := config.Load(dir)
	if err != nil {
		return err
	}
	res.Project = project

	res.AppName = firstNonEmpty(opts.Name, projectField(project, func(p *config.ProjectConfig) string { return p.Name }), m.Name)
	res.Runtime = firstNonEmpty(opts.Runtime, projectField(project, func(p *config.ProjectConfig) string { return p.Runtime }), m.Runtime())

	if err := manifest.ValidateName(res.AppName); err != nil {
		return err
	}

	if project != nil && e.components.Builder != nil {
		e.components.Builder.Configure(project.BuildScript, project.EnvList())
	}

	e.logger.Info("project validated", "app", res.AppName, "version", res.Version, "runtime", res.Runtime)
	return nil
}

// resolve looks the application up and asks for confirmation when it already
// exists. It reports false when the operator declined.
func (e *Executor) resolve(ctx context.Context, res *Result, opts Options) (bool, error) {
	res.Target = deployment.Target{Name: res.AppName, Runtime: res.Runtime}

	app, err := e.components.Registrar.ResolveApplication(ctx, res.AppName)
	if err != nil {
		return false, err
	}
	if app == nil {
		e.logger.Debug("application does not exist yet", "app", res.AppName)
		return true, nil
	}
	res.Target.AppID = app.ID

	force := opts.Force || (res.Project != nil && res.Project.Force)
	if force {
		e.logger.Debug("redeploying without confirmation", "app", res.AppName)
		return true, nil
	}
	if opts.Confirm == nil {
		e.logger.Warn("application already exists and no confirmation is possible, use --force", "app", res.AppName)
		return false, nil
	}

	ok, err := opts.Confirm(app)
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}

// upload creates the application if needed and stores the artifact
func (e *Executor) upload(ctx context.Context, res *Result) error {
	target, err := e.components.Registrar.EnsureApplication(ctx, res.Target)
	if err != nil {
		return err
	}
	res.Target = target

	result, err := e.components.Uploader.Upload(ctx, res.Artifact, target.AppID, res.Version)
	if err != nil {
		return err
	}
	res.Upload = result
	return nil
}

// cleanup removes the artifact. Failures are logged and never change the
// outcome of the run.
func (e *Executor) cleanup(res *Result) {
	if res.Artifact == nil || res.Artifact.Path == "" {
		return
	}
	if err := os.Remove(res.Artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("failed to remove artifact", "path", res.Artifact.Path, "error", err)
		return
	}
	e.logger.Debug("artifact removed", "path", res.Artifact.Path)
}

func projectDir(path string) (string, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve project path %s: %w", path, err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := manifest.FindProjectRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

func projectField(p *config.ProjectConfig, get func(*config.ProjectConfig) string) string {
	if p == nil {
		return ""
	}
	return get(p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
