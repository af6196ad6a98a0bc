package main

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/internal/pipeline"
	"github.com/aetherengine/aether-cli/pkg/nats"
	"github.com/aetherengine/aether-cli/pkg/pkgmanager"
)

var stageStates = map[pipeline.Status]nats.StageState{
	pipeline.StatusStarted:   nats.StageStarted,
	pipeline.StatusSucceeded: nats.StageSucceeded,
	pipeline.StatusSkipped:   nats.StageSkipped,
	pipeline.StatusFailed:    nats.StageFailed,
}

func stageEvent(ev pipeline.Event, at time.Time) nats.StageEvent {
	out := nats.StageEvent{
		App:     ev.App,
		Version: ev.Version,
		Stage:   string(ev.Stage),
		State:   stageStates[ev.Status],
		At:      at,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

// deploymentEvent builds the terminal event for one run. It reports false
// when the run was declined and nothing should be published.
func deploymentEvent(res *pipeline.Result, err error, at time.Time) (nats.DeploymentEventPayload, bool) {
	if res == nil || res.Declined {
		return nats.DeploymentEventPayload{}, false
	}

	out := nats.DeploymentEventPayload{
		App:     res.AppName,
		Version: res.Version,
		At:      at,
	}
	if res.Target.AppID != uuid.Nil {
		out.AppID = res.Target.AppID.String()
	}
	if res.Upload != nil {
		out.ArtifactURL = res.Upload.StorageURL
	}
	if res.Deployment != nil {
		out.DeploymentID = res.Deployment.ID.String()
	}

	if err != nil {
		out.Error = err.Error()
		var se *pipeline.StageError
		if errors.As(err, &se) {
			out.FailedStage = string(se.Stage)
			out.Error = se.Err.Error()
		}
	}
	return out, true
}

// eventPublisher mirrors a deploy onto NATS. Every publish failure is logged
// and swallowed.
type eventPublisher struct {
	client *nats.Client
	exec   *pkgmanager.ExecRunner
	logger hclog.Logger

	stdout *nats.LogWriter
	stderr *nats.LogWriter
}

func newEventPublisher(client *nats.Client, exec *pkgmanager.ExecRunner, logger hclog.Logger) *eventPublisher {
	return &eventPublisher{client: client, exec: exec, logger: logger.Named("events")}
}

// listener publishes stage events. Once the app name is settled it attaches
// build log writers to the subprocess runner; the listener runs on the
// pipeline goroutine, so this happens before the install stage starts.
func (p *eventPublisher) listener(ev pipeline.Event) {
	if err := p.client.PublishStage(stageEvent(ev, time.Now())); err != nil {
		p.logger.Warn("failed to publish stage event", "stage", ev.Stage, "error", err)
	}

	switch {
	case ev.Stage == pipeline.StageValidate && ev.Status == pipeline.StatusSucceeded:
		p.stdout = nats.NewLogWriter(p.client, ev.App, "stdout", p.logger)
		p.stderr = nats.NewLogWriter(p.client, ev.App, "stderr", p.logger)
		p.exec.Stdout = p.stdout
		p.exec.Stderr = p.stderr
	case ev.Stage == pipeline.StageBuild && ev.Status == pipeline.StatusStarted && p.stdout != nil:
		p.stdout.SetPhase("build")
		p.stderr.SetPhase("build")
	}
}

// finish publishes the terminal events and closes the connection
func (p *eventPublisher) finish(res *pipeline.Result, err error) {
	defer func() {
		if cerr := p.client.Close(); cerr != nil {
			p.logger.Debug("failed to close NATS connection", "error", cerr)
		}
	}()

	status := "success"
	if err != nil {
		status = "failed"
	}
	for _, w := range []*nats.LogWriter{p.stdout, p.stderr} {
		if w == nil {
			continue
		}
		if werr := w.Close(status); werr != nil {
			p.logger.Warn("failed to publish build log end", "error", werr)
		}
	}

	payload, ok := deploymentEvent(res, err, time.Now())
	if !ok {
		return
	}

	publish := p.client.PublishDeploymentSucceeded
	if err != nil {
		publish = p.client.PublishDeploymentFailed
	}
	if perr := publish(payload); perr != nil {
		p.logger.Warn("failed to publish deployment event", "app", payload.App, "error", perr)
	}
}
