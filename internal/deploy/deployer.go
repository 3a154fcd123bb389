package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bibujohny/rentalAI/internal/healthcheck"
	"github.com/bibujohny/rentalAI/internal/utils"
)

const (
	StepFetch   = "fetch"
	StepBuild   = "build"
	StepMigrate = "migrate"
	StepRestart = "restart"
	StepVerify  = "verify"
)

// maxOutput caps the command output kept in an error.
const maxOutput = 2000

// DeployError reports the step that failed. Verify failures carry the
// number of health probes made and the tail of the server log.
type DeployError struct {
	Target   string
	Step     string
	Attempts int
	LogTail  string
	Err      error
}

func (e *DeployError) Error() string {
	msg := fmt.Sprintf("deploy %s: %s failed: %v", e.Target, e.Step, e.Err)
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" (%d health checks)", e.Attempts)
	}
	if e.LogTail != "" {
		msg += "\n--- server log ---\n" + e.LogTail
	}
	return msg
}

func (e *DeployError) Unwrap() error { return e.Err }

type Deployer struct {
	// Runner overrides the runner chosen from the target.
	Runner Runner
	// ProbeTimeout bounds each health request.
	ProbeTimeout time.Duration
}

func NewDeployer() *Deployer {
	return &Deployer{ProbeTimeout: 5 * time.Second}
}

func (d *Deployer) runner(t Target) Runner {
	if d.Runner != nil {
		return d.Runner
	}
	return NewRunner(t)
}

// Deploy runs fetch, build, migrate, restart and verify in order and stops
// at the first failing step.
func (d *Deployer) Deploy(ctx context.Context, t Target) error {
	t.applyDefaults()
	run := d.runner(t)
	log := utils.Logger.WithFields(logrus.Fields{"target": t.Name, "host": hostLabel(t)})

	steps := []struct {
		name   string
		script string
	}{
		{StepFetch, fmt.Sprintf("git fetch --prune origin && git reset --hard %s", shellQuote("origin/"+t.Branch))},
		{StepBuild, fmt.Sprintf("mkdir -p \"$(dirname %[1]s)\" && go build -o %[1]s ./cmd/rentalai", shellQuote(t.Binary))},
		{StepMigrate, fmt.Sprintf("%s migrate", shellQuote(t.Binary))},
	}
	for _, s := range steps {
		start := time.Now()
		out, err := run.Run(ctx, inDir(t, s.script))
		if err != nil {
			log.WithError(err).WithField("step", s.name).Error("Deploy step failed")
			return &DeployError{Target: t.Name, Step: s.name, Err: withOutput(err, out)}
		}
		log.WithFields(logrus.Fields{"step": s.name, "duration": time.Since(start).Round(time.Millisecond)}).Info("Deploy step done")
	}

	if err := d.restart(ctx, run, t, log); err != nil {
		return &DeployError{Target: t.Name, Step: StepRestart, Err: err}
	}

	attempts, err := healthcheck.WaitHealthy(ctx, d.probe(run, t), t.HealthAttempts, t.HealthDelay)
	if err != nil {
		tail, _ := run.Run(ctx, inDir(t, fmt.Sprintf("tail -n %d %s 2>/dev/null || true", t.LogTailLines, shellQuote(t.LogFile))))
		log.WithError(err).WithField("attempts", attempts).Error("Deployed server is not healthy")
		return &DeployError{
			Target:   t.Name,
			Step:     StepVerify,
			Attempts: attempts,
			LogTail:  strings.TrimRight(tail, "\n"),
			Err:      err,
		}
	}
	log.WithField("attempts", attempts).Info("Deploy finished, server healthy")
	return nil
}

// restart prefers the systemd unit and falls back to the binary's own
// stop/start commands.
func (d *Deployer) restart(ctx context.Context, run Runner, t Target, log *logrus.Entry) error {
	if t.Service != "" {
		out, err := run.Run(ctx, fmt.Sprintf("sudo -n systemctl restart %s", shellQuote(t.Service)))
		if err == nil {
			log.WithField("service", t.Service).Info("Service restarted")
			return nil
		}
		log.WithError(withOutput(err, out)).Warn("systemctl restart failed, falling back to stop/start")
	}
	bin := shellQuote(t.Binary)
	out, err := run.Run(ctx, inDir(t, fmt.Sprintf("%[1]s stop || true; %[1]s start", bin)))
	if err != nil {
		return withOutput(err, out)
	}
	log.Info("Server restarted via stop/start")
	return nil
}

// probe checks health from the target's point of view: directly for this
// machine, through curl on the remote host otherwise.
func (d *Deployer) probe(run Runner, t Target) healthcheck.Probe {
	if t.IsLocal() {
		return healthcheck.HTTPProbe(t.HealthURL(), d.ProbeTimeout)
	}
	timeout := int(d.ProbeTimeout.Seconds())
	if timeout < 1 {
		timeout = 1
	}
	script := fmt.Sprintf("curl -fsS --max-time %d %s", timeout, shellQuote(t.HealthURL()))
	return func(ctx context.Context) error {
		out, err := run.Run(ctx, script)
		if err != nil {
			return withOutput(err, out)
		}
		return nil
	}
}

func inDir(t Target, script string) string {
	return fmt.Sprintf("set -e\ncd %s\n%s", shellQuote(t.Dir), script)
}

func hostLabel(t Target) string {
	if t.IsLocal() {
		return "local"
	}
	return t.Host
}

func withOutput(err error, out string) error {
	out = strings.TrimSpace(out)
	if out == "" {
		return err
	}
	if len(out) > maxOutput {
		out = out[len(out)-maxOutput:]
	}
	return fmt.Errorf("%w: %s", err, out)
}
