package deploy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/healthcheck"
)

// fakeRunner answers scripts by substring; the first matching rule wins and
// a rule with a limit stops matching once used up.
type fakeRunner struct {
	mu      sync.Mutex
	rules   []*rule
	scripts []string
}

type rule struct {
	contains string
	out      string
	err      error
	limit    int
	used     int
}

func (f *fakeRunner) on(contains, out string, err error) *rule {
	r := &rule{contains: contains, out: out, err: err}
	f.rules = append(f.rules, r)
	return r
}

func (f *fakeRunner) Run(ctx context.Context, script string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, script)
	for _, r := range f.rules {
		if !strings.Contains(script, r.contains) || (r.limit > 0 && r.used >= r.limit) {
			continue
		}
		r.used++
		return r.out, r.err
	}
	return "", nil
}

func (f *fakeRunner) ran(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.scripts {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

func remoteTarget() Target {
	t := Target{
		Name:           "production",
		Host:           "web1.example.com",
		User:           "deploy",
		Dir:            "/srv/rentalai",
		Service:        "rentalai",
		HealthAttempts: 3,
		HealthDelay:    time.Millisecond,
	}
	t.applyDefaults()
	return t
}

func TestDeployRunsStepsInOrder(t *testing.T) {
	run := &fakeRunner{}
	run.on("curl", "", errors.New("exit status 7")).limit = 1

	d := &Deployer{Runner: run, ProbeTimeout: time.Second}
	require.NoError(t, d.Deploy(context.Background(), remoteTarget()))

	require.GreaterOrEqual(t, len(run.scripts), 5)
	assert.Contains(t, run.scripts[0], "cd '/srv/rentalai'")
	assert.Contains(t, run.scripts[0], "git reset --hard 'origin/main'")
	assert.Contains(t, run.scripts[1], "go build -o './bin/rentalai' ./cmd/rentalai")
	assert.Contains(t, run.scripts[2], "'./bin/rentalai' migrate")
	assert.Contains(t, run.scripts[3], "sudo -n systemctl restart 'rentalai'")
	assert.Equal(t, 2, run.ran("curl -fsS"))
	assert.Zero(t, run.ran(" stop"))
}

func TestDeployFallsBackToStopStart(t *testing.T) {
	run := &fakeRunner{}
	run.on("systemctl", "Unit rentalai.service not found.", errors.New("exit status 5"))

	d := &Deployer{Runner: run, ProbeTimeout: time.Second}
	require.NoError(t, d.Deploy(context.Background(), remoteTarget()))
	assert.Equal(t, 1, run.ran("'./bin/rentalai' stop || true; './bin/rentalai' start"))
}

func TestDeployWithoutServiceUsesBinary(t *testing.T) {
	run := &fakeRunner{}
	target := remoteTarget()
	target.Service = ""

	d := &Deployer{Runner: run, ProbeTimeout: time.Second}
	require.NoError(t, d.Deploy(context.Background(), target))
	assert.Zero(t, run.ran("systemctl"))
	assert.Equal(t, 1, run.ran("start"))
}

func TestDeployStopsAtFailedStep(t *testing.T) {
	run := &fakeRunner{}
	run.on("go build", "main.go:3: syntax error", errors.New("exit status 1"))

	d := &Deployer{Runner: run, ProbeTimeout: time.Second}
	err := d.Deploy(context.Background(), remoteTarget())

	var de *DeployError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, StepBuild, de.Step)
	assert.Contains(t, de.Error(), "syntax error")
	assert.Zero(t, run.ran("migrate"))
}

func TestDeployVerifyFailureCarriesLogTail(t *testing.T) {
	run := &fakeRunner{}
	run.on("curl", "curl: (7) Failed to connect", errors.New("exit status 7"))
	run.on("tail -n 50", "panic: boom\ngoroutine 1\n", nil)

	d := &Deployer{Runner: run, ProbeTimeout: time.Second}
	err := d.Deploy(context.Background(), remoteTarget())

	var de *DeployError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, StepVerify, de.Step)
	assert.Equal(t, 3, de.Attempts)
	assert.Equal(t, "panic: boom\ngoroutine 1", de.LogTail)
	assert.ErrorIs(t, err, healthcheck.ErrUnhealthy)
	assert.Contains(t, err.Error(), "--- server log ---")
}

func TestDeployLocalProbesOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer srv.Close()
	_, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)
	target := Target{Name: "local", Port: portNum, HealthAttempts: 2, HealthDelay: time.Millisecond}

	run := &fakeRunner{}
	d := &Deployer{Runner: run, ProbeTimeout: time.Second}
	require.NoError(t, d.Deploy(context.Background(), target))
	assert.Zero(t, run.ran("curl"))
}

func TestLoadTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  production:
    host: web1.example.com
    user: deploy
    ssh_port: 2222
    dir: /srv/rentalai
    service: rentalai
    health_delay: 5s
  dev:
    host: local
`), 0o644))

	targets, err := LoadTargets(path)
	require.NoError(t, err)

	prod, err := targets.Get("production")
	require.NoError(t, err)
	assert.Equal(t, "production", prod.Name)
	assert.Equal(t, 2222, prod.SSHPort)
	assert.Equal(t, 5*time.Second, prod.HealthDelay)
	assert.Equal(t, "main", prod.Branch)
	assert.Equal(t, 10, prod.HealthAttempts)
	assert.Equal(t, 50, prod.LogTailLines)
	assert.Equal(t, "http://127.0.0.1:5000/health", prod.HealthURL())
	assert.False(t, prod.IsLocal())

	dev, err := targets.Get("dev")
	require.NoError(t, err)
	assert.True(t, dev.IsLocal())
	assert.Equal(t, ".", dev.Dir)

	_, err = targets.Get("staging")
	assert.EqualError(t, err, `unknown deploy target "staging" (known: dev, production)`)

	_, err = LoadTargets(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunners(t *testing.T) {
	assert.IsType(t, LocalRunner{}, NewRunner(Target{}))
	r, ok := NewRunner(Target{Host: "web1", User: "deploy", SSHPort: 2222}).(SSHRunner)
	require.True(t, ok)
	assert.Equal(t, []string{"-o", "BatchMode=yes", "-p", "2222", "deploy@web1", "bash", "-se"}, r.args())
	assert.Equal(t, []string{"-o", "BatchMode=yes", "web1", "bash", "-se"}, SSHRunner{Host: "web1"}.args())

	out, err := LocalRunner{}.Run(context.Background(), "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
