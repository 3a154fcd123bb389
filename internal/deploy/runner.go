package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a bash script on the target and returns its combined output.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

type LocalRunner struct{}

func (LocalRunner) Run(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", script)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// SSHRunner pipes the script into bash on a remote host. Authentication is
// left to the local ssh agent; BatchMode makes a missing key fail fast.
type SSHRunner struct {
	Host string
	User string
	Port int
}

func (r SSHRunner) args() []string {
	args := []string{"-o", "BatchMode=yes"}
	if r.Port > 0 {
		args = append(args, "-p", strconv.Itoa(r.Port))
	}
	dest := r.Host
	if r.User != "" {
		dest = r.User + "@" + r.Host
	}
	return append(args, dest, "bash", "-se")
}

func (r SSHRunner) Run(ctx context.Context, script string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "ssh", r.args()...)
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("ssh %s: %w", r.Host, err)
	}
	return out.String(), nil
}

// NewRunner picks the runner for t.
func NewRunner(t Target) Runner {
	if t.IsLocal() {
		return LocalRunner{}
	}
	return SSHRunner{Host: t.Host, User: t.User, Port: t.SSHPort}
}

// shellQuote wraps s in single quotes for bash.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
