package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bibujohny/rentalAI/internal/utils"
)

var ErrAlreadyRunning = errors.New("server already running")

const defaultStopTimeout = 10 * time.Second

type StopMethod string

const (
	StopNone StopMethod = "none"
	StopPID  StopMethod = "pid"
	StopPort StopMethod = "port"
)

type StopResult struct {
	Method StopMethod
	PIDs   []int
}

type Status struct {
	PID     int
	Running bool
}

// Manager owns the PID file and log file of one server instance.
type Manager struct {
	PIDFile     PIDFile
	LogFile     string
	Port        int
	Finder      PortOwnerFinder
	StopTimeout time.Duration
}

// runningPID returns the recorded pid when that process is still alive.
func (m *Manager) runningPID() (int, error) {
	pid, err := m.PIDFile.Read()
	if err != nil {
		return 0, err
	}
	if pid > 0 && ProcessAlive(pid) {
		return pid, nil
	}
	return 0, nil
}

// StartBackground launches cmd detached from the terminal with its output
// appended to LogFile. A live recorded process is left alone.
func (m *Manager) StartBackground(cmd *exec.Cmd) (int, error) {
	running, err := m.runningPID()
	if err != nil {
		return 0, err
	}
	if running > 0 {
		return running, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, running)
	}

	if err := os.MkdirAll(filepath.Dir(m.LogFile), 0o755); err != nil {
		return 0, err
	}
	logFile, err := os.OpenFile(m.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	pid := cmd.Process.Pid
	if err := m.PIDFile.Write(pid); err != nil {
		_ = cmd.Process.Kill()
		return 0, fmt.Errorf("write pid file: %w", err)
	}
	// reap the child if it exits while we are still around
	go func() { _ = cmd.Wait() }()

	utils.Logger.WithFields(logrus.Fields{"pid": pid, "log": m.LogFile}).Info("Server started in background")
	return pid, nil
}

// RunForeground records the current process for the duration of fn.
func (m *Manager) RunForeground(fn func() error) error {
	running, err := m.runningPID()
	if err != nil {
		return err
	}
	if running > 0 && running != os.Getpid() {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, running)
	}
	if err := m.PIDFile.Write(os.Getpid()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer func() {
		if err := m.PIDFile.Remove(); err != nil {
			utils.Logger.WithError(err).Warn("Failed to remove pid file")
		}
	}()
	return fn()
}

// Stop terminates the recorded process, or whatever listens on Port when the
// record is missing or stale. Finding nothing to stop is not an error.
func (m *Manager) Stop(ctx context.Context) (StopResult, error) {
	defer func() {
		if err := m.PIDFile.Remove(); err != nil {
			utils.Logger.WithError(err).Warn("Failed to remove pid file")
		}
	}()

	pid, err := m.runningPID()
	if err != nil {
		utils.Logger.WithError(err).Warn("Ignoring unreadable pid file")
	}
	if pid > 0 {
		if err := m.terminate(ctx, pid); err != nil {
			return StopResult{Method: StopPID, PIDs: []int{pid}}, err
		}
		utils.Logger.WithField("pid", pid).Info("Server stopped")
		return StopResult{Method: StopPID, PIDs: []int{pid}}, nil
	}

	if m.Finder == nil || m.Port <= 0 {
		return StopResult{Method: StopNone}, nil
	}
	owners, err := m.Finder.PortOwners(ctx, m.Port)
	if err != nil {
		utils.Logger.WithError(err).Warn("Port owner lookup failed")
		return StopResult{Method: StopNone}, nil
	}
	var stopped []int
	for _, p := range owners {
		if p == os.Getpid() {
			continue
		}
		if err := m.terminate(ctx, p); err != nil {
			return StopResult{Method: StopPort, PIDs: stopped}, err
		}
		stopped = append(stopped, p)
	}
	if len(stopped) == 0 {
		return StopResult{Method: StopNone}, nil
	}
	utils.Logger.WithFields(logrus.Fields{"port": m.Port, "pids": stopped}).Info("Stopped processes on port")
	return StopResult{Method: StopPort, PIDs: stopped}, nil
}

func (m *Manager) Status() (Status, error) {
	pid, err := m.PIDFile.Read()
	if err != nil {
		return Status{}, err
	}
	return Status{PID: pid, Running: pid > 0 && ProcessAlive(pid)}, nil
}

// terminate sends SIGTERM, waits up to StopTimeout, then SIGKILL.
func (m *Manager) terminate(ctx context.Context, pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("signal %d: %w", pid, err)
	}

	timeout := m.StopTimeout
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}
	if waitExit(ctx, pid, timeout) {
		return nil
	}

	utils.Logger.WithField("pid", pid).Warn("Process ignored SIGTERM, sending SIGKILL")
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill %d: %w", pid, err)
	}
	if !waitExit(ctx, pid, 2*time.Second) {
		return fmt.Errorf("process %d still running after SIGKILL", pid)
	}
	return nil
}

func waitExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if !ProcessAlive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return !ProcessAlive(pid)
		case <-deadline.C:
			return !ProcessAlive(pid)
		case <-tick.C:
		}
	}
}
