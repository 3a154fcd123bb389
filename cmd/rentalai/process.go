package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/healthcheck"
	"github.com/bibujohny/rentalAI/internal/lifecycle"
	"github.com/bibujohny/rentalAI/internal/routes"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the web server in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		self, err := os.Executable()
		if err != nil {
			return err
		}

		m := newManager(cfg)
		pid, err := m.StartBackground(exec.Command(self, "serve"))
		if errors.Is(err, lifecycle.ErrAlreadyRunning) {
			fmt.Fprintf(cmd.OutOrStdout(), "Already running (pid %d)\n", pid)
			return nil
		}
		if err != nil {
			return err
		}

		url := fmt.Sprintf("http://127.0.0.1:%s%s", cfg.AppPort, routes.Health)
		probe := healthcheck.HTTPProbe(url, 2*time.Second)
		if _, err := healthcheck.WaitHealthy(cmd.Context(), probe, constants.StartHealthAttempts, constants.StartHealthDelay); err != nil {
			return fmt.Errorf("started pid %d but %s is not answering (see %s): %w", pid, url, cfg.LogFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started (pid %d), logs in %s\n", pid, cfg.LogFile)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := newManager(cfg).Stop(cmd.Context())
		if err != nil {
			return err
		}
		switch res.Method {
		case lifecycle.StopPID:
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped pid %d\n", res.PIDs[0])
		case lifecycle.StopPort:
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s listening on port %s\n", pidList(res.PIDs), cfg.AppPort)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Not running")
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the background web server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := newManager(cfg).Status()
		if err != nil {
			return err
		}
		if st.Running {
			fmt.Fprintf(cmd.OutOrStdout(), "Running (pid %d) on port %s\n", st.PID, cfg.AppPort)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Not running")
		}
		return nil
	},
}

var (
	logsLines  int
	logsFollow bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the server log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		lines, err := lifecycle.TailLines(cfg.LogFile, logsLines)
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
		if !logsFollow {
			return nil
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return lifecycle.Follow(ctx, cfg.LogFile, cmd.OutOrStdout(), 500*time.Millisecond)
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", constants.DefaultLogTailLines, "number of lines to show")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "keep printing new lines")
}

func pidList(pids []int) string {
	parts := make([]string, len(pids))
	for i, p := range pids {
		parts[i] = fmt.Sprint(p)
	}
	return "pid " + strings.Join(parts, ", ")
}

