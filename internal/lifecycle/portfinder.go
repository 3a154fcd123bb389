package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PortOwnerFinder lists the processes listening on a TCP port.
type PortOwnerFinder interface {
	PortOwners(ctx context.Context, port int) ([]int, error)
}

// LsofFinder asks lsof. A missing lsof binary is reported as an error.
type LsofFinder struct{}

func (LsofFinder) PortOwners(ctx context.Context, port int) ([]int, error) {
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "lsof", "-t", "-nP", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		// lsof exits 1 when nothing matches
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && out.Len() == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("lsof: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parsePIDs(out.String()), nil
}

func parsePIDs(s string) []int {
	var pids []int
	seen := map[int]bool{}
	for _, f := range strings.Fields(s) {
		pid, err := strconv.Atoi(f)
		if err != nil || pid <= 0 || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}
