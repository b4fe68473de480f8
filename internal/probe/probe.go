// Package probe checks whether the simulation host process is running
// on the local machine.
package probe

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"trafficgrid/internal/infrastructure/logging"
)

// Prober reports liveness of a named process via pgrep.
type Prober struct {
	processName string
	timeout     time.Duration
	logger      *logging.Logger
}

// New creates a Prober for the given process name.
//
// Parameters:
//   - processName: pattern matched against full command lines (pgrep -f)
//   - timeout: upper bound on a single probe
//   - logger: structured logger
func New(processName string, timeout time.Duration, logger *logging.Logger) *Prober {
	return &Prober{
		processName: processName,
		timeout:     timeout,
		logger:      logger,
	}
}

// Alive reports whether at least one process matches the configured name.
// Any failure to run or complete the probe counts as not running; the
// caller never sees an error.
func (p *Prober) Alive(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pgrep", "-f", p.processName)
	err := cmd.Run()
	if err == nil {
		return true
	}

	// pgrep exits 1 when nothing matched; anything else is a probe failure
	// worth logging (pgrep missing, timeout, kill).
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false
	}

	p.logger.Warn("process probe failed",
		"process", p.processName,
		"error", err,
	)
	return false
}

// ProcessName returns the pattern this prober matches against.
func (p *Prober) ProcessName() string {
	return p.processName
}
