// Runner spawns an external simulation process and exposes its output as a
// line source with a wall-clock timeout.
package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"philoscope/internal/logging"
)

// MinTimeout is the floor for the wall-clock timeout imposed on the child.
const MinTimeout = 10 * time.Millisecond

// Process is a running simulation whose standard output feeds the verifier.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
}

// Start launches bin with args under a wall-clock timeout. The child is
// killed when the timeout elapses; its stderr is left attached to ours so
// simulation diagnostics stay visible.
func Start(ctx context.Context, bin string, args []string, timeout time.Duration) (*Process, error) {
	if timeout < MinTimeout {
		timeout = MinTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	cmd := exec.CommandContext(ctx, bin, args...)
	// Give the child a moment to flush after the kill signal.
	cmd.WaitDelay = time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}

	logging.FromContext(ctx).Info("spawned simulation",
		"bin", bin, "args", args, "timeout", timeout)

	return &Process{cmd: cmd, stdout: stdout, cancel: cancel}, nil
}

// Stdout returns the child's standard output stream.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Wait reaps the child. A timeout kill is reported as an error; a child that
// exits non-zero after its simulation ended is reported as-is and left to the
// caller's policy.
func (p *Process) Wait() error {
	defer p.cancel()
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("simulation process: %w", err)
	}
	return nil
}
