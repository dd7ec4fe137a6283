package client

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// Runner executes one external process invocation and returns its stdout.
// Implementations report every failure as *wmerr.TransportError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs processes with os/exec. Each child gets its own process
// group so a timed-out profile script takes its children down with it.
type ExecRunner struct {
	Dir string // working directory, empty for the current one
}

// Run starts name with args and waits for it, honoring ctx's deadline.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	argv := append([]string{name}, args...)

	cmd := exec.Command(name, args...)
	cmd.Dir = r.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &wmerr.TransportError{Args: argv, ExitCode: -1, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, exitError(argv, err, stderr.String())
		}
		return stdout.Bytes(), nil
	case <-ctx.Done():
		// Negative pid signals the whole group.
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		<-done
		return nil, &wmerr.TransportError{
			Args:     argv,
			ExitCode: -1,
			Timeout:  errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      ctx.Err(),
		}
	}
}

func exitError(argv []string, err error, stderr string) error {
	te := &wmerr.TransportError{Args: argv, ExitCode: -1, Stderr: strings.TrimSpace(stderr), Err: err}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		te.ExitCode = ee.ExitCode()
	}
	return te
}

// withTimeout applies d unless ctx already carries an earlier deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
