package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"tbtc-market-service/internal/domain/entities"
	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
)

// ExecRunner runs the upstream executable once per call
type ExecRunner struct {
	command   string
	args      []string
	workDir   string
	env       []string
	timeout   time.Duration
	waitDelay time.Duration
	logger    logging.UpstreamLogger
}

// NewExecRunner creates a runner for the configured upstream command
func NewExecRunner(cfg config.UpstreamConfig, logger logging.UpstreamLogger) *ExecRunner {
	args := make([]string, len(cfg.Args))
	copy(args, cfg.Args)

	return &ExecRunner{
		command:   cfg.Command,
		args:      args,
		workDir:   cfg.WorkDir,
		env:       cfg.Env,
		timeout:   cfg.Timeout,
		waitDelay: config.UpstreamKillGrace,
		logger:    logger,
	}
}

// CommandLine returns the command as it would be typed in a shell
func (r *ExecRunner) CommandLine() string {
	return strings.Join(append([]string{r.command}, r.args...), " ")
}

// LookPath checks that the executable and the working directory exist
func (r *ExecRunner) LookPath() error {
	if _, err := exec.LookPath(r.command); err != nil {
		return fmt.Errorf("upstream executable not found: %w", err)
	}

	if r.workDir != "" {
		info, err := os.Stat(r.workDir)
		if err != nil {
			return fmt.Errorf("upstream work_dir not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("upstream work_dir %s is not a directory", r.workDir)
		}
	}

	return nil
}

// Run launches the process, waits at most the configured timeout and returns
// what it printed. A non-zero exit is reported through ProcessResult.ExitCode,
// not as an error. On timeout the partial result is returned together with
// ErrProcessTimeout.
func (r *ExecRunner) Run(ctx context.Context) (*entities.ProcessResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = r.workDir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	cmd.WaitDelay = r.waitDelay
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessStart, err)
	}

	if r.logger != nil {
		r.logger.ProcessStarted(ctx, r.CommandLine(), cmd.Process.Pid)
	}

	waitErr := cmd.Wait()

	result := &entities.ProcessResult{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	// The deadline wins over whatever exit status the killed process reports
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, fmt.Errorf("%w after %v: %w", ErrProcessTimeout, r.timeout, context.DeadlineExceeded)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			// Non-zero exit, reported through ExitCode
		case errors.Is(waitErr, exec.ErrWaitDelay) && result.ExitCode == 0:
			// The process exited cleanly but something else held its stdout open
		case ctx.Err() != nil:
			return result, fmt.Errorf("upstream process interrupted: %w", ctx.Err())
		default:
			return result, fmt.Errorf("wait for upstream process: %w", waitErr)
		}
	}

	return result, nil
}
