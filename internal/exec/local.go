// Package exec runs the external tools some report formats depend on, e.g. `xcrun xcresulttool` for XCResult bundles.
// Local wraps `os/exec`; tests substitute the Runner interface.
package exec

import (
	"context"
	"os/exec"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// Local runs commands on the host.
type Local struct{}

// NewCommand looks the tool up in PATH and prepares it for execution.
func (l Local) NewCommand(ctx context.Context, cfg CommandConfig) (Command, error) {
	path, err := exec.LookPath(cfg.Name)
	if err != nil {
		return nil, errors.NewSystemError("%q is not installed or not in PATH", cfg.Name)
	}

	//nolint:gosec // callers pass fixed tool names
	cmd := exec.CommandContext(ctx, path, cfg.Args...)
	cmd.Stdout = cfg.Stdout
	cmd.Stderr = cfg.Stderr

	if len(cfg.Env) > 0 {
		cmd.Env = append(cmd.Environ(), cfg.Env...)
	}

	return cmd, nil
}

// GetExitStatusFromError extracts the exit code of a finished command.
func (l Local) GetExitStatusFromError(err error) (int, error) {
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode(), nil
	}

	return 0, errors.NewInternalError("expected an exit error, received %T", err)
}
