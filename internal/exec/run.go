package exec

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// Run starts the command and waits for it to finish. A non-zero exit becomes an ExecutionError with the tool's exit
// code. Whatever the tool wrote to stderr is appended to the error message.
func Run(ctx context.Context, runner Runner, cfg CommandConfig) error {
	var stderr bytes.Buffer
	if cfg.Stderr != nil {
		cfg.Stderr = io.MultiWriter(cfg.Stderr, &stderr)
	} else {
		cfg.Stderr = &stderr
	}

	cmd, err := runner.NewCommand(ctx, cfg)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return errors.NewSystemError("unable to start %q: %s", cfg.Name, err)
	}

	if err := cmd.Wait(); err != nil {
		output := withOutput(strings.TrimSpace(stderr.String()))

		code, exitErr := runner.GetExitStatusFromError(err)
		if exitErr != nil {
			return errors.NewSystemError("%q failed: %s%s", cfg.Name, err, output)
		}

		return errors.NewExecutionError(code, "%q exited with status %d%s", cfg.Name, code, output)
	}

	return nil
}

func withOutput(output string) string {
	if output == "" {
		return ""
	}

	return ": " + output
}
