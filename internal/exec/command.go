package exec

import "context"

// Command is a generic interface that represents a command that is being executed. This is modelled after the default
// `exec.Cmd` from the `os/exec` package.
type Command interface {
	Start() error
	Wait() error
}

// Runner creates commands for external tools. Local is the real implementation.
type Runner interface {
	NewCommand(ctx context.Context, cfg CommandConfig) (Command, error)
	GetExitStatusFromError(err error) (int, error)
}
