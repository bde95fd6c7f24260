package exec

import "io"

// CommandConfig configures a command for execution
type CommandConfig struct {
	Args   []string
	Env    []string
	Name   string
	Stderr io.Writer
	Stdout io.Writer
}

// Argv returns the full argument vector, including the command name.
func (cfg CommandConfig) Argv() []string {
	return append([]string{cfg.Name}, cfg.Args...)
}
