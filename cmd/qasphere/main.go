// Package main holds the command line interface of the QA Sphere CLI. The package itself is mainly concerned with
// configuring the necessary options before passing control to `internal/cli`, which holds the business logic itself.
package main

import (
	"fmt"
	"os"

	"github.com/hypersequent/qas-cli/internal/errors"
)

func main() {
	if err := ConfigureRootCmd(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := configureUploadCmds(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Logging is expected to take place in `internal/cli`. Errors that reach this point either carry the exit code or
	// were raised before the service was set up.
	if err := rootCmd.Execute(); err != nil {
		if e, ok := errors.AsExecutionError(err); ok {
			os.Exit(e.Code)
		}

		fmt.Fprintln(os.Stderr, errors.WithDecoration(err))
		os.Exit(1)
	}
}
