// Package cli holds the main business logic of our CLI. This is mainly:
// 1. Normalizing test reports and reconciling them with the test cases on QA Sphere.
// 2. Triggering the right API calls based on the provided input parameters.
// 3. User-friendly logging
// However, this package _does not_ implement the actual terminal UI. That part is handled by `cmd/qasphere`.
package cli

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/parsing"
	"github.com/hypersequent/qas-cli/internal/providers"
)

// Service is the main CLI service.
type Service struct {
	API        APIClient
	Log        *zap.SugaredLogger
	FileSystem fs.FileSystem
	TaskRunner parsing.TaskRunner
	// Provider describes the CI environment. It becomes the description of new runs.
	Provider providers.Provider
	// Progress receives the upload progress bar. nil disables it.
	Progress io.Writer
	// Summary receives a per-status summary after a successful upload. nil disables it.
	Summary io.Writer

	Now       func() time.Time
	LookupEnv func(string) (string, bool)
}

// logError prints the error, including any guidance attached to it, and returns it unchanged.
func (s Service) logError(err error) error {
	s.Log.Error(errors.WithDecoration(err).Error())
	return err
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func (s Service) lookupEnv(name string) (string, bool) {
	if s.LookupEnv != nil {
		return s.LookupEnv(name)
	}

	return os.LookupEnv(name)
}
