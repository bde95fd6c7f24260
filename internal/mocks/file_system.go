package mocks

import (
	"os"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// FileSystem is a mocked implementation of 'fs.FileSystem'.
type FileSystem struct {
	MockReadFile  func(name string) ([]byte, error)
	MockReadDir   func(name string) ([]os.DirEntry, error)
	MockStat      func(name string) (os.FileInfo, error)
	MockWriteFile func(name string, data []byte) error
	MockGlobMany  func(patterns []string) ([]string, error)
	MockGetwd     func() (string, error)
}

// ReadFile either calls the configured mock of itself or returns an error if that doesn't exist.
func (f *FileSystem) ReadFile(name string) ([]byte, error) {
	if f.MockReadFile != nil {
		return f.MockReadFile(name)
	}

	return nil, errors.NewConfigurationError("MockReadFile was not configured")
}

func (f *FileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	if f.MockReadDir != nil {
		return f.MockReadDir(name)
	}

	return nil, errors.NewConfigurationError("MockReadDir was not configured")
}

func (f *FileSystem) Stat(name string) (os.FileInfo, error) {
	if f.MockStat != nil {
		return f.MockStat(name)
	}

	return nil, errors.NewConfigurationError("MockStat was not configured")
}

func (f *FileSystem) WriteFile(name string, data []byte) error {
	if f.MockWriteFile != nil {
		return f.MockWriteFile(name, data)
	}

	return errors.NewConfigurationError("MockWriteFile was not configured")
}

// GlobMany returns the patterns unchanged unless a mock is configured.
func (f *FileSystem) GlobMany(patterns []string) ([]string, error) {
	if f.MockGlobMany != nil {
		return f.MockGlobMany(patterns)
	}

	return patterns, nil
}

// Getwd either calls the configured mock of itself or returns "/tmp"
func (f *FileSystem) Getwd() (string, error) {
	if f.MockGetwd != nil {
		return f.MockGetwd()
	}

	return "/tmp", nil
}
