// Package fs is a thin wrapper around potential file-systems. By default, it is an abstraction over the `os` package
// from the standard library.
package fs

import (
	"os"

	"github.com/yargevad/filepathx"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// Local is a local file-system. It wraps the default `os` package
type Local struct{}

// ReadFile reads the whole file into memory
func (l Local) ReadFile(name string) ([]byte, error) {
	content, err := os.ReadFile(name)
	return content, errors.WithStack(err)
}

// ReadDir lists the entries of a directory, sorted by filename
func (l Local) ReadDir(name string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(name)
	return entries, errors.WithStack(err)
}

// Stat returns the FileInfo of the named file
func (l Local) Stat(name string) (os.FileInfo, error) {
	info, err := os.Stat(name)
	return info, errors.WithStack(err)
}

// WriteFile creates or truncates the named file and writes data to it
func (l Local) WriteFile(name string, data []byte) error {
	return errors.WithStack(os.WriteFile(name, data, 0o644))
}

// Getwd returns the current working directory
func (l Local) Getwd() (string, error) {
	wd, err := os.Getwd()
	return wd, errors.WithStack(err)
}

// GlobMany expands all patterns (including `**`) and returns the matches in the order of the patterns. Patterns that
// do not contain any meta characters are returned as-is, so a missing file surfaces as a read error later on instead of
// silently disappearing.
func (l Local) GlobMany(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	paths := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		matches := []string{pattern}

		if hasMeta(pattern) {
			expanded, err := filepathx.Glob(pattern)
			if err != nil {
				return nil, errors.NewInputError("unable to expand %q: %s", pattern, err)
			}
			matches = expanded
		}

		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}

			seen[match] = struct{}{}
			paths = append(paths, match)
		}
	}

	return paths, nil
}
