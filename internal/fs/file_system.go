package fs

import (
	"os"
)

// FileSystem is an abstraction over file-systems. This is implemented by the default `os` package and can also be used
// for mocking.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]os.DirEntry, error)
	Stat(name string) (os.FileInfo, error)
	WriteFile(name string, data []byte) error
	GlobMany(patterns []string) ([]string, error)
	Getwd() (string, error)
}
