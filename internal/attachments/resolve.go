// Package attachments loads the files referenced by test results.
package attachments

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// Resolve reads all paths concurrently and returns one attachment per path, in input order. Relative paths are
// resolved against baseDir. Read failures are stored on the attachment instead of being returned.
func Resolve(ctx context.Context, fileSystem fs.FileSystem, paths []string, baseDir string) []testing.Attachment {
	attachments := make([]testing.Attachment, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path

		eg.Go(func() error {
			attachments[i] = read(egCtx, fileSystem, path, baseDir)
			return nil
		})
	}

	// Goroutines never fail, see above.
	_ = eg.Wait()

	return attachments
}

func read(ctx context.Context, fileSystem fs.FileSystem, path, baseDir string) testing.Attachment {
	attachment := testing.Attachment{Filename: filepath.Base(path)}

	if err := ctx.Err(); err != nil {
		attachment.Err = errors.NewAttachmentError(path, "Unable to read attachment %s: %s", path, err)
		return attachment
	}

	location := path
	if !filepath.IsAbs(path) && baseDir != "" {
		location = filepath.Join(baseDir, path)
	}

	buffer, err := fileSystem.ReadFile(location)
	switch {
	case errors.Is(err, os.ErrNotExist):
		attachment.Err = errors.NewAttachmentError(path, "Attachment not found: %s", path)
	case err != nil:
		attachment.Err = errors.NewAttachmentError(path, "Unable to read attachment %s: %s", path, err)
	case buffer == nil:
		attachment.Buffer = []byte{}
	default:
		attachment.Buffer = buffer
	}

	return attachment
}
