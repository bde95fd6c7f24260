package parsing

import (
	"context"

	"github.com/hypersequent/qas-cli/internal/attachments"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// resolveAttachments reads the attachments of all results in one concurrent batch and hands them out per result.
func resolveAttachments(
	ctx context.Context,
	fileSystem fs.FileSystem,
	paths [][]string,
	baseDir string,
) [][]testing.Attachment {
	flattened := make([]string, 0)
	for _, resultPaths := range paths {
		flattened = append(flattened, resultPaths...)
	}

	resolved := attachments.Resolve(ctx, fileSystem, flattened, baseDir)

	perResult := make([][]testing.Attachment, len(paths))
	offset := 0
	for i, resultPaths := range paths {
		perResult[i] = make([]testing.Attachment, len(resultPaths))
		copy(perResult[i], resolved[offset:offset+len(resultPaths)])
		offset += len(resultPaths)
	}

	return perResult
}

// appendUnique appends values that are not part of the list yet.
func appendUnique(list []string, values ...string) []string {
	for _, value := range values {
		found := false
		for _, existing := range list {
			if existing == value {
				found = true
				break
			}
		}

		if !found {
			list = append(list, value)
		}
	}

	return list
}
