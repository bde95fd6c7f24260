// Package reporting renders human-readable summaries of an upload.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/testing"
)

var summaryOrder = []testing.TestStatus{
	testing.TestStatusFailed,
	testing.TestStatusBlocked,
	testing.TestStatusSkipped,
}

// WriteTextSummary lists the non-passing results grouped by status, after a one-line total.
func WriteTextSummary(w io.Writer, results []testing.TestCaseResult) error {
	statuses := make(map[testing.TestStatus][]string)

	for _, result := range results {
		if result.Status.IsPassed() {
			continue
		}

		statuses[result.Status] = append(statuses[result.Status], result.Name)
	}

	pluralizeResults := "results"
	if len(results) == 1 {
		pluralizeResults = "result"
	}

	passed := len(results)
	for _, names := range statuses {
		passed -= len(names)
	}

	if _, err := fmt.Fprintf(w, "Uploaded %d test %s, %d passed.\n", len(results), pluralizeResults, passed); err != nil {
		return errors.WithStack(err)
	}

	for _, status := range summaryOrder {
		names, ok := statuses[status]
		if !ok {
			continue
		}

		if _, err := fmt.Fprintf(w, "\n%s (%d):\n", title(status), len(names)); err != nil {
			return errors.WithStack(err)
		}

		for _, name := range names {
			if _, err := fmt.Fprintf(w, "- %s\n", name); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	return nil
}

func title(status testing.TestStatus) string {
	name := status.String()
	return strings.ToUpper(name[:1]) + name[1:]
}
