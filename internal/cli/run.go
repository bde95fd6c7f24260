package cli

import (
	"context"
	"regexp"
	"strconv"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/templating"
)

var conflictingRunIDRegexp = regexp.MustCompile(`(?i)conflicting run id:?\s*(\d+)`)

// createRun creates a run containing the matched test cases. If a run with the same title exists already, that run is
// used instead.
func (s Service) createRun(ctx context.Context, cfg UploadConfig, projectCode string, matches []match) (int, error) {
	template := cfg.RunName
	if template == "" {
		template = templating.DefaultRunTitle
	}

	title := templating.RunTitle(template, s.now(), s.lookupEnv)
	for _, keyword := range templating.CompileTemplate(title).Keywords() {
		s.Log.Warnf("Unable to resolve {%s} in the run title, keeping it as is", keyword)
	}

	seen := make(map[string]struct{}, len(matches))
	testCaseIDs := make([]string, 0, len(matches))

	for _, match := range matches {
		if _, ok := seen[match.TestCase.ID]; ok {
			continue
		}

		seen[match.TestCase.ID] = struct{}{}
		testCaseIDs = append(testCaseIDs, match.TestCase.ID)
	}

	runID, err := s.API.CreateRun(ctx, projectCode, api.CreateRunRequest{
		Title:       title,
		Description: s.Provider.Description(),
		Type:        api.RunTypeStatic,
		QueryPlans:  []api.QueryPlan{{TestCaseIDs: testCaseIDs}},
	})
	if err != nil {
		if id, ok := conflictingRunID(err); ok {
			s.Log.Infof("A run titled %q exists already, reusing run %d", title, id)
			return id, nil
		}

		return 0, errors.Wrap(err, "unable to create a run")
	}

	s.Log.Infof("Created run %q", title)

	return runID, nil
}

// conflictingRunID extracts the run ID from the error returned when a run title is taken.
func conflictingRunID(err error) (int, bool) {
	remoteErr, ok := errors.AsRemoteError(err)
	if !ok {
		return 0, false
	}

	match := conflictingRunIDRegexp.FindStringSubmatch(remoteErr.Message)
	if match == nil {
		return 0, false
	}

	id, convErr := strconv.Atoi(match[1])
	if convErr != nil || id < 1 {
		return 0, false
	}

	return id, true
}
