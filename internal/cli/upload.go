package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/markers"
	"github.com/hypersequent/qas-cli/internal/parsing"
	"github.com/hypersequent/qas-cli/internal/reporting"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// parsedReport holds the results parsed from a single input file.
type parsedReport struct {
	Path    string
	Results []testing.TestCaseResult
}

// runTarget is the run results are uploaded to. RunID is 0 until the run exists.
type runTarget struct {
	BaseURL     string
	ProjectCode string
	RunID       int
}

func (t runTarget) RunURL() string {
	return fmt.Sprintf("%s/project/%s/run/%d", strings.TrimRight(t.BaseURL, "/"), t.ProjectCode, t.RunID)
}

// match pairs a test result with the test case it is recorded against.
type match struct {
	TestCase api.TestCase
	Result   testing.TestCaseResult
}

// Upload is the implementation of all `<report type>-upload` commands: it parses the reports, matches the results to
// test cases on QA Sphere, creates a run if necessary & submits every matched result.
func (s Service) Upload(ctx context.Context, cfg UploadConfig) error {
	if err := s.upload(ctx, cfg.WithDefaults()); err != nil {
		return s.logError(err)
	}

	return nil
}

func (s Service) upload(ctx context.Context, cfg UploadConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	reports, err := s.parseInputs(ctx, cfg)
	if err != nil {
		return err
	}

	target, err := s.resolveTarget(ctx, cfg, reports)
	if err != nil {
		return err
	}

	parser := markers.NewParser(cfg.ReportType.Flavor())

	var testCases []api.TestCase
	if target.RunID != 0 {
		testCases, err = s.API.GetRunTestCases(ctx, target.ProjectCode, target.RunID)
		if err != nil {
			return errors.Wrap(err, "unable to fetch the test cases of the run")
		}
	} else {
		testCases, err = s.fetchTestCases(ctx, parser, target.ProjectCode, reports)
		if err != nil {
			return err
		}

		if cfg.CreateTestCases {
			created, err := s.createMissingTestCases(ctx, cfg, parser, target.ProjectCode, testCases, reports)
			if err != nil {
				return err
			}

			testCases = append(testCases, created...)
		}
	}

	matches, err := s.matchResults(cfg, parser, target.ProjectCode, testCases, reports)
	if err != nil {
		return err
	}

	if cfg.Attachments && cfg.StrictAttachments && !cfg.Force {
		if err := s.checkAttachments(matches); err != nil {
			return err
		}
	}

	if target.RunID == 0 {
		if target.RunID, err = s.createRun(ctx, cfg, target.ProjectCode, matches); err != nil {
			return err
		}
	}

	s.Log.Infof("Uploading %d test results to %s", len(matches), target.RunURL())

	if err := s.uploadResults(ctx, cfg, target, matches); err != nil {
		return err
	}

	s.Log.Info(color.GreenString("Uploaded %d test results to %s", len(matches), target.RunURL()))

	if s.Summary != nil {
		uploaded := make([]testing.TestCaseResult, len(matches))
		for i, match := range matches {
			uploaded[i] = match.Result
		}

		if err := reporting.WriteTextSummary(s.Summary, uploaded); err != nil {
			s.Log.Warnf("Unable to write the upload summary: %s", err)
		}
	}

	return nil
}

func (s Service) parseInputs(ctx context.Context, cfg UploadConfig) ([]parsedReport, error) {
	files, err := s.FileSystem.GlobMany(cfg.Files)
	if err != nil {
		return nil, errors.NewInputError("unable to expand file patterns: %s", err)
	}

	if len(files) == 0 {
		return nil, errors.NewInputError("no files found matching %s", strings.Join(cfg.Files, ", "))
	}

	parser, err := parsing.ForReportType(cfg.ReportType, parsing.Dependencies{
		FileSystem: s.FileSystem,
		Log:        s.Log,
		TaskRunner: s.TaskRunner,
	})
	if err != nil {
		return nil, err
	}

	reports := make([]parsedReport, 0, len(files))
	total := 0

	for _, file := range files {
		input := file

		if cfg.ReportType.ReadsFileContent() {
			content, err := s.FileSystem.ReadFile(file)
			if err != nil {
				return nil, errors.NewInputError("unable to read %q: %s", file, err)
			}

			input = string(content)
		}

		s.Log.Debugf("Attempting to parse %q", file)

		results, err := parser.Parse(ctx, input, cfg.AttachmentBaseDir, cfg.ParserOptions())
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse %q", file)
		}

		s.Log.Debugf("Parsed %d test results from %q", len(results), file)

		reports = append(reports, parsedReport{Path: file, Results: results})
		total += len(results)
	}

	if total == 0 {
		return nil, errors.NewInputError("No valid test cases found in any of the files")
	}

	return reports, nil
}

func (s Service) resolveTarget(ctx context.Context, cfg UploadConfig, reports []parsedReport) (runTarget, error) {
	if cfg.RunURL != "" {
		ref, ok := markers.ParseRunURL(cfg.RunURL)
		if !ok {
			return runTarget{}, errors.NewConfigurationError("invalid run URL %q", cfg.RunURL)
		}

		if cfg.ProjectCode != "" && !strings.EqualFold(cfg.ProjectCode, ref.ProjectCode) {
			s.Log.Warnf("Ignoring project code %q, the run belongs to project %q", cfg.ProjectCode, ref.ProjectCode)
		}

		return runTarget{BaseURL: ref.BaseURL, ProjectCode: ref.ProjectCode, RunID: ref.RunID}, nil
	}

	projectCode := cfg.ProjectCode
	if projectCode == "" {
		code, ok := detectProjectCode(reports)
		if !ok {
			return runTarget{}, errors.WithGuidance(
				errors.NewInputError("unable to detect the project code from the test names"),
				namingGuidance(cfg.ReportType),
				"Add a marker to at least one test name or provide the project code with --project-code.",
			)
		}

		s.Log.Debugf("Detected project code %q", code)
		projectCode = code
	}

	exists, err := s.API.ProjectExists(ctx, projectCode)
	if err != nil {
		return runTarget{}, errors.Wrapf(err, "unable to look up project %q", projectCode)
	}

	if !exists {
		return runTarget{}, errors.NewConfigurationError("project %q does not exist or is not accessible", projectCode)
	}

	return runTarget{BaseURL: cfg.URL, ProjectCode: projectCode}, nil
}

// detectProjectCode returns the code of the first hyphenated marker, scanning files then results in order.
func detectProjectCode(reports []parsedReport) (string, bool) {
	for _, report := range reports {
		for _, result := range report.Results {
			if code, ok := markers.DetectHyphenatedProjectCode(result.Name); ok {
				return code, true
			}
		}
	}

	return "", false
}

// fetchTestCases looks up the test cases referenced by markers in the result names.
func (s Service) fetchTestCases(
	ctx context.Context,
	parser markers.Parser,
	projectCode string,
	reports []parsedReport,
) ([]api.TestCase, error) {
	seen := make(map[int]struct{})
	seqs := make([]int, 0)

	for _, report := range reports {
		for _, result := range report.Results {
			seq, ok := parser.ExtractSeq(result.Name, projectCode)
			if !ok {
				continue
			}

			if _, ok := seen[seq]; !ok {
				seen[seq] = struct{}{}
				seqs = append(seqs, seq)
			}
		}
	}

	if len(seqs) == 0 {
		return nil, nil
	}

	testCases := make([]api.TestCase, 0, len(seqs))

	for page := 1; ; page++ {
		resp, err := s.API.GetTestCasesBySequence(ctx, projectCode, seqs, page, api.DefaultPageLimit)
		if err != nil {
			return nil, errors.Wrap(err, "unable to fetch test cases")
		}

		testCases = append(testCases, resp.Data...)

		if len(resp.Data) == 0 || len(testCases) >= resp.Total {
			break
		}
	}

	return testCases, nil
}

func findTestCase(parser markers.Parser, projectCode string, testCases []api.TestCase, name string) (api.TestCase, bool) {
	for _, testCase := range testCases {
		if parser.NameMatchesTCase(name, projectCode, testCase.Seq) {
			return testCase, true
		}
	}

	return api.TestCase{}, false
}

func (s Service) matchResults(
	cfg UploadConfig,
	parser markers.Parser,
	projectCode string,
	testCases []api.TestCase,
	reports []parsedReport,
) ([]match, error) {
	matches := make([]match, 0)
	unmatched := make([]string, 0)

	for _, report := range reports {
		for _, result := range report.Results {
			if strings.TrimSpace(result.Name) == "" {
				s.Log.Debugf("Skipping a test result without name in %q", report.Path)
				continue
			}

			testCase, ok := findTestCase(parser, projectCode, testCases, result.Name)
			if !ok {
				unmatched = append(unmatched, result.Name)

				switch {
				case cfg.IgnoreUnmatched:
				case cfg.Force:
					s.Log.Warnf("%q (%s) does not match any test cases, skipping it", result.Name, report.Path)
				default:
					s.Log.Errorf("%q (%s) does not match any test cases", result.Name, report.Path)
				}

				continue
			}

			matches = append(matches, match{TestCase: testCase, Result: result})
		}
	}

	if len(unmatched) > 0 && cfg.IgnoreUnmatched {
		s.Log.Infof("Ignored %d test results without a matching test case", len(unmatched))
	}

	if len(unmatched) > 0 && !cfg.IgnoreUnmatched && !cfg.Force {
		return nil, errors.WithGuidance(
			errors.NewMatchError(unmatched, "%d test results without a matching test case", len(unmatched)),
			namingGuidance(cfg.ReportType),
			"Add markers to the test names, use --create-tcases to create the missing test cases or "+
				"upload the matching results only with --force or --ignore-unmatched.",
		)
	}

	if len(matches) == 0 {
		return nil, errors.WithGuidance(
			errors.NewMatchError(unmatched, "none of the test results match a test case of project %q", projectCode),
			namingGuidance(cfg.ReportType),
			"Make sure the markers in the test names refer to existing test cases.",
		)
	}

	return matches, nil
}

func namingGuidance(reportType parsing.ReportType) string {
	guidance := "Test results are matched to QA Sphere test cases through markers in the test names, " +
		`e.g. "PRJ-002: Login works" or "Login works (PRJ-002)".`

	if reportType == parsing.ReportTypeJUnit {
		guidance += " Test functions may also use test_prj002_login, TestPRJ002Login or testLoginPRJ002."
	}

	return guidance
}
