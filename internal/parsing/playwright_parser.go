package parsing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/markers"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// PlaywrightParser parses reports of Playwright's JSON reporter.
type PlaywrightParser struct {
	FileSystem fs.FileSystem
}

type PlaywrightError struct {
	Message string `json:"message"`
	Stack   string `json:"stack"`
	Value   string `json:"value"`
}

type PlaywrightAttachment struct {
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"contentType"`
}

type PlaywrightStdIOEntry struct {
	Text   *string `json:"text,omitempty"`
	Buffer *string `json:"buffer,omitempty"`
}

type PlaywrightTestResult struct {
	// 'passed' | 'failed' | 'timedOut' | 'skipped' | 'interrupted'
	Status      string                 `json:"status"`
	Duration    int64                  `json:"duration"` // milliseconds
	Error       *PlaywrightError       `json:"error"`
	Errors      []PlaywrightError      `json:"errors"`
	Stdout      []PlaywrightStdIOEntry `json:"stdout"`
	Stderr      []PlaywrightStdIOEntry `json:"stderr"`
	Retry       int                    `json:"retry"`
	Attachments []PlaywrightAttachment `json:"attachments"`
}

type PlaywrightAnnotation struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type PlaywrightTest struct {
	Annotations []PlaywrightAnnotation `json:"annotations"`
	ProjectName string                 `json:"projectName"`
	Results     []PlaywrightTestResult `json:"results"`
	// 'skipped' | 'expected' | 'unexpected' | 'flaky'
	Status string `json:"status"`
}

type PlaywrightSpec struct {
	Title string           `json:"title"`
	Tests []PlaywrightTest `json:"tests"`
	File  string           `json:"file"`
}

type PlaywrightSuite struct {
	Title  string            `json:"title"`
	File   string            `json:"file"`
	Specs  []PlaywrightSpec  `json:"specs"`
	Suites []PlaywrightSuite `json:"suites,omitempty"`
}

type PlaywrightReport struct {
	Suites []PlaywrightSuite `json:"suites"`
}

// playwrightTitleSeparator joins nested suite titles, the same way Playwright's own reporters do.
const playwrightTitleSeparator = " › "

func (p PlaywrightParser) Parse(
	ctx context.Context,
	input string,
	attachmentBaseDir string,
	opts testing.ParserOptions,
) ([]testing.TestCaseResult, error) {
	var report PlaywrightReport

	if err := json.Unmarshal([]byte(input), &report); err != nil {
		return nil, errors.NewInputError("Unable to parse test results as JSON: %s", err)
	}
	if report.Suites == nil {
		return nil, errors.NewInputError("The JSON does not look like a Playwright report, \"suites\" is missing")
	}

	results := make([]testing.TestCaseResult, 0)
	attachmentPaths := make([][]string, 0)

	// titles holds the titles of the nested suites below the top-level suite
	var walk func(folder string, titles []string, suite PlaywrightSuite)
	walk = func(folder string, titles []string, suite PlaywrightSuite) {
		for _, spec := range suite.Specs {
			for _, test := range spec.Tests {
				result, paths := p.newResult(folder, titles, spec, test, opts)
				results = append(results, result)
				attachmentPaths = append(attachmentPaths, paths)
			}
		}

		for _, nested := range suite.Suites {
			walk(folder, append(titles[:len(titles):len(titles)], nested.Title), nested)
		}
	}

	for _, suite := range report.Suites {
		walk(suite.Title, nil, suite)
	}

	for i, resolved := range resolveAttachments(ctx, p.FileSystem, attachmentPaths, attachmentBaseDir) {
		results[i].Attachments = resolved
	}

	return results, nil
}

func (p PlaywrightParser) newResult(
	folder string,
	titles []string,
	spec PlaywrightSpec,
	test PlaywrightTest,
	opts testing.ParserOptions,
) (testing.TestCaseResult, []string) {
	name := strings.Join(append(titles[:len(titles):len(titles)], spec.Title), playwrightTitleSeparator)
	if marker, ok := p.annotatedMarker(test.Annotations); ok {
		name = marker.Prefix(name)
	}

	status := p.status(test.Status)
	result := testing.TestCaseResult{
		Name:        name,
		Folder:      folder,
		Status:      status,
		Attachments: make([]testing.Attachment, 0),
	}

	paths := make([]string, 0)
	if len(test.Results) == 0 {
		return result, paths
	}

	last := test.Results[len(test.Results)-1]
	result.TimeTaken = testing.Milliseconds(last.Duration)

	var message strings.Builder
	if len(test.Results) > 1 {
		fmt.Fprintf(&message, "<p><i>Test %s after %d attempts</i></p>", status, len(test.Results))
	}

	errs := last.Errors
	if len(errs) == 0 && last.Error != nil {
		errs = []PlaywrightError{*last.Error}
	}
	for _, e := range errs {
		message.WriteString(codeBlock(stripANSI(e.text())))
	}

	if opts.IncludeStdout(status) {
		message.WriteString(codeBlock(stripANSI(p.joinOutput(last.Stdout))))
	}
	if opts.IncludeStderr(status) {
		message.WriteString(codeBlock(stripANSI(p.joinOutput(last.Stderr))))
	}

	result.Message = message.String()

	for _, attachment := range last.Attachments {
		if attachment.Path != "" {
			paths = appendUnique(paths, attachment.Path)
		}
	}

	return result, paths
}

func (p PlaywrightParser) status(status string) testing.TestStatus {
	switch status {
	case "unexpected":
		return testing.TestStatusFailed
	case "skipped":
		return testing.TestStatusSkipped
	default:
		// expected, flaky and statuses unknown to us
		return testing.TestStatusPassed
	}
}

// annotatedMarker looks for an annotation such as `{ type: 'test case', description: '<test case URL>' }`.
func (p PlaywrightParser) annotatedMarker(annotations []PlaywrightAnnotation) (markers.Marker, bool) {
	for _, annotation := range annotations {
		if !strings.Contains(strings.ToLower(annotation.Type), "test case") {
			continue
		}

		if marker, ok := markers.ParseTCaseURL(annotation.Description); ok {
			return marker, true
		}
	}

	return markers.Marker{}, false
}

func (p PlaywrightParser) joinOutput(entries []PlaywrightStdIOEntry) string {
	var output strings.Builder

	for _, entry := range entries {
		switch {
		case entry.Text != nil:
			output.WriteString(*entry.Text)
		case entry.Buffer != nil:
			decoded, err := base64.StdEncoding.DecodeString(*entry.Buffer)
			if err != nil {
				output.WriteString(*entry.Buffer)
				continue
			}
			output.Write(decoded)
		}
	}

	return output.String()
}

// text prefers the stack trace, which usually repeats the message.
func (e PlaywrightError) text() string {
	switch {
	case e.Stack != "" && strings.Contains(e.Stack, e.Message):
		return e.Stack
	case e.Stack != "":
		return e.Message + "\n" + e.Stack
	case e.Message != "":
		return e.Message
	default:
		return e.Value
	}
}
