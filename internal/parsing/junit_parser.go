package parsing

import (
	"context"
	"encoding/xml"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// JUnitParser parses JUnit XML reports. The decoding is lenient: the root element may be `<testsuites>` or a bare
// `<testsuite>`, suites may be nested and output elements may be empty, repeated or carry attributes.
type JUnitParser struct {
	FileSystem fs.FileSystem
}

type JUnitOutcome struct {
	Type     string `xml:"type,attr"`
	Message  string `xml:"message,attr"`
	Contents string `xml:",chardata"`
}

type JUnitOutput struct {
	Contents string `xml:",chardata"`
}

type JUnitTestCase struct {
	Name      string         `xml:"name,attr"`
	ClassName string         `xml:"classname,attr"`
	Time      string         `xml:"time,attr"`
	Errors    []JUnitOutcome `xml:"error"`
	Failures  []JUnitOutcome `xml:"failure"`
	Skipped   []JUnitOutcome `xml:"skipped"`
	SystemOut []JUnitOutput  `xml:"system-out"`
	SystemErr []JUnitOutput  `xml:"system-err"`
}

type JUnitTestSuite struct {
	Name       string           `xml:"name,attr"`
	TestCases  []JUnitTestCase  `xml:"testcase"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitDocument struct {
	XMLName xml.Name
	JUnitTestSuite
}

var jUnitAttachmentRegexp = regexp.MustCompile(`^\[\[ATTACHMENT\|(.+)\]\]$`)

func (p JUnitParser) Parse(
	ctx context.Context,
	input string,
	attachmentBaseDir string,
	opts testing.ParserOptions,
) ([]testing.TestCaseResult, error) {
	var document JUnitDocument

	if err := xml.Unmarshal([]byte(input), &document); err != nil {
		return nil, errors.NewInputError("Unable to parse test results as XML: %s", err)
	}

	var suites []JUnitTestSuite
	switch document.XMLName.Local {
	case "testsuites":
		suites = document.TestSuites
	case "testsuite":
		suites = []JUnitTestSuite{document.JUnitTestSuite}
	default:
		return nil, errors.NewInputError(
			"The XML does not look like a JUnit report, expected <testsuites> or <testsuite> but found <%s>",
			document.XMLName.Local,
		)
	}

	results := make([]testing.TestCaseResult, 0)
	attachmentPaths := make([][]string, 0)

	var walk func(suite JUnitTestSuite)
	walk = func(suite JUnitTestSuite) {
		for _, testCase := range suite.TestCases {
			result, paths := p.newResult(suite, testCase, opts)
			results = append(results, result)
			attachmentPaths = append(attachmentPaths, paths)
		}

		for _, nested := range suite.TestSuites {
			walk(nested)
		}
	}

	for _, suite := range suites {
		walk(suite)
	}

	for i, resolved := range resolveAttachments(ctx, p.FileSystem, attachmentPaths, attachmentBaseDir) {
		results[i].Attachments = resolved
	}

	return results, nil
}

func (p JUnitParser) newResult(
	suite JUnitTestSuite,
	testCase JUnitTestCase,
	opts testing.ParserOptions,
) (testing.TestCaseResult, []string) {
	status := testing.TestStatusPassed
	switch {
	case len(testCase.Errors) > 0:
		status = testing.TestStatusBlocked
	case len(testCase.Failures) > 0:
		status = testing.TestStatusFailed
	case len(testCase.Skipped) > 0:
		status = testing.TestStatusSkipped
	}

	folder := testCase.ClassName
	if folder == "" {
		folder = suite.Name
	}

	var message strings.Builder
	paths := make([]string, 0)

	for _, outcomes := range [][]JUnitOutcome{testCase.Errors, testCase.Failures, testCase.Skipped} {
		for _, outcome := range outcomes {
			message.WriteString(codeBlock(outcome.text()))
			paths = appendUnique(paths, p.attachmentPaths(outcome.Message)...)
			paths = appendUnique(paths, p.attachmentPaths(outcome.Contents)...)
		}
	}

	for _, output := range testCase.SystemOut {
		paths = appendUnique(paths, p.attachmentPaths(output.Contents)...)
		if opts.IncludeStdout(status) {
			message.WriteString(codeBlock(output.Contents))
		}
	}

	if opts.IncludeStderr(status) {
		for _, output := range testCase.SystemErr {
			message.WriteString(codeBlock(output.Contents))
		}
	}

	return testing.TestCaseResult{
		Name:        testCase.Name,
		Folder:      folder,
		Status:      status,
		Message:     message.String(),
		TimeTaken:   p.timeTaken(testCase.Time),
		Attachments: make([]testing.Attachment, 0),
	}, paths
}

// timeTaken converts the `time` attribute from seconds to milliseconds.
func (p JUnitParser) timeTaken(value string) *int64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return nil
	}

	return testing.Milliseconds(int64(math.Round(seconds * 1000)))
}

func (p JUnitParser) attachmentPaths(text string) []string {
	paths := make([]string, 0)

	for _, line := range strings.Split(text, "\n") {
		if match := jUnitAttachmentRegexp.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
			paths = append(paths, match[1])
		}
	}

	return paths
}

// text combines the message attribute and the element contents. Many reporters repeat the message as the first line
// of the contents, in which case it is only included once.
func (o JUnitOutcome) text() string {
	message := strings.TrimSpace(o.Message)
	contents := strings.TrimSpace(o.Contents)

	switch {
	case message == "":
		return contents
	case contents == "" || strings.Contains(contents, message):
		return coalesce(contents, message)
	default:
		return message + "\n" + contents
	}
}

func coalesce(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
