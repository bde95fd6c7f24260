package parsing

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/markers"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// AllureParser parses a directory of Allure results. Every `*-result.json` file is a single test result; all other
// files are ignored. Malformed results are skipped with a warning.
type AllureParser struct {
	FileSystem fs.FileSystem
	Log        *zap.SugaredLogger
}

type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type AllureLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

type AllureStep struct {
	Name        string             `json:"name"`
	Attachments []AllureAttachment `json:"attachments"`
	Steps       []AllureStep       `json:"steps"`
}

type AllureResult struct {
	Name          string               `json:"name"`
	FullName      string               `json:"fullName"`
	Status        string               `json:"status"`
	StatusDetails *AllureStatusDetails `json:"statusDetails"`
	Start         *int64               `json:"start"`
	Stop          *int64               `json:"stop"`
	Labels        []AllureLabel        `json:"labels"`
	Links         []AllureLink         `json:"links"`
	Attachments   []AllureAttachment   `json:"attachments"`
	Steps         []AllureStep         `json:"steps"`
}

const allureResultSuffix = "-result.json"

// allureFolderLabels are the labels that name the folder, in order of precedence.
var allureFolderLabels = []string{"suite", "parentSuite", "feature", "package"}

var (
	//go:embed allure_result.schema.json
	allureResultSchemaData []byte

	allureResultSchema     *jsonschema.Schema
	allureResultSchemaErr  error
	allureResultSchemaOnce sync.Once
)

// compileAllureResultSchema compiles the embedded schema once.
func compileAllureResultSchema() (*jsonschema.Schema, error) {
	allureResultSchemaOnce.Do(func() {
		document, err := jsonschema.UnmarshalJSON(bytes.NewReader(allureResultSchemaData))
		if err != nil {
			allureResultSchemaErr = errors.NewInternalError("unable to unmarshal Allure result schema: %s", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("allure-result.schema.json", document); err != nil {
			allureResultSchemaErr = errors.NewInternalError("unable to add Allure result schema: %s", err)
			return
		}

		allureResultSchema, err = compiler.Compile("allure-result.schema.json")
		if err != nil {
			allureResultSchemaErr = errors.NewInternalError("unable to compile Allure result schema: %s", err)
		}
	})

	return allureResultSchema, allureResultSchemaErr
}

func (p AllureParser) Parse(
	ctx context.Context,
	input string,
	attachmentBaseDir string,
	opts testing.ParserOptions,
) ([]testing.TestCaseResult, error) {
	schema, err := compileAllureResultSchema()
	if err != nil {
		return nil, err
	}

	entries, err := p.FileSystem.ReadDir(input)
	if err != nil {
		return nil, errors.NewInputError("Unable to read Allure results directory %q: %s", input, err)
	}

	if attachmentBaseDir == "" {
		attachmentBaseDir = input
	}

	results := make([]testing.TestCaseResult, 0)
	attachmentPaths := make([][]string, 0)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), allureResultSuffix) {
			continue
		}

		path := filepath.Join(input, entry.Name())
		allureResult, err := p.readResult(schema, path)
		if err != nil {
			p.Log.Warnf("Skipping %s: %s", path, err)
			continue
		}

		result, paths := p.newResult(allureResult, opts)
		results = append(results, result)
		attachmentPaths = append(attachmentPaths, paths)
	}

	for i, resolved := range resolveAttachments(ctx, p.FileSystem, attachmentPaths, attachmentBaseDir) {
		results[i].Attachments = resolved
	}

	return results, nil
}

// readResult returns a RecordError for files that are not valid Allure results.
func (p AllureParser) readResult(schema *jsonschema.Schema, path string) (AllureResult, error) {
	var result AllureResult

	data, err := p.FileSystem.ReadFile(path)
	if err != nil {
		return result, errors.NewRecordError("unable to read file: %s", err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return result, errors.NewRecordError("invalid JSON: %s", err)
	}

	if err := schema.Validate(instance); err != nil {
		return result, errors.NewRecordError("not a valid Allure result: %s", err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, errors.NewRecordError("invalid JSON: %s", err)
	}

	return result, nil
}

func (p AllureParser) newResult(result AllureResult, opts testing.ParserOptions) (testing.TestCaseResult, []string) {
	name := result.Name
	if marker, ok := p.marker(result.Links); ok {
		name = marker.Prefix(name)
	}

	status := p.status(result.Status)

	var message strings.Builder
	if details := result.StatusDetails; details != nil {
		if opts.IncludeStdout(status) {
			message.WriteString(codeBlock(stripANSI(details.Message)))
		}
		if opts.IncludeStderr(status) {
			message.WriteString(codeBlock(stripANSI(details.Trace)))
		}
	}

	var timeTaken *int64
	if result.Start != nil && result.Stop != nil && *result.Stop >= *result.Start {
		timeTaken = testing.Milliseconds(*result.Stop - *result.Start)
	}

	paths := make([]string, 0)
	for _, attachment := range result.Attachments {
		paths = appendUnique(paths, attachment.Source)
	}

	var collectSteps func(steps []AllureStep)
	collectSteps = func(steps []AllureStep) {
		for _, step := range steps {
			for _, attachment := range step.Attachments {
				paths = appendUnique(paths, attachment.Source)
			}
			collectSteps(step.Steps)
		}
	}
	collectSteps(result.Steps)

	return testing.TestCaseResult{
		Name:        name,
		Folder:      p.folder(result.Labels),
		Status:      status,
		Message:     message.String(),
		TimeTaken:   timeTaken,
		Attachments: make([]testing.Attachment, 0),
	}, paths
}

func (p AllureParser) status(status string) testing.TestStatus {
	switch status {
	case "failed":
		return testing.TestStatusFailed
	case "broken":
		return testing.TestStatusBlocked
	case "skipped":
		return testing.TestStatusSkipped
	default:
		// passed, unknown and anything we do not recognize
		return testing.TestStatusPassed
	}
}

func (p AllureParser) folder(labels []AllureLabel) string {
	for _, name := range allureFolderLabels {
		for _, label := range labels {
			if label.Name == name && label.Value != "" {
				return label.Value
			}
		}
	}

	return ""
}

// marker prefers `tms` links pointing at a test case over links whose name is a marker.
func (p AllureParser) marker(links []AllureLink) (markers.Marker, bool) {
	for _, link := range links {
		if link.Type != "tms" {
			continue
		}

		if marker, ok := markers.ParseTCaseURL(link.URL); ok {
			return marker, true
		}
	}

	for _, link := range links {
		if marker, ok := markers.ParseMarker(link.Name); ok {
			return marker, true
		}
	}

	return markers.Marker{}, false
}
