// Package parsing normalizes test reports into the canonical `testing.TestCaseResult` model. Every supported report
// format has its own parser, all of them satisfying the `Parser` interface.
package parsing

import (
	"context"

	"go.uber.org/zap"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/exec"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/markers"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// ReportType is the format of an input report. Its values double as the CLI sub-command names.
type ReportType string

const (
	ReportTypeJUnit      ReportType = "junit-upload"
	ReportTypePlaywright ReportType = "playwright-json-upload"
	ReportTypeAllure     ReportType = "allure-upload"
	ReportTypeXCResult   ReportType = "xcresult-upload"
)

// ReportTypes lists all supported report types.
var ReportTypes = []ReportType{ReportTypeJUnit, ReportTypePlaywright, ReportTypeAllure, ReportTypeXCResult}

// Parser converts a single report into canonical results. `input` is the file content for JUnit & Playwright reports,
// the directory path for Allure results and the bundle path for XCResult bundles.
type Parser interface {
	Parse(
		ctx context.Context,
		input string,
		attachmentBaseDir string,
		opts testing.ParserOptions,
	) ([]testing.TestCaseResult, error)
}

// TaskRunner starts external processes.
type TaskRunner interface {
	NewCommand(ctx context.Context, cfg exec.CommandConfig) (exec.Command, error)
	GetExitStatusFromError(err error) (int, error)
}

// Dependencies are the collaborators parsers may need.
type Dependencies struct {
	FileSystem fs.FileSystem
	Log        *zap.SugaredLogger
	TaskRunner TaskRunner
}

// ForReportType returns the parser for a report type.
func ForReportType(reportType ReportType, deps Dependencies) (Parser, error) {
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}

	switch reportType {
	case ReportTypeJUnit:
		return JUnitParser{FileSystem: deps.FileSystem}, nil
	case ReportTypePlaywright:
		return PlaywrightParser{FileSystem: deps.FileSystem}, nil
	case ReportTypeAllure:
		return AllureParser{FileSystem: deps.FileSystem, Log: deps.Log}, nil
	case ReportTypeXCResult:
		return XCResultParser{FileSystem: deps.FileSystem, Log: deps.Log, TaskRunner: deps.TaskRunner}, nil
	default:
		return nil, errors.NewInternalError("unsupported report type %q", string(reportType))
	}
}

// ReadsFileContent is true for report types whose parser expects the file content instead of a path.
func (r ReportType) ReadsFileContent() bool {
	return r == ReportTypeJUnit || r == ReportTypePlaywright
}

// Flavor returns the marker parser flavor matching the report type.
func (r ReportType) Flavor() markers.Flavor {
	return markers.Flavor(r)
}

func (r ReportType) String() string {
	return string(r)
}
