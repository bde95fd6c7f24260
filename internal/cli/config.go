package cli

import (
	"net/url"
	"strings"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/markers"
	"github.com/hypersequent/qas-cli/internal/parsing"
	"github.com/hypersequent/qas-cli/internal/testing"
)

// ImportSettings controls where automatically created test cases end up.
type ImportSettings struct {
	// Folder is the folder new test cases are created in. Existing test cases in it are reused by title.
	Folder string
	// Tag is added to every created test case.
	Tag string
	// MappingFilePrefix starts the name of the marker mapping file. A timestamp & ".txt" follow.
	MappingFilePrefix string
}

// DefaultImportSettings returns the settings used unless configured otherwise.
func DefaultImportSettings() ImportSettings {
	return ImportSettings{
		Folder:            "cli-import",
		Tag:               "cli-import",
		MappingFilePrefix: "qasphere-automapping-",
	}
}

// UploadConfig holds the configuration of `Service.Upload`.
type UploadConfig struct {
	ReportType parsing.ReportType
	// Files are the reports to upload. Glob patterns are expanded.
	Files []string

	// URL is the configured QA Sphere instance.
	URL string
	// RunURL selects an existing run. Without it, a new run is created.
	RunURL      string
	ProjectCode string
	// RunName is the title template of new runs.
	RunName string

	AttachmentBaseDir string
	Attachments       bool
	StrictAttachments bool

	Force           bool
	IgnoreUnmatched bool
	CreateTestCases bool

	SkipStdout testing.SkipOutputPolicy
	SkipStderr testing.SkipOutputPolicy

	Import ImportSettings
}

// WithDefaults returns a copy of the configuration with defaults applied where necessary.
func (uc UploadConfig) WithDefaults() UploadConfig {
	defaults := DefaultImportSettings()

	if uc.Import.Folder == "" {
		uc.Import.Folder = defaults.Folder
	}

	if uc.Import.Tag == "" {
		uc.Import.Tag = defaults.Tag
	}

	if uc.Import.MappingFilePrefix == "" {
		uc.Import.MappingFilePrefix = defaults.MappingFilePrefix
	}

	if uc.SkipStdout == "" {
		uc.SkipStdout = testing.SkipNever
	}

	if uc.SkipStderr == "" {
		uc.SkipStderr = testing.SkipNever
	}

	return uc
}

// Validate checks the configuration for errors
func (uc UploadConfig) Validate() error {
	if _, err := parsing.ForReportType(uc.ReportType, parsing.Dependencies{}); err != nil {
		return errors.NewConfigurationError("unsupported report type %q", string(uc.ReportType))
	}

	if len(uc.Files) == 0 {
		return errors.NewConfigurationError("no report files provided")
	}

	if uc.RunURL == "" {
		return nil
	}

	if uc.CreateTestCases {
		return errors.NewConfigurationError("test cases can only be created together with a new run, not with --run-url")
	}

	ref, ok := markers.ParseRunURL(uc.RunURL)
	if !ok {
		return errors.WithGuidance(
			errors.NewConfigurationError("invalid run URL %q", uc.RunURL),
			"Run URLs have the form https://<tenant>.<region>.qasphere.com/project/<CODE>/run/<ID>.",
			"Copy the URL of the run from your browser.",
		)
	}

	if uc.URL != "" && !sameHost(ref.BaseURL, uc.URL) {
		return errors.WithGuidance(
			errors.NewConfigurationError("run URL %q does not belong to %q", uc.RunURL, uc.URL),
			"The run URL needs to point to the QA Sphere instance configured through QAS_URL.",
			"Either update QAS_URL or use a run of the configured instance.",
		)
	}

	return nil
}

// ParserOptions returns the options passed to the report parser.
func (uc UploadConfig) ParserOptions() testing.ParserOptions {
	return testing.ParserOptions{SkipStdout: uc.SkipStdout, SkipStderr: uc.SkipStderr}
}

func sameHost(a, b string) bool {
	parse := func(raw string) string {
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}

		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}

		return strings.ToLower(u.Host)
	}

	host := parse(a)
	return host != "" && host == parse(b)
}
