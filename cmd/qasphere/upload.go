package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hypersequent/qas-cli/internal/cli"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/parsing"
	"github.com/hypersequent/qas-cli/internal/testing"
)

type uploadArgs struct {
	runURL            string
	attachmentBaseDir string
	attachments       bool
	strictAttachments bool
	force             bool
	ignoreUnmatched   bool
	createTestCases   bool
	skipStdout        string
	skipStderr        string
}

var uploadDescriptions = map[parsing.ReportType]struct {
	short string
	long  string
}{
	parsing.ReportTypeJUnit:      {"Upload JUnit XML reports to QA Sphere", descriptionJUnitUpload},
	parsing.ReportTypePlaywright: {"Upload Playwright JSON reports to QA Sphere", descriptionPlaywrightUpload},
	parsing.ReportTypeAllure:     {"Upload Allure result directories to QA Sphere", descriptionAllureUpload},
	parsing.ReportTypeXCResult:   {"Upload Xcode result bundles to QA Sphere", descriptionXCResultUpload},
}

func configureUploadCmds(rootCmd *cobra.Command) error {
	for _, reportType := range parsing.ReportTypes {
		rootCmd.AddCommand(newUploadCmd(reportType))
	}

	return nil
}

func newUploadCmd(reportType parsing.ReportType) *cobra.Command {
	var args uploadArgs

	description := uploadDescriptions[reportType]

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [files...]", reportType),
		Short: description.short,
		Long:  description.long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			// Flags are bound here since all upload commands share the same configuration keys.
			if err := bindFlags(cmd.Flags(), map[string]string{
				"project_code": "project-code",
				"run_name":     "run-name",
			}); err != nil {
				return err
			}

			uploadCfg, err := args.toConfig(reportType, files)
			if err != nil {
				return err
			}

			if err := qasphere.Upload(cmd.Context(), uploadCfg); err != nil {
				// The error was logged already, only the exit code is left to communicate.
				return errors.NewExecutionError(1, "%s", err)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&args.runURL, "run-url", "r", "", "upload to an existing run instead of creating a new one")
	flags.String("project-code", "", "project code, detected from the test names by default (env: QAS_PROJECT_CODE)")
	flags.String("run-name", "", "title template of new runs, e.g. \"Nightly {YYYY}-{MM}-{DD} {env:BUILD_ID}\" "+
		"(env: QAS_RUN_NAME)")
	flags.BoolVar(&args.attachments, "attachments", false, "upload the attachments referenced by the results")
	flags.BoolVar(&args.strictAttachments, "strict-attachments", false, "fail if an attachment cannot be read")
	flags.StringVar(&args.attachmentBaseDir, "attachment-base-dir", "", "directory relative attachment paths start from")
	flags.BoolVar(&args.force, "force", false, "upload the matching results even if some results do not match")
	flags.BoolVar(&args.ignoreUnmatched, "ignore-unmatched", false, "silently skip results without matching test case")
	flags.BoolVar(&args.createTestCases, "create-tcases", false, "create test cases for results without matching test case")
	flags.StringVar(&args.skipStdout, "skip-report-stdout", string(testing.SkipNever),
		"drop stdout of passing results: on-success or never")
	flags.StringVar(&args.skipStderr, "skip-report-stderr", string(testing.SkipNever),
		"drop stderr of passing results: on-success or never")

	return cmd
}

func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return errors.NewInternalError("unable to bind flag %q: %s", name, err)
		}
	}

	return nil
}

func (a uploadArgs) toConfig(reportType parsing.ReportType, files []string) (cli.UploadConfig, error) {
	skipStdout, err := testing.ParseSkipOutputPolicy(a.skipStdout)
	if err != nil {
		return cli.UploadConfig{}, err
	}

	skipStderr, err := testing.ParseSkipOutputPolicy(a.skipStderr)
	if err != nil {
		return cli.UploadConfig{}, err
	}

	return cli.UploadConfig{
		ReportType:        reportType,
		Files:             files,
		URL:               cfg.URL,
		RunURL:            a.runURL,
		ProjectCode:       viper.GetString("project_code"),
		RunName:           viper.GetString("run_name"),
		AttachmentBaseDir: a.attachmentBaseDir,
		Attachments:       a.attachments,
		StrictAttachments: a.strictAttachments,
		Force:             a.force,
		IgnoreUnmatched:   a.ignoreUnmatched,
		CreateTestCases:   a.createTestCases,
		SkipStdout:        skipStdout,
		SkipStderr:        skipStderr,
	}, nil
}
