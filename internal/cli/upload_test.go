package cli_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/cli"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/mocks"
	"github.com/hypersequent/qas-cli/internal/parsing"
	"github.com/hypersequent/qas-cli/internal/providers"
	"github.com/hypersequent/qas-cli/internal/testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type submission struct {
	ProjectCode string
	RunID       int
	TestCaseID  string
	Request     api.SubmitResultRequest
}

func junitReport(names ...string) string {
	var builder strings.Builder

	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?><testsuites><testsuite name="suite">`)
	for _, name := range names {
		fmt.Fprintf(&builder, `<testcase name=%q classname="LoginTest" time="0.5"/>`, name)
	}
	builder.WriteString(`</testsuite></testsuites>`)

	return builder.String()
}

var _ = Describe("Upload", func() {
	var (
		ctx           context.Context
		service       cli.Service
		cfg           cli.UploadConfig
		mockAPI       *mocks.API
		mockFS        *mocks.FileSystem
		files         map[string]string
		runTestCases  []api.TestCase
		submissions   []submission
		uploads       []string
		recordedLogs  *observer.ObservedLogs
		mu            sync.Mutex
		remoteCases   []api.TestCase
		createdRuns   []api.CreateRunRequest
		writtenFiles  map[string]string
		now           time.Time
		createRunErr  error
		projectExists bool
	)

	BeforeEach(func() {
		ctx = context.Background()
		submissions = nil
		uploads = nil
		createdRuns = nil
		createRunErr = nil
		projectExists = true
		writtenFiles = make(map[string]string)
		now = time.Date(2026, time.October, 19, 13, 45, 0, 0, time.UTC)

		runTestCases = []api.TestCase{
			{ID: "t1", Seq: 1, Title: "Login"},
			{ID: "t2", Seq: 2, Title: "Logout"},
			{ID: "t3", Seq: 3, Title: "Signup"},
			{ID: "t4", Seq: 4, Title: "Reset password"},
			{ID: "t5", Seq: 5, Title: "Delete account"},
		}
		remoteCases = runTestCases

		files = map[string]string{
			"results.xml": junitReport(
				"PRJ-001: Login", "PRJ-002: Logout", "PRJ-003: Signup", "PRJ-004: Reset password", "PRJ-005: Delete account",
			),
		}

		cfg = cli.UploadConfig{
			ReportType: parsing.ReportTypeJUnit,
			Files:      []string{"results.xml"},
			URL:        "https://acme.eu1.qasphere.com",
			RunURL:     "https://acme.eu1.qasphere.com/project/PRJ/run/23",
		}

		mockFS = new(mocks.FileSystem)
		mockFS.MockReadFile = func(name string) ([]byte, error) {
			mu.Lock()
			defer mu.Unlock()

			content, ok := files[name]
			if !ok {
				return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
			}

			return []byte(content), nil
		}
		mockFS.MockWriteFile = func(name string, data []byte) error {
			writtenFiles[name] = string(data)
			return nil
		}

		mockAPI = new(mocks.API)
		mockAPI.MockProjectExists = func(_ context.Context, projectCode string) (bool, error) {
			Expect(projectCode).To(Equal("PRJ"))
			return projectExists, nil
		}
		mockAPI.MockGetRunTestCases = func(_ context.Context, projectCode string, runID int) ([]api.TestCase, error) {
			Expect(projectCode).To(Equal("PRJ"))
			Expect(runID).To(Equal(23))
			return runTestCases, nil
		}
		mockAPI.MockGetTestCasesBySequence = func(
			_ context.Context, projectCode string, seqs []int, page, limit int,
		) (api.Paginated[api.TestCase], error) {
			data := make([]api.TestCase, 0)
			for _, testCase := range remoteCases {
				for _, seq := range seqs {
					if testCase.Seq == seq {
						data = append(data, testCase)
					}
				}
			}

			return api.Paginated[api.TestCase]{Data: data, Total: len(data), Page: page, Limit: limit}, nil
		}
		mockAPI.MockCreateRun = func(_ context.Context, _ string, req api.CreateRunRequest) (int, error) {
			createdRuns = append(createdRuns, req)
			if createRunErr != nil {
				return 0, createRunErr
			}

			return 99, nil
		}
		mockAPI.MockUploadFile = func(_ context.Context, content []byte, filename string) (api.UploadedFile, error) {
			uploads = append(uploads, filename)
			return api.UploadedFile{ID: "f1", URL: "https://files.example.com/" + filename}, nil
		}
		mockAPI.MockSubmitResult = func(
			_ context.Context, projectCode string, runID int, testCaseID string, req api.SubmitResultRequest,
		) error {
			submissions = append(submissions, submission{projectCode, runID, testCaseID, req})
			return nil
		}

		var core zapcore.Core
		core, recordedLogs = observer.New(zapcore.DebugLevel)
		log := zaptest.NewLogger(GinkgoT(), zaptest.WrapOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core {
			return core
		}))).Sugar()

		service = cli.Service{
			API:        mockAPI,
			Log:        log,
			FileSystem: mockFS,
			TaskRunner: new(mocks.TaskRunner),
			Provider:   providers.Provider{ProviderName: "github", BranchName: "main"},
			Now:        func() time.Time { return now },
			LookupEnv: func(name string) (string, bool) {
				if name == "BUILD" {
					return "42", true
				}

				return "", false
			},
		}
	})

	logsContaining := func(level zapcore.Level, text string) int {
		count := 0
		for _, entry := range recordedLogs.FilterLevelExact(level).All() {
			if strings.Contains(entry.Message, text) {
				count++
			}
		}

		return count
	}

	Context("with an existing run", func() {
		It("submits every matched result", func() {
			cfg.Attachments = true

			Expect(service.Upload(ctx, cfg)).To(Succeed())

			Expect(uploads).To(BeEmpty())
			Expect(submissions).To(HaveLen(5))
			for i, submission := range submissions {
				Expect(submission.ProjectCode).To(Equal("PRJ"))
				Expect(submission.RunID).To(Equal(23))
				Expect(submission.TestCaseID).To(Equal(fmt.Sprintf("t%d", i+1)))
				Expect(submission.Request.Status).To(Equal(testing.TestStatusPassed))
				Expect(*submission.Request.TimeTaken).To(Equal(int64(500)))
			}
		})

		It("writes a summary after uploading", func() {
			summary := new(strings.Builder)
			service.Summary = summary

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(summary.String()).To(Equal("Uploaded 5 test results, 5 passed.\n"))
		})

		It("does not upload anything when a result has no marker", func() {
			files["results.xml"] = junitReport("PRJ-001: Login", "PRJ-002: Logout", "Signup works")

			err := service.Upload(ctx, cfg)
			Expect(err).To(HaveOccurred())

			matchErr, ok := errors.AsMatchError(err)
			Expect(ok).To(BeTrue())
			Expect(matchErr.Unmatched).To(Equal([]string{"Signup works"}))

			Expect(submissions).To(BeEmpty())
			Expect(logsContaining(zap.ErrorLevel, "does not match any test cases")).To(Equal(1))
		})

		It("uploads the matched results when forced", func() {
			files["results.xml"] = junitReport("PRJ-001: Login", "Signup works")
			cfg.Force = true

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(1))
			Expect(logsContaining(zap.WarnLevel, "does not match any test cases")).To(Equal(1))
		})

		It("only counts unmatched results when ignoring them", func() {
			files["results.xml"] = junitReport("PRJ-001: Login", "Signup works", "Logout works")
			cfg.IgnoreUnmatched = true

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(1))
			Expect(logsContaining(zap.WarnLevel, "does not match any test cases")).To(Equal(0))
			Expect(logsContaining(zap.InfoLevel, "Ignored 2 test results")).To(Equal(1))
		})

		It("fails when nothing matches", func() {
			files["results.xml"] = junitReport("PRJ-009: Unknown")
			cfg.Force = true

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsMatchError(err)
			Expect(ok).To(BeTrue())
			Expect(submissions).To(BeEmpty())
		})

		It("matches hyphen-less JUnit names", func() {
			files["results.xml"] = junitReport("test_prj001_login", "TestPRJ002Logout", "testSignupPRJ003")

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(3))
			Expect(submissions[2].TestCaseID).To(Equal("t3"))
		})

		It("fails on reports without test cases", func() {
			files["results.xml"] = junitReport()

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsInputError(err)
			Expect(ok).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("No valid test cases found in any of the files"))
		})

		It("fails on malformed reports", func() {
			files["results.xml"] = "<testsuites"

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsInputError(err)
			Expect(ok).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("results.xml"))
		})

		It("aborts on the first failed submission", func() {
			calls := 0
			mockAPI.MockSubmitResult = func(context.Context, string, int, string, api.SubmitResultRequest) error {
				calls++
				if calls == 2 {
					return errors.NewRemoteError("/result", 500, "internal error")
				}

				return nil
			}

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsRemoteError(err)
			Expect(ok).To(BeTrue())
			Expect(calls).To(Equal(2))
		})
	})

	Context("with attachments", func() {
		BeforeEach(func() {
			files["results.xml"] = `<testsuites><testsuite name="suite">
				<testcase name="PRJ-001: Login"><system-out>[[ATTACHMENT|shot.png]]</system-out></testcase>
				<testcase name="PRJ-002: Logout"><system-out>[[ATTACHMENT|missing.png]]</system-out></testcase>
			</testsuite></testsuites>`
			files["shot.png"] = "png"
			cfg.Attachments = true
		})

		It("links uploaded attachments & skips unreadable ones", func() {
			Expect(service.Upload(ctx, cfg)).To(Succeed())

			Expect(uploads).To(Equal([]string{"shot.png"}))
			Expect(submissions).To(HaveLen(2))
			Expect(submissions[0].Request.Comment).To(HaveSuffix(
				`<p>Attachments:</p><ul><li><a href="https://files.example.com/shot.png">shot.png</a></li></ul>`,
			))
			Expect(submissions[1].Request.Comment).ToNot(ContainSubstring("Attachments:"))
			Expect(logsContaining(zap.WarnLevel, "missing.png")).To(Equal(1))
		})

		It("aborts before submitting anything in strict mode", func() {
			cfg.StrictAttachments = true

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsAttachmentError(err)
			Expect(ok).To(BeTrue())
			Expect(uploads).To(BeEmpty())
			Expect(submissions).To(BeEmpty())
		})

		It("ignores strict mode when forced", func() {
			cfg.StrictAttachments = true
			cfg.Force = true

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(2))
		})
	})

	Context("with a new run", func() {
		BeforeEach(func() {
			cfg.RunURL = ""
			cfg.RunName = "Build {env:BUILD} on {YYYY}-{MM}-{DD}"
		})

		It("creates a run with the matched test cases", func() {
			Expect(service.Upload(ctx, cfg)).To(Succeed())

			Expect(createdRuns).To(HaveLen(1))
			Expect(createdRuns[0].Title).To(Equal("Build 42 on 2026-10-19"))
			Expect(createdRuns[0].Description).To(ContainSubstring("Branch: main"))
			Expect(createdRuns[0].QueryPlans).To(Equal([]api.QueryPlan{{TestCaseIDs: []string{"t1", "t2", "t3", "t4", "t5"}}}))

			Expect(submissions).To(HaveLen(5))
			Expect(submissions[0].RunID).To(Equal(99))
		})

		It("reuses the run when the title is taken", func() {
			createRunErr = errors.NewRemoteError("/project/PRJ/run", 409, "Title is taken, conflicting run id: 12")

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(5))
			for _, submission := range submissions {
				Expect(submission.RunID).To(Equal(12))
			}
		})

		It("fails on other run creation errors", func() {
			createRunErr = errors.NewRemoteError("/project/PRJ/run", 400, "invalid title")

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsRemoteError(err)
			Expect(ok).To(BeTrue())
			Expect(submissions).To(BeEmpty())
		})

		It("does not create a run when strict mode rejects an attachment", func() {
			files["results.xml"] = `<testsuites><testsuite name="suite">
				<testcase name="PRJ-001: Login"><system-out>[[ATTACHMENT|missing.png]]</system-out></testcase>
			</testsuite></testsuites>`
			cfg.Attachments = true
			cfg.StrictAttachments = true

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsAttachmentError(err)
			Expect(ok).To(BeTrue())
			Expect(createdRuns).To(BeEmpty())
			Expect(submissions).To(BeEmpty())
		})

		It("warns about placeholders it cannot resolve", func() {
			cfg.RunName = "Build {env:MISSING} {Q}"

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(createdRuns[0].Title).To(Equal("Build {env:MISSING} {Q}"))
			Expect(logsContaining(zap.WarnLevel, "{env:MISSING}")).To(Equal(1))
			Expect(logsContaining(zap.WarnLevel, "{Q}")).To(Equal(1))
		})

		It("uses the configured project code", func() {
			cfg.ProjectCode = "OTHER"
			mockAPI.MockProjectExists = func(_ context.Context, projectCode string) (bool, error) {
				Expect(projectCode).To(Equal("OTHER"))
				return false, nil
			}

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsConfigurationError(err)
			Expect(ok).To(BeTrue())
		})

		It("fails when the project code cannot be detected", func() {
			files["results.xml"] = junitReport("Login works")

			err := service.Upload(ctx, cfg)
			_, ok := errors.AsInputError(err)
			Expect(ok).To(BeTrue())
			Expect(createdRuns).To(BeEmpty())
		})

		It("creates missing test cases", func() {
			files["results.xml"] = junitReport("PRJ-001: Login", "Checkout works", "Checkout works", "Refund works")
			cfg.CreateTestCases = true

			mockAPI.MockGetFolders = func(_ context.Context, _ string, query api.FolderQuery) (api.Paginated[api.Folder], error) {
				Expect(query.Search).To(Equal("cli-import"))
				return api.Paginated[api.Folder]{Data: []api.Folder{{ID: 7, Title: "cli-import"}}}, nil
			}
			mockAPI.MockGetTestCasesInFolder = func(
				_ context.Context, _ string, folderID int, page, limit int,
			) (api.Paginated[api.TestCase], error) {
				Expect(folderID).To(Equal(7))
				return api.Paginated[api.TestCase]{
					Data:  []api.TestCase{{ID: "r1", Seq: 40, Title: "Refund works"}},
					Total: 1,
				}, nil
			}

			var createRequest api.CreateTestCasesRequest
			mockAPI.MockCreateTestCases = func(
				_ context.Context, _ string, req api.CreateTestCasesRequest,
			) ([]api.CreatedTestCase, error) {
				createRequest = req
				return []api.CreatedTestCase{{ID: "n1", Seq: 41}}, nil
			}

			Expect(service.Upload(ctx, cfg)).To(Succeed())

			Expect(createRequest).To(Equal(api.CreateTestCasesRequest{
				FolderPath: []string{"cli-import"},
				TestCases:  []api.NewTestCase{{Title: "Checkout works", Tags: []string{"cli-import"}}},
			}))

			Expect(createdRuns[0].QueryPlans[0].TestCaseIDs).To(Equal([]string{"t1", "n1", "r1"}))

			Expect(submissions).To(HaveLen(4))
			Expect(submissions[1].TestCaseID).To(Equal("n1"))
			Expect(submissions[2].TestCaseID).To(Equal("n1"))
			Expect(submissions[3].TestCaseID).To(Equal("r1"))

			Expect(writtenFiles).To(Equal(map[string]string{
				"/tmp/qasphere-automapping-20261019-134500.txt": "PRJ-041: Checkout works\nPRJ-040: Refund works\n",
			}))
		})

		It("searches every page of folders for the import folder", func() {
			files["results.xml"] = junitReport("PRJ-001: Login", "Refund works")
			cfg.CreateTestCases = true

			var pages []int
			mockAPI.MockGetFolders = func(_ context.Context, _ string, query api.FolderQuery) (api.Paginated[api.Folder], error) {
				pages = append(pages, query.Page)
				if query.Page == 1 {
					return api.Paginated[api.Folder]{
						Data:  []api.Folder{{ID: 3, Title: "cli-import", ParentID: 2}},
						Total: 2,
					}, nil
				}

				return api.Paginated[api.Folder]{Data: []api.Folder{{ID: 7, Title: "cli-import"}}, Total: 2}, nil
			}
			mockAPI.MockGetTestCasesInFolder = func(
				_ context.Context, _ string, folderID int, _, _ int,
			) (api.Paginated[api.TestCase], error) {
				Expect(folderID).To(Equal(7))
				return api.Paginated[api.TestCase]{
					Data:  []api.TestCase{{ID: "r1", Seq: 40, Title: "Refund works"}},
					Total: 1,
				}, nil
			}

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(pages).To(Equal([]int{1, 2}))
			Expect(createdRuns[0].QueryPlans[0].TestCaseIDs).To(Equal([]string{"t1", "r1"}))
		})

		It("keeps going when the mapping file cannot be written", func() {
			files["results.xml"] = junitReport("PRJ-001: Login", "Checkout works")
			cfg.CreateTestCases = true

			mockAPI.MockGetFolders = func(context.Context, string, api.FolderQuery) (api.Paginated[api.Folder], error) {
				return api.Paginated[api.Folder]{}, nil
			}
			mockAPI.MockCreateTestCases = func(
				context.Context, string, api.CreateTestCasesRequest,
			) ([]api.CreatedTestCase, error) {
				return []api.CreatedTestCase{{ID: "n1", Seq: 41}}, nil
			}
			mockFS.MockWriteFile = func(string, []byte) error {
				return errors.NewSystemError("read-only file system")
			}

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(2))
			Expect(logsContaining(zap.WarnLevel, "Unable to write the test case mapping")).To(Equal(1))
		})
	})

	Context("with Allure results", func() {
		It("submits broken results as blocked", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(
				filepath.Join(dir, "a1-result.json"),
				[]byte(`{"name": "PRJ-001: Login", "status": "broken", "statusDetails": {"message": "setup failed"}}`),
				0o600,
			)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "c1-container.json"), []byte(`{"children": []}`), 0o600)).To(Succeed())

			service.FileSystem = fs.Local{}
			cfg.ReportType = parsing.ReportTypeAllure
			cfg.Files = []string{dir}

			Expect(service.Upload(ctx, cfg)).To(Succeed())
			Expect(submissions).To(HaveLen(1))
			Expect(submissions[0].Request.Status).To(Equal(testing.TestStatusBlocked))
			Expect(submissions[0].Request.Comment).To(ContainSubstring("setup failed"))
		})
	})
})
