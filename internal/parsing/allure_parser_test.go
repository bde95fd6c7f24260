package parsing_test

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/parsing"
	"github.com/hypersequent/qas-cli/internal/testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AllureParser", func() {
	var (
		ctx          context.Context
		parser       parsing.AllureParser
		dir          string
		opts         testing.ParserOptions
		recordedLogs *observer.ObservedLogs
	)

	write := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		var core zapcore.Core

		ctx = context.Background()
		dir = GinkgoT().TempDir()
		opts = testing.ParserOptions{SkipStdout: testing.SkipNever, SkipStderr: testing.SkipNever}
		core, recordedLogs = observer.New(zapcore.DebugLevel)
		parser = parsing.AllureParser{
			FileSystem: fs.Local{},
			Log: zaptest.NewLogger(GinkgoT(), zaptest.WrapOptions(
				zap.WrapCore(func(_ zapcore.Core) zapcore.Core { return core }),
			)).Sugar(),
		}
	})

	It("only reads result files", func() {
		write("a1-result.json", `{
  "name": "deletes account",
  "status": "broken",
  "statusDetails": {"message": "setup <failed>", "trace": "at setup()"},
  "start": 1700000000000,
  "stop": 1700000001500
}`)
		write("b2-container.json", `{"children": ["a1"]}`)
		write("environment.xml", `<environment/>`)
		write("c3-attachment.txt", `log`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(1))

		Expect(results[0].Name).To(Equal("deletes account"))
		Expect(results[0].Status).To(Equal(testing.TestStatusBlocked))
		Expect(results[0].Message).To(Equal("<pre><code>setup &lt;failed&gt;</code></pre><pre><code>at setup()</code></pre>"))
		Expect(*results[0].TimeTaken).To(Equal(int64(1500)))
		Expect(results[0].Attachments).ToNot(BeNil())
		Expect(results[0].Attachments).To(BeEmpty())
	})

	DescribeTable("status mapping",
		func(status string, expected testing.TestStatus) {
			write("x-result.json", `{"name": "t", "status": "`+status+`"}`)

			results, err := parser.Parse(ctx, dir, "", opts)
			Expect(err).ToNot(HaveOccurred())
			Expect(results[0].Status).To(Equal(expected))
		},
		Entry("passed", "passed", testing.TestStatusPassed),
		Entry("failed", "failed", testing.TestStatusFailed),
		Entry("broken", "broken", testing.TestStatusBlocked),
		Entry("skipped", "skipped", testing.TestStatusSkipped),
		Entry("unknown", "unknown", testing.TestStatusPassed),
		Entry("anything else", "interrupted", testing.TestStatusPassed),
	)

	It("skips malformed results with a warning", func() {
		write("a-result.json", `{"name": "valid", "status": "passed"}`)
		write("b-result.json", `{"name": `)
		write("c-result.json", `{"name": 42, "status": "passed"}`)
		write("d-result.json", `{"status": "passed", "start": "yesterday"}`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Name).To(Equal("valid"))

		warnings := recordedLogs.FilterLevelExact(zap.WarnLevel).All()
		Expect(warnings).To(HaveLen(3))
		Expect(warnings[0].Message).To(ContainSubstring("b-result.json"))
		Expect(warnings[1].Message).To(ContainSubstring("c-result.json"))
		Expect(warnings[2].Message).To(ContainSubstring("d-result.json"))
	})

	It("derives the folder from labels", func() {
		write("a-result.json", `{"name": "a", "labels": [
  {"name": "package", "value": "com.acme"},
  {"name": "feature", "value": "Accounts"},
  {"name": "parentSuite", "value": "E2E"},
  {"name": "suite", "value": "Deletion"}
]}`)
		write("b-result.json", `{"name": "b", "labels": [
  {"name": "package", "value": "com.acme"},
  {"name": "feature", "value": "Accounts"}
]}`)
		write("c-result.json", `{"name": "c", "labels": [{"name": "host", "value": "ci-1"}]}`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].Folder).To(Equal("Deletion"))
		Expect(results[1].Folder).To(Equal("Accounts"))
		Expect(results[2].Folder).To(BeEmpty())
	})

	It("extracts markers from links", func() {
		write("a-result.json", `{"name": "by tms link", "links": [
  {"name": "PRJ-999", "url": "https://example.com", "type": "issue"},
  {"name": "case", "url": "https://acme.eu1.qasphere.com/project/PRJ/tcase/12", "type": "tms"}
]}`)
		write("b-result.json", `{"name": "by link name", "links": [
  {"name": "docs", "url": "https://example.com/docs", "type": "link"},
  {"name": "PRJ-013", "url": "https://example.com", "type": "issue"}
]}`)
		write("c-result.json", `{"name": "without marker", "links": [{"name": "JIRA 13", "type": "issue"}]}`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].Name).To(Equal("PRJ-012: by tms link"))
		Expect(results[1].Name).To(Equal("PRJ-013: by link name"))
		Expect(results[2].Name).To(Equal("without marker"))
	})

	It("leaves the message empty without status details", func() {
		write("a-result.json", `{"name": "a", "status": "failed", "statusDetails": {}}`)
		write("b-result.json", `{"name": "b", "status": "failed"}`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results[0].Message).To(BeEmpty())
		Expect(results[1].Message).To(BeEmpty())
		Expect(results[0].TimeTaken).To(BeNil())
	})

	It("skips status details of passing results when configured", func() {
		opts.SkipStdout = testing.SkipOnSuccess
		opts.SkipStderr = testing.SkipOnSuccess
		write("a-result.json", `{"name": "a", "status": "passed", "statusDetails": {"message": "info"}}`)
		write("b-result.json", `{"name": "b", "status": "failed", "statusDetails": {"message": "bad"}}`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results[0].Message).To(BeEmpty())
		Expect(results[1].Message).To(Equal("<pre><code>bad</code></pre>"))
	})

	It("resolves attachments relative to the results directory", func() {
		write("1234-attachment.png", "png")
		write("a-result.json", `{
  "name": "a",
  "attachments": [{"name": "screenshot", "source": "1234-attachment.png", "type": "image/png"}],
  "steps": [{"name": "step", "attachments": [
    {"name": "screenshot", "source": "1234-attachment.png"},
    {"name": "log", "source": "5678-attachment.txt"}
  ]}]
}`)

		results, err := parser.Parse(ctx, dir, "", opts)
		Expect(err).ToNot(HaveOccurred())
		Expect(results[0].Attachments).To(HaveLen(2))
		Expect(results[0].Attachments[0].Filename).To(Equal("1234-attachment.png"))
		Expect(results[0].Attachments[0].Buffer).To(Equal([]byte("png")))
		Expect(results[0].Attachments[1].Err).To(MatchError("Attachment not found: 5678-attachment.txt"))
	})

	It("errors when the directory cannot be read", func() {
		results, err := parser.Parse(ctx, filepath.Join(dir, "missing"), "", opts)
		Expect(err).To(HaveOccurred())
		Expect(results).To(BeNil())

		_, ok := errors.AsInputError(err)
		Expect(ok).To(BeTrue())
	})
})
