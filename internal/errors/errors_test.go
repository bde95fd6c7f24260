package errors_test

import (
	"github.com/hypersequent/qas-cli/internal/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errors", func() {
	Describe("ConfigurationError", func() {
		It("behaves like an error", func() {
			err := errors.NewConfigurationError("some error %v", "some value")
			Expect(err.Error()).To(Equal("some error some value"))

			configErr, ok := errors.AsConfigurationError(err)
			Expect(ok).To(BeTrue())
			Expect(configErr).To(Equal(err))

			internalErr, ok := errors.AsInternalError(err)
			Expect(ok).To(BeFalse())
			Expect(internalErr.E).To(BeNil())
		})
	})

	Describe("ExecutionError", func() {
		It("keeps the exit code", func() {
			err := errors.NewExecutionError(2, "some error %v", "some value")
			Expect(err.Error()).To(Equal("some error some value"))

			executionErr, ok := errors.AsExecutionError(errors.Wrap(err, "wrapped"))
			Expect(ok).To(BeTrue())
			Expect(executionErr.Code).To(Equal(2))
		})
	})

	Describe("InputError", func() {
		It("survives wrapping", func() {
			err := errors.NewInputError("some error %v", "some value")
			wrapped := errors.Wrapf(err, "while parsing %q", "report.xml")
			Expect(wrapped.Error()).To(Equal(`while parsing "report.xml": some error some value`))

			_, ok := errors.AsInputError(wrapped)
			Expect(ok).To(BeTrue())

			_, ok = errors.AsSystemError(wrapped)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("AttachmentError", func() {
		It("remembers the path", func() {
			err := errors.NewAttachmentError("shot.png", "Attachment not found: %s", "shot.png")
			attachmentErr, ok := errors.AsAttachmentError(err)
			Expect(ok).To(BeTrue())
			Expect(attachmentErr.Path).To(Equal("shot.png"))
			Expect(err.Error()).To(Equal("Attachment not found: shot.png"))
		})
	})

	Describe("RecordError", func() {
		It("is distinct from input errors", func() {
			err := errors.Wrap(errors.NewRecordError("invalid JSON: %s", "unexpected EOF"), "result.json")

			recordErr, ok := errors.AsRecordError(err)
			Expect(ok).To(BeTrue())
			Expect(recordErr.Error()).To(Equal("invalid JSON: unexpected EOF"))

			_, ok = errors.AsInputError(err)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("MatchError", func() {
		It("lists the unmatched names", func() {
			err := errors.NewMatchError([]string{"a", "b"}, "%d test results are unmatched", 2)
			matchErr, ok := errors.AsMatchError(err)
			Expect(ok).To(BeTrue())
			Expect(matchErr.Unmatched).To(ConsistOf("a", "b"))
		})
	})

	Describe("RemoteError", func() {
		It("prefers the message returned by the API", func() {
			err := errors.NewRemoteError("/api/public/v0/project/PRJ/run", 409, "Conflicting run id: 12")
			Expect(err.Error()).To(Equal("Conflicting run id: 12"))
		})

		It("falls back to the status code", func() {
			err := errors.NewRemoteError("/api/public/v0/file", 500, "")
			Expect(err.Error()).To(ContainSubstring("status code 500"))
		})
	})

	Describe("WithDecoration", func() {
		It("renders guidance with the error category", func() {
			err := errors.WithGuidance(
				errors.NewInputError("No valid test cases found"),
				"The report did not contain any test case.",
				"Check the file path.",
			)

			_, ok := errors.AsInputError(err)
			Expect(ok).To(BeTrue())

			decorated := errors.WithDecoration(err).Error()
			Expect(decorated).To(HavePrefix("Input Error: No valid test cases found"))
			Expect(decorated).To(ContainSubstring("The report did not contain any test case."))
			Expect(decorated).To(ContainSubstring("Check the file path."))
		})

		It("leaves plain errors untouched", func() {
			err := errors.NewSystemError("disk full")
			Expect(errors.WithDecoration(err)).To(Equal(err))
		})
	})
})
