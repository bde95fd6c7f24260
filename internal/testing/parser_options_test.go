package testing_test

import (
	"github.com/hypersequent/qas-cli/internal/testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParserOptions", func() {
	It("drops output of passing results only when skipping on success", func() {
		opts := testing.ParserOptions{SkipStdout: testing.SkipOnSuccess, SkipStderr: testing.SkipNever}

		Expect(opts.IncludeStdout(testing.TestStatusPassed)).To(BeFalse())
		Expect(opts.IncludeStderr(testing.TestStatusPassed)).To(BeTrue())

		for _, status := range []testing.TestStatus{
			testing.TestStatusFailed, testing.TestStatusBlocked, testing.TestStatusSkipped,
		} {
			Expect(opts.IncludeStdout(status)).To(BeTrue())
			Expect(opts.IncludeStderr(status)).To(BeTrue())
		}
	})

	It("validates policies", func() {
		policy, err := testing.ParseSkipOutputPolicy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(policy).To(Equal(testing.SkipNever))

		policy, err = testing.ParseSkipOutputPolicy("on-success")
		Expect(err).NotTo(HaveOccurred())
		Expect(policy).To(Equal(testing.SkipOnSuccess))

		_, err = testing.ParseSkipOutputPolicy("always")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("TestStatus", func() {
	It("uses the QA Sphere wire values", func() {
		Expect(testing.TestStatusBlocked.String()).To(Equal("blocked"))
		Expect(testing.TestStatusSkipped.String()).To(Equal("skipped"))
	})

	It("rejects unknown statuses", func() {
		var status testing.TestStatus
		Expect(status.UnmarshalText([]byte("broken"))).NotTo(Succeed())
	})
})
