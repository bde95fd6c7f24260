package markers_test

import (
	"github.com/hypersequent/qas-cli/internal/markers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseTCaseURL", func() {
	It("extracts the marker", func() {
		marker, ok := markers.ParseTCaseURL("https://acme.eu1.qasphere.com/project/PRJ/tcase/12")
		Expect(ok).To(BeTrue())
		Expect(marker).To(Equal(markers.Marker{ProjectCode: "PRJ", Seq: 12}))
	})

	It("rejects other URLs", func() {
		_, ok := markers.ParseTCaseURL("https://github.com/acme/app/issues/12")
		Expect(ok).To(BeFalse())

		_, ok = markers.ParseTCaseURL("PRJ-012")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ParseRunURL", func() {
	It("extracts base URL, project and run", func() {
		ref, ok := markers.ParseRunURL("https://acme.eu1.qasphere.com/project/PRJ/run/23?tab=results")
		Expect(ok).To(BeTrue())
		Expect(ref).To(Equal(markers.RunRef{
			BaseURL:     "https://acme.eu1.qasphere.com",
			ProjectCode: "PRJ",
			RunID:       23,
		}))
	})

	It("accepts trailing path segments", func() {
		ref, ok := markers.ParseRunURL("http://localhost:5173/project/BD/run/7/tcase/3")
		Expect(ok).To(BeTrue())
		Expect(ref.RunID).To(Equal(7))
		Expect(ref.BaseURL).To(Equal("http://localhost:5173"))
	})

	It("rejects non-run URLs", func() {
		_, ok := markers.ParseRunURL("https://acme.eu1.qasphere.com/project/PRJ/tcase/23")
		Expect(ok).To(BeFalse())
	})
})
