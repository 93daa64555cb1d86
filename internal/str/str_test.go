package str_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gnbarcode/internal/str"
)

func TestStr(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Str Suite")
}

var _ = Describe("SpecimenID", func() {
	It("truncates at the first underscore", func() {
		Expect(str.SpecimenID("BGE00123_r_1.3_s_100")).To(Equal("BGE00123"))
		Expect(str.SpecimenID("NHMUK014382_A01")).To(Equal("NHMUK014382"))
	})

	It("returns identifiers without underscores unchanged", func() {
		Expect(str.SpecimenID("BGE00123")).To(Equal("BGE00123"))
		Expect(str.SpecimenID("")).To(Equal(""))
	})

	It("keeps only the prefix when several underscores occur", func() {
		Expect(str.SpecimenID("A_B_C")).To(Equal("A"))
	})

	It("yields an empty specimen for a leading underscore", func() {
		Expect(str.SpecimenID("_tail")).To(Equal(""))
	})
})

var _ = Describe("IsControl", func() {
	It("detects the negative-control suffix", func() {
		Expect(str.IsControl("BGE00123-NC")).To(BeTrue())
		Expect(str.IsControl("BGE00123")).To(BeFalse())
	})

	It("requires the suffix at the end", func() {
		Expect(str.IsControl("BGE-NC-00123")).To(BeFalse())
		Expect(str.IsControl("-NC")).To(BeTrue())
	})
})

var _ = Describe("BracketFloat", func() {
	It("parses bracketed numbers", func() {
		v, ok := str.BracketFloat("[1.5]")
		Expect(ok).To(BeTrue())
		Expect(v).To(BeNumerically("~", 1.5, 1e-9))

		v, ok = str.BracketFloat("[100]")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(100.0))
	})

	It("rejects non-numeric and empty content", func() {
		_, ok := str.BracketFloat("[NA]")
		Expect(ok).To(BeFalse())
		_, ok = str.BracketFloat("")
		Expect(ok).To(BeFalse())
		_, ok = str.BracketFloat("[]")
		Expect(ok).To(BeFalse())
	})

	It("rejects malformed bracketing", func() {
		_, ok := str.BracketFloat("1.5")
		Expect(ok).To(BeFalse())
		_, ok = str.BracketFloat("[1.5")
		Expect(ok).To(BeFalse())
		_, ok = str.BracketFloat("[1.5 2]")
		Expect(ok).To(BeFalse())
	})

	It("rejects multiple decimal points", func() {
		_, ok := str.BracketFloat("[1.2.3]")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("SeqIDParam", func() {
	It("extracts both parameters from a composite identifier", func() {
		r, ok := str.SeqIDParam("BGE00123-NC_r_1.3_s_100", "_r_")
		Expect(ok).To(BeTrue())
		Expect(r).To(BeNumerically("~", 1.3, 1e-9))

		s, ok := str.SeqIDParam("BGE00123-NC_r_1.3_s_100", "_s_")
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(100.0))
	})

	It("returns false when the marker is absent", func() {
		_, ok := str.SeqIDParam("BGE00123_s_100", "_r_")
		Expect(ok).To(BeFalse())
	})

	It("returns false when no digits follow the marker", func() {
		_, ok := str.SeqIDParam("BGE00123_r_x", "_r_")
		Expect(ok).To(BeFalse())
		_, ok = str.SeqIDParam("BGE00123_r_", "_r_")
		Expect(ok).To(BeFalse())
	})

	It("stops at the second decimal point", func() {
		v, ok := str.SeqIDParam("X_r_1.3.5", "_r_")
		Expect(ok).To(BeTrue())
		Expect(v).To(BeNumerically("~", 1.3, 1e-9))
	})

	It("does not treat a trailing dot as part of the number", func() {
		v, ok := str.SeqIDParam("X_r_13.suffix", "_r_")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(13.0))
	})
})

var _ = Describe("ShortLabel", func() {
	It("keeps short labels intact", func() {
		Expect(str.ShortLabel("Coleoptera")).To(Equal("Coleoptera"))
	})

	It("truncates long labels to 44 characters", func() {
		long := "Lepidoptera: Gelechiidae: Anacampsinae: Anacampsis populella group"
		Expect(str.ShortLabel(long)).To(HaveLen(44))
		Expect(str.ShortLabel(long)).To(HaveSuffix("..."))
	})
})

var _ = Describe("QuoteString", func() {
	It("quotes and escapes", func() {
		Expect(str.QuoteString("O'Brien's moth")).To(Equal("'O''Brien''s moth'"))
	})
})

var _ = Describe("CapitalizeRank", func() {
	It("capitalizes the first letter only", func() {
		Expect(str.CapitalizeRank("lepidoptera")).To(Equal("Lepidoptera"))
		Expect(str.CapitalizeRank("")).To(Equal(""))
	})
})
