package record_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gnbarcode/pkg/ent/record"
)

func TestRecord(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Record Suite")
}

func iptr(i int) *int       { return &i }
func sptr(s string) *string { return &s }

// goodRecord passes every criterion.
func goodRecord() record.JoinedRecord {
	return record.JoinedRecord{
		ValidationRecord: record.ValidationRecord{
			SeqID:          "BGE00123_r_1.3_s_100",
			SpecimenID:     "BGE00123",
			Institution:    record.InstNaturalis,
			BaseCount:      iptr(520),
			AmbigCount:     iptr(3),
			StopCodons:     iptr(0),
			Error:          "None",
			Identification: sptr("Formica"),
			ObsTaxon:       sptr("Formica rufa"),
		},
	}
}

var _ = Describe("Check", func() {
	It("accepts a record that passes all criteria", func() {
		res := record.Check(goodRecord())
		Expect(res.Valid).To(BeTrue())
		Expect(res.AmbigFail).To(BeFalse())
		Expect(res.LengthFail).To(BeFalse())
		Expect(res.TaxonFail).To(BeFalse())
		Expect(res.StopFail).To(BeFalse())
	})

	It("fails on short sequences and flags only the length criterion", func() {
		jr := goodRecord()
		jr.BaseCount = iptr(480)
		res := record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.LengthFail).To(BeTrue())
		Expect(res.AmbigFail).To(BeFalse())
		Expect(res.TaxonFail).To(BeFalse())
		Expect(res.StopFail).To(BeFalse())
	})

	It("fails on too many ambiguous bases", func() {
		jr := goodRecord()
		jr.AmbigCount = iptr(7)
		res := record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.AmbigFail).To(BeTrue())
	})

	It("accepts the ambiguity boundary value", func() {
		jr := goodRecord()
		jr.AmbigCount = iptr(record.MaxAmbig)
		Expect(record.Check(jr).Valid).To(BeTrue())
	})

	It("accepts the length boundary value", func() {
		jr := goodRecord()
		jr.BaseCount = iptr(record.MinLength)
		Expect(record.Check(jr).Valid).To(BeTrue())
	})

	It("fails on a processing error", func() {
		jr := goodRecord()
		jr.Error = "translation failed"
		Expect(record.Check(jr).Valid).To(BeFalse())
	})

	It("fails on stop codons", func() {
		jr := goodRecord()
		jr.StopCodons = iptr(2)
		res := record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.StopFail).To(BeTrue())
	})

	It("matches identification as an exact substring", func() {
		jr := goodRecord()
		jr.Identification = sptr("formica")
		res := record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.TaxonFail).To(BeTrue())
	})

	It("treats nil operands as failing criteria, not as panics", func() {
		jr := goodRecord()
		jr.BaseCount = nil
		res := record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.LengthFail).To(BeTrue())

		jr = goodRecord()
		jr.AmbigCount = nil
		res = record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.AmbigFail).To(BeFalse())

		jr = goodRecord()
		jr.StopCodons = nil
		res = record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.StopFail).To(BeFalse())

		jr = goodRecord()
		jr.Identification = nil
		res = record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.TaxonFail).To(BeTrue())

		jr = goodRecord()
		jr.ObsTaxon = nil
		res = record.Check(jr)
		Expect(res.Valid).To(BeFalse())
		Expect(res.TaxonFail).To(BeTrue())
	})

	It("is a strict conjunction: degrading any criterion flips the result", func() {
		degrade := []func(*record.JoinedRecord){
			func(jr *record.JoinedRecord) { jr.BaseCount = iptr(100) },
			func(jr *record.JoinedRecord) { jr.AmbigCount = iptr(10) },
			func(jr *record.JoinedRecord) { jr.Error = "err" },
			func(jr *record.JoinedRecord) { jr.StopCodons = iptr(1) },
			func(jr *record.JoinedRecord) { jr.ObsTaxon = sptr("Lasius niger") },
		}
		for _, f := range degrade {
			jr := goodRecord()
			f(&jr)
			Expect(record.Check(jr).Valid).To(BeFalse())
		}
	})
})

var _ = Describe("FailureBreakdown", func() {
	It("computes independent per-criterion rates", func() {
		short := goodRecord()
		short.BaseCount = iptr(480)
		doubly := goodRecord()
		doubly.BaseCount = iptr(480)
		doubly.AmbigCount = iptr(9)

		rs := record.CheckAll([]record.JoinedRecord{goodRecord(), short, doubly, goodRecord()})
		b := record.FailureBreakdown(rs)
		Expect(b.Records).To(Equal(4))
		Expect(b.LengthFail).To(Equal(50.0))
		Expect(b.AmbigFail).To(Equal(25.0))
		Expect(b.TaxonFail).To(Equal(0.0))
		Expect(b.StopFail).To(Equal(0.0))
	})

	It("handles an empty batch", func() {
		b := record.FailureBreakdown(nil)
		Expect(b.Records).To(Equal(0))
		Expect(b.LengthFail).To(Equal(0.0))
	})
})
