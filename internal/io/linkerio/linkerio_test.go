package linkerio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gnbarcode/internal/ent/kv"
	"github.com/gnames/gnbarcode/internal/ent/linker"
	"github.com/gnames/gnbarcode/internal/io/kvio"
	"github.com/gnames/gnbarcode/internal/io/linkerio"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnbarcode/pkg/ent/record"
)

func TestLinkerIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LinkerIO Suite")
}

var now = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func specimens() []record.SpecimenMetadata {
	return []record.SpecimenMetadata{
		{ProcessID: "NHMUK014382", SampleID: "S1", CollectedAt: date(2001, time.August, 12)},
		{ProcessID: "BGE00200", SampleID: "S2"},
	}
}

func taxa() []record.TaxonomyRecord {
	return []record.TaxonomyRecord{
		{SampleID: "S1", Order: "Hymenoptera", Genus: "Formica", Species: "Formica rufa"},
		{SampleID: "S2", Order: "Hymenoptera", Genus: "Bombus", Species: "Bombus terrestris"},
	}
}

func validations() []record.ValidationRecord {
	return []record.ValidationRecord{
		{SeqID: "NHMUK014382_A01", SpecimenID: "NHMUK014382", Institution: record.InstNHM},
		{SeqID: "BGE00200_r_1.5_s_50", SpecimenID: "BGE00200", Institution: record.InstNaturalis},
		{SeqID: "BGE00123-NC_r_1.3_s_100", SpecimenID: "BGE00123-NC", IsControl: true,
			Institution: record.InstNaturalis},
	}
}

var _ = Describe("Linker", func() {
	var (
		dir  string
		lnk  linker.Linker
		ctx  = context.Background()
		kvSp kv.KeyVal
		kvTx kv.KeyVal
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "linkerio")
		Expect(err).To(BeNil())
		kvSp, err = kvio.New(filepath.Join(dir, "specimen"))
		Expect(err).To(BeNil())
		kvTx, err = kvio.New(filepath.Join(dir, "taxon"))
		Expect(err).To(BeNil())
		cfg := config.New(config.OptJobsNum(2))
		lnk = linkerio.New(cfg, kvSp, kvTx, now)
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("joins metadata and taxonomy through the specimen identifier", func() {
		Expect(lnk.Build(specimens(), taxa())).To(BeNil())
		joined, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())
		Expect(joined).To(HaveLen(3))

		jr := joined[0]
		Expect(jr.Specimen).NotTo(BeNil())
		Expect(jr.Specimen.SampleID).To(Equal("S1"))
		Expect(jr.Taxon).NotTo(BeNil())
		Expect(jr.Taxon.Species).To(Equal("Formica rufa"))
	})

	It("computes specimen age in 365.25-day years", func() {
		Expect(lnk.Build(specimens(), taxa())).To(BeNil())
		joined, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())

		age := joined[0].Specimen.AgeYears
		Expect(age).NotTo(BeNil())
		Expect(*age).To(BeNumerically("~", 25.05, 0.01))
	})

	It("propagates a missing collection date as nil age", func() {
		Expect(lnk.Build(specimens(), taxa())).To(BeNil())
		joined, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())
		Expect(joined[1].Specimen).NotTo(BeNil())
		Expect(joined[1].Specimen.AgeYears).To(BeNil())
	})

	It("keeps unmatched records with nil metadata", func() {
		Expect(lnk.Build(specimens(), taxa())).To(BeNil())
		joined, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())

		ctl := joined[2]
		Expect(ctl.SpecimenID).To(Equal("BGE00123-NC"))
		Expect(ctl.Specimen).To(BeNil())
		Expect(ctl.Taxon).To(BeNil())
	})

	It("never drops or duplicates rows and preserves order", func() {
		Expect(lnk.Build(specimens(), taxa())).To(BeNil())
		recs := validations()
		joined, err := lnk.Link(ctx, recs)
		Expect(err).To(BeNil())
		Expect(joined).To(HaveLen(len(recs)))
		for i := range recs {
			Expect(joined[i].SeqID).To(Equal(recs[i].SeqID))
		}
	})

	It("is idempotent across runs", func() {
		Expect(lnk.Build(specimens(), taxa())).To(BeNil())
		first, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())
		second, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())
		Expect(second).To(Equal(first))
	})

	It("keeps the first row and warns on duplicate keys", func() {
		dup := append(specimens(),
			record.SpecimenMetadata{ProcessID: "NHMUK014382", SampleID: "S9"})
		Expect(lnk.Build(dup, taxa())).To(BeNil())

		var kinds []string
		for _, w := range lnk.Warnings() {
			kinds = append(kinds, w.Kind)
		}
		Expect(kinds).To(ContainElement("duplicate-key"))

		joined, err := lnk.Link(ctx, validations())
		Expect(err).To(BeNil())
		Expect(joined[0].Specimen.SampleID).To(Equal("S1"))
	})
})
