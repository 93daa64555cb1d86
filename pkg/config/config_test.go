package config_test

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/gnbarcode/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	Describe("New", func() {
		It("generates an instance with defaults", func() {
			cfg := config.New()
			Expect(cfg.JobsNum).To(Equal(4))
			Expect(cfg.MinGroupSize).To(Equal(5))
			Expect(cfg.AgeBinYears).To(Equal(20))
			Expect(cfg.AgeMaxYears).To(Equal(200))
			Expect(cfg.NHMFile).To(Equal("nhm_validation.tsv"))
		})

		It("uses options for setup", func() {
			cfg := config.New(getOpts()...)
			Expect(cfg.JobsNum).To(Equal(8))
			Expect(cfg.DataDir).To(Equal("/tmp/gnbarcode/data"))
			Expect(cfg.WorkDir).To(Equal("/tmp/gnbarcode"))
			Expect(cfg.Orders).To(Equal([]string{"Coleoptera", "Diptera"}))
		})

		It("derives key-value dirs from the work dir", func() {
			cfg := config.New(config.OptWorkDir("/tmp/gnbarcode"))
			Expect(cfg.SpecimenKVDir).To(Equal(filepath.Join("/tmp/gnbarcode", "specimen")))
			Expect(cfg.TaxonKVDir).To(Equal(filepath.Join("/tmp/gnbarcode", "taxon")))
		})
	})
})

func getOpts() []config.Option {
	var opts []config.Option
	opts = append(opts, config.OptDataDir("/tmp/gnbarcode/data"))
	opts = append(opts, config.OptWorkDir("/tmp/gnbarcode"))
	opts = append(opts, config.OptReportDir("/tmp/gnbarcode/report"))
	opts = append(opts, config.OptJobsNum(8))
	opts = append(opts, config.OptOrders([]string{"Coleoptera", "Diptera"}))
	opts = append(opts, config.OptPgHost("localhost"))
	opts = append(opts, config.OptPgUser("postgres"))
	opts = append(opts, config.OptPgPass(""))
	opts = append(opts, config.OptPgDB("gnbarcode"))
	return opts
}
