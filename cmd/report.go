package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/gnames/gnbarcode/internal/ent/kv"
	"github.com/gnames/gnbarcode/internal/io/kvio"
	"github.com/gnames/gnbarcode/internal/io/linkerio"
	"github.com/gnames/gnbarcode/internal/io/loaderio"
	"github.com/gnames/gnbarcode/internal/io/reportio"
	gnbarcode "github.com/gnames/gnbarcode/pkg"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Builds validation-success tables from the input TSV files",
	Run: func(_ *cobra.Command, _ []string) {
		var err error
		var kvSpec, kvTaxon kv.KeyVal
		cfg := config.New(opts...)
		now := time.Now()
		gnb := gnbarcode.New(cfg, now)

		kvSpec, err = kvio.New(cfg.SpecimenKVDir)
		if err != nil {
			slog.Error("Cannot create specimen Key-Value store.", "error", err)
			os.Exit(1)
		}
		kvTaxon, err = kvio.New(cfg.TaxonKVDir)
		if err != nil {
			slog.Error("Cannot create taxon Key-Value store.", "error", err)
			os.Exit(1)
		}

		ld := loaderio.New(cfg)
		lnk := linkerio.New(cfg, kvSpec, kvTaxon, now)
		rep, err := reportio.New(cfg)
		if err != nil {
			slog.Error("Cannot create Reporter.", "error", err)
			os.Exit(1)
		}

		err = gnb.Report(ld, lnk, rep)
		if err != nil {
			slog.Error("Cannot generate report", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
