package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/gnames/gnbarcode/internal/ent/kv"
	"github.com/gnames/gnbarcode/internal/io/dbio"
	"github.com/gnames/gnbarcode/internal/io/kvio"
	"github.com/gnames/gnbarcode/internal/io/linkerio"
	"github.com/gnames/gnbarcode/internal/io/loaderio"
	gnbarcode "github.com/gnames/gnbarcode/pkg"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/spf13/cobra"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Saves classified validation results to PostgreSQL",
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
		up, err := dbio.New(cfg)
		if err != nil {
			slog.Error("Cannot create Uploader.", "error", err)
			os.Exit(1)
		}

		err = gnb.Upload(ld, lnk, up)
		if err != nil {
			slog.Error("Cannot upload results", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
