package reportio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gnames/gnbarcode/internal/ent/reporter"
	"github.com/gnames/gnbarcode/internal/str"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnbarcode/pkg/ent/stats"
	"github.com/gnames/gnsys"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// reportio is a struct that implements reporter.Reporter interface.
type reportio struct {
	cfg config.Config
	col *collate.Collator
}

// New returns a new instance of Reporter. The report directory is
// created when absent.
func New(cfg config.Config) (reporter.Reporter, error) {
	err := gnsys.MakeDir(cfg.ReportDir)
	if err != nil {
		slog.Error("Cannot create report directory", "error", err,
			"dir", cfg.ReportDir)
		return nil, err
	}
	res := reportio{
		cfg: cfg,
		col: collate.New(language.English),
	}
	return &res, nil
}

// Report renders summary tables to stdout and writes the CSV and
// JSON artifacts.
func (r *reportio) Report(sum reporter.Summary) error {
	r.renderOverview(sum)
	r.renderGroups("Success by institution", sum.Institutions)
	r.renderGroups("Success by parameter combination", sum.Params)
	r.renderGroups("Success by taxonomic order", r.sorted(sum.Orders))
	r.renderGroups("Success by specimen age", sum.AgeBins)
	r.renderBreakdown(sum)
	r.renderWarnings(sum)

	err := r.writeCSV(sum)
	if err != nil {
		return err
	}
	return r.writeJSON(sum)
}

func (r *reportio) renderOverview(sum reporter.Summary) {
	fmt.Printf("# Barcode validation report (%s)\n\n",
		sum.GeneratedAt.Format("2006-01-02"))
	fmt.Printf("Validation attempts: %d\n", sum.Records)
	fmt.Printf("Distinct specimens:  %d\n", sum.Specimens)
	fmt.Printf("Control attempts:    %d (excluded from metrics)\n\n", sum.Controls)
}

func (r *reportio) renderGroups(title string, groups []stats.Group) {
	fmt.Printf("## %s\n\n", title)
	if len(groups) == 0 {
		fmt.Printf("no groups to report\n\n")
		return
	}
	fmt.Printf("%-45s %9s %9s %9s %8s %7s %15s\n",
		"group", "specimens", "attempts", "successes", "rate", "avg", "95% CI")
	for _, g := range groups {
		fmt.Printf("%-45s %9d %9d %9d %7.1f%% %7.2f [%5.1f, %5.1f]\n",
			str.ShortLabel(g.Key), g.Specimens, g.Attempts, g.Successes,
			g.SuccessRate, g.AvgAttempts, g.CILow, g.CIHigh)
	}
	fmt.Println()
}

func (r *reportio) renderBreakdown(sum reporter.Summary) {
	b := sum.Breakdown
	fmt.Printf("## Failure breakdown (%d attempts, criteria counted independently)\n\n", b.Records)
	fmt.Printf("%-30s %7.1f%%\n", "too many ambiguous bases", b.AmbigFail)
	fmt.Printf("%-30s %7.1f%%\n", "sequence too short", b.LengthFail)
	fmt.Printf("%-30s %7.1f%%\n", "taxonomic mismatch", b.TaxonFail)
	fmt.Printf("%-30s %7.1f%%\n\n", "stop codons present", b.StopFail)
}

func (r *reportio) renderWarnings(sum reporter.Summary) {
	if len(sum.Warnings) == 0 {
		return
	}
	fmt.Printf("## Data warnings (%d)\n\n", len(sum.Warnings))
	for _, w := range sum.Warnings {
		fmt.Printf("%s [%s]: %s\n", w.Stage, w.Kind, w.Detail)
	}
	fmt.Println()
}

// sorted orders group labels with an English collator, so taxon names
// with diacritics land where a reader expects them.
func (r *reportio) sorted(groups []stats.Group) []stats.Group {
	res := make([]stats.Group, len(groups))
	copy(res, groups)
	sort.SliceStable(res, func(i, j int) bool {
		return r.col.CompareString(res[i].Key, res[j].Key) < 0
	})
	return res
}

func (r *reportio) artifactPath(name string) string {
	return filepath.Join(r.cfg.ReportDir, name)
}

func fileCreate(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		slog.Error("Cannot create report artifact", "error", err, "path", path)
	}
	return f, err
}
