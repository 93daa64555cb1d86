package reportio

import (
	"encoding/csv"
	"log/slog"
	"strconv"

	"github.com/gnames/gnbarcode/internal/ent/reporter"
	"github.com/gnames/gnfmt"
)

// writeCSV exports the parameter-combination summary, the table most
// downstream analyses start from.
func (r *reportio) writeCSV(sum reporter.Summary) error {
	path := r.artifactPath("summary.csv")
	f, err := fileCreate(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	err = w.Write([]string{
		"group", "specimens", "attempts", "successes",
		"success_rate", "avg_attempts", "ci_low", "ci_high"})
	if err != nil {
		return err
	}
	for _, g := range sum.Params {
		err = w.Write([]string{
			g.Key,
			strconv.Itoa(g.Specimens),
			strconv.Itoa(g.Attempts),
			strconv.Itoa(g.Successes),
			strconv.FormatFloat(g.SuccessRate, 'f', 2, 64),
			strconv.FormatFloat(g.AvgAttempts, 'f', 2, 64),
			strconv.FormatFloat(g.CILow, 'f', 2, 64),
			strconv.FormatFloat(g.CIHigh, 'f', 2, 64),
		})
		if err != nil {
			return err
		}
	}

	slog.Info("Wrote CSV artifact", "path", path)
	return nil
}

// writeJSON exports the whole summary for machine consumers.
func (r *reportio) writeJSON(sum reporter.Summary) error {
	path := r.artifactPath("summary.json")
	f, err := fileCreate(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(sum)
	if err != nil {
		slog.Error("Cannot encode summary", "error", err)
		return err
	}
	_, err = f.Write(bs)
	if err != nil {
		return err
	}

	slog.Info("Wrote JSON artifact", "path", path)
	return nil
}
