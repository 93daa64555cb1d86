package reporter

import (
	"time"

	"github.com/gnames/gnbarcode/pkg/ent/record"
	"github.com/gnames/gnbarcode/pkg/ent/stats"
)

// Summary is the assembled content of one report run.
type Summary struct {
	// GeneratedAt is the report timestamp; specimen ages are computed
	// against it.
	GeneratedAt time.Time

	// Records is the total number of validation attempts.
	Records int

	// Specimens is the number of distinct non-control specimens.
	Specimens int

	// Controls is the number of negative-control attempts, excluded
	// from every biological metric.
	Controls int

	// Institutions, Params, Orders, and AgeBins are grouped success
	// summaries.
	Institutions []stats.Group
	Params       []stats.Group
	Orders       []stats.Group
	AgeBins      []stats.Group

	// Breakdown holds independent per-criterion failure rates.
	Breakdown record.Breakdown

	// Warnings lists data-quality findings from every stage.
	Warnings []record.Warning
}

// Reporter renders a summary into report artifacts.
type Reporter interface {
	// Report renders tables to stdout and writes CSV and JSON
	// artifacts into the report directory.
	Report(sum Summary) error
}
