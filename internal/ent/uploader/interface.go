package uploader

import (
	"context"

	"github.com/gnames/gnbarcode/pkg/ent/record"
	"github.com/gnames/gnbarcode/pkg/ent/stats"
)

// Uploader stores classified results and group summaries in a
// database for downstream analysis.
type Uploader interface {
	// Upload migrates the schema and saves results and groups.
	Upload(ctx context.Context, res []record.ValidityResult, groups []stats.Group) error
}
