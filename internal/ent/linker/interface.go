package linker

import (
	"context"

	"github.com/gnames/gnbarcode/pkg/ent/record"
)

// Linker joins validation records with specimen metadata and taxonomy.
// Both joins are left joins on unique keys: every validation record
// comes back exactly once, with nil metadata when no match exists.
type Linker interface {
	// Build populates the lookup stores from metadata and taxonomy
	// rows. Duplicate keys keep the first row and produce a warning.
	Build(specimens []record.SpecimenMetadata, taxa []record.TaxonomyRecord) error

	// Link joins validation records against the built stores,
	// preserving input order.
	Link(ctx context.Context, recs []record.ValidationRecord) ([]record.JoinedRecord, error)

	// Warnings returns data-quality findings collected during Build
	// and Link.
	Warnings() []record.Warning
}
