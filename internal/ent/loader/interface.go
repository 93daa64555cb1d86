package loader

import (
	"context"

	"github.com/gnames/gnbarcode/pkg/ent/record"
)

// Loader reads the four input tables and derives per-record fields
// that depend only on the source row: specimen identifier, control
// flag, pipeline parameters, canonical identification.
type Loader interface {
	// Validation loads the validation output of one laboratory.
	Validation(ctx context.Context, inst record.Institution) ([]record.ValidationRecord, error)

	// Specimens loads the specimen-metadata export.
	Specimens(ctx context.Context) ([]record.SpecimenMetadata, error)

	// Taxonomy loads the taxonomy export.
	Taxonomy(ctx context.Context) ([]record.TaxonomyRecord, error)

	// Warnings returns data-quality findings collected during loads.
	Warnings() []record.Warning
}
