// Package record defines the data model of the barcode validation
// pipeline: validation attempts, specimen metadata, taxonomy, and the
// derived records produced by linkage and classification.
package record

import "time"

// Institution tags the laboratory that produced a validation output.
// The two laboratories encode identical pipeline parameters in
// incompatible textual conventions, so the tag drives extraction rules.
type Institution string

const (
	// InstNHM is the Natural History Museum London pipeline. Its
	// parameters come from dedicated bracket-delimited columns.
	InstNHM Institution = "NHM"

	// InstNaturalis is the Naturalis Biodiversity Center pipeline. Its
	// parameters are embedded in the sequence identifier after the
	// literal markers "_r_" and "_s_".
	InstNaturalis Institution = "Naturalis"
)

// ValidationRecord is one attempt to recover a barcode for a specimen
// under one combination of pipeline parameters. A parameter sweep
// produces up to six attempts per specimen.
type ValidationRecord struct {
	// RecordID is a UUID v5 generated from SeqID. It gives exported
	// rows a stable identity across runs.
	RecordID string

	// SeqID is the raw sequence identifier as given by the laboratory.
	SeqID string

	// SpecimenID is SeqID truncated at the first underscore. It is the
	// join key to specimen metadata and it always is a non-empty prefix
	// of SeqID, but it need not exist in the metadata table.
	SpecimenID string

	// IsControl is true for negative-control samples (specimen
	// identifier ends with "-NC").
	IsControl bool

	// Institution tags the producing laboratory.
	Institution Institution

	// BaseCount is the nucleotide count of the recovered marker.
	// Nil when missing or unparseable.
	BaseCount *int

	// AmbigCount is the number of ambiguous bases. Nil when missing.
	AmbigCount *int

	// StopCodons is the number of stop codons found in translation.
	// Nil when missing.
	StopCodons *int

	// Error holds the processing error status; the literal "None"
	// means error-free processing.
	Error string

	// Identification is the expected taxon for the specimen. Nil when
	// the laboratory supplied none.
	Identification *string

	// IdentCanonical is the canonical form of Identification according
	// to gnparser. Empty when Identification is nil or unparseable.
	IdentCanonical string

	// ObsTaxon is the observed taxonomic lineage string produced by
	// the validation pipeline. Nil when missing.
	ObsTaxon *string

	// RParam and SParam are the two numeric pipeline parameters of the
	// attempt. Nil when extraction failed; such records are excluded
	// from parameter-keyed grouping but stay in every other metric.
	RParam *float64
	SParam *float64
}

// SpecimenMetadata is one row per physical specimen from the
// collection-management export. ProcessID is unique within the table.
type SpecimenMetadata struct {
	// ProcessID is the specimen identifier, the join key from
	// validation records.
	ProcessID string

	// SampleID links the specimen to its taxonomy row, one-to-one.
	SampleID string

	// CollectionDate is the raw day-month-year text from the export.
	CollectionDate string

	// CollectedAt is the parsed collection date. Nil when the raw
	// value is absent or unparseable.
	CollectedAt *time.Time

	// AgeYears is the elapsed time between collection and report
	// generation in 365.25-day years. Nil propagates from CollectedAt.
	AgeYears *float64

	// Institution is the storing institution name as given.
	Institution string

	// SeqStatus is the sequence-length-or-publication-status field
	// carried through for reporting.
	SeqStatus string
}

// TaxonomyRecord is one row per sample with the full rank hierarchy.
// SampleID is unique within the table.
type TaxonomyRecord struct {
	SampleID  string
	Phylum    string
	Class     string
	Order     string
	Family    string
	Subfamily string
	Genus     string
	Species   string
}

// JoinedRecord is a ValidationRecord augmented with the metadata and
// taxonomy reachable through its specimen identifier. Both joins are
// left joins: a validation attempt is never dropped for lack of a
// match, the optional sides stay nil instead.
type JoinedRecord struct {
	ValidationRecord
	Specimen *SpecimenMetadata
	Taxon    *TaxonomyRecord
}

// ValidityResult is a JoinedRecord with the classification outcome
// attached. The per-criterion flags are computed independently of each
// other and of Valid, so diagnostic breakdowns can show which
// criterion dominates failures.
type ValidityResult struct {
	JoinedRecord

	// Valid is the strict conjunction of all six criteria.
	Valid bool

	// AmbigFail is true when the ambiguous-base count exceeds the
	// threshold (a nil count does not set this flag).
	AmbigFail bool

	// LengthFail is true when the base count is below the threshold or
	// missing.
	LengthFail bool

	// TaxonFail is true when the expected identification is not found
	// inside the observed taxon string, or either side is missing.
	TaxonFail bool

	// StopFail is true when stop codons were found (a nil count does
	// not set this flag).
	StopFail bool
}

// Warning is a recovered data-quality finding. The pipeline never
// aborts on data problems; it collects them for the report instead.
type Warning struct {
	// Stage names the pipeline stage that found the problem.
	Stage string

	// Kind is a short machine-friendly category, for example
	// "parse-number", "parse-date", "duplicate-key".
	Kind string

	// Detail is a human-readable description with the offending value.
	Detail string
}
