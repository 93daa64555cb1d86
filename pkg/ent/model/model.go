package model

import (
	"database/sql"
	"time"
)

// Model is the database schema manager.
type Model interface {
	// Migrate creates tables in the database.
	Migrate() error
}

// ValidationResult is one classified validation attempt together with
// the metadata and taxonomy linked through its specimen identifier.
type ValidationResult struct {
	// ID is a UUID v5 generated from the raw sequence identifier. It
	// is stable across report runs.
	ID string `gorm:"type:uuid;primary_key;auto_increment:false"`

	// SeqID is the raw sequence identifier from the laboratory output.
	SeqID string `gorm:"type:varchar(255);not null"`

	// SpecimenID is the derived specimen identifier, the key used to
	// link metadata.
	SpecimenID string `gorm:"type:varchar(100);index:specimen"`

	// IsControl marks negative-control samples.
	IsControl bool

	// Institution is the producing laboratory.
	Institution string `gorm:"type:varchar(50);index:institution"`

	// BaseCount, AmbigCount, and StopCodons are the quality counters
	// of the attempt; null when the source cell was missing or
	// malformed.
	BaseCount  sql.NullInt32 `gorm:"type:int"`
	AmbigCount sql.NullInt32 `gorm:"type:int"`
	StopCodons sql.NullInt32 `gorm:"type:int"`

	// ProcessingError is the error status; "None" means error-free.
	ProcessingError string `gorm:"type:varchar(255)"`

	// Identification is the expected taxon, IdentCanonical its
	// canonical form.
	Identification sql.NullString `gorm:"type:varchar(255)"`
	IdentCanonical string         `gorm:"type:varchar(255)"`

	// ObsTaxon is the observed taxonomic lineage string.
	ObsTaxon sql.NullString

	// RParam and SParam are the pipeline parameters of the attempt.
	RParam sql.NullFloat64
	SParam sql.NullFloat64

	// SampleID and the rank columns come from the linked metadata and
	// taxonomy rows; null or empty when the join found no match.
	SampleID    sql.NullString `gorm:"type:varchar(100)"`
	CollectedAt sql.NullTime   `gorm:"type:timestamp without time zone"`
	AgeYears    sql.NullFloat64
	TaxonOrder  string `gorm:"type:varchar(100);index:taxon_order"`
	Family      string `gorm:"type:varchar(100)"`
	Genus       string `gorm:"type:varchar(100)"`
	Species     string `gorm:"type:varchar(255)"`

	// Valid is the outcome of the classification gate; the *Fail
	// flags are the independent per-criterion diagnostics.
	Valid      bool
	AmbigFail  bool
	LengthFail bool
	TaxonFail  bool
	StopFail   bool

	// UpdatedAt records the timestamp of the upload.
	UpdatedAt time.Time `gorm:"type:timestamp without time zone"`
}

// ReportGroup is one row of a grouped success summary.
type ReportGroup struct {
	ID int `gorm:"primary_key;auto_increment"`

	// Dimension names the grouping (institution, parameters, order,
	// age), Label the group inside it.
	Dimension string `gorm:"type:varchar(50);index:dimension"`
	Label     string `gorm:"type:varchar(255)"`

	Specimens   int
	Attempts    int
	Successes   int
	SuccessRate float64
	AvgAttempts float64
	CILow       float64
	CIHigh      float64
}
