package config

import (
	"os"
	"path/filepath"
)

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// DataDir is a directory with the input TSV files.
	DataDir string

	// WorkDir is a directory for temporary files and key-value stores.
	WorkDir string

	// ReportDir is a directory for generated report artifacts.
	ReportDir string

	// SpecimenKVDir is a directory for the specimen-metadata key-value
	// store.
	SpecimenKVDir string

	// TaxonKVDir is a directory for the taxonomy key-value store.
	TaxonKVDir string

	// NHMFile is the validation output of the NHM pipeline.
	NHMFile string

	// NaturalisFile is the validation output of the Naturalis pipeline.
	NaturalisFile string

	// SpecimenFile is the specimen-metadata export.
	SpecimenFile string

	// TaxonomyFile is the taxonomy export.
	TaxonomyFile string

	// JobsNum is a number of concurrent goroutines.
	JobsNum int

	// BatchSize is a number of records processed in one batch.
	BatchSize int

	// MinGroupSize is the smallest group of specimens reported in
	// grouped breakdowns.
	MinGroupSize int

	// AgeBinYears is the width of specimen-age bins in years.
	AgeBinYears int

	// AgeMaxYears is the oldest specimen age included in age bins.
	AgeMaxYears int

	// Orders restricts the taxonomic breakdown to the given orders.
	// An empty list reports every order.
	Orders []string

	// PgHost is a host name for PostgreSQL.
	PgHost string

	// PgUser is a user name for PostgreSQL.
	PgUser string

	// PgPass is a password for PostgreSQL.
	PgPass string

	// PgDB is a database name for PostgreSQL.
	PgDB string
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptDataDir sets a directory with the input TSV files.
func OptDataDir(d string) Option {
	return func(cfg *Config) {
		cfg.DataDir = d
	}
}

// OptWorkDir sets a directory for temporary files and key-value stores.
func OptWorkDir(d string) Option {
	return func(cfg *Config) {
		cfg.WorkDir = d
		cfg.SpecimenKVDir = filepath.Join(d, "specimen")
		cfg.TaxonKVDir = filepath.Join(d, "taxon")
	}
}

// OptReportDir sets a directory for generated report artifacts.
func OptReportDir(d string) Option {
	return func(cfg *Config) {
		cfg.ReportDir = d
	}
}

// OptNHMFile sets the NHM validation output file name.
func OptNHMFile(f string) Option {
	return func(cfg *Config) {
		cfg.NHMFile = f
	}
}

// OptNaturalisFile sets the Naturalis validation output file name.
func OptNaturalisFile(f string) Option {
	return func(cfg *Config) {
		cfg.NaturalisFile = f
	}
}

// OptSpecimenFile sets the specimen-metadata file name.
func OptSpecimenFile(f string) Option {
	return func(cfg *Config) {
		cfg.SpecimenFile = f
	}
}

// OptTaxonomyFile sets the taxonomy file name.
func OptTaxonomyFile(f string) Option {
	return func(cfg *Config) {
		cfg.TaxonomyFile = f
	}
}

// OptJobsNum sets parallelism number for concurrent goroutines.
func OptJobsNum(j int) Option {
	return func(cfg *Config) {
		cfg.JobsNum = j
	}
}

// OptMinGroupSize sets the smallest reported group of specimens.
func OptMinGroupSize(n int) Option {
	return func(cfg *Config) {
		cfg.MinGroupSize = n
	}
}

// OptOrders restricts the taxonomic breakdown to the given orders.
func OptOrders(orders []string) Option {
	return func(cfg *Config) {
		cfg.Orders = orders
	}
}

// OptPgHost sets host name for PostgreSQL
func OptPgHost(h string) Option {
	return func(cfg *Config) {
		cfg.PgHost = h
	}
}

// OptPgUser sets user for PostgreSQL
func OptPgUser(u string) Option {
	return func(cfg *Config) {
		cfg.PgUser = u
	}
}

// OptPgPass sets password for PostgreSQL
func OptPgPass(p string) Option {
	return func(cfg *Config) {
		cfg.PgPass = p
	}
}

// OptPgDB sets database name for PostgreSQL
func OptPgDB(d string) Option {
	return func(cfg *Config) {
		cfg.PgDB = d
	}
}

func New(opts ...Option) Config {
	workDir, err := os.UserCacheDir()
	if err != nil {
		workDir = os.TempDir()
	}
	workDir = filepath.Join(workDir, "gnbarcode")

	res := Config{
		DataDir:       "data",
		WorkDir:       workDir,
		ReportDir:     "report",
		SpecimenKVDir: filepath.Join(workDir, "specimen"),
		TaxonKVDir:    filepath.Join(workDir, "taxon"),
		NHMFile:       "nhm_validation.tsv",
		NaturalisFile: "naturalis_validation.tsv",
		SpecimenFile:  "specimens.tsv",
		TaxonomyFile:  "taxonomy.tsv",
		JobsNum:       4,
		BatchSize:     10_000,
		MinGroupSize:  5,
		AgeBinYears:   20,
		AgeMaxYears:   200,
		PgHost:        "0.0.0.0",
		PgUser:        "postgres",
		PgPass:        "postgres",
		PgDB:          "gnbarcode",
	}

	for _, opt := range opts {
		opt(&res)
	}

	return res
}
