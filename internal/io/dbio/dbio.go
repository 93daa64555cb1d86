package dbio

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbarcode/internal/ent/uploader"
	"github.com/gnames/gnbarcode/internal/str"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnbarcode/pkg/ent/model"
	"github.com/gnames/gnbarcode/pkg/ent/record"
	"github.com/gnames/gnbarcode/pkg/ent/stats"
	"github.com/gnames/gnbarcode/pkg/io/modelio"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbio is a struct that implements uploader.Uploader interface.
type dbio struct {
	cfg config.Config
	db  *pgxpool.Pool
}

// New returns a new instance of Uploader backed by PostgreSQL.
func New(cfg config.Config) (uploader.Uploader, error) {
	var err error
	res := dbio{cfg: cfg}
	res.db, err = pgxConn(cfg)
	if err != nil {
		slog.Error("Cannot connect to database", "error", err)
		return nil, err
	}
	err = res.migrate()
	if err != nil {
		slog.Error("Cannot migrate database", "error", err)
		return nil, err
	}
	return &res, nil
}

// Upload saves classified results and group summaries.
func (d *dbio) Upload(
	ctx context.Context,
	res []record.ValidityResult,
	groups []stats.Group,
) error {
	defer d.db.Close()

	err := d.truncateTable("validation_results", "report_groups")
	if err != nil {
		return err
	}
	err = d.saveResults(ctx, res)
	if err != nil {
		slog.Error("Cannot save validation results", "error", err)
		return err
	}
	err = d.saveGroups(ctx, groups)
	if err != nil {
		slog.Error("Cannot save report groups", "error", err)
		return err
	}
	return nil
}

func (d *dbio) migrate() error {
	grm, err := gormConn(d.cfg)
	if err != nil {
		return err
	}
	defer grm.Close()

	slog.Info("Running initial database migrations")
	m := modelio.New(grm)
	err = m.Migrate()
	if err != nil {
		slog.Error("Cannot migrate database", "error", err)
		return err
	}
	slog.Info("Database migrations completed")
	return nil
}

func (d *dbio) truncateTable(tbls ...string) error {
	var err error
	for _, tbl := range tbls {
		_, err = d.db.Exec(context.Background(), "TRUNCATE TABLE "+tbl)
		if err != nil {
			slog.Error("cannot truncate table", "table", tbl, "error", err)
			return err
		}
	}
	return nil
}

func (d *dbio) insertRows(tbl string, columns []string, rows [][]any) (int64, error) {
	copyCount, err := d.db.CopyFrom(
		context.Background(),
		pgx.Identifier{tbl},
		columns,
		pgx.CopyFromRows(rows),
	)

	return int64(copyCount), err
}

func (d *dbio) saveResults(ctx context.Context, res []record.ValidityResult) error {
	columns := []string{
		"id", "seq_id", "specimen_id", "is_control", "institution",
		"base_count", "ambig_count", "stop_codons", "processing_error",
		"identification", "ident_canonical", "obs_taxon",
		"r_param", "s_param", "sample_id", "collected_at", "age_years",
		"taxon_order", "family", "genus", "species",
		"valid", "ambig_fail", "length_fail", "taxon_fail", "stop_fail",
		"updated_at"}

	var total int64
	now := time.Now()
	for i := 0; i < len(res); i += d.cfg.BatchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := min(i+d.cfg.BatchSize, len(res))
		batch := res[i:end]
		rows := make([][]any, len(batch))
		for j := range batch {
			m := toModel(batch[j], now)
			rows[j] = []any{
				m.ID, m.SeqID, m.SpecimenID, m.IsControl, m.Institution,
				m.BaseCount, m.AmbigCount, m.StopCodons, m.ProcessingError,
				m.Identification, m.IdentCanonical, m.ObsTaxon,
				m.RParam, m.SParam, m.SampleID, m.CollectedAt, m.AgeYears,
				m.TaxonOrder, m.Family, m.Genus, m.Species,
				m.Valid, m.AmbigFail, m.LengthFail, m.TaxonFail, m.StopFail,
				m.UpdatedAt,
			}
		}
		saved, err := d.insertRows("validation_results", columns, rows)
		if err != nil {
			return err
		}
		total += saved
	}

	slog.Info("Uploaded validation results", "records", humanize.Comma(total))
	return nil
}

// saveGroups stores summary rows; every group arrives with its
// dimension prefixed as "dimension/label".
func (d *dbio) saveGroups(ctx context.Context, groups []stats.Group) error {
	if len(groups) == 0 {
		return nil
	}
	vals := make([]string, len(groups))
	for i, g := range groups {
		dimension, label := splitGroupKey(g.Key)
		vals[i] = fmt.Sprintf("(%s, %s, %d, %d, %d, %f, %f, %f, %f)",
			str.QuoteString(dimension), str.QuoteString(label),
			g.Specimens, g.Attempts, g.Successes,
			g.SuccessRate, g.AvgAttempts, g.CILow, g.CIHigh)
	}

	q := `INSERT INTO report_groups
  (dimension, label, specimens, attempts, successes,
   success_rate, avg_attempts, ci_low, ci_high)
  VALUES ` + strings.Join(vals, ",")
	rows, err := d.db.Query(ctx, q)
	if err != nil {
		slog.Error("save report groups failed", "error", err)
		return err
	}
	rows.Close()

	slog.Info("Uploaded report groups", "groups", humanize.Comma(int64(len(groups))))
	return nil
}

// splitGroupKey separates the "dimension/label" convention used by
// the facade when it flattens grouped summaries for upload.
func splitGroupKey(key string) (string, string) {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

func toModel(r record.ValidityResult, now time.Time) model.ValidationResult {
	res := model.ValidationResult{
		ID:              r.RecordID,
		SeqID:           r.SeqID,
		SpecimenID:      r.SpecimenID,
		IsControl:       r.IsControl,
		Institution:     string(r.Institution),
		ProcessingError: r.Error,
		IdentCanonical:  r.IdentCanonical,
		BaseCount:       nullInt(r.BaseCount),
		AmbigCount:      nullInt(r.AmbigCount),
		StopCodons:      nullInt(r.StopCodons),
		Identification:  nullStr(r.Identification),
		ObsTaxon:        nullStr(r.ObsTaxon),
		RParam:          nullFloat(r.RParam),
		SParam:          nullFloat(r.SParam),
		Valid:           r.Valid,
		AmbigFail:       r.AmbigFail,
		LengthFail:      r.LengthFail,
		TaxonFail:       r.TaxonFail,
		StopFail:        r.StopFail,
		UpdatedAt:       now,
	}
	if r.Specimen != nil {
		res.SampleID = sql.NullString{String: r.Specimen.SampleID, Valid: true}
		res.AgeYears = nullFloat(r.Specimen.AgeYears)
		if r.Specimen.CollectedAt != nil {
			res.CollectedAt = sql.NullTime{Time: *r.Specimen.CollectedAt, Valid: true}
		}
	}
	if r.Taxon != nil {
		res.TaxonOrder = r.Taxon.Order
		res.Family = r.Taxon.Family
		res.Genus = r.Taxon.Genus
		res.Species = r.Taxon.Species
	}
	return res
}

func nullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nullStr(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
