package loaderio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbarcode/pkg/ent/record"
)

// Specimen-metadata export columns.
const (
	colProcessID   = "Process ID"
	colSampleID    = "Sample ID"
	colCollDate    = "Collection Date"
	colInstitution = "Institution Storing"
	colSeqStatus   = "Sequence Length"
)

// Taxonomy export rank columns.
const (
	colPhylum    = "Phylum"
	colClass     = "Class"
	colOrder     = "Order"
	colFamily    = "Family"
	colSubfamily = "Subfamily"
	colGenus     = "Genus"
	colSpecies   = "Species"
)

// dateLayouts cover the day-month-year spellings seen in the
// collection-management export.
var dateLayouts = []string{"2-Jan-2006", "02-Jan-2006", "2-Jan-06"}

// Specimens loads the specimen-metadata export. Unparseable
// collection dates become nil and produce a warning; the row stays.
func (l *loaderio) Specimens(ctx context.Context) ([]record.SpecimenMetadata, error) {
	r, f, cols, err := l.openTSV(l.cfg.SpecimenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	err = requireCols(cols, l.cfg.SpecimenFile, colProcessID, colSampleID, colCollDate)
	if err != nil {
		slog.Error("Unusable specimen file", "error", err)
		return nil, err
	}

	var res []record.SpecimenMetadata
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Cannot read tsv line", "error", err, "file", l.cfg.SpecimenFile)
			return nil, err
		}

		sm := record.SpecimenMetadata{
			ProcessID:      field(row, cols, colProcessID),
			SampleID:       field(row, cols, colSampleID),
			CollectionDate: field(row, cols, colCollDate),
			Institution:    field(row, cols, colInstitution),
			SeqStatus:      field(row, cols, colSeqStatus),
		}
		if sm.CollectionDate != "" {
			if t, ok := parseDate(sm.CollectionDate); ok {
				sm.CollectedAt = &t
			} else {
				l.warn("load-specimens", "parse-date",
					fmt.Sprintf("specimen %s: cannot parse collection date %q",
						sm.ProcessID, sm.CollectionDate))
			}
		}
		res = append(res, sm)
	}

	slog.Info("Loaded specimen metadata",
		"records", humanize.Comma(int64(len(res))))
	return res, nil
}

// Taxonomy loads the taxonomy export with its full rank hierarchy.
func (l *loaderio) Taxonomy(ctx context.Context) ([]record.TaxonomyRecord, error) {
	r, f, cols, err := l.openTSV(l.cfg.TaxonomyFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	err = requireCols(cols, l.cfg.TaxonomyFile, colSampleID, colPhylum, colOrder, colSpecies)
	if err != nil {
		slog.Error("Unusable taxonomy file", "error", err)
		return nil, err
	}

	var res []record.TaxonomyRecord
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("Cannot read tsv line", "error", err, "file", l.cfg.TaxonomyFile)
			return nil, err
		}

		res = append(res, record.TaxonomyRecord{
			SampleID:  field(row, cols, colSampleID),
			Phylum:    field(row, cols, colPhylum),
			Class:     field(row, cols, colClass),
			Order:     field(row, cols, colOrder),
			Family:    field(row, cols, colFamily),
			Subfamily: field(row, cols, colSubfamily),
			Genus:     field(row, cols, colGenus),
			Species:   field(row, cols, colSpecies),
		})
	}

	slog.Info("Loaded taxonomy",
		"records", humanize.Comma(int64(len(res))))
	return res, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
