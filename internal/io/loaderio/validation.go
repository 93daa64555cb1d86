package loaderio

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbarcode/internal/str"
	"github.com/gnames/gnbarcode/pkg/ent/record"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnuuid"
	"golang.org/x/sync/errgroup"
)

// Column names shared by both validation outputs.
const (
	colSeqID     = "sequence_id"
	colBaseCount = "nuc_basecount"
	colAmbig     = "ambig_basecount"
	colStop      = "stop_codons"
	colError     = "error"
	colIdent     = "identification"
	colObsTaxon  = "obs_taxon"

	// NHM-only bracketed parameter columns.
	colRParam = "r"
	colSParam = "s"

	// Naturalis embeds parameters in the sequence identifier after
	// these markers.
	markerR = "_r_"
	markerS = "_s_"
)

// rowItem carries a source row with its position, so concurrent
// workers can keep the file order in the result.
type rowItem struct {
	idx int
	row []string
}

type recItem struct {
	idx int
	rec record.ValidationRecord
}

// Validation loads the validation output of one laboratory and
// derives specimen identifier, control flag, record UUID, pipeline
// parameters, and the canonical form of the expected identification.
func (l *loaderio) Validation(
	ctx context.Context,
	inst record.Institution,
) ([]record.ValidationRecord, error) {
	fileName := l.cfg.NHMFile
	if inst == record.InstNaturalis {
		fileName = l.cfg.NaturalisFile
	}
	r, f, cols, err := l.openTSV(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	err = requireCols(cols, fileName,
		colSeqID, colBaseCount, colAmbig, colStop, colError, colIdent, colObsTaxon)
	if err != nil {
		slog.Error("Unusable validation file", "error", err)
		return nil, err
	}

	chIn := make(chan rowItem)
	chOut := make(chan recItem)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		idx := 0
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				row, err := r.Read()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					slog.Error("Cannot read tsv line", "error", err, "file", fileName)
					return err
				}
				chIn <- rowItem{idx: idx, row: row}
				idx++
			}
		}
	})

	var wg errgroup.Group
	for range l.cfg.JobsNum {
		wg.Go(func() error {
			return l.workerValidation(ctx, inst, cols, chIn, chOut)
		})
	}
	g.Go(func() error {
		defer close(chOut)
		return wg.Wait()
	})

	var res []record.ValidationRecord
	g.Go(func() error {
		ordered := make(map[int]record.ValidationRecord)
		for it := range chOut {
			ordered[it.idx] = it.rec
		}
		res = make([]record.ValidationRecord, len(ordered))
		for idx, rec := range ordered {
			res[idx] = rec
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("error in goroutines", "error", err)
		return nil, err
	}

	slog.Info("Loaded validation records",
		"institution", inst, "records", humanize.Comma(int64(len(res))))
	return res, nil
}

// workerValidation derives record fields from source rows. Each
// worker keeps its own gnparser instance, the parser is not safe for
// concurrent use.
func (l *loaderio) workerValidation(
	ctx context.Context,
	inst record.Institution,
	cols map[string]int,
	chIn <-chan rowItem,
	chOut chan<- recItem,
) error {
	gnp := gnparser.New(gnparser.NewConfig())
	for it := range chIn {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			rec := l.validationRecord(gnp, inst, cols, it.row)
			chOut <- recItem{idx: it.idx, rec: rec}
		}
	}
	return nil
}

func (l *loaderio) validationRecord(
	gnp gnparser.GNparser,
	inst record.Institution,
	cols map[string]int,
	row []string,
) record.ValidationRecord {
	seqID := field(row, cols, colSeqID)
	specimenID := str.SpecimenID(seqID)
	stage := "load-" + string(inst)

	res := record.ValidationRecord{
		RecordID:       gnuuid.New(seqID).String(),
		SeqID:          seqID,
		SpecimenID:     specimenID,
		IsControl:      str.IsControl(specimenID),
		Institution:    inst,
		BaseCount:      l.intField(row, cols, colBaseCount, stage, seqID),
		AmbigCount:     l.intField(row, cols, colAmbig, stage, seqID),
		StopCodons:     l.intField(row, cols, colStop, stage, seqID),
		Error:          field(row, cols, colError),
		Identification: strField(row, cols, colIdent),
		ObsTaxon:       strField(row, cols, colObsTaxon),
	}
	res.RParam, res.SParam = l.params(inst, cols, row, seqID)

	if res.Identification != nil {
		p := gnp.ParseName(*res.Identification)
		if p.Parsed {
			res.IdentCanonical = p.Canonical.Simple
		} else {
			l.warn(stage, "parse-name",
				fmt.Sprintf("record %s: cannot parse identification %q",
					seqID, *res.Identification))
		}
	}
	return res
}

// params applies the institution-specific extraction convention. Both
// laboratories run the same parameter sweep, they just encode the
// parameters differently.
func (l *loaderio) params(
	inst record.Institution,
	cols map[string]int,
	row []string,
	seqID string,
) (*float64, *float64) {
	var rp, sp *float64
	stage := "load-" + string(inst)

	switch inst {
	case record.InstNHM:
		if v, ok := str.BracketFloat(field(row, cols, colRParam)); ok {
			rp = &v
		} else if raw := field(row, cols, colRParam); raw != "" && raw != "[NA]" {
			l.warn(stage, "parse-param",
				fmt.Sprintf("record %s: malformed r parameter %q", seqID, raw))
		}
		if v, ok := str.BracketFloat(field(row, cols, colSParam)); ok {
			sp = &v
		} else if raw := field(row, cols, colSParam); raw != "" && raw != "[NA]" {
			l.warn(stage, "parse-param",
				fmt.Sprintf("record %s: malformed s parameter %q", seqID, raw))
		}
	case record.InstNaturalis:
		if v, ok := str.SeqIDParam(seqID, markerR); ok {
			rp = &v
		}
		if v, ok := str.SeqIDParam(seqID, markerS); ok {
			sp = &v
		}
	}
	return rp, sp
}
