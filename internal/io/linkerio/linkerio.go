package linkerio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbarcode/internal/ent/kv"
	"github.com/gnames/gnbarcode/internal/ent/linker"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnbarcode/pkg/ent/record"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

const hoursPerYear = 365.25 * 24

// linkerio is a struct that implements linker.Linker interface.
type linkerio struct {
	cfg     config.Config
	kvSpec  kv.KeyVal
	kvTaxon kv.KeyVal

	// now is the report-generation instant; specimen ages are measured
	// against it so a run is reproducible.
	now time.Time

	mu       sync.Mutex
	warnings []record.Warning
}

// New returns a new instance of Linker backed by two key-value
// lookup stores.
func New(
	cfg config.Config,
	kvSpec, kvTaxon kv.KeyVal,
	now time.Time,
) linker.Linker {
	res := linkerio{
		cfg:     cfg,
		kvSpec:  kvSpec,
		kvTaxon: kvTaxon,
		now:     now,
	}
	return &res
}

// Warnings returns data-quality findings collected during Build and
// Link.
func (l *linkerio) Warnings() []record.Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]record.Warning, len(l.warnings))
	copy(res, l.warnings)
	return res
}

func (l *linkerio) warn(kind, detail string) {
	l.mu.Lock()
	l.warnings = append(l.warnings, record.Warning{
		Stage:  "link",
		Kind:   kind,
		Detail: detail,
	})
	l.mu.Unlock()
	slog.Warn("Data problem", "stage", "link", "kind", kind, "detail", detail)
}

// Build populates the lookup stores. Both join keys are declared
// unique by the source; a duplicate keeps the first row and is
// reported, never silently resolved.
func (l *linkerio) Build(
	specimens []record.SpecimenMetadata,
	taxa []record.TaxonomyRecord,
) error {
	enc := gnfmt.GNgob{}

	err := l.buildSpecimens(enc, specimens)
	if err != nil {
		return err
	}
	return l.buildTaxa(enc, taxa)
}

func (l *linkerio) buildSpecimens(
	enc gnfmt.Encoder,
	specimens []record.SpecimenMetadata,
) error {
	err := l.kvSpec.Open()
	if err != nil {
		slog.Error("cannot open key-value store", "error", err)
		return err
	}
	defer l.kvSpec.Close()

	for i := range specimens {
		val, err := enc.Encode(specimens[i])
		if err != nil {
			slog.Error("cannot encode specimen metadata", "error", err)
			return err
		}
		existed, err := l.kvSpec.Set([]byte(specimens[i].ProcessID), val)
		if err != nil {
			return err
		}
		if existed {
			l.warn("duplicate-key",
				fmt.Sprintf("specimen metadata has duplicate Process ID %q, keeping the first row",
					specimens[i].ProcessID))
		}
	}
	slog.Info("Built specimen lookup store",
		"records", humanize.Comma(int64(len(specimens))))
	return nil
}

func (l *linkerio) buildTaxa(
	enc gnfmt.Encoder,
	taxa []record.TaxonomyRecord,
) error {
	err := l.kvTaxon.Open()
	if err != nil {
		slog.Error("cannot open key-value store", "error", err)
		return err
	}
	defer l.kvTaxon.Close()

	for i := range taxa {
		val, err := enc.Encode(taxa[i])
		if err != nil {
			slog.Error("cannot encode taxonomy record", "error", err)
			return err
		}
		existed, err := l.kvTaxon.Set([]byte(taxa[i].SampleID), val)
		if err != nil {
			return err
		}
		if existed {
			l.warn("duplicate-key",
				fmt.Sprintf("taxonomy has duplicate Sample ID %q, keeping the first row",
					taxa[i].SampleID))
		}
	}
	slog.Info("Built taxonomy lookup store",
		"records", humanize.Comma(int64(len(taxa))))
	return nil
}

type joinItem struct {
	idx int
	rec record.ValidationRecord
}

type joinedItem struct {
	idx int
	rec record.JoinedRecord
}

// Link performs the two-stage left join. Every validation record
// comes back exactly once and in input order; records without a
// metadata match keep nil metadata, that is expected for controls and
// unsequenced specimens.
func (l *linkerio) Link(
	ctx context.Context,
	recs []record.ValidationRecord,
) ([]record.JoinedRecord, error) {
	err := l.kvSpec.Open()
	if err != nil {
		slog.Error("cannot open key-value store", "error", err)
		return nil, err
	}
	defer l.kvSpec.Close()

	err = l.kvTaxon.Open()
	if err != nil {
		slog.Error("cannot open key-value store", "error", err)
		return nil, err
	}
	defer l.kvTaxon.Close()

	chIn := make(chan joinItem)
	chOut := make(chan joinedItem)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		for i := range recs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case chIn <- joinItem{idx: i, rec: recs[i]}:
			}
		}
		return nil
	})

	var wg errgroup.Group
	for range l.cfg.JobsNum {
		wg.Go(func() error {
			return l.workerJoin(ctx, chIn, chOut)
		})
	}
	g.Go(func() error {
		defer close(chOut)
		return wg.Wait()
	})

	res := make([]record.JoinedRecord, len(recs))
	g.Go(func() error {
		for it := range chOut {
			res[it.idx] = it.rec
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("error in goroutines", "error", err)
		return nil, err
	}

	slog.Info("Linked validation records",
		"records", humanize.Comma(int64(len(res))))
	return res, nil
}

func (l *linkerio) workerJoin(
	ctx context.Context,
	chIn <-chan joinItem,
	chOut chan<- joinedItem,
) error {
	enc := gnfmt.GNgob{}
	for it := range chIn {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			jr, err := l.join(enc, it.rec)
			if err != nil {
				return err
			}
			chOut <- joinedItem{idx: it.idx, rec: jr}
		}
	}
	return nil
}

func (l *linkerio) join(
	enc gnfmt.Encoder,
	rec record.ValidationRecord,
) (record.JoinedRecord, error) {
	res := record.JoinedRecord{ValidationRecord: rec}

	specBytes, err := l.kvSpec.GetValue([]byte(rec.SpecimenID))
	if err != nil {
		slog.Error("cannot get specimen metadata", "error", err,
			"specimen", rec.SpecimenID)
		return res, err
	}
	if specBytes == nil {
		return res, nil
	}

	var sm record.SpecimenMetadata
	err = enc.Decode(specBytes, &sm)
	if err != nil {
		slog.Error("cannot decode specimen metadata", "error", err)
		return res, err
	}
	if sm.CollectedAt != nil {
		age := l.now.Sub(*sm.CollectedAt).Hours() / hoursPerYear
		sm.AgeYears = &age
	}
	res.Specimen = &sm

	if sm.SampleID == "" {
		return res, nil
	}
	taxonBytes, err := l.kvTaxon.GetValue([]byte(sm.SampleID))
	if err != nil {
		slog.Error("cannot get taxonomy", "error", err, "sample", sm.SampleID)
		return res, err
	}
	if taxonBytes == nil {
		return res, nil
	}

	var tr record.TaxonomyRecord
	err = enc.Decode(taxonBytes, &tr)
	if err != nil {
		slog.Error("cannot decode taxonomy record", "error", err)
		return res, err
	}
	res.Taxon = &tr
	return res, nil
}
