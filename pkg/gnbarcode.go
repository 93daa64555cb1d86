package gnbarcode

import (
	"context"
	"fmt"
	"time"

	"github.com/gnames/gnbarcode/internal/ent/linker"
	"github.com/gnames/gnbarcode/internal/ent/loader"
	"github.com/gnames/gnbarcode/internal/ent/reporter"
	"github.com/gnames/gnbarcode/internal/ent/uploader"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnbarcode/pkg/ent/record"
	"github.com/gnames/gnbarcode/pkg/ent/stats"
	"golang.org/x/sync/errgroup"
)

// gnbarcode is an implementation of GNbarcode interface.
type gnbarcode struct {
	cfg config.Config

	// now is the report-generation instant shared by every stage, so
	// ages and timestamps agree across the report.
	now time.Time
}

// New creates a new instance of GNbarcode.
func New(cfg config.Config, now time.Time) GNbarcode {
	res := gnbarcode{
		cfg: cfg,
		now: now,
	}
	return &res
}

// Report runs the full pipeline and renders report artifacts.
func (g *gnbarcode) Report(
	ld loader.Loader,
	lnk linker.Linker,
	rep reporter.Reporter,
) error {
	res, warns, err := g.classify(ld, lnk)
	if err != nil {
		return fmt.Errorf("cannot classify validation records: %w", err)
	}
	sum := g.summarize(res, warns)
	return rep.Report(sum)
}

// Upload runs the full pipeline and saves the classified results to a
// database.
func (g *gnbarcode) Upload(
	ld loader.Loader,
	lnk linker.Linker,
	up uploader.Uploader,
) error {
	res, warns, err := g.classify(ld, lnk)
	if err != nil {
		return fmt.Errorf("cannot classify validation records: %w", err)
	}
	sum := g.summarize(res, warns)
	return up.Upload(context.Background(), res, flatten(sum))
}

// classify loads the four inputs, joins them, and runs the validity
// gate. The two laboratories load in parallel, their branches stay
// independent until aggregation.
func (g *gnbarcode) classify(
	ld loader.Loader,
	lnk linker.Linker,
) ([]record.ValidityResult, []record.Warning, error) {
	var nhm, naturalis []record.ValidationRecord
	var specimens []record.SpecimenMetadata
	var taxa []record.TaxonomyRecord

	gr, ctx := errgroup.WithContext(context.Background())
	gr.Go(func() error {
		var err error
		nhm, err = ld.Validation(ctx, record.InstNHM)
		return err
	})
	gr.Go(func() error {
		var err error
		naturalis, err = ld.Validation(ctx, record.InstNaturalis)
		return err
	})
	gr.Go(func() error {
		var err error
		specimens, err = ld.Specimens(ctx)
		return err
	})
	gr.Go(func() error {
		var err error
		taxa, err = ld.Taxonomy(ctx)
		return err
	})
	if err := gr.Wait(); err != nil {
		return nil, nil, err
	}

	err := lnk.Build(specimens, taxa)
	if err != nil {
		return nil, nil, err
	}

	recs := make([]record.ValidationRecord, 0, len(nhm)+len(naturalis))
	recs = append(recs, nhm...)
	recs = append(recs, naturalis...)
	joined, err := lnk.Link(context.Background(), recs)
	if err != nil {
		return nil, nil, err
	}

	res := record.CheckAll(joined)
	warns := append(ld.Warnings(), lnk.Warnings()...)
	return res, warns, nil
}

// summarize assembles the report content: grouped success summaries,
// the failure breakdown, and collected warnings.
func (g *gnbarcode) summarize(
	res []record.ValidityResult,
	warns []record.Warning,
) reporter.Summary {
	sum := reporter.Summary{
		GeneratedAt: g.now,
		Records:     len(res),
		Warnings:    warns,
	}

	specimens := make(map[string]struct{})
	var biological []record.ValidityResult
	for i := range res {
		if res[i].IsControl {
			sum.Controls++
			continue
		}
		specimens[res[i].SpecimenID] = struct{}{}
		biological = append(biological, res[i])
	}
	sum.Specimens = len(specimens)

	sum.Institutions = stats.Summarize(res,
		stats.InstitutionKey, stats.ExcludeControls)
	sum.Params = stats.Summarize(res, g.instParamKey, stats.ExcludeControls)
	sum.Orders = stats.MinSpecimens(
		stats.Summarize(res, g.orderKey, stats.ExcludeControls),
		g.cfg.MinGroupSize)
	sum.AgeBins = stats.Summarize(res,
		stats.AgeBinKey(g.cfg.AgeBinYears, g.cfg.AgeMaxYears),
		stats.ExcludeControls)
	sum.Breakdown = record.FailureBreakdown(biological)
	return sum
}

// instParamKey groups by laboratory and parameter pair together, the
// cross-institution comparison the parameter normalization exists for.
func (g *gnbarcode) instParamKey(r record.ValidityResult) (string, bool) {
	k, ok := stats.ParamKey(r)
	if !ok {
		return "", false
	}
	return string(r.Institution) + " " + k, true
}

// orderKey restricts the taxonomic breakdown to configured orders
// when the restriction is set.
func (g *gnbarcode) orderKey(r record.ValidityResult) (string, bool) {
	k, ok := stats.OrderKey(r)
	if !ok {
		return "", false
	}
	if len(g.cfg.Orders) == 0 {
		return k, true
	}
	for _, o := range g.cfg.Orders {
		if o == k {
			return k, true
		}
	}
	return "", false
}

// flatten prefixes every group with its dimension for storage in one
// table.
func flatten(sum reporter.Summary) []stats.Group {
	var res []stats.Group
	add := func(dimension string, groups []stats.Group) {
		for _, g := range groups {
			g.Key = dimension + "/" + g.Key
			res = append(res, g)
		}
	}
	add("institution", sum.Institutions)
	add("parameters", sum.Params)
	add("order", sum.Orders)
	add("age", sum.AgeBins)
	return res
}
