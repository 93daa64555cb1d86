// Package stats turns classified validation attempts into grouped
// summary statistics. The grouped reduction itself is generic: callers
// choose the grouping key and filters, the package supplies the
// specimen-level collapse, success rates, and confidence intervals.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/gnames/gnbarcode/pkg/ent/record"
)

// zScore is the 95% normal quantile used for Wald intervals.
const zScore = 1.96

// KeyFunc maps a classified record to its group label. The second
// return value excludes the record from grouping when false.
type KeyFunc func(record.ValidityResult) (string, bool)

// Filter removes records before grouping.
type Filter func(record.ValidityResult) bool

// Group is one row of a grouped summary.
type Group struct {
	// Key is the group label.
	Key string

	// Specimens is the number of distinct specimens in the group.
	Specimens int

	// Attempts is the number of validation attempts in the group.
	Attempts int

	// Successes is the number of specimens with at least one valid
	// attempt.
	Successes int

	// SuccessRate is Successes over Specimens in percent.
	SuccessRate float64

	// AvgAttempts is the mean number of attempts per specimen.
	AvgAttempts float64

	// CILow and CIHigh bound the Wald 95% confidence interval of
	// SuccessRate, clamped to [0, 100].
	CILow  float64
	CIHigh float64
}

// Summarize reduces classified records into per-group summaries.
// Records rejected by any filter, or without a key, are skipped.
// Groups come back sorted by key for stable output.
func Summarize(rs []record.ValidityResult, key KeyFunc, filters ...Filter) []Group {
	type specimens struct {
		attempts map[string]int
		valid    map[string]bool
	}
	groups := make(map[string]*specimens)

loop:
	for i := range rs {
		for _, f := range filters {
			if !f(rs[i]) {
				continue loop
			}
		}
		k, ok := key(rs[i])
		if !ok {
			continue
		}
		g, ok := groups[k]
		if !ok {
			g = &specimens{
				attempts: make(map[string]int),
				valid:    make(map[string]bool),
			}
			groups[k] = g
		}
		sp := rs[i].SpecimenID
		g.attempts[sp]++
		g.valid[sp] = g.valid[sp] || rs[i].Valid
	}

	res := make([]Group, 0, len(groups))
	for k, g := range groups {
		row := Group{Key: k, Specimens: len(g.attempts)}
		for _, n := range g.attempts {
			row.Attempts += n
		}
		for _, v := range g.valid {
			if v {
				row.Successes++
			}
		}
		n := float64(row.Specimens)
		row.SuccessRate = float64(row.Successes) / n * 100
		row.AvgAttempts = float64(row.Attempts) / n
		row.CILow, row.CIHigh = WaldCI(row.SuccessRate, row.Specimens)
		res = append(res, row)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res
}

// AnyValid collapses attempts to one boolean per specimen: true when
// at least one attempt was valid. Specimens without attempts do not
// appear in the result.
func AnyValid(rs []record.ValidityResult) map[string]bool {
	res := make(map[string]bool)
	for i := range rs {
		sp := rs[i].SpecimenID
		res[sp] = res[sp] || rs[i].Valid
	}
	return res
}

// WaldCI computes the normal-approximation confidence interval for a
// success rate p given in percent over n specimens. The interval is
// clamped to [0, 100]. A non-positive n yields a degenerate [p, p].
func WaldCI(p float64, n int) (float64, float64) {
	if n <= 0 {
		return p, p
	}
	se := math.Sqrt(p * (100 - p) / float64(n))
	return math.Max(0, p-zScore*se), math.Min(100, p+zScore*se)
}

// MinSpecimens drops summary rows based on fewer than n specimens.
func MinSpecimens(groups []Group, n int) []Group {
	res := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Specimens >= n {
			res = append(res, g)
		}
	}
	return res
}

// ExcludeControls rejects negative-control records; biological
// success metrics never include controls.
func ExcludeControls(r record.ValidityResult) bool {
	return !r.IsControl
}

// InstitutionKey groups by producing laboratory.
func InstitutionKey(r record.ValidityResult) (string, bool) {
	return string(r.Institution), true
}

// ParamKey groups by the (r, s) parameter pair. Records with either
// parameter missing are excluded.
func ParamKey(r record.ValidityResult) (string, bool) {
	if r.RParam == nil || r.SParam == nil {
		return "", false
	}
	return fmt.Sprintf("r=%v s=%v", *r.RParam, *r.SParam), true
}

// OrderKey groups by taxonomic order. Records without linked taxonomy
// or with an empty order are excluded.
func OrderKey(r record.ValidityResult) (string, bool) {
	if r.Taxon == nil || r.Taxon.Order == "" {
		return "", false
	}
	return r.Taxon.Order, true
}

// AgeBinKey groups by specimen age in fixed-width bins from zero to
// max years. Records without linked metadata, without a computed age,
// or older than max are excluded. A 20-year width over a 200-year span
// produces bins "0-20" through "180-200".
func AgeBinKey(width, max int) KeyFunc {
	return func(r record.ValidityResult) (string, bool) {
		if r.Specimen == nil || r.Specimen.AgeYears == nil {
			return "", false
		}
		age := *r.Specimen.AgeYears
		if age < 0 || age > float64(max) {
			return "", false
		}
		bin := int(age) / width
		if int(age) == max {
			// the upper bound belongs to the last bin
			bin--
		}
		lo := bin * width
		return fmt.Sprintf("%d-%d", lo, lo+width), true
	}
}
