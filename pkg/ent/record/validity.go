package record

import "strings"

// Classification thresholds for a usable barcode.
const (
	// MaxAmbig is the highest acceptable number of ambiguous bases.
	MaxAmbig = 6

	// MinLength is the lowest acceptable nucleotide count.
	MinLength = 500

	// NoError is the error-field literal that marks error-free
	// processing.
	NoError = "None"
)

// Check classifies a joined record. A record is valid only when every
// criterion holds: base count present and at least MinLength, no more
// than MaxAmbig ambiguous bases, error-free processing, zero stop
// codons, and the expected identification found verbatim inside the
// observed taxon string. A nil operand fails its criterion, it never
// passes and never panics.
func Check(jr JoinedRecord) ValidityResult {
	res := ValidityResult{JoinedRecord: jr}

	res.AmbigFail = jr.AmbigCount != nil && *jr.AmbigCount > MaxAmbig
	res.LengthFail = jr.BaseCount == nil || *jr.BaseCount < MinLength
	res.StopFail = jr.StopCodons != nil && *jr.StopCodons > 0
	res.TaxonFail = jr.Identification == nil || jr.ObsTaxon == nil ||
		!strings.Contains(*jr.ObsTaxon, *jr.Identification)

	res.Valid = jr.BaseCount != nil &&
		jr.AmbigCount != nil && *jr.AmbigCount <= MaxAmbig &&
		*jr.BaseCount >= MinLength &&
		jr.Error == NoError &&
		jr.StopCodons != nil && *jr.StopCodons == 0 &&
		!res.TaxonFail

	return res
}

// CheckAll classifies a batch, preserving input order.
func CheckAll(jrs []JoinedRecord) []ValidityResult {
	res := make([]ValidityResult, len(jrs))
	for i := range jrs {
		res[i] = Check(jrs[i])
	}
	return res
}

// Breakdown holds independent per-criterion failure rates in percent.
// A record can contribute to several rates at once; the rates do not
// add up to the overall failure rate.
type Breakdown struct {
	Records    int
	AmbigFail  float64
	LengthFail float64
	TaxonFail  float64
	StopFail   float64
}

// FailureBreakdown computes per-criterion failure rates over a batch
// of classified records.
func FailureBreakdown(rs []ValidityResult) Breakdown {
	res := Breakdown{Records: len(rs)}
	if len(rs) == 0 {
		return res
	}
	var ambig, length, taxon, stop int
	for i := range rs {
		if rs[i].AmbigFail {
			ambig++
		}
		if rs[i].LengthFail {
			length++
		}
		if rs[i].TaxonFail {
			taxon++
		}
		if rs[i].StopFail {
			stop++
		}
	}
	n := float64(len(rs))
	res.AmbigFail = float64(ambig) / n * 100
	res.LengthFail = float64(length) / n * 100
	res.TaxonFail = float64(taxon) / n * 100
	res.StopFail = float64(stop) / n * 100
	return res
}
