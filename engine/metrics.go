package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// ============================================================================
// METRIC CALCULATOR — engagement_total + er_percentage
// ============================================================================
// engagement_total = likes + comments + saves   (null if any addend is null)
// er_percentage    = round(engagement_total / denominator * 100, 2)
//                    (null if the denominator is null or zero)
//
// ComputeMetrics always returns a new table. Recomputing overwrites the
// previous values, so the operation is idempotent and switching basis never
// blends two bases.
// ============================================================================

// ComputeMetrics derives engagement_total and er_percentage for every post
// under the given basis. The basis is matched case-insensitively; an unknown
// basis falls back to followers.
func ComputeMetrics(t *Table, basis Basis) *Table {
	out := t.Clone()
	basis = normalizeBasis(basis)

	for i := range out.Posts {
		p := &out.Posts[i]
		p.EngagementTotal = engagementTotal(*p)
		p.ERPercentage = EngagementRate(p.EngagementTotal, p.Denominator(basis))
	}

	out.Basis = basis
	out.withColumn(ColEngagementTotal)
	out.withColumn(ColERPercentage)
	return out
}

func normalizeBasis(basis Basis) Basis {
	if b, err := ParseBasis(string(basis)); err == nil {
		return b
	}
	return BasisFollowers
}

func engagementTotal(p Post) *float64 {
	if p.Likes == nil || p.Comments == nil || p.Saves == nil {
		return nil
	}
	return ptr(*p.Likes + *p.Comments + *p.Saves)
}

// EngagementRate returns engagement / denominator * 100 rounded to 2 dp,
// or nil when either input is missing, the denominator is zero, or the
// result is not finite.
func EngagementRate(engagement, denominator *float64) *float64 {
	if engagement == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	er := *engagement / *denominator * 100
	if math.IsNaN(er) || math.IsInf(er, 0) {
		return nil
	}
	return ptr(Round2(er))
}

// Round2 rounds half away from zero at 2 decimal places, working on the
// shortest decimal representation of v (so 2.195 becomes 2.20 even though
// its binary value sits just below the midpoint).
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
