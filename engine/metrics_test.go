package engine

import (
	"math"
	"testing"
)

func TestComputeMetricsFollowers(t *testing.T) {
	tbl := computed(mkPost("p1", "2024-01-01 19:00", 120, 15, 20, 8200, ""))

	p := tbl.Posts[0]
	assertRate(t, p.EngagementTotal, 155, "engagement_total")
	assertRate(t, p.ERPercentage, 1.89, "er_percentage")
	assertEqual(t, tbl.Basis, BasisFollowers, "basis")
	if !tbl.Has(ColEngagementTotal) || !tbl.Has(ColERPercentage) {
		t.Errorf("derived columns missing: %v", tbl.Columns)
	}
}

func TestComputeMetricsZeroDenominator(t *testing.T) {
	tbl := computed(mkPost("p1", "2024-01-01 19:00", 120, 15, 20, 0, ""))
	assertRate(t, tbl.Posts[0].EngagementTotal, 155, "engagement_total")
	assertNil(t, tbl.Posts[0].ERPercentage, "er with zero followers")
}

func TestComputeMetricsNullAddend(t *testing.T) {
	p := mkPost("p1", "2024-01-01 19:00", 120, 15, 20, 8200, "")
	p.Saves = nil
	tbl := computed(p)
	assertNil(t, tbl.Posts[0].EngagementTotal, "engagement_total with null saves")
	assertNil(t, tbl.Posts[0].ERPercentage, "er with null saves")
}

func TestComputeMetricsReachBasis(t *testing.T) {
	p := mkPost("p1", "2024-01-01 19:00", 100, 0, 0, 8000, "")
	p.Reach = num(2000)
	base := mkTable(p)

	byFollowers := ComputeMetrics(base, BasisFollowers)
	byReach := ComputeMetrics(byFollowers, BasisReach)

	assertRate(t, byFollowers.Posts[0].ERPercentage, 1.25, "followers basis")
	assertRate(t, byReach.Posts[0].ERPercentage, 5, "reach basis replaces followers")
	assertEqual(t, byReach.Basis, BasisReach, "basis")

	// input untouched
	assertNil(t, base.Posts[0].ERPercentage, "input table er")
	assertEqual(t, base.Basis, Basis(""), "input basis")
}

func TestComputeMetricsBasisCaseInsensitive(t *testing.T) {
	p := mkPost("p1", "2024-01-01 19:00", 100, 0, 0, 10000, "")
	p.Reach = num(1000)

	tbl := ComputeMetrics(mkTable(p), Basis(" Reach "))
	assertEqual(t, tbl.Basis, BasisReach, "normalized basis")
	assertRate(t, tbl.Posts[0].ERPercentage, 10, "reach denominator")

	unknown := ComputeMetrics(mkTable(p), Basis("likes"))
	assertEqual(t, unknown.Basis, BasisFollowers, "unknown basis")
	assertRate(t, unknown.Posts[0].ERPercentage, 1, "followers denominator")
}

func TestComputeMetricsIdempotent(t *testing.T) {
	once := computed(
		mkPost("p1", "2024-01-01 19:00", 120, 15, 20, 8200, ""),
		mkPost("p2", "2024-01-02 08:00", 40, 2, 1, 3000, ""),
	)
	twice := ComputeMetrics(once, BasisFollowers)

	for i := range once.Posts {
		assertEqual(t, *twice.Posts[i].ERPercentage, *once.Posts[i].ERPercentage, "er after recompute")
	}
	assertEqual(t, len(twice.Columns), len(once.Columns), "column count after recompute")
}

func TestComputeMetricsUnknownBasisFallsBack(t *testing.T) {
	tbl := ComputeMetrics(mkTable(mkPost("p1", "2024-01-01 19:00", 120, 15, 20, 8200, "")), Basis("views"))
	assertEqual(t, tbl.Basis, BasisFollowers, "fallback basis")
	assertRate(t, tbl.Posts[0].ERPercentage, 1.89, "er under fallback")
}

func TestEngagementRateNeverInfiniteOrNegative(t *testing.T) {
	cases := []struct {
		eng, denom *float64
	}{
		{num(10), num(0)},
		{num(10), nil},
		{nil, num(100)},
		{num(math.Inf(1)), num(100)},
	}
	for _, c := range cases {
		assertNil(t, EngagementRate(c.eng, c.denom), "engagement rate")
	}
	assertRate(t, EngagementRate(num(155), num(8200)), 1.89, "155/8200")
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := map[float64]float64{
		2.195:     2.20,
		1.8902439: 1.89,
		-2.195:    -2.20,
		0.125:     0.13,
		3:         3,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}
