package engine

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	tbl := computed(
		mkPost("p1", "2024-01-01 09:00", 100, 0, 0, 10000, ""), // 1.00
		mkPost("p2", "2024-01-01 18:00", 200, 0, 0, 10000, ""), // 2.00
		mkPost("p3", "2024-01-03 12:00", 300, 0, 0, 10000, ""), // 3.00
		mkPost("p4", "2024-01-04 12:00", 400, 0, 0, 0, ""),     // null ER
	)

	ov := Summarize(tbl)
	assertEqual(t, ov.TotalPosts, 4, "total posts")
	assertEqual(t, ov.PostsWithER, 3, "posts with ER")
	assertRate(t, ov.MeanER, 2.00, "mean ER")
	assertRate(t, ov.MedianER, 2.00, "median ER")
	assertRate(t, ov.MaxER, 3.00, "max ER")
	assertRate(t, ov.MinER, 1.00, "min ER")
	assertRate(t, ov.StdER, 1.00, "sample std ER")
	assertRate(t, ov.MeanLikes, 250, "mean likes")
	assertEqual(t, ov.DistinctDays, 3, "distinct days")
	assertEqual(t, ov.SpanDays, 4, "inclusive span")
	assertRate(t, ov.PostsPerDay, 1.33, "posts per distinct day")
	assertEqual(t, FormatTime(ov.FirstPost), "2024-01-01 09:00", "first post")
	assertEqual(t, FormatTime(ov.LastPost), "2024-01-04 12:00", "last post")
}

func TestSummarizeSingleDay(t *testing.T) {
	ov := Summarize(computed(
		mkPost("p1", "2024-01-01 09:00", 100, 0, 0, 10000, ""),
		mkPost("p2", "2024-01-01 18:00", 200, 0, 0, 10000, ""),
	))
	assertNil(t, ov.PostsPerDay, "posts per day needs two days")
	assertEqual(t, ov.SpanDays, 1, "span of a single day")
}

func TestSummarizePostsPerDayIgnoresGaps(t *testing.T) {
	var posts []Post
	for _, day := range []string{"2024-01-01", "2024-01-31"} {
		for _, hour := range []string{"08", "10", "12", "14", "16"} {
			posts = append(posts, mkPost(day+hour, day+" "+hour+":00", 100, 0, 0, 10000, ""))
		}
	}
	ov := Summarize(computed(posts...))
	assertEqual(t, ov.DistinctDays, 2, "distinct days")
	assertEqual(t, ov.SpanDays, 31, "inclusive span")
	assertRate(t, ov.PostsPerDay, 5.00, "posts per distinct day")
}

func TestSummarizeEmpty(t *testing.T) {
	ov := Summarize(computed())
	assertEqual(t, ov.TotalPosts, 0, "total posts")
	assertNil(t, ov.MeanER, "mean ER")
	if ov.FirstPost != nil {
		t.Errorf("first post should be nil")
	}
}

func TestCompareBases(t *testing.T) {
	p1 := mkPost("p1", "2024-01-01 09:00", 100, 0, 0, 10000, "")
	p1.Reach = num(1000)
	p2 := mkPost("p2", "2024-01-02 09:00", 300, 0, 0, 10000, "")
	p2.Reach = num(0)
	tbl := computed(p1, p2)

	got := CompareBases(tbl)
	assertEqual(t, len(got), 2, "bases with data")
	assertEqual(t, got[0].Basis, BasisFollowers, "first basis")
	assertEqual(t, got[0].Posts, 2, "followers posts")
	assertRate(t, got[0].MeanER, 2.00, "followers mean")
	assertEqual(t, got[1].Basis, BasisReach, "second basis")
	assertEqual(t, got[1].Posts, 1, "reach posts (zero reach dropped)")
	assertRate(t, got[1].MeanER, 10.00, "reach mean")

	// input basis unchanged
	assertEqual(t, tbl.Basis, BasisFollowers, "input basis")
	assertRate(t, tbl.Posts[0].ERPercentage, 1.00, "input ER")
}

func TestDistribution(t *testing.T) {
	tbl := computed(
		mkPost("p1", "2024-01-01 09:00", 100, 0, 0, 10000, ""),
		mkPost("p2", "2024-01-02 09:00", 200, 0, 0, 10000, ""),
		mkPost("p3", "2024-01-03 09:00", 300, 0, 0, 10000, ""),
		mkPost("p4", "2024-01-04 09:00", 400, 0, 0, 10000, ""),
	)

	d := Distribution(tbl)
	if d == nil {
		t.Fatal("Distribution returned nil")
	}
	assertEqual(t, d.Count, 4, "count")
	assertEqual(t, d.Min, 1.0, "min")
	assertEqual(t, d.Max, 4.0, "max")
	assertEqual(t, d.P25, 1.0, "p25")
	assertEqual(t, d.P50, 2.0, "p50")
	assertEqual(t, d.P75, 3.0, "p75")
	assertEqual(t, d.P90, 4.0, "p90")

	assertEqual(t, len(d.Buckets), 4, "buckets")
	total := 0
	for _, b := range d.Buckets {
		assertEqual(t, b.Count, 1, "bucket count")
		total += b.Count
	}
	assertEqual(t, total, 4, "bucketed posts")

	chart := BuildDistributionChart(d)
	assertEqual(t, chart.Series[0].Data[0].Label, "1-2%", "first bucket label")
}

func TestDistributionWideRangeCapsBuckets(t *testing.T) {
	tbl := computed(
		mkPost("p1", "2024-01-01 09:00", 0, 0, 0, 10000, ""),
		mkPost("p2", "2024-01-02 09:00", 9000, 0, 0, 10000, ""), // 90%
	)
	d := Distribution(tbl)
	if d == nil {
		t.Fatal("Distribution returned nil")
	}
	if len(d.Buckets) > maxBuckets {
		t.Errorf("got %d buckets, want at most %d", len(d.Buckets), maxBuckets)
	}
	total := 0
	for _, b := range d.Buckets {
		total += b.Count
	}
	assertEqual(t, total, 2, "bucketed posts")
}

func TestDistributionNoER(t *testing.T) {
	if d := Distribution(mkTable(mkPost("p1", "2024-01-01 09:00", 1, 1, 1, 100, ""))); d != nil {
		t.Errorf("expected nil distribution, got %+v", d)
	}
}
