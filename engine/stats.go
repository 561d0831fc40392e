package engine

import (
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/montanaflynn/stats"
)

// ============================================================================
// STATS — Overview, basis comparison, ER distribution
// ============================================================================
// Overview and CompareBases use exact statistics (montanaflynn/stats).
// Distribution uses an HDR histogram over ER scaled to hundredths, so
// quantiles are nearest-rank and exact below 20.48%.
// ============================================================================

// Overview summarizes a computed table.
type Overview struct {
	Basis          Basis      `json:"basis"`
	TotalPosts     int        `json:"total_posts"`
	PostsWithER    int        `json:"posts_with_er"`
	MeanER         *float64   `json:"mean_er"`
	MedianER       *float64   `json:"median_er"`
	MaxER          *float64   `json:"max_er"`
	MinER          *float64   `json:"min_er"`
	StdER          *float64   `json:"std_er"`
	MeanLikes      *float64   `json:"mean_likes"`
	MeanComments   *float64   `json:"mean_comments"`
	MeanSaves      *float64   `json:"mean_saves"`
	MeanEngagement *float64   `json:"mean_engagement"`
	FirstPost      *time.Time `json:"first_post"`
	LastPost       *time.Time `json:"last_post"`
	DistinctDays   int        `json:"distinct_days"`
	SpanDays       int        `json:"span_days"`     // first to last calendar day, inclusive
	PostsPerDay    *float64   `json:"posts_per_day"` // dated posts per distinct day; nil below 2 days
}

// Summarize computes the overview of a table. Uncomputed tables still report
// counts, engagement means and the date range.
func Summarize(t *Table) Overview {
	view := PostView(t)
	ov := Overview{
		Basis:      t.basisOrEmpty(),
		TotalPosts: t.Len(),
	}

	ers := MeasureValues(view, ColERPercentage)
	ov.PostsWithER = len(ers)
	if len(ers) > 0 {
		ov.MeanER = statOf(stats.Mean, ers)
		ov.MedianER = statOf(stats.Median, ers)
		ov.MaxER = extremeOf(MaxMeasure(view, ColERPercentage))
		ov.MinER = extremeOf(MinMeasure(view, ColERPercentage))
	}
	if len(ers) > 1 {
		ov.StdER = statOf(stats.StandardDeviationSample, ers)
	}

	ov.MeanLikes = statOf(stats.Mean, MeasureValues(view, ColLikes))
	ov.MeanComments = statOf(stats.Mean, MeasureValues(view, ColComments))
	ov.MeanSaves = statOf(stats.Mean, MeasureValues(view, ColSaves))
	ov.MeanEngagement = statOf(stats.Mean, MeasureValues(view, ColEngagementTotal))

	dated := 0
	if t != nil {
		for i := range t.Posts {
			at := t.Posts[i].PostedAt
			if at == nil {
				continue
			}
			dated++
			if ov.FirstPost == nil || at.Before(*ov.FirstPost) {
				ov.FirstPost = at
			}
			if ov.LastPost == nil || at.After(*ov.LastPost) {
				ov.LastPost = at
			}
		}
	}

	ov.DistinctDays = len(UniqueValues(view, DimDate))
	if ov.FirstPost != nil {
		ov.SpanDays = calendarSpan(*ov.FirstPost, *ov.LastPost)
	}
	if ov.DistinctDays >= 2 {
		ov.PostsPerDay = ptr(Round2(float64(dated) / float64(ov.DistinctDays)))
	}
	return ov
}

func (t *Table) basisOrEmpty() Basis {
	if t == nil {
		return ""
	}
	return t.Basis
}

// calendarSpan counts calendar days from first to last, inclusive.
func calendarSpan(first, last time.Time) int {
	a := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours()/24) + 1
}

func extremeOf(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return ptr(Round2(v))
}

func statOf(fn func(stats.Float64Data) (float64, error), vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	v, err := fn(vals)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return ptr(Round2(v))
}

// ============================================================================
// BASIS COMPARISON
// ============================================================================

// BasisStats is the ER profile of a table under one basis.
type BasisStats struct {
	Basis    Basis    `json:"basis"`
	Posts    int      `json:"posts"`
	MeanER   *float64 `json:"mean_er"`
	MedianER *float64 `json:"median_er"`
	MaxER    *float64 `json:"max_er"`
	MinER    *float64 `json:"min_er"`
}

// CompareBases recomputes ER under every basis and reports those with at
// least one non-null ER. The input table is not modified.
func CompareBases(t *Table) []BasisStats {
	out := []BasisStats{}
	if t.Len() == 0 {
		return out
	}
	for _, b := range Bases {
		if !t.Has(b.Column()) {
			continue
		}
		ers := MeasureValues(PostView(ComputeMetrics(t, b)), ColERPercentage)
		if len(ers) == 0 {
			continue
		}
		out = append(out, BasisStats{
			Basis:    b,
			Posts:    len(ers),
			MeanER:   statOf(stats.Mean, ers),
			MedianER: statOf(stats.Median, ers),
			MaxER:    statOf(stats.Max, ers),
			MinER:    statOf(stats.Min, ers),
		})
	}
	return out
}

// ============================================================================
// DISTRIBUTION
// ============================================================================

// ERDistribution describes the spread of ER values.
type ERDistribution struct {
	Count   int                  `json:"count"`
	Min     float64              `json:"min"`
	Max     float64              `json:"max"`
	P25     float64              `json:"p25"`
	P50     float64              `json:"p50"`
	P75     float64              `json:"p75"`
	P90     float64              `json:"p90"`
	Buckets []DistributionBucket `json:"buckets"`
}

// DistributionBucket counts posts with Lower <= ER < Upper.
type DistributionBucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

const (
	erScale        = 100      // hundredths of a percentage point
	maxTrackableER = 10000000 // 100000%
	maxBuckets     = 20
)

// Distribution returns ER quantiles and percentage-point buckets, or nil when
// no post has an ER.
func Distribution(t *Table) *ERDistribution {
	ers := MeasureValues(PostView(t), ColERPercentage)
	if len(ers) == 0 {
		return nil
	}

	histogram := hdrhistogram.New(1, maxTrackableER, 3)
	for _, er := range ers {
		v := int64(math.Round(er * erScale))
		if v > maxTrackableER {
			v = maxTrackableER
		}
		if err := histogram.RecordValue(v); err != nil {
			continue
		}
	}

	d := &ERDistribution{
		Count: int(histogram.TotalCount()),
		Min:   scaled(histogram.Min()),
		Max:   scaled(histogram.Max()),
		P25:   scaled(histogram.ValueAtQuantile(25)),
		P50:   scaled(histogram.ValueAtQuantile(50)),
		P75:   scaled(histogram.ValueAtQuantile(75)),
		P90:   scaled(histogram.ValueAtQuantile(90)),
	}
	d.Buckets = bucketize(histogram, d.Min, d.Max)
	return d
}

func scaled(v int64) float64 {
	return Round2(float64(v) / erScale)
}

// bucketize folds the histogram's own bars into whole-percentage-point
// buckets, widening them so there are at most maxBuckets.
func bucketize(h *hdrhistogram.Histogram, min, max float64) []DistributionBucket {
	lo := math.Floor(min)
	span := math.Floor(max) - lo + 1
	width := math.Ceil(span / maxBuckets)
	if width < 1 {
		width = 1
	}
	n := int(math.Ceil(span / width))

	buckets := make([]DistributionBucket, n)
	for i := range buckets {
		buckets[i].Lower = lo + float64(i)*width
		buckets[i].Upper = buckets[i].Lower + width
	}

	for _, bar := range h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		i := int((float64(bar.From)/erScale - lo) / width)
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		buckets[i].Count += int(bar.Count)
	}
	return buckets
}
