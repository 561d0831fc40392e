package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// AGGREGATORS — Ranking, Grouping, and Hashtag Explosion via RecordView
// ============================================================================
// All functions are pure reads over a Table. Grouping produces SubViews
// (index lists into the parent view); no post is copied until results are
// materialized. Empty input or missing columns yield empty results, never
// errors. Errors are reserved for invalid arguments.
// ============================================================================

// WeekdayOrder is the canonical week order used for weekday aggregates.
var WeekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Group is an intermediate grouped result.
type Group struct {
	Key   string
	Count int
	View  RecordView
}

// ============================================================================
// RANK
// ============================================================================

// Rank returns the n posts with the highest (top) or lowest (bottom) ER.
// Posts without an ER are dropped; ties keep their original order. n larger
// than the number of rankable posts is clamped.
func Rank(t *Table, dir Direction, n int) ([]Post, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	dir, err := ParseDirection(string(dir))
	if err != nil {
		return nil, err
	}
	if !t.Computed() {
		return []Post{}, nil
	}

	view := PostView(t)
	indices := make([]int, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if _, ok := view.Measure(i, ColERPercentage); ok {
			indices = append(indices, i)
		}
	}

	sort.SliceStable(indices, func(a, b int) bool {
		ea, _ := view.Measure(indices[a], ColERPercentage)
		eb, _ := view.Measure(indices[b], ColERPercentage)
		if dir == DirectionTop {
			return ea > eb
		}
		return ea < eb
	})

	if n > len(indices) {
		n = len(indices)
	}
	out := make([]Post, 0, n)
	for _, i := range indices[:n] {
		out = append(out, t.Posts[i])
	}
	return out, nil
}

// ============================================================================
// HOUR / WEEKDAY
// ============================================================================

// AggregateByHour groups posts by hour of day (nulls excluded) and returns
// mean ER and post count per hour, ascending. Hours without posts are omitted.
func AggregateByHour(t *Table) []HourRow {
	rows := []HourRow{}
	if !t.Computed() || !t.Has(ColHour) {
		return rows
	}

	for _, g := range groupBySingle(PostView(t), ColHour) {
		hour, err := strconv.Atoi(g.Key)
		if err != nil {
			continue
		}
		rows = append(rows, HourRow{
			Hour:   hour,
			MeanER: meanER(g.View),
			Count:  g.Count,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Hour < rows[j].Hour })
	return rows
}

// AggregateByWeekday groups posts by weekday (nulls excluded), ordered
// Monday through Sunday.
func AggregateByWeekday(t *Table) []WeekdayRow {
	rows := []WeekdayRow{}
	if !t.Computed() || !t.Has(ColWeekday) {
		return rows
	}

	for _, g := range groupBySingle(PostView(t), ColWeekday) {
		if weekdayIndex(g.Key) < 0 {
			continue
		}
		rows = append(rows, WeekdayRow{
			Weekday: g.Key,
			MeanER:  meanER(g.View),
			Count:   g.Count,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return weekdayIndex(rows[i].Weekday) < weekdayIndex(rows[j].Weekday)
	})
	return rows
}

func weekdayIndex(name string) int {
	for i, d := range WeekdayOrder {
		if d == name {
			return i
		}
	}
	return -1
}

// ============================================================================
// HASHTAGS
// ============================================================================

// HashtagSummary explodes every post's hashtags and aggregates per tag:
// mean ER, number of uses, and summed engagement. Ordered by mean ER
// (performance) or use count (frequency); ties keep first-seen order.
// topN <= 0 returns every tag.
func HashtagSummary(t *Table, topN int, order HashtagOrder) ([]HashtagRow, error) {
	order, err := ParseHashtagOrder(string(order))
	if err != nil {
		return nil, err
	}
	rows := []HashtagRow{}
	if !t.Has(ColHashtags) {
		return rows, nil
	}

	uses := ExplodeHashtags(t)
	for _, g := range groupBySingle(hashtagAdapter.Bind(uses), dimHashtag) {
		rows = append(rows, HashtagRow{
			Hashtag:         g.Key,
			MeanER:          meanER(g.View),
			Count:           g.Count,
			EngagementTotal: SumMeasure(g.View, ColEngagementTotal),
		})
	}

	switch order {
	case OrderPerformance:
		sort.SliceStable(rows, func(i, j int) bool { return lessNullable(rows[j].MeanER, rows[i].MeanER) })
	case OrderFrequency:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	}

	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows, nil
}

// HashtagUse is one exploded (post, tag) pair.
type HashtagUse struct {
	Tag  string
	Post Post
}

const dimHashtag = "hashtag"

var hashtagAdapter = NewDomainAdapter[HashtagUse]().
	Dimension(dimHashtag, func(u HashtagUse) (string, bool) { return u.Tag, u.Tag != "" }).
	Measure(ColERPercentage, postMeasure(optional(func(p Post) *float64 { return p.ERPercentage })).bindUse()).
	Measure(ColEngagementTotal, postMeasure(optional(func(p Post) *float64 { return p.EngagementTotal })).bindUse())

type postMeasure func(Post) (float64, bool)

func (f postMeasure) bindUse() func(HashtagUse) (float64, bool) {
	return func(u HashtagUse) (float64, bool) { return f(u.Post) }
}

// ExplodeHashtags returns one HashtagUse per tag occurrence, in post order.
// A post that repeats a tag contributes one use per repetition.
func ExplodeHashtags(t *Table) []HashtagUse {
	if t == nil {
		return nil
	}
	var uses []HashtagUse
	for _, p := range t.Posts {
		for _, tag := range SplitHashtags(p.Hashtags) {
			uses = append(uses, HashtagUse{Tag: tag, Post: p})
		}
	}
	return uses
}

// SplitHashtags applies the canonical hashtag convention: NFKC-normalize
// (full-width '＃' and '，' become ASCII), split on commas, trim, strip
// leading '#', lower-case, drop empty fragments.
func SplitHashtags(raw string) []string {
	raw = norm.NFKC.String(raw)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		tag = strings.TrimSpace(strings.TrimLeft(tag, "#"))
		if tag == "" {
			continue
		}
		tags = append(tags, strings.ToLower(tag))
	}
	return tags
}

// ============================================================================
// GROUPING
// ============================================================================

// groupBySingle groups view rows by a dimension in first-seen order.
// Rows where the dimension is null are skipped.
func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key, ok := view.Dimension(i, dimension)
		if !ok {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Count: len(grouped[key]),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// MEASURE HELPERS (null-aware)
// ============================================================================

// SumMeasure sums the non-null values of a measure.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			total += v
		}
	}
	return total
}

// AvgMeasure averages the non-null values of a measure. The second return
// value is the number of values averaged; zero means the mean is undefined.
func AvgMeasure(view RecordView, measure string) (float64, int) {
	var total float64
	n := 0
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return total / float64(n), n
}

// MaxMeasure returns the largest non-null value of a measure.
func MaxMeasure(view RecordView, measure string) (float64, bool) {
	m := math.Inf(-1)
	found := false
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok && v > m {
			m = v
			found = true
		}
	}
	return m, found
}

// MinMeasure returns the smallest non-null value of a measure.
func MinMeasure(view RecordView, measure string) (float64, bool) {
	m := math.Inf(1)
	found := false
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok && v < m {
			m = v
			found = true
		}
	}
	return m, found
}

// MeasureValues collects the non-null values of a measure in view order.
func MeasureValues(view RecordView, measure string) []float64 {
	vals := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// UniqueValues returns distinct non-null values for a dimension, first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val, ok := view.Dimension(i, dimension)
		if ok && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

func meanER(view RecordView) *float64 {
	mean, n := AvgMeasure(view, ColERPercentage)
	if n == 0 {
		return nil
	}
	return ptr(Round2(mean))
}

// lessNullable orders nil before any value.
func lessNullable(a, b *float64) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return *a < *b
	}
}
