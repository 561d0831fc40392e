package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// ERLENS ENGINE TYPES — Canonical post table + aggregate rows
// ============================================================================
// The engine owns the canonical data model. The schema package produces
// Tables, the engine computes metrics and aggregates over them, and the
// insight package reads them. Nothing here performs I/O.
// ============================================================================

// Canonical column names. Source files are mapped onto these by the schema
// package; downstream code only ever sees these names.
const (
	ColPostID          = "post_id"
	ColPostedAt        = "posted_at"
	ColLikes           = "likes"
	ColComments        = "comments"
	ColSaves           = "saves"
	ColReach           = "reach"
	ColImpressions     = "impressions"
	ColFollowersAtPost = "followers_at_post"
	ColHashtags        = "hashtags"
	ColHour            = "hour"
	ColWeekday         = "weekday"
	ColEngagementTotal = "engagement_total"
	ColERPercentage    = "er_percentage"
)

// Sentinel errors for invalid operation arguments. Empty data is never an
// error; these only signal caller mistakes.
var (
	ErrInvalidBasis     = errors.New("invalid basis")
	ErrInvalidDirection = errors.New("invalid rank direction")
	ErrInvalidLimit     = errors.New("limit must be positive")
	ErrInvalidOrder     = errors.New("invalid hashtag order")
)

// ============================================================================
// BASIS / DIRECTION / ORDER
// ============================================================================

// Basis selects the ER denominator.
type Basis string

const (
	BasisFollowers   Basis = "followers"
	BasisReach       Basis = "reach"
	BasisImpressions Basis = "impressions"
)

// Bases lists every supported basis in display order.
var Bases = []Basis{BasisFollowers, BasisReach, BasisImpressions}

// ParseBasis accepts "followers", "reach" or "impressions" (case-insensitive).
func ParseBasis(s string) (Basis, error) {
	switch b := Basis(strings.ToLower(strings.TrimSpace(s))); b {
	case BasisFollowers, BasisReach, BasisImpressions:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBasis, s)
}

// Column returns the canonical column used as denominator.
func (b Basis) Column() string {
	switch b {
	case BasisReach:
		return ColReach
	case BasisImpressions:
		return ColImpressions
	default:
		return ColFollowersAtPost
	}
}

// Direction picks the end of the ranking.
type Direction string

const (
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

// ParseDirection accepts "top"/"high" and "bottom"/"low".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "high":
		return DirectionTop, nil
	case "bottom", "low":
		return DirectionBottom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// HashtagOrder selects the hashtag summary ordering.
type HashtagOrder string

const (
	OrderPerformance HashtagOrder = "performance" // mean ER desc
	OrderFrequency   HashtagOrder = "frequency"   // count desc
)

// ParseHashtagOrder accepts "performance" or "frequency".
func ParseHashtagOrder(s string) (HashtagOrder, error) {
	switch o := HashtagOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderPerformance, OrderFrequency:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
}

// ============================================================================
// POST / TABLE
// ============================================================================

// Post is one row of the canonical table. Nil pointers are nulls.
// Pointer fields are never written through; recomputation swaps pointers.
type Post struct {
	PostID          string     `json:"post_id"`
	PostedAt        *time.Time `json:"posted_at"`
	Likes           *float64   `json:"likes"`
	Comments        *float64   `json:"comments"`
	Saves           *float64   `json:"saves"`
	Reach           *float64   `json:"reach"`
	Impressions     *float64   `json:"impressions"`
	FollowersAtPost *float64   `json:"followers_at_post"`
	Hashtags        string     `json:"hashtags"`
	Hour            *int       `json:"hour"`
	Weekday         *string    `json:"weekday"`
	EngagementTotal *float64   `json:"engagement_total"`
	ERPercentage    *float64   `json:"er_percentage"`
}

// Denominator returns the value used as ER denominator for a basis.
func (p Post) Denominator(b Basis) *float64 {
	switch b {
	case BasisReach:
		return p.Reach
	case BasisImpressions:
		return p.Impressions
	default:
		return p.FollowersAtPost
	}
}

// Table is the canonical post table for one analysis request.
type Table struct {
	Posts   []Post   `json:"posts"`
	Columns []string `json:"columns"`         // canonical columns present (source + derived)
	Basis   Basis    `json:"basis,omitempty"` // empty until ComputeMetrics runs
}

// NewTable creates a table over posts with the given canonical columns.
func NewTable(posts []Post, columns []string) *Table {
	return &Table{Posts: posts, Columns: columns}
}

// Len returns the number of posts. Safe on nil.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Posts)
}

// Has reports whether a canonical column is present.
func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Computed reports whether engagement metrics have been derived.
func (t *Table) Computed() bool {
	return t != nil && t.Basis != "" && t.Has(ColERPercentage)
}

// Clone returns a copy whose post slice and column list can be changed
// without affecting t.
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	posts := make([]Post, len(t.Posts))
	copy(posts, t.Posts)
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{Posts: posts, Columns: cols, Basis: t.Basis}
}

func (t *Table) withColumn(column string) {
	if !t.Has(column) {
		t.Columns = append(t.Columns, column)
	}
}

// ============================================================================
// AGGREGATE ROWS
// ============================================================================

// HourRow is the per-hour aggregate.
type HourRow struct {
	Hour   int      `json:"hour"`
	MeanER *float64 `json:"mean_er"`
	Count  int      `json:"count"`
}

// WeekdayRow is the per-weekday aggregate.
type WeekdayRow struct {
	Weekday string   `json:"weekday"`
	MeanER  *float64 `json:"mean_er"`
	Count   int      `json:"count"`
}

// HashtagRow is the per-tag aggregate.
type HashtagRow struct {
	Hashtag         string   `json:"hashtag"`
	MeanER          *float64 `json:"mean_er"`
	Count           int      `json:"count"`
	EngagementTotal float64  `json:"engagement_total"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig describes chart data. Rendering is left to the caller.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is a presentation-ready table of strings.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "percent", "datetime"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// Headers returns the column labels in order.
func (td *TableData) Headers() []string {
	if td == nil {
		return nil
	}
	h := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		h[i] = c.Label
	}
	return h
}

func ptr[T any](v T) *T { return &v }
