package engine

import (
	"strconv"
)

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// Aggregators read posts through this interface instead of touching the
// Post struct directly, so grouping can hand out SubViews (index lists into
// the parent) without copying rows.
//
// Implementations:
//   DomainView[T]  reads typed structs via accessor functions (zero-copy)
//   SubView        filtered subset (indices into parent, zero-copy)
//
// Every accessor reports whether the value is present; nulls are never
// coerced to zero here.
// ============================================================================

// RecordView provides indexed, null-aware access to a dataset.
type RecordView interface {
	Len() int
	Dimension(index int, key string) (string, bool)
	Measure(index int, key string) (float64, bool)
	DimensionKeys() []string
	MeasureKeys() []string
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.indices) {
		return "", false
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) (float64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Measure(v.indices[i], key)
}

// Index maps a SubView position back to the parent's position.
func (v *SubView) Index(i int) int { return v.indices[i] }

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) (string, bool)
	meas     map[string]func(T) (float64, bool)
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) (string, bool)),
		meas: make(map[string]func(T) (float64, bool)),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) (string, bool)) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) (float64, bool)) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy: holds a reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) (string, bool)
	meas     map[string]func(T) (float64, bool)
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.data) {
		return "", false
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return "", false
}

func (v *DomainView[T]) Measure(i int, key string) (float64, bool) {
	if i < 0 || i >= len(v.data) {
		return 0, false
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0, false
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }

// ============================================================================
// POST VIEW
// ============================================================================

// DimDate is a virtual dimension: the calendar date of posted_at (YYYY-MM-DD).
const DimDate = "date"

var postAdapter = NewDomainAdapter[Post]().
	Dimension(ColPostID, func(p Post) (string, bool) { return p.PostID, true }).
	Dimension(ColHour, func(p Post) (string, bool) {
		if p.Hour == nil {
			return "", false
		}
		return strconv.Itoa(*p.Hour), true
	}).
	Dimension(ColWeekday, func(p Post) (string, bool) {
		if p.Weekday == nil {
			return "", false
		}
		return *p.Weekday, true
	}).
	Dimension(DimDate, func(p Post) (string, bool) {
		if p.PostedAt == nil {
			return "", false
		}
		return p.PostedAt.Format("2006-01-02"), true
	}).
	Measure(ColLikes, optional(func(p Post) *float64 { return p.Likes })).
	Measure(ColComments, optional(func(p Post) *float64 { return p.Comments })).
	Measure(ColSaves, optional(func(p Post) *float64 { return p.Saves })).
	Measure(ColReach, optional(func(p Post) *float64 { return p.Reach })).
	Measure(ColImpressions, optional(func(p Post) *float64 { return p.Impressions })).
	Measure(ColFollowersAtPost, optional(func(p Post) *float64 { return p.FollowersAtPost })).
	Measure(ColEngagementTotal, optional(func(p Post) *float64 { return p.EngagementTotal })).
	Measure(ColERPercentage, optional(func(p Post) *float64 { return p.ERPercentage }))

func optional(field func(Post) *float64) func(Post) (float64, bool) {
	return func(p Post) (float64, bool) {
		v := field(p)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

// PostView binds a table's posts to a RecordView.
func PostView(t *Table) RecordView {
	if t == nil {
		return postAdapter.Bind(nil)
	}
	return postAdapter.Bind(t.Posts)
}
