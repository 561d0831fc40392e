package engine

import (
	"fmt"
)

// ============================================================================
// EXECUTOR — Runs every view over one table
// ============================================================================
// Entry point: Execute(table, opts...)
//
// Pipeline:
//   1. Compute metrics under the requested basis (new table)
//   2. Overview, rankings, hour / weekday / hashtag aggregates
//   3. Basis comparison and ER distribution
//   4. Plain-text digest
//
// The input table is never modified. Nothing here logs or performs I/O.
// ============================================================================

// Report bundles every view derived from one table.
type Report struct {
	Basis            Basis           `json:"basis"`
	Overview         Overview        `json:"overview"`
	Top              []Post          `json:"top"`
	Bottom           []Post          `json:"bottom"`
	Hourly           []HourRow       `json:"hourly"`
	Weekday          []WeekdayRow    `json:"weekday"`
	Hashtags         []HashtagRow    `json:"hashtags"`          // by performance
	HashtagFrequency []HashtagRow    `json:"hashtag_frequency"` // by use count
	Bases            []BasisStats    `json:"bases"`
	Distribution     *ERDistribution `json:"distribution"`
	Text             *TextData       `json:"text"`

	// Table is the computed table the report was built from.
	Table *Table `json:"-"`
}

// Execute computes metrics and every aggregate view for a normalized table.
func Execute(t *Table, opts ...Option) (*Report, error) {
	cfg := applyOptions(opts)

	computed := ComputeMetrics(t, cfg.Basis)
	r := &Report{
		Basis:    cfg.Basis,
		Table:    computed,
		Overview: Summarize(computed),
		Hourly:   AggregateByHour(computed),
		Weekday:  AggregateByWeekday(computed),
		Bases:    CompareBases(computed),
	}

	var err error
	if r.Top, err = Rank(computed, DirectionTop, cfg.TopN); err != nil {
		return nil, fmt.Errorf("top ranking: %w", err)
	}
	if r.Bottom, err = Rank(computed, DirectionBottom, cfg.TopN); err != nil {
		return nil, fmt.Errorf("bottom ranking: %w", err)
	}
	if r.Hashtags, err = HashtagSummary(computed, cfg.HashtagLimit, OrderPerformance); err != nil {
		return nil, fmt.Errorf("hashtag performance: %w", err)
	}
	if r.HashtagFrequency, err = HashtagSummary(computed, cfg.HashtagLimit, OrderFrequency); err != nil {
		return nil, fmt.Errorf("hashtag frequency: %w", err)
	}

	r.Distribution = Distribution(computed)
	r.Text = BuildText(r)
	return r, nil
}
