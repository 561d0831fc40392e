package schema

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// CELL COERCION
// ============================================================================
// Timestamps: strict "2006-01-02 15:04" first, then (unless strict) any layout
// dateparse recognizes, read as UTC. Numbers: thousands separators removed,
// must be finite and non-negative.
// ============================================================================

var (
	errNotNumber = errors.New("not a finite number")
	errNegative  = errors.New("negative value")
)

func parseTimestamp(s string, strict bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(engine.PostedAtLayout, s); err == nil {
		return ts, true
	}
	if strict {
		return time.Time{}, false
	}
	ts, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}

// coerceNumber converts a cell to a nullable count, recording a warning for
// anything other than a valid number or a null token.
func coerceNumber(raw, column string, w *warnings) *float64 {
	if isNullToken(raw) {
		return nil
	}
	v, err := parseNumber(raw)
	switch {
	case errors.Is(err, errNegative):
		w.add(column, WarnNegative, raw)
		return nil
	case err != nil:
		w.add(column, WarnNumeric, raw)
		return nil
	}
	return &v
}

// coerceTimestamp fills posted_at, hour and weekday together; all three stay
// nil when the cell is null or unparsable.
func coerceTimestamp(raw string, strict bool, p *engine.Post, w *warnings) {
	if isNullToken(raw) {
		return
	}
	ts, ok := parseTimestamp(raw, strict)
	if !ok {
		w.add(engine.ColPostedAt, WarnDate, raw)
		return
	}
	hour := ts.Hour()
	weekday := ts.Weekday().String()
	p.PostedAt = &ts
	p.Hour = &hour
	p.Weekday = &weekday
}
