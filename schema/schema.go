package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// SCHEMA — Maps arbitrary post exports onto the canonical post table
// ============================================================================
// Input is a RawTable (header + string rows) from CSV, a database query or
// any other source. Normalize resolves columns, coerces every cell and
// returns an engine.Table plus Diagnostics describing what was coerced.
// Structural problems are errors; bad cells become nulls and are counted.
// ============================================================================

// RawTable is undecoded tabular input.
type RawTable struct {
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
	Skipped int        `json:"skipped,omitempty"` // malformed records dropped by the reader
}

// ErrEmptyInput is returned when the input has neither a header nor rows.
var ErrEmptyInput = errors.New("empty input")

// SchemaError reports required columns that no resolver could supply.
type SchemaError struct {
	MissingColumns []string `json:"missingColumns"`
	Resolver       string   `json:"resolver"`
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingColumns, ", "))
}

// ============================================================================
// CANONICAL COLUMNS
// ============================================================================

// RequiredColumns must be resolvable for a table to be built.
var RequiredColumns = []string{
	engine.ColPostID,
	engine.ColPostedAt,
	engine.ColLikes,
	engine.ColComments,
	engine.ColSaves,
	engine.ColFollowersAtPost,
}

// PositionalOrder is the canonical name given to each source column, in file
// order, when names cannot be used.
var PositionalOrder = []string{
	engine.ColPostID,
	engine.ColPostedAt,
	engine.ColLikes,
	engine.ColComments,
	engine.ColSaves,
	engine.ColFollowersAtPost,
	engine.ColReach,
	engine.ColImpressions,
	engine.ColHashtags,
}

// SourceColumns are the canonical columns read from input, in output order.
var SourceColumns = []string{
	engine.ColPostID,
	engine.ColPostedAt,
	engine.ColLikes,
	engine.ColComments,
	engine.ColSaves,
	engine.ColReach,
	engine.ColImpressions,
	engine.ColFollowersAtPost,
	engine.ColHashtags,
}

// Synonyms maps accepted alternative header names to canonical ones.
// engagement_total is recognized but always recomputed.
var Synonyms = map[string]string{
	"id":         engine.ColPostID,
	"engagement": engine.ColEngagementTotal,
}

var metricColumns = []string{
	engine.ColLikes,
	engine.ColComments,
	engine.ColSaves,
	engine.ColReach,
	engine.ColImpressions,
	engine.ColFollowersAtPost,
}

// nullTokens are cell values read as null.
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"null": true,
	"NULL": true,
}

func isNullToken(s string) bool {
	return nullTokens[strings.TrimSpace(s)]
}

// ============================================================================
// DIAGNOSTICS
// ============================================================================

// WarningKind classifies a coerced cell.
type WarningKind string

const (
	WarnDate     WarningKind = "date"     // timestamp could not be parsed
	WarnNumeric  WarningKind = "numeric"  // not a finite number
	WarnNegative WarningKind = "negative" // negative count
)

const maxWarningSamples = 3

// ParseWarning counts cells of one column that were coerced to null.
type ParseWarning struct {
	Column  string      `json:"column"`
	Kind    WarningKind `json:"kind"`
	Count   int         `json:"count"`
	Samples []string    `json:"samples"`
}

// Diagnostics describes how a raw table was normalized.
type Diagnostics struct {
	Resolver       string         `json:"resolver"`
	HeaderAsData   bool           `json:"headerAsData"`
	RowsRead       int            `json:"rowsRead"`
	MalformedRows  int            `json:"malformedRows"`
	IgnoredColumns []string       `json:"ignoredColumns"`
	AbsentColumns  []string       `json:"absentColumns"`
	Warnings       []ParseWarning `json:"warnings"`
}

// WarningCount sums coerced cells across all warnings.
func (d Diagnostics) WarningCount() int {
	n := 0
	for _, w := range d.Warnings {
		n += w.Count
	}
	return n
}

// warnings accumulates ParseWarnings in first-seen order.
type warnings struct {
	list  []ParseWarning
	index map[string]int
}

func (w *warnings) add(column string, kind WarningKind, raw string) {
	if w.index == nil {
		w.index = make(map[string]int)
	}
	key := column + "/" + string(kind)
	i, ok := w.index[key]
	if !ok {
		w.list = append(w.list, ParseWarning{Column: column, Kind: kind, Samples: []string{}})
		i = len(w.list) - 1
		w.index[key] = i
	}
	w.list[i].Count++
	if len(w.list[i].Samples) < maxWarningSamples {
		w.list[i].Samples = append(w.list[i].Samples, raw)
	}
}
