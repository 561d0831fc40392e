package schema

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// NORMALIZER
// ============================================================================
// Pipeline:
//   1. Resolve columns (resolver chain, first complete one wins)
//   2. Re-attach the header as a data row when it looks like data
//   3. Coerce every cell; bad cells become nulls and are counted
//   4. Report the resolver, ignored and absent columns, and warnings
// ============================================================================

// ReadCSV decodes CSV text into a RawTable. The first record is the header.
// Records with malformed quoting are skipped and counted; ragged rows are
// kept and padded with nulls later.
func ReadCSV(r io.Reader) (RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var raw RawTable
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				raw.Skipped++
				continue
			}
			return RawTable{}, fmt.Errorf("failed to read CSV: %w", err)
		}
		if first {
			raw.Header = record
			first = false
			continue
		}
		raw.Rows = append(raw.Rows, record)
	}
	return raw, nil
}

// NormalizeCSV reads CSV bytes and normalizes them. The input slice is
// never modified.
func NormalizeCSV(data []byte, opts ...Option) (*engine.Table, Diagnostics, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Diagnostics{}, ErrEmptyInput
	}
	raw, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, Diagnostics{}, err
	}
	return Normalize(raw, opts...)
}

// Normalize maps a raw table onto the canonical post table.
func Normalize(raw RawTable, opts ...Option) (*engine.Table, Diagnostics, error) {
	o := applyOptions(opts)
	diag := Diagnostics{MalformedRows: raw.Skipped}

	if len(raw.Header) == 0 && len(raw.Rows) == 0 {
		return nil, diag, ErrEmptyInput
	}

	res, err := resolve(raw.Header, o.resolvers)
	diag.Resolver = res.Resolver
	if err != nil {
		return nil, diag, err
	}

	rows := raw.Rows
	if res.HeaderIsData {
		rows = make([][]string, 0, len(raw.Rows)+1)
		rows = append(rows, raw.Header)
		rows = append(rows, raw.Rows...)
	}
	diag.HeaderAsData = res.HeaderIsData
	diag.RowsRead = len(rows)
	diag.IgnoredColumns = nonNil(res.Ignored)

	var w warnings
	posts := make([]engine.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, buildPost(row, res.Columns, o.strictDates, &w))
	}

	columns := make([]string, 0, len(SourceColumns)+2)
	diag.AbsentColumns = []string{}
	for _, col := range SourceColumns {
		if _, ok := res.Columns[col]; ok {
			columns = append(columns, col)
		} else {
			diag.AbsentColumns = append(diag.AbsentColumns, col)
		}
	}
	columns = append(columns, engine.ColHour, engine.ColWeekday)

	diag.Warnings = nonNilWarnings(w.list)
	return engine.NewTable(posts, columns), diag, nil
}

// resolve runs the resolver chain. It returns the first complete resolution,
// or a SchemaError built from the one that covered the most required columns.
func resolve(header []string, resolvers []ColumnResolver) (Resolution, error) {
	var best Resolution
	bestMissing := -1
	for _, r := range resolvers {
		res := r.Resolve(header)
		missing := res.Missing()
		if len(missing) == 0 {
			return res, nil
		}
		if bestMissing < 0 || len(missing) < bestMissing {
			best, bestMissing = res, len(missing)
		}
	}
	if bestMissing < 0 {
		return Resolution{}, &SchemaError{MissingColumns: append([]string(nil), RequiredColumns...)}
	}
	return best, &SchemaError{MissingColumns: best.Missing(), Resolver: best.Resolver}
}

func buildPost(row []string, columns map[string]int, strict bool, w *warnings) engine.Post {
	cell := func(col string) string {
		i, ok := columns[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	p := engine.Post{
		PostID:          strings.TrimSpace(cell(engine.ColPostID)),
		Likes:           coerceNumber(cell(engine.ColLikes), engine.ColLikes, w),
		Comments:        coerceNumber(cell(engine.ColComments), engine.ColComments, w),
		Saves:           coerceNumber(cell(engine.ColSaves), engine.ColSaves, w),
		Reach:           coerceNumber(cell(engine.ColReach), engine.ColReach, w),
		Impressions:     coerceNumber(cell(engine.ColImpressions), engine.ColImpressions, w),
		FollowersAtPost: coerceNumber(cell(engine.ColFollowersAtPost), engine.ColFollowersAtPost, w),
	}
	if tags := cell(engine.ColHashtags); !isNullToken(tags) {
		p.Hashtags = tags
	}
	coerceTimestamp(cell(engine.ColPostedAt), strict, &p, w)
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilWarnings(s []ParseWarning) []ParseWarning {
	if s == nil {
		return []ParseWarning{}
	}
	return s
}
