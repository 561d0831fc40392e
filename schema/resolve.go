package schema

import (
	"fmt"
	"strings"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// COLUMN RESOLUTION — name first, position second
// ============================================================================
// A ColumnResolver maps canonical column names to source column indices.
// Normalize tries resolvers in order and keeps the first one that supplies
// every required column. When none does, the resolver that covered the most
// required columns decides the reported missing list.
// ============================================================================

// ColumnResolver maps a header row onto canonical columns.
type ColumnResolver interface {
	Name() string
	Resolve(header []string) Resolution
}

// Resolution is the outcome of one resolver.
type Resolution struct {
	Resolver     string
	Columns      map[string]int // canonical name → source index
	HeaderIsData bool           // header row is really the first data row
	Ignored      []string       // source columns not mapped
}

// Missing lists required columns absent from the resolution, in canonical order.
func (r Resolution) Missing() []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := r.Columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// ============================================================================
// NAME RESOLVER
// ============================================================================

// NameResolver matches exact (case-sensitive) canonical names, then synonyms.
// A synonym never overrides a canonical column that is present.
type NameResolver struct{}

func (NameResolver) Name() string { return "name" }

func (NameResolver) Resolve(header []string) Resolution {
	res := Resolution{Resolver: "name", Columns: make(map[string]int)}
	known := make(map[string]bool, len(SourceColumns)+1)
	for _, c := range SourceColumns {
		known[c] = true
	}
	known[engine.ColEngagementTotal] = true

	used := make([]bool, len(header))
	for i, h := range header {
		name := cleanHeader(h, i)
		if !known[name] {
			continue
		}
		if _, dup := res.Columns[name]; dup {
			continue
		}
		res.Columns[name] = i
		used[i] = true
	}

	for i, h := range header {
		if used[i] {
			continue
		}
		canonical, ok := Synonyms[cleanHeader(h, i)]
		if !ok {
			continue
		}
		if _, taken := res.Columns[canonical]; taken {
			continue
		}
		res.Columns[canonical] = i
		used[i] = true
	}

	for i, h := range header {
		if !used[i] {
			res.Ignored = append(res.Ignored, h)
		}
	}
	return res
}

// cleanHeader trims whitespace and, on the first cell, a UTF-8 byte order mark.
func cleanHeader(h string, index int) string {
	if index == 0 {
		h = strings.TrimPrefix(h, "\ufeff")
	}
	return strings.TrimSpace(h)
}

// ============================================================================
// POSITIONAL RESOLVER
// ============================================================================

// PositionalResolver names source columns by file order (PositionalOrder).
// When the header row itself looks like data (a parseable timestamp in the
// posted_at slot, or a number in a metric slot) it is marked HeaderIsData.
type PositionalResolver struct {
	Strict bool // date detection uses the strict layout only
}

func (PositionalResolver) Name() string { return "position" }

func (p PositionalResolver) Resolve(header []string) Resolution {
	res := Resolution{Resolver: "position", Columns: make(map[string]int)}
	n := len(header)
	if n > len(PositionalOrder) {
		n = len(PositionalOrder)
	}
	for i := 0; i < n; i++ {
		res.Columns[PositionalOrder[i]] = i
	}

	res.HeaderIsData = p.looksLikeData(header)
	for i := n; i < len(header); i++ {
		if res.HeaderIsData {
			res.Ignored = append(res.Ignored, fmt.Sprintf("column %d", i+1))
		} else {
			res.Ignored = append(res.Ignored, header[i])
		}
	}
	return res
}

func (p PositionalResolver) looksLikeData(header []string) bool {
	cell := func(col string) (string, bool) {
		for i, c := range PositionalOrder {
			if c == col && i < len(header) {
				return header[i], true
			}
		}
		return "", false
	}

	if v, ok := cell(engine.ColPostedAt); ok && !isNullToken(v) {
		if _, ok := parseTimestamp(v, p.Strict); ok {
			return true
		}
	}
	for _, col := range metricColumns {
		v, ok := cell(col)
		if !ok || isNullToken(v) {
			continue
		}
		if _, err := parseNumber(v); err == nil {
			return true
		}
	}
	return false
}
