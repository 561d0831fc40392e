package engine

import (
	"fmt"
	"sort"
)

// ============================================================================
// TEXT BUILDER — Produces TextData for plain-text summaries
// ============================================================================
// All functions operate on RecordView or on already-aggregated rows.
// ============================================================================

// TextData is a plain-language digest of a report.
type TextData struct {
	Headline string   `json:"headline"`
	Period   string   `json:"period"`
	Lines    []string `json:"lines"`
}

// BuildText produces the digest of a report: overall ER, best hour, best
// weekday and most used hashtag, each line only when its data exists.
func BuildText(r *Report) *TextData {
	if r == nil || r.Overview.TotalPosts == 0 {
		return &TextData{Headline: "No posts to analyze.", Period: "No data"}
	}

	ov := r.Overview
	td := &TextData{
		Headline: fmt.Sprintf("%s posts analyzed, average ER %s (%s basis).",
			FormatInt(ov.TotalPosts), FormatPercent(ov.MeanER), r.Basis),
		Period: DerivePeriod(PostView(r.Table)),
	}

	if ov.MedianER != nil {
		td.Lines = append(td.Lines, fmt.Sprintf("Median ER %s, range %s - %s.",
			FormatPercent(ov.MedianER), FormatPercent(ov.MinER), FormatPercent(ov.MaxER)))
	}
	if ov.PostsWithER < ov.TotalPosts {
		td.Lines = append(td.Lines, fmt.Sprintf("%s posts have no ER (missing metrics or zero %s).",
			FormatInt(ov.TotalPosts-ov.PostsWithER), LabelForColumn(r.Basis.Column())))
	}
	if best, ok := bestHour(r.Hourly); ok {
		td.Lines = append(td.Lines, fmt.Sprintf("Best hour: %s (average ER %s over %d posts).",
			FormatHour(best.Hour), FormatPercent(best.MeanER), best.Count))
	}
	if best, ok := bestWeekday(r.Weekday); ok {
		td.Lines = append(td.Lines, fmt.Sprintf("Best weekday: %s (average ER %s over %d posts).",
			best.Weekday, FormatPercent(best.MeanER), best.Count))
	}
	if len(r.HashtagFrequency) > 0 {
		h := r.HashtagFrequency[0]
		td.Lines = append(td.Lines, fmt.Sprintf("Most used hashtag: #%s (%d uses).", h.Hashtag, h.Count))
	}
	if ov.PostsPerDay != nil {
		td.Lines = append(td.Lines, fmt.Sprintf("Posting frequency: %.2f posts per active day over %d days.",
			*ov.PostsPerDay, ov.DistinctDays))
	}
	return td
}

func bestHour(rows []HourRow) (HourRow, bool) {
	var best HourRow
	found := false
	for _, r := range rows {
		if r.MeanER != nil && (!found || *r.MeanER > *best.MeanER) {
			best, found = r, true
		}
	}
	return best, found
}

func bestWeekday(rows []WeekdayRow) (WeekdayRow, bool) {
	var best WeekdayRow
	found := false
	for _, r := range rows {
		if r.MeanER != nil && (!found || *r.MeanER > *best.MeanER) {
			best, found = r, true
		}
	}
	return best, found
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod builds a human-readable period string from a view's dates.
func DerivePeriod(view RecordView) string {
	if view.Len() == 0 {
		return "No data"
	}

	days := UniqueValues(view, DimDate)
	switch len(days) {
	case 0:
		return "All time"
	case 1:
		return days[0]
	}

	sort.Strings(days)
	return fmt.Sprintf("%s - %s", days[0], days[len(days)-1])
}
