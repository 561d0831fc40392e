package engine

import (
	"fmt"
	"strconv"
	"time"
)

// ============================================================================
// FORMATTING — string rendering for tables, text and CSV export
// ============================================================================
// Nulls render as the empty string so that CSV round-trips keep them null.
// ============================================================================

// PostedAtLayout is the canonical timestamp layout.
const PostedAtLayout = "2006-01-02 15:04"

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatNumber renders a nullable count without trailing zeros (120, 8200.5).
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatRate renders a nullable rate with exactly two decimals.
func FormatRate(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatPercent renders a nullable rate as "1.89%", or "n/a".
func FormatPercent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// FormatTime renders a nullable timestamp in the canonical layout.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(PostedAtLayout)
}

// FormatHour renders an hour of day as "19:00".
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

var columnLabels = map[string]string{
	ColPostID:          "Post ID",
	ColPostedAt:        "Posted At",
	ColLikes:           "Likes",
	ColComments:        "Comments",
	ColSaves:           "Saves",
	ColReach:           "Reach",
	ColImpressions:     "Impressions",
	ColFollowersAtPost: "Followers",
	ColHashtags:        "Hashtags",
	ColHour:            "Hour",
	ColWeekday:         "Weekday",
	ColEngagementTotal: "Engagement",
	ColERPercentage:    "ER %",
}

// LabelForColumn returns a display label for a canonical column.
func LabelForColumn(column string) string {
	if l, ok := columnLabels[column]; ok {
		return l
	}
	return column
}
