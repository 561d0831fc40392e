package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from posts and aggregate rows
// ============================================================================
// Cells are pre-formatted strings; nulls are empty cells.
// ============================================================================

// Table views accepted by BuildTable.
const (
	ViewTop       = "top"
	ViewBottom    = "bottom"
	ViewPosts     = "posts"
	ViewHourly    = "hourly"
	ViewWeekday   = "weekday"
	ViewHashtags  = "hashtags"
	ViewFrequency = "frequency"
)

// TableViews lists the views BuildTable understands.
var TableViews = []string{ViewTop, ViewBottom, ViewPosts, ViewHourly, ViewWeekday, ViewHashtags, ViewFrequency}

// BuildTable returns the named table from a report, or nil for an unknown view.
// The posts view needs the table itself and is built from r.Table.
func BuildTable(view string, r *Report) *TableData {
	if r == nil {
		return nil
	}
	switch view {
	case ViewTop:
		return PostsTable(fmt.Sprintf("Top %d Posts by ER", len(r.Top)), r.Top, r.Basis)
	case ViewBottom:
		return PostsTable(fmt.Sprintf("Bottom %d Posts by ER", len(r.Bottom)), r.Bottom, r.Basis)
	case ViewPosts:
		var posts []Post
		if r.Table != nil {
			posts = r.Table.Posts
		}
		return PostsTable("All Posts", posts, r.Basis)
	case ViewHourly:
		return HourlyTable(r.Hourly)
	case ViewWeekday, "weekly":
		return WeekdayTable(r.Weekday)
	case ViewHashtags:
		return HashtagTable("Hashtag Performance", r.Hashtags)
	case ViewFrequency:
		return HashtagTable("Hashtag Frequency", r.HashtagFrequency)
	}
	return nil
}

// ============================================================================
// POSTS TABLE — Row per post
// ============================================================================

// PostsTable lists posts with their metrics under the given basis.
func PostsTable(title string, posts []Post, basis Basis) *TableData {
	denomCol := basis.Column()
	columns := []Column{
		{Key: ColPostID, Label: LabelForColumn(ColPostID), Type: "text", Align: "left"},
		{Key: ColPostedAt, Label: LabelForColumn(ColPostedAt), Type: "datetime", Align: "left"},
		{Key: ColLikes, Label: LabelForColumn(ColLikes), Type: "number", Align: "right"},
		{Key: ColComments, Label: LabelForColumn(ColComments), Type: "number", Align: "right"},
		{Key: ColSaves, Label: LabelForColumn(ColSaves), Type: "number", Align: "right"},
		{Key: denomCol, Label: LabelForColumn(denomCol), Type: "number", Align: "right"},
		{Key: ColEngagementTotal, Label: LabelForColumn(ColEngagementTotal), Type: "number", Align: "right"},
		{Key: ColERPercentage, Label: LabelForColumn(ColERPercentage), Type: "percent", Align: "right"},
		{Key: ColHashtags, Label: LabelForColumn(ColHashtags), Type: "text", Align: "left"},
	}

	rows := make([][]string, 0, len(posts))
	var erSum float64
	erCount := 0
	for _, p := range posts {
		rows = append(rows, []string{
			p.PostID,
			FormatTime(p.PostedAt),
			FormatNumber(p.Likes),
			FormatNumber(p.Comments),
			FormatNumber(p.Saves),
			FormatNumber(p.Denominator(basis)),
			FormatNumber(p.EngagementTotal),
			FormatRate(p.ERPercentage),
			p.Hashtags,
		})
		if p.ERPercentage != nil {
			erSum += *p.ERPercentage
			erCount++
		}
	}

	td := &TableData{Title: title, Columns: columns, Rows: rows}
	if erCount > 0 {
		td.Summary = &Summary{
			Label: fmt.Sprintf("Average (%s posts)", FormatInt(erCount)),
			Values: map[string]string{
				ColERPercentage: FormatRate(ptr(Round2(erSum / float64(erCount)))),
			},
		}
	}
	return td
}

// ============================================================================
// AGGREGATED TABLES — Row per group
// ============================================================================

// HourlyTable renders AggregateByHour output.
func HourlyTable(rows []HourRow) *TableData {
	out := make([][]string, 0, len(rows))
	total := 0
	for _, r := range rows {
		out = append(out, []string{FormatHour(r.Hour), FormatRate(r.MeanER), FormatInt(r.Count)})
		total += r.Count
	}
	return groupTable("Average ER by Hour", "Hour", out, total)
}

// WeekdayTable renders AggregateByWeekday output.
func WeekdayTable(rows []WeekdayRow) *TableData {
	out := make([][]string, 0, len(rows))
	total := 0
	for _, r := range rows {
		out = append(out, []string{r.Weekday, FormatRate(r.MeanER), FormatInt(r.Count)})
		total += r.Count
	}
	return groupTable("Average ER by Weekday", "Weekday", out, total)
}

// HashtagTable renders HashtagSummary output.
func HashtagTable(title string, rows []HashtagRow) *TableData {
	columns := []Column{
		{Key: "hashtag", Label: "Hashtag", Type: "text", Align: "left"},
		{Key: "mean_er", Label: "Average ER %", Type: "percent", Align: "right"},
		{Key: "count", Label: "Uses", Type: "number", Align: "center"},
		{Key: ColEngagementTotal, Label: "Total Engagement", Type: "number", Align: "right"},
	}

	out := make([][]string, 0, len(rows))
	var engagement float64
	uses := 0
	for _, r := range rows {
		out = append(out, []string{
			"#" + r.Hashtag,
			FormatRate(r.MeanER),
			FormatInt(r.Count),
			FormatNumber(&r.EngagementTotal),
		})
		engagement += r.EngagementTotal
		uses += r.Count
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    out,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"count":            FormatInt(uses),
				ColEngagementTotal: FormatNumber(&engagement),
			},
		},
	}
}

func groupTable(title, groupLabel string, rows [][]string, total int) *TableData {
	return &TableData{
		Title: title,
		Columns: []Column{
			{Key: strings.ToLower(groupLabel), Label: groupLabel, Type: "text", Align: "left"},
			{Key: "mean_er", Label: "Average ER %", Type: "percent", Align: "right"},
			{Key: "count", Label: "Posts", Type: "number", Align: "center"},
		},
		Rows: rows,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": FormatInt(total)},
		},
	}
}
