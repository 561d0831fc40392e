package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spektr-org/erlens"
	"github.com/spektr-org/erlens/engine"
	"github.com/spektr-org/erlens/helpers"
	"github.com/spektr-org/erlens/insight"
)

// ============================================================================
// OUTPUT — one view of an Analysis in json, pretty, text or csv
// ============================================================================

const (
	viewReport          = "report"
	viewSummary         = "summary"
	viewInsights        = "insights"
	viewRecommendations = "recommendations"
	viewContent         = "content"
	viewDiagnostics     = "diagnostics"
	viewBases           = "bases"
	viewDistribution    = "distribution"
)

var views = append([]string{
	viewReport, viewSummary, viewInsights, viewRecommendations,
	viewContent, viewDiagnostics, viewBases, viewDistribution,
}, engine.TableViews...)

func validView(v string) bool {
	for _, known := range views {
		if v == known {
			return true
		}
	}
	return false
}

func render(w io.Writer, a *erlens.Analysis, view, format string) error {
	switch format {
	case "json", "pretty":
		return writeJSON(w, jsonValue(a, view), format)
	case "csv":
		td := tableFor(a, view)
		if td == nil {
			return fmt.Errorf("view %q has no tabular form; use json or text", view)
		}
		return helpers.WriteTableCSV(w, td)
	case "text":
		return writeText(w, a, view)
	}
	return fmt.Errorf("unknown format %q (expected json, pretty, text, csv)", format)
}

// jsonValue returns the raw data behind a view.
func jsonValue(a *erlens.Analysis, view string) interface{} {
	r := a.Report
	switch view {
	case viewSummary:
		return r.Overview
	case viewInsights:
		return a.Insights
	case viewRecommendations:
		return a.Recommendations
	case viewContent:
		return a.Content
	case viewDiagnostics:
		return a.Diagnostics
	case viewBases:
		return r.Bases
	case viewDistribution:
		return r.Distribution
	case engine.ViewTop:
		return r.Top
	case engine.ViewBottom:
		return r.Bottom
	case engine.ViewPosts:
		return r.Table.Posts
	case engine.ViewHourly:
		return r.Hourly
	case engine.ViewWeekday:
		return r.Weekday
	case engine.ViewHashtags:
		return r.Hashtags
	case engine.ViewFrequency:
		return r.HashtagFrequency
	}
	return a
}

// tableFor returns the tabular form of a view, or nil.
func tableFor(a *erlens.Analysis, view string) *engine.TableData {
	switch view {
	case viewInsights:
		return findingsTable("Insights", a.Insights)
	case viewRecommendations:
		return findingsTable("Recommendations", a.Recommendations)
	}
	return engine.BuildTable(view, a.Report)
}

func findingsTable(title string, findings []insight.Finding) *engine.TableData {
	td := &engine.TableData{
		Title: title,
		Columns: []engine.Column{
			{Key: "priority", Label: "Priority", Type: "text", Align: "left"},
			{Key: "category", Label: "Category", Type: "text", Align: "left"},
			{Key: "title", Label: "Title", Type: "text", Align: "left"},
			{Key: "finding", Label: "Finding", Type: "text", Align: "left"},
			{Key: "recommendation", Label: "Recommendation", Type: "text", Align: "left"},
		},
		Rows: make([][]string, 0, len(findings)),
	}
	for _, f := range findings {
		td.Rows = append(td.Rows, []string{
			string(f.Priority), string(f.Category), f.Title, f.Finding, f.Recommendation,
		})
	}
	return td
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeText(w io.Writer, a *erlens.Analysis, view string) error {
	switch view {
	case viewReport, viewSummary:
		t := a.Report.Text
		fmt.Fprintln(w, t.Headline)
		fmt.Fprintf(w, "Period: %s\n", t.Period)
		for _, line := range t.Lines {
			fmt.Fprintf(w, "  • %s\n", line)
		}
		if view == viewReport && len(a.Insights) > 0 {
			fmt.Fprintln(w, "\nInsights:")
			writeFindings(w, a.Insights)
		}
		return nil
	case viewInsights:
		writeFindings(w, a.Insights)
		return nil
	case viewRecommendations:
		writeFindings(w, a.Recommendations)
		return nil
	}

	td := tableFor(a, view)
	if td == nil {
		return writeJSON(w, jsonValue(a, view), "pretty")
	}
	return writeAligned(w, td)
}

func writeFindings(w io.Writer, findings []insight.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}
	for _, f := range findings {
		fmt.Fprintf(w, "[%s] %s: %s\n    → %s\n", strings.ToUpper(string(f.Priority)), f.Title, f.Finding, f.Recommendation)
		for _, item := range f.ActionItems {
			fmt.Fprintf(w, "      - %s\n", item)
		}
	}
}

func writeAligned(w io.Writer, td *engine.TableData) error {
	if td.Title != "" {
		fmt.Fprintln(w, td.Title)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(td.Headers(), "\t"))
	for _, row := range td.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if td.Summary != nil {
		cells := make([]string, len(td.Columns))
		cells[0] = td.Summary.Label
		for i, c := range td.Columns {
			if v, ok := td.Summary.Values[c.Key]; ok && i > 0 {
				cells[i] = v
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
