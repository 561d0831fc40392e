package engine

import (
	"fmt"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from aggregate rows
// ============================================================================
// Builders only describe series data; drawing is the caller's job.
// Every builder returns nil when there is nothing to plot.
// ============================================================================

// Chart types accepted by BuildChart.
const (
	ChartHourly       = "hourly"
	ChartWeekday      = "weekday"
	ChartHashtag      = "hashtag"
	ChartDistribution = "distribution"
)

// ChartTypes lists the supported chart types.
var ChartTypes = []string{ChartHourly, ChartWeekday, ChartHashtag, ChartDistribution}

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart dispatches to the builder for chartType using a report's
// aggregates. Unknown types and empty data return nil.
func BuildChart(chartType string, r *Report) *ChartConfig {
	if r == nil {
		return nil
	}
	switch chartType {
	case ChartHourly:
		return BuildHourlyChart(r.Hourly)
	case ChartWeekday, "weekly":
		return BuildWeekdayChart(r.Weekday)
	case ChartHashtag:
		return BuildHashtagChart(r.HashtagFrequency, OrderFrequency)
	case ChartDistribution:
		return BuildDistributionChart(r.Distribution)
	}
	return nil
}

// BuildHourlyChart plots mean ER per hour of day.
func BuildHourlyChart(rows []HourRow) *ChartConfig {
	points := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		if r.MeanER == nil {
			continue
		}
		points = append(points, ChartPoint{Label: FormatHour(r.Hour), Value: *r.MeanER, Count: r.Count})
	}
	return singleSeriesChart("bar", "Average ER by Hour", "Hour", "Average ER (%)", "Average ER", points)
}

// BuildWeekdayChart plots mean ER per weekday, Monday first.
func BuildWeekdayChart(rows []WeekdayRow) *ChartConfig {
	points := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		if r.MeanER == nil {
			continue
		}
		points = append(points, ChartPoint{Label: r.Weekday, Value: *r.MeanER, Count: r.Count})
	}
	return singleSeriesChart("bar", "Average ER by Weekday", "Weekday", "Average ER (%)", "Average ER", points)
}

// BuildHashtagChart plots either use counts (frequency) or mean ER
// (performance) per tag, in the order given.
func BuildHashtagChart(rows []HashtagRow, order HashtagOrder) *ChartConfig {
	points := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		p := ChartPoint{Label: "#" + r.Hashtag, Count: r.Count}
		if order == OrderPerformance {
			if r.MeanER == nil {
				continue
			}
			p.Value = *r.MeanER
		} else {
			p.Value = float64(r.Count)
		}
		points = append(points, p)
	}

	if order == OrderPerformance {
		return singleSeriesChart("bar", "Hashtag Performance", "Hashtag", "Average ER (%)", "Average ER", points)
	}
	title := fmt.Sprintf("Hashtag Usage (top %d)", len(points))
	return singleSeriesChart("bar", title, "Hashtag", "Uses", "Uses", points)
}

// BuildDistributionChart plots the ER histogram buckets.
func BuildDistributionChart(d *ERDistribution) *ChartConfig {
	if d == nil {
		return nil
	}
	points := make([]ChartPoint, 0, len(d.Buckets))
	for _, b := range d.Buckets {
		points = append(points, ChartPoint{
			Label: fmt.Sprintf("%g-%g%%", b.Lower, b.Upper),
			Value: float64(b.Count),
			Count: b.Count,
		})
	}
	return singleSeriesChart("histogram", "ER Distribution", "ER (%)", "Posts", "Posts", points)
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func singleSeriesChart(chartType, title, xAxis, yAxis, seriesName string, points []ChartPoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}
	config := &ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      xAxis,
		YAxis:      yAxis,
		ShowLegend: false,
		ShowGrid:   true,
		Series: []ChartSeries{{
			Name: seriesName,
			Data: points,
		}},
	}
	config.Colors = assignColors(len(config.Series))
	return config
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
