package insight

import (
	"fmt"
	"sort"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// INSIGHT GENERATOR — advisory findings from aggregate comparisons
// ============================================================================
// Every rule reads the computed table on its own; a rule whose inputs are
// missing is skipped. Findings are ordered by priority, then category.
// ============================================================================

// Category groups findings by the dimension they talk about.
type Category string

const (
	CategoryTimeOfDay        Category = "time_of_day"
	CategoryWeekday          Category = "weekday"
	CategoryHashtag          Category = "hashtag"
	CategoryOverallRate      Category = "overall_rate"
	CategoryPostingFrequency Category = "posting_frequency"
)

var categoryOrder = map[Category]int{
	CategoryTimeOfDay:        0,
	CategoryWeekday:          1,
	CategoryHashtag:          2,
	CategoryOverallRate:      3,
	CategoryPostingFrequency: 4,
}

// Priority ranks findings.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityOrder = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Finding is one advisory item.
type Finding struct {
	Category       Category           `json:"category"`
	Title          string             `json:"title"`
	Finding        string             `json:"finding"`
	Recommendation string             `json:"recommendation"`
	Priority       Priority           `json:"priority"`
	Evidence       map[string]float64 `json:"evidence,omitempty"`
	ActionItems    []string           `json:"actionItems,omitempty"`
}

// Generate runs every rule over a computed table. An uncomputed or empty
// table yields no findings.
func Generate(t *engine.Table) []Finding {
	findings := []Finding{}
	if !t.Computed() || t.Len() == 0 {
		return findings
	}

	if f, ok := hourFinding(engine.AggregateByHour(t)); ok {
		findings = append(findings, f)
	}
	if f, ok := weekdayFinding(engine.AggregateByWeekday(t)); ok {
		findings = append(findings, f)
	}
	if f, ok := hashtagFinding(t); ok {
		findings = append(findings, f)
	}

	ov := engine.Summarize(t)
	if f, ok := overallFinding(ov); ok {
		findings = append(findings, f)
	}
	if f, ok := frequencyFinding(ov); ok {
		findings = append(findings, f)
	}

	sortFindings(findings)
	return findings
}

// ============================================================================
// RULES
// ============================================================================

type scored struct {
	label string
	mean  float64
}

// bestWorst picks the highest and lowest mean; ties keep the earlier entry.
func bestWorst(items []scored) (best, worst scored, ok bool) {
	if len(items) == 0 {
		return scored{}, scored{}, false
	}
	best, worst = items[0], items[0]
	for _, it := range items[1:] {
		if it.mean > best.mean {
			best = it
		}
		if it.mean < worst.mean {
			worst = it
		}
	}
	return best, worst, true
}

// exceeds reports whether best clears worst by ratio; gap is the percentage
// by which best exceeds worst.
func exceeds(best, worst scored, ratio float64) (gap float64, ok bool) {
	if worst.mean <= 0 || best.mean < worst.mean*ratio {
		return 0, false
	}
	return engine.Round2((best.mean/worst.mean - 1) * 100), true
}

func hourFinding(rows []engine.HourRow) (Finding, bool) {
	items := make([]scored, 0, len(rows))
	for _, r := range rows {
		if r.MeanER != nil {
			items = append(items, scored{label: engine.FormatHour(r.Hour), mean: *r.MeanER})
		}
	}
	best, worst, ok := bestWorst(items)
	if !ok {
		return Finding{}, false
	}
	gap, ok := exceeds(best, worst, HourRatio)
	if !ok {
		return Finding{}, false
	}
	return Finding{
		Category: CategoryTimeOfDay,
		Title:    "Optimize posting time",
		Finding: fmt.Sprintf("Posts at %s average %.2f%% ER, %.1f%% higher than posts at %s (%.2f%%).",
			best.label, best.mean, gap, worst.label, worst.mean),
		Recommendation: fmt.Sprintf("Concentrate posts around %s.", best.label),
		Priority:       PriorityHigh,
		Evidence:       map[string]float64{"best_er": best.mean, "worst_er": worst.mean, "gap_percent": gap},
	}, true
}

func weekdayFinding(rows []engine.WeekdayRow) (Finding, bool) {
	items := make([]scored, 0, len(rows))
	for _, r := range rows {
		if r.MeanER != nil {
			items = append(items, scored{label: r.Weekday, mean: *r.MeanER})
		}
	}
	best, worst, ok := bestWorst(items)
	if !ok {
		return Finding{}, false
	}
	gap, ok := exceeds(best, worst, WeekdayRatio)
	if !ok {
		return Finding{}, false
	}
	return Finding{
		Category: CategoryWeekday,
		Title:    "Optimize posting day",
		Finding: fmt.Sprintf("%s posts average %.2f%% ER, %.1f%% higher than %s (%.2f%%).",
			best.label, best.mean, gap, worst.label, worst.mean),
		Recommendation: fmt.Sprintf("Schedule important posts on %s.", best.label),
		Priority:       PriorityMedium,
		Evidence:       map[string]float64{"best_er": best.mean, "worst_er": worst.mean, "gap_percent": gap},
	}, true
}

func hashtagFinding(t *engine.Table) (Finding, bool) {
	rows, err := engine.HashtagSummary(t, 0, engine.OrderPerformance)
	if err != nil {
		return Finding{}, false
	}
	items := make([]scored, 0, len(rows))
	for _, r := range rows {
		if r.MeanER != nil && r.Count >= MinHashtagUses {
			items = append(items, scored{label: "#" + r.Hashtag, mean: *r.MeanER})
		}
	}
	best, worst, ok := bestWorst(items)
	if !ok {
		return Finding{}, false
	}
	gap, ok := exceeds(best, worst, HashtagRatio)
	if !ok {
		return Finding{}, false
	}
	return Finding{
		Category: CategoryHashtag,
		Title:    "Revisit hashtag strategy",
		Finding: fmt.Sprintf("%s averages %.2f%% ER, %.1f%% higher than %s (%.2f%%).",
			best.label, best.mean, gap, worst.label, worst.mean),
		Recommendation: fmt.Sprintf("Favor tags like %s and drop the weakest performers.", best.label),
		Priority:       PriorityMedium,
		Evidence:       map[string]float64{"best_er": best.mean, "worst_er": worst.mean, "gap_percent": gap},
	}, true
}

func overallFinding(ov engine.Overview) (Finding, bool) {
	if ov.MeanER == nil {
		return Finding{}, false
	}
	mean := *ov.MeanER
	switch {
	case mean < BaselineLow:
		return Finding{
			Category:       CategoryOverallRate,
			Title:          "Raise overall engagement",
			Finding:        fmt.Sprintf("Average ER is %.2f%%, below the %.0f%% baseline.", mean, BaselineLow),
			Recommendation: "Focus on content that invites replies and saves to deepen follower relationships.",
			Priority:       PriorityHigh,
			Evidence:       map[string]float64{"mean_er": mean, "baseline": BaselineLow},
		}, true
	case mean > BaselineHigh:
		return Finding{
			Category:       CategoryOverallRate,
			Title:          "Sustain strong engagement",
			Finding:        fmt.Sprintf("Average ER is %.2f%%, well above the %.0f%% baseline.", mean, BaselineHigh),
			Recommendation: "Keep the current approach and study the best posts for repeatable patterns.",
			Priority:       PriorityLow,
			Evidence:       map[string]float64{"mean_er": mean, "baseline": BaselineHigh},
		}, true
	}
	return Finding{}, false
}

func frequencyFinding(ov engine.Overview) (Finding, bool) {
	if ov.PostsPerDay == nil {
		return Finding{}, false
	}
	perDay := *ov.PostsPerDay
	evidence := map[string]float64{"posts_per_day": perDay, "distinct_days": float64(ov.DistinctDays)}
	switch {
	case perDay < MinPostsPerDay:
		return Finding{
			Category:       CategoryPostingFrequency,
			Title:          "Post more often",
			Finding:        fmt.Sprintf("You post %.2f times per active day on average.", perDay),
			Recommendation: "Increase posting frequency to create more touchpoints with followers.",
			Priority:       PriorityMedium,
			Evidence:       evidence,
		}, true
	case perDay > MaxPostsPerDay:
		return Finding{
			Category:       CategoryPostingFrequency,
			Title:          "Post less, post better",
			Finding:        fmt.Sprintf("You post %.2f times per active day on average.", perDay),
			Recommendation: "Reduce frequency and prioritize quality; too many posts can tire followers.",
			Priority:       PriorityLow,
			Evidence:       evidence,
		}, true
	}
	return Finding{}, false
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		pi, pj := priorityOrder[findings[i].Priority], priorityOrder[findings[j].Priority]
		if pi != pj {
			return pi < pj
		}
		return categoryOrder[findings[i].Category] < categoryOrder[findings[j].Category]
	})
}
