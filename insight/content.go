package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// CONTENT PATTERNS — hashtag count, tag effectiveness, time of day, spread
// ============================================================================
// Only posts with an ER take part. Hours and hashtag counts need at least
// MinGroupPosts rated posts; tags need MinHashtagUses rated uses.
// ============================================================================

// ContentReport collects the content pattern analysis.
type ContentReport struct {
	OptimalHashtagCount *HashtagCountStat  `json:"optimalHashtagCount,omitempty"`
	HashtagCounts       []HashtagCountStat `json:"hashtagCounts"`
	EffectiveTags       []TagStat          `json:"effectiveTags"`
	IneffectiveTags     []TagStat          `json:"ineffectiveTags"`
	TimeCategories      []TimeCategoryStat `json:"timeCategories"`
	Engagement          *EngagementSpread  `json:"engagement,omitempty"`
}

// HashtagCountStat is the mean ER of posts carrying exactly Count tags.
type HashtagCountStat struct {
	Count  int     `json:"count"`
	MeanER float64 `json:"meanER"`
	Posts  int     `json:"posts"`
}

// TagStat is the mean ER over the rated uses of one tag.
type TagStat struct {
	Tag    string  `json:"tag"`
	MeanER float64 `json:"meanER"`
	Uses   int     `json:"uses"`
}

// TimeCategoryStat averages the hourly means inside one part of the day.
type TimeCategoryStat struct {
	Name     string  `json:"name"`
	FromHour int     `json:"fromHour"`
	ToHour   int     `json:"toHour"`
	MeanER   float64 `json:"meanER"`
	Posts    int     `json:"posts"`
	BestHour int     `json:"bestHour"`
}

// EngagementSpread describes how ER is distributed across posts.
type EngagementSpread struct {
	MeanER         float64  `json:"meanER"`
	MedianER       float64  `json:"medianER"`
	StdER          *float64 `json:"stdER"`
	P25            float64  `json:"p25"`
	P75            float64  `json:"p75"`
	HighPerformers int      `json:"highPerformers"` // ER above P75
	LowPerformers  int      `json:"lowPerformers"`  // ER below P25
}

type timeCategory struct {
	name     string
	from, to int
}

var timeCategories = []timeCategory{
	{"morning", 6, 11},
	{"afternoon", 12, 17},
	{"evening", 18, 23},
	{"night", 0, 5},
}

// AnalyzeContent builds the content report of a computed table.
func AnalyzeContent(t *engine.Table) ContentReport {
	report := ContentReport{
		HashtagCounts:   []HashtagCountStat{},
		EffectiveTags:   []TagStat{},
		IneffectiveTags: []TagStat{},
		TimeCategories:  []TimeCategoryStat{},
	}
	if !t.Computed() {
		return report
	}

	rated := ratedPosts(t)
	if t.Has(engine.ColHashtags) {
		report.HashtagCounts = hashtagCounts(rated)
		report.OptimalHashtagCount = optimalCount(report.HashtagCounts)
		report.EffectiveTags, report.IneffectiveTags = tagEffectiveness(rated)
	}
	if t.Has(engine.ColHour) {
		report.TimeCategories = timeOfDay(rated)
	}
	report.Engagement = spread(t)
	return report
}

func ratedPosts(t *engine.Table) []engine.Post {
	out := make([]engine.Post, 0, t.Len())
	for _, p := range t.Posts {
		if p.ERPercentage != nil {
			out = append(out, p)
		}
	}
	return out
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v float64) { a.sum += v; a.n++ }
func (a meanAcc) mean() float64  { return engine.Round2(a.sum / float64(a.n)) }

// hashtagCounts groups rated posts by how many tags they carry, ascending.
func hashtagCounts(posts []engine.Post) []HashtagCountStat {
	groups := map[int]*meanAcc{}
	for _, p := range posts {
		k := len(engine.SplitHashtags(p.Hashtags))
		if groups[k] == nil {
			groups[k] = &meanAcc{}
		}
		groups[k].add(*p.ERPercentage)
	}
	out := make([]HashtagCountStat, 0, len(groups))
	for k, acc := range groups {
		if acc.n < MinGroupPosts {
			continue
		}
		out = append(out, HashtagCountStat{Count: k, MeanER: acc.mean(), Posts: acc.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	return out
}

// optimalCount picks the best mean; ties go to fewer tags.
func optimalCount(counts []HashtagCountStat) *HashtagCountStat {
	if len(counts) == 0 {
		return nil
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.MeanER > best.MeanER {
			best = c
		}
	}
	return &best
}

func tagEffectiveness(posts []engine.Post) (effective, ineffective []TagStat) {
	groups := map[string]*meanAcc{}
	for _, p := range posts {
		for _, tag := range engine.SplitHashtags(p.Hashtags) {
			if groups[tag] == nil {
				groups[tag] = &meanAcc{}
			}
			groups[tag].add(*p.ERPercentage)
		}
	}

	tags := make([]TagStat, 0, len(groups))
	for tag, acc := range groups {
		if acc.n < MinHashtagUses {
			continue
		}
		tags = append(tags, TagStat{Tag: tag, MeanER: acc.mean(), Uses: acc.n})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Tag < tags[j].Tag })

	effective = append([]TagStat(nil), tags...)
	sort.SliceStable(effective, func(i, j int) bool { return effective[i].MeanER > effective[j].MeanER })
	ineffective = append([]TagStat(nil), tags...)
	sort.SliceStable(ineffective, func(i, j int) bool { return ineffective[i].MeanER < ineffective[j].MeanER })

	if len(effective) > TagListSize {
		effective = effective[:TagListSize]
	}
	if len(ineffective) > TagListSize {
		ineffective = ineffective[:TagListSize]
	}
	return effective, ineffective
}

func timeOfDay(posts []engine.Post) []TimeCategoryStat {
	var hours [24]meanAcc
	for _, p := range posts {
		if p.Hour != nil && *p.Hour >= 0 && *p.Hour < len(hours) {
			hours[*p.Hour].add(*p.ERPercentage)
		}
	}

	out := []TimeCategoryStat{}
	for _, c := range timeCategories {
		var means meanAcc
		posted := 0
		bestHour, bestMean := -1, 0.0
		for h := c.from; h <= c.to; h++ {
			if hours[h].n < MinGroupPosts {
				continue
			}
			m := hours[h].mean()
			means.add(m)
			posted += hours[h].n
			if bestHour < 0 || m > bestMean {
				bestHour, bestMean = h, m
			}
		}
		if means.n == 0 {
			continue
		}
		out = append(out, TimeCategoryStat{
			Name:     c.name,
			FromHour: c.from,
			ToHour:   c.to,
			MeanER:   means.mean(),
			Posts:    posted,
			BestHour: bestHour,
		})
	}
	return out
}

func spread(t *engine.Table) *EngagementSpread {
	ov := engine.Summarize(t)
	dist := engine.Distribution(t)
	if ov.MeanER == nil || dist == nil {
		return nil
	}
	s := &EngagementSpread{
		MeanER:   *ov.MeanER,
		MedianER: *ov.MedianER,
		StdER:    ov.StdER,
		P25:      dist.P25,
		P75:      dist.P75,
	}
	for _, p := range t.Posts {
		if p.ERPercentage == nil {
			continue
		}
		switch {
		case *p.ERPercentage > dist.P75:
			s.HighPerformers++
		case *p.ERPercentage < dist.P25:
			s.LowPerformers++
		}
	}
	return s
}

// ============================================================================
// CONTENT RECOMMENDATIONS
// ============================================================================

// Recommend turns the content report and overview into actionable findings.
func Recommend(t *engine.Table) []Finding {
	recs := []Finding{}
	if !t.Computed() || t.Len() == 0 {
		return recs
	}
	content := AnalyzeContent(t)

	if opt := content.OptimalHashtagCount; opt != nil {
		recs = append(recs, Finding{
			Category:       CategoryHashtag,
			Title:          "Optimize hashtag count",
			Finding:        fmt.Sprintf("Posts with %d hashtags average the highest ER (%.2f%%).", opt.Count, opt.MeanER),
			Recommendation: fmt.Sprintf("Use about %d hashtags per post.", opt.Count),
			Priority:       PriorityHigh,
			Evidence:       map[string]float64{"hashtag_count": float64(opt.Count), "mean_er": opt.MeanER},
			ActionItems: []string{
				fmt.Sprintf("Set %d hashtags as the default for new posts", opt.Count),
				"Mix popular and niche tags",
				"Review hashtag performance regularly",
			},
		})
	}

	if len(content.EffectiveTags) > 0 {
		top := content.EffectiveTags
		if len(top) > 3 {
			top = top[:3]
		}
		names := make([]string, len(top))
		items := make([]string, 0, len(top)+1)
		for i, tag := range top {
			names[i] = "#" + tag.Tag
			items = append(items, fmt.Sprintf("Use #%s more often (average ER %.2f%%)", tag.Tag, tag.MeanER))
		}
		items = append(items, "Try related tags alongside them")
		recs = append(recs, Finding{
			Category:       CategoryHashtag,
			Title:          "Use effective hashtags",
			Finding:        fmt.Sprintf("The strongest tags are %s.", strings.Join(names, ", ")),
			Recommendation: "Build posts around the tags that already perform.",
			Priority:       PriorityMedium,
			Evidence:       map[string]float64{"best_tag_er": top[0].MeanER},
			ActionItems:    items,
		})
	}

	if best, ok := bestTimeCategory(content.TimeCategories); ok {
		recs = append(recs, Finding{
			Category: CategoryTimeOfDay,
			Title:    "Optimize posting time",
			Finding: fmt.Sprintf("The %s (%s-%s) averages the highest ER (%.2f%%); %s is its best hour.",
				best.Name, engine.FormatHour(best.FromHour), engine.FormatHour(best.ToHour), best.MeanER, engine.FormatHour(best.BestHour)),
			Recommendation: fmt.Sprintf("Schedule posts in the %s.", best.Name),
			Priority:       PriorityHigh,
			Evidence:       map[string]float64{"mean_er": best.MeanER, "best_hour": float64(best.BestHour)},
			ActionItems: []string{
				fmt.Sprintf("Post around %s", engine.FormatHour(best.BestHour)),
				"Use scheduled posting",
				"Reply to comments quickly after posting",
			},
		})
	}

	ov := engine.Summarize(t)
	if f, ok := overallFinding(ov); ok {
		recs = append(recs, f)
	}
	if f, ok := frequencyFinding(ov); ok {
		recs = append(recs, f)
	}

	sortFindings(recs)
	return recs
}

// bestTimeCategory picks the highest mean; ties keep the earlier category.
func bestTimeCategory(cats []TimeCategoryStat) (TimeCategoryStat, bool) {
	if len(cats) == 0 {
		return TimeCategoryStat{}, false
	}
	best := cats[0]
	for _, c := range cats[1:] {
		if c.MeanER > best.MeanER {
			best = c
		}
	}
	return best, true
}
