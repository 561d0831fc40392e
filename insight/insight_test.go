package insight

import (
	"strings"
	"testing"
	"time"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// FIXTURES
// ============================================================================

var columns = []string{
	engine.ColPostID, engine.ColPostedAt, engine.ColLikes, engine.ColComments,
	engine.ColSaves, engine.ColFollowersAtPost, engine.ColHashtags,
	engine.ColHour, engine.ColWeekday,
}

func num(v float64) *float64 { return &v }

// post builds a post with 1000 followers, so likes/10 is the ER.
func post(id, postedAt string, likes float64, tags string) engine.Post {
	p := engine.Post{
		PostID:          id,
		Likes:           num(likes),
		Comments:        num(0),
		Saves:           num(0),
		FollowersAtPost: num(1000),
		Hashtags:        tags,
	}
	ts, err := time.Parse(engine.PostedAtLayout, postedAt)
	if err != nil {
		panic(err)
	}
	h := ts.Hour()
	wd := ts.Weekday().String()
	p.PostedAt, p.Hour, p.Weekday = &ts, &h, &wd
	return p
}

func table(posts ...engine.Post) *engine.Table {
	return engine.ComputeMetrics(engine.NewTable(posts, columns), engine.BasisFollowers)
}

func categories(findings []Finding) []Category {
	out := make([]Category, len(findings))
	for i, f := range findings {
		out[i] = f.Category
	}
	return out
}

func assertCategories(t *testing.T, got []Finding, want ...Category) {
	t.Helper()
	cats := categories(got)
	if len(cats) != len(want) {
		t.Fatalf("categories: got %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("categories: got %v, want %v", cats, want)
		}
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}

func assertEqual[T comparable](t *testing.T, got, want T, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// ============================================================================
// GENERATE
// ============================================================================

func TestGenerate_TimeOfDayAndLowBaseline(t *testing.T) {
	findings := Generate(table(
		post("p1", "2024-03-04 08:00", 10, ""),
		post("p2", "2024-03-04 19:00", 30, ""),
	))

	assertCategories(t, findings, CategoryTimeOfDay, CategoryOverallRate)
	hour := findings[0]
	assertEqual(t, hour.Priority, PriorityHigh, "hour priority")
	assertContains(t, hour.Finding, "19:00")
	assertContains(t, hour.Finding, "08:00")
	assertContains(t, hour.Finding, "200.0%")
	assertEqual(t, hour.Evidence["gap_percent"], 200.0, "gap")

	assertEqual(t, findings[1].Priority, PriorityHigh, "overall priority")
	assertEqual(t, findings[1].Evidence["mean_er"], 2.0, "mean ER")
}

func TestGenerate_RatioBoundaryIsInclusive(t *testing.T) {
	findings := Generate(table(
		post("p1", "2024-03-04 08:00", 10, ""), // 1.00%
		post("p2", "2024-03-04 19:00", 12, ""), // 1.20%
	))
	if findings[0].Category != CategoryTimeOfDay {
		t.Fatalf("expected time-of-day finding at exactly 1.2x, got %v", categories(findings))
	}
	assertEqual(t, findings[0].Evidence["gap_percent"], 20.0, "gap")

	below := Generate(table(
		post("p1", "2024-03-04 08:00", 100, ""),
		post("p2", "2024-03-04 19:00", 119, ""),
	))
	for _, f := range below {
		if f.Category == CategoryTimeOfDay {
			t.Errorf("1.19x should not produce a time-of-day finding")
		}
	}
}

func TestGenerate_Weekday(t *testing.T) {
	findings := Generate(table(
		post("p1", "2024-03-04 08:00", 10, ""), // Monday 1%
		post("p2", "2024-03-05 08:00", 20, ""), // Tuesday 2%
	))

	assertCategories(t, findings, CategoryOverallRate, CategoryWeekday)
	day := findings[1]
	assertEqual(t, day.Priority, PriorityMedium, "weekday priority")
	assertContains(t, day.Finding, "Tuesday")
	assertContains(t, day.Finding, "Monday")
}

func TestGenerate_HashtagNeedsRepeatedTags(t *testing.T) {
	findings := Generate(table(
		post("p1", "2024-03-04 08:00", 10, "a"),
		post("p2", "2024-03-04 08:00", 10, "a"),
		post("p3", "2024-03-04 08:00", 20, "b"),
		post("p4", "2024-03-04 08:00", 20, "b"),
		post("p5", "2024-03-04 08:00", 100, "c"), // one use, ignored
	))

	assertCategories(t, findings, CategoryHashtag)
	assertContains(t, findings[0].Finding, "#b")
	assertContains(t, findings[0].Finding, "#a")
	if strings.Contains(findings[0].Finding, "#c") {
		t.Errorf("single-use tag should not be compared: %s", findings[0].Finding)
	}
}

func TestGenerate_SparseDaysAndHighBaseline(t *testing.T) {
	findings := Generate(table(
		post("p1", "2024-01-01 08:00", 60, ""),
		post("p2", "2024-01-10 08:00", 60, ""),
	))

	// one post on each of two days is 1.0 per day, inside the healthy band
	assertCategories(t, findings, CategoryOverallRate)
	assertEqual(t, findings[0].Priority, PriorityLow, "high baseline priority")
}

func TestGenerate_FrequencyIgnoresGapsBetweenDays(t *testing.T) {
	var posts []engine.Post
	for _, day := range []string{"2024-01-01", "2024-01-31"} {
		for _, hour := range []string{"08", "10", "12", "14", "16"} {
			posts = append(posts, post(day+hour, day+" "+hour+":00", 40, ""))
		}
	}
	findings := Generate(table(posts...))

	assertCategories(t, findings, CategoryPostingFrequency)
	assertEqual(t, findings[0].Priority, PriorityLow, "priority")
	assertEqual(t, findings[0].Title, "Post less, post better", "title")
	assertEqual(t, findings[0].Evidence["posts_per_day"], 5.0, "posts per day")
	assertEqual(t, findings[0].Evidence["distinct_days"], 2.0, "distinct days")
}

func TestGenerate_HighFrequency(t *testing.T) {
	var posts []engine.Post
	for _, day := range []string{"2024-01-01", "2024-01-02"} {
		for _, hour := range []string{"08:00", "12:00", "16:00"} {
			posts = append(posts, post(day+hour, day+" "+hour, 40, ""))
		}
	}
	findings := Generate(table(posts...))

	assertCategories(t, findings, CategoryPostingFrequency)
	assertEqual(t, findings[0].Priority, PriorityLow, "priority")
	assertEqual(t, findings[0].Evidence["posts_per_day"], 3.0, "posts per day")
}

func TestGenerate_UncomputedOrEmpty(t *testing.T) {
	raw := engine.NewTable([]engine.Post{post("p1", "2024-03-04 08:00", 10, "")}, columns)
	if got := Generate(raw); len(got) != 0 {
		t.Errorf("uncomputed table: expected no findings, got %d", len(got))
	}
	if got := Generate(table()); got == nil || len(got) != 0 {
		t.Errorf("empty table: expected empty non-nil slice, got %v", got)
	}
}

// ============================================================================
// CONTENT
// ============================================================================

func contentFixture() *engine.Table {
	return table(
		post("p1", "2024-03-04 09:00", 20, "a,b"),
		post("p2", "2024-03-04 09:00", 40, "a,b"),
		post("p3", "2024-03-04 20:00", 10, "a"),
		post("p4", "2024-03-04 20:00", 10, "a"),
		post("p5", "2024-03-04 03:00", 50, ""),
	)
}

func TestAnalyzeContent_HashtagCounts(t *testing.T) {
	report := AnalyzeContent(contentFixture())

	if len(report.HashtagCounts) != 2 {
		t.Fatalf("expected 2 trusted tag counts, got %+v", report.HashtagCounts)
	}
	assertEqual(t, report.HashtagCounts[0], HashtagCountStat{Count: 1, MeanER: 1, Posts: 2}, "one tag")
	assertEqual(t, report.HashtagCounts[1], HashtagCountStat{Count: 2, MeanER: 3, Posts: 2}, "two tags")
	if report.OptimalHashtagCount == nil {
		t.Fatal("expected an optimal hashtag count")
	}
	assertEqual(t, report.OptimalHashtagCount.Count, 2, "optimal count")
}

func TestAnalyzeContent_TagEffectiveness(t *testing.T) {
	report := AnalyzeContent(contentFixture())

	if len(report.EffectiveTags) != 2 || len(report.IneffectiveTags) != 2 {
		t.Fatalf("unexpected tag lists: %+v / %+v", report.EffectiveTags, report.IneffectiveTags)
	}
	assertEqual(t, report.EffectiveTags[0], TagStat{Tag: "b", MeanER: 3, Uses: 2}, "best tag")
	assertEqual(t, report.EffectiveTags[1], TagStat{Tag: "a", MeanER: 2, Uses: 4}, "second tag")
	assertEqual(t, report.IneffectiveTags[0].Tag, "a", "worst tag")
}

func TestAnalyzeContent_TimeCategories(t *testing.T) {
	report := AnalyzeContent(contentFixture())

	if len(report.TimeCategories) != 2 {
		t.Fatalf("expected morning and evening only, got %+v", report.TimeCategories)
	}
	morning, evening := report.TimeCategories[0], report.TimeCategories[1]
	assertEqual(t, morning.Name, "morning", "first category")
	assertEqual(t, morning.MeanER, 3.0, "morning mean")
	assertEqual(t, morning.Posts, 2, "morning posts")
	assertEqual(t, morning.BestHour, 9, "morning best hour")
	assertEqual(t, evening.Name, "evening", "second category")
	assertEqual(t, evening.MeanER, 1.0, "evening mean")
}

func TestAnalyzeContent_Spread(t *testing.T) {
	report := AnalyzeContent(contentFixture())

	s := report.Engagement
	if s == nil {
		t.Fatal("expected engagement spread")
	}
	assertEqual(t, s.MeanER, 2.6, "mean")
	assertEqual(t, s.MedianER, 2.0, "median")
	assertEqual(t, s.P25, 1.0, "p25")
	assertEqual(t, s.P75, 4.0, "p75")
	assertEqual(t, s.HighPerformers, 1, "high performers")
	assertEqual(t, s.LowPerformers, 0, "low performers")
}

func TestAnalyzeContent_Uncomputed(t *testing.T) {
	raw := engine.NewTable([]engine.Post{post("p1", "2024-03-04 08:00", 10, "a")}, columns)
	report := AnalyzeContent(raw)
	if report.Engagement != nil || report.OptimalHashtagCount != nil {
		t.Errorf("uncomputed table should produce an empty report: %+v", report)
	}
	if report.EffectiveTags == nil || report.TimeCategories == nil {
		t.Error("lists should be empty, not nil")
	}
}

func TestRecommend(t *testing.T) {
	recs := Recommend(contentFixture())

	titles := make([]string, len(recs))
	for i, r := range recs {
		titles[i] = r.Title
	}
	want := []string{
		"Optimize posting time",
		"Optimize hashtag count",
		"Raise overall engagement",
		"Use effective hashtags",
	}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Fatalf("titles: got %v, want %v", titles, want)
	}
	assertContains(t, recs[0].Finding, "morning")
	assertContains(t, recs[1].Recommendation, "2 hashtags")
	assertContains(t, recs[3].Finding, "#b, #a")
	if len(recs[3].ActionItems) != 3 {
		t.Errorf("expected one action per tag plus one, got %v", recs[3].ActionItems)
	}
}
