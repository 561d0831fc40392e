package engine

import (
	"testing"
	"time"
)

// ============================================================================
// TEST FIXTURES
// ============================================================================

var allColumns = []string{
	ColPostID, ColPostedAt, ColLikes, ColComments, ColSaves,
	ColFollowersAtPost, ColReach, ColImpressions, ColHashtags, ColHour, ColWeekday,
}

func num(v float64) *float64 { return &v }

// mkPost builds a post the way the normalizer would: hour and weekday are
// derived from postedAt, and an unparsable postedAt leaves all three nil.
func mkPost(id, postedAt string, likes, comments, saves, followers float64, tags string) Post {
	p := Post{
		PostID:          id,
		Likes:           num(likes),
		Comments:        num(comments),
		Saves:           num(saves),
		FollowersAtPost: num(followers),
		Hashtags:        tags,
	}
	if ts, err := time.Parse(PostedAtLayout, postedAt); err == nil {
		h := ts.Hour()
		wd := ts.Weekday().String()
		p.PostedAt = &ts
		p.Hour = &h
		p.Weekday = &wd
	}
	return p
}

func mkTable(posts ...Post) *Table {
	return NewTable(posts, allColumns)
}

func computed(posts ...Post) *Table {
	return ComputeMetrics(mkTable(posts...), BasisFollowers)
}

// ============================================================================
// ASSERT HELPERS
// ============================================================================

func assertRate(t *testing.T, got *float64, want float64, msg string) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: got nil, want %.2f", msg, want)
		return
	}
	if *got != want {
		t.Errorf("%s: got %v, want %v", msg, *got, want)
	}
}

func assertNil(t *testing.T, got *float64, msg string) {
	t.Helper()
	if got != nil {
		t.Errorf("%s: got %v, want nil", msg, *got)
	}
}

func assertEqual[T comparable](t *testing.T, got, want T, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func postIDs(posts []Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.PostID
	}
	return ids
}

func assertIDs(t *testing.T, got []Post, want []string, msg string) {
	t.Helper()
	ids := postIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("%s: got %v, want %v", msg, ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("%s: got %v, want %v", msg, ids, want)
		}
	}
}
