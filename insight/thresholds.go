package insight

// Thresholds for the advisory rules. A best/worst comparison fires when
// best >= worst * ratio and worst is positive.
const (
	// HourRatio: best hour vs worst hour mean ER.
	HourRatio = 1.2
	// WeekdayRatio: best weekday vs worst weekday mean ER.
	WeekdayRatio = 1.15
	// HashtagRatio: best tag vs worst tag mean ER, among tags with at least
	// MinHashtagUses uses.
	HashtagRatio   = 1.3
	MinHashtagUses = 2

	// BaselineLow and BaselineHigh bracket the typical ER (percent).
	BaselineLow  = 3.0
	BaselineHigh = 5.0

	// Posting frequency bounds, posts per calendar day.
	MinPostsPerDay = 0.5
	MaxPostsPerDay = 2.0

	// MinGroupPosts is how many rated posts an hour or hashtag count needs
	// before content analysis trusts its mean.
	MinGroupPosts = 2

	// TagListSize caps the effective and ineffective tag lists.
	TagListSize = 5
)
