package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"insight-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postAt(t *testing.T, hour, likes int) domain.Post {
	t.Helper()
	ts := time.Date(2024, time.January, 1, hour, 0, 0, 0, time.UTC).Unix()
	return domain.Post{LikeCount: likes, Timestamp: &ts}
}

func TestEngagementByDayPart_AllSlotsPresent(t *testing.T) {
	posts := []domain.Post{
		postAt(t, 9, 100),
		postAt(t, 9, 100),
		postAt(t, 9, 100),
		postAt(t, 14, 80),
		postAt(t, 14, 80),
		postAt(t, 20, 50),
	}

	buckets := domain.EngagementByDayPart(posts)

	require.Len(t, buckets, 4)
	assert.Equal(t, domain.BucketStats{TotalEngagement: 300, PostCount: 3, AvgEngagement: 100}, buckets["Morning"])
	assert.Equal(t, domain.BucketStats{TotalEngagement: 160, PostCount: 2, AvgEngagement: 80}, buckets["Afternoon"])
	assert.Equal(t, domain.BucketStats{TotalEngagement: 50, PostCount: 1, AvgEngagement: 50}, buckets["Evening"])
	assert.Equal(t, domain.BucketStats{}, buckets["Night"])
}

func TestEngagementByHour_SkipsUndatedPosts(t *testing.T) {
	posts := []domain.Post{
		postAt(t, 9, 40),
		{LikeCount: 999}, // no timestamp
	}

	buckets := domain.EngagementByHour(posts)

	require.Len(t, buckets, 24)
	assert.Equal(t, 1, buckets["09:00"].PostCount)
	total := 0
	for _, stats := range buckets {
		total += stats.PostCount
	}
	assert.Equal(t, 1, total)
}

func TestRankBuckets_TieGoesToEarlierLabel(t *testing.T) {
	buckets := map[string]domain.BucketStats{
		"Morning":   {TotalEngagement: 100, PostCount: 1, AvgEngagement: 100},
		"Afternoon": {TotalEngagement: 100, PostCount: 1, AvgEngagement: 100},
		"Evening":   {},
		"Night":     {},
	}

	ranking := domain.RankBuckets(domain.DayPartOrder, buckets)

	require.True(t, ranking.Determined)
	assert.Equal(t, "Morning", ranking.Best)
	assert.Equal(t, "Morning", ranking.Worst)
}

func TestRankBuckets_ExcludesEmptyBuckets(t *testing.T) {
	buckets := map[string]domain.BucketStats{
		"Morning":   {TotalEngagement: 10, PostCount: 1, AvgEngagement: 10},
		"Afternoon": {},
		"Evening":   {TotalEngagement: 300, PostCount: 2, AvgEngagement: 150},
		"Night":     {},
	}

	ranking := domain.RankBuckets(domain.DayPartOrder, buckets)

	require.True(t, ranking.Determined)
	assert.Equal(t, "Evening", ranking.Best)
	assert.Equal(t, "Morning", ranking.Worst)
}

func TestRankBuckets_AllEmptyIsNotDetermined(t *testing.T) {
	ranking := domain.RankBuckets(domain.DayPartOrder, domain.EngagementByDayPart(nil))

	assert.False(t, ranking.Determined)
	assert.Empty(t, ranking.Best)
}

func TestEngagementByDayPart_OrderInvariant(t *testing.T) {
	posts := []domain.Post{
		postAt(t, 9, 100),
		postAt(t, 9, 100),
		postAt(t, 9, 100),
		postAt(t, 14, 80),
		postAt(t, 14, 80),
		postAt(t, 20, 50),
	}
	expected := domain.EngagementByDayPart(posts)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]domain.Post, len(posts))
		copy(shuffled, posts)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, expected, domain.EngagementByDayPart(shuffled))
	}
}

func TestDayPartFor(t *testing.T) {
	tests := []struct {
		hour     int
		expected string
	}{
		{0, "Night"},
		{5, "Night"},
		{6, "Morning"},
		{11, "Morning"},
		{12, "Afternoon"},
		{17, "Afternoon"},
		{18, "Evening"},
		{23, "Evening"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, domain.DayPartFor(tt.hour), "hour %d", tt.hour)
	}
}

func TestEngagementWeekdaySplit(t *testing.T) {
	// 2024-01-06 is a Saturday, 2024-01-08 is a Monday.
	saturday := time.Date(2024, time.January, 6, 12, 0, 0, 0, time.UTC).Unix()
	monday := time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC).Unix()

	buckets := domain.EngagementWeekdaySplit([]domain.Post{
		{LikeCount: 200, Timestamp: &saturday},
		{LikeCount: 100, Timestamp: &monday},
	})

	assert.Equal(t, 1, buckets["Weekends"].PostCount)
	assert.Equal(t, float64(200), buckets["Weekends"].AvgEngagement)
	assert.Equal(t, 1, buckets["Weekdays"].PostCount)
	assert.Equal(t, float64(100), buckets["Weekdays"].AvgEngagement)
}
