package usecase_test

import (
	"strings"
	"testing"
	"time"

	"insight-orchestrator/internal/domain"
	"insight-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshot(posts []domain.Post) *domain.DataSnapshot {
	return &domain.DataSnapshot{
		AccountID: "acct",
		Source:    domain.SourceRawCache,
		PostCount: len(posts),
		Posts:     posts,
		Window:    &domain.WindowDescriptor{Mode: domain.WindowModePosts, Label: "last 20 posts"},
	}
}

func TestBuild_BestPostWithOutlier(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())

	posts := make([]domain.Post, 0, 20)
	for i := 0; i < 19; i++ {
		posts = append(posts, domain.Post{LikeCount: 100, CommentCount: 10})
	}
	posts = append(posts, domain.Post{LikeCount: 1000, CommentCount: 100, URL: "https://www.instagram.com/p/top/"})
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentBestPost, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	require.NotNil(t, decision)
	assert.NotEmpty(t, decision.ID)
	assert.Equal(t, domain.ModeAnalytics, decision.Mode)
	assert.Equal(t, float64(1100), decision.Metrics["best_engagement"])
	assert.Equal(t, 159.5, decision.Metrics["avg_engagement"])
	assert.Equal(t, float64(20), decision.Metrics["post_count"])

	joined := strings.Join(decision.Facts, "\n")
	assert.Contains(t, joined, "1100 engagement")
	assert.Contains(t, joined, "https://www.instagram.com/p/top/")
	assert.Contains(t, joined, "Average engagement across 20 posts is 159.5.")
	assert.NotEmpty(t, decision.NextStep)
}

func TestBuild_BestPostIsDeterministicAcrossRuns(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	posts := []domain.Post{
		{LikeCount: 50},
		{LikeCount: 90},
		{LikeCount: 90},
		{LikeCount: 10},
		{LikeCount: 70},
	}
	snapshot := buildSnapshot(posts)

	first := builder.Build(domain.IntentBestPost, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))
	second := builder.Build(domain.IntentBestPost, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, first.Facts, second.Facts)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.Verdict, second.Verdict)
}

func TestBuild_LimitationOnEmptySnapshot(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	snapshot := domain.EmptySnapshot("acct")

	decision := builder.Build(domain.IntentBestPost, domain.ModeLimitation, snapshot, usecase.AnalyzeBuckets(nil))

	assert.Equal(t, domain.ModeLimitation, decision.Mode)
	joined := strings.Join(decision.Facts, "\n")
	assert.Contains(t, joined, "Found 0 posts")
	require.NotEmpty(t, decision.Limitations)
	assert.Contains(t, decision.Limitations[0], "at least 5 posts")
	assert.Equal(t, "Run a full analysis of this account to pull in recent posts, then ask about the best post again.", decision.NextStep)
}

func TestBuild_LimitationNextStepVariesByIntent(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	snapshot := domain.EmptySnapshot("acct")

	seen := map[string]bool{}
	for _, intent := range []domain.Intent{
		domain.IntentBestPost,
		domain.IntentPostingTime,
		domain.IntentHashtags,
		domain.IntentAccountMetrics,
	} {
		decision := builder.Build(intent, domain.ModeLimitation, snapshot, usecase.AnalyzeBuckets(nil))
		require.NotEmpty(t, decision.NextStep, string(intent))
		assert.False(t, seen[decision.NextStep], "next step for %s duplicates another intent", intent)
		seen[decision.NextStep] = true
	}
}

func TestBuild_PostingTimeNamesBestSlot(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())

	var posts []domain.Post
	addAt := func(hour, likes, n int) {
		for i := 0; i < n; i++ {
			ts := time.Date(2024, time.March, 4, hour, 0, 0, 0, time.UTC).Unix()
			posts = append(posts, domain.Post{LikeCount: likes, Timestamp: &ts})
		}
	}
	addAt(9, 200, 4)  // Morning, strongest
	addAt(14, 90, 4)  // Afternoon
	addAt(20, 40, 2)  // Evening
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentPostingTime, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "best slot: Morning", decision.Verdict)
	assert.Equal(t, float64(200), decision.Metrics["best_slot_avg_engagement"])
	assert.Contains(t, decision.NextStep, "morning")
	joined := strings.Join(decision.Facts, "\n")
	assert.Contains(t, joined, "Morning is the strongest slot")
	assert.Contains(t, joined, "Evening is the weakest slot")
	assert.Contains(t, joined, "09:00")
}

func TestBuild_PostingTimeWithoutTimestamps(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	posts := make([]domain.Post, 12)
	for i := range posts {
		posts[i] = domain.Post{LikeCount: 100}
	}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentPostingTime, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "no timing determination possible", decision.Verdict)
	require.NotEmpty(t, decision.Limitations)
	assert.NotEmpty(t, decision.NextStep)
}

func TestBuild_HashtagRanking(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	posts := []domain.Post{
		{LikeCount: 300, Caption: "morning brew #coffee #daily"},
		{LikeCount: 100, Caption: "slow day #daily"},
		{LikeCount: 250, Caption: "new roast #coffee"},
		{LikeCount: 20, Caption: "no tags here"},
	}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentHashtags, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "top hashtag: #coffee", decision.Verdict)
	assert.Equal(t, float64(3), decision.Metrics["tagged_posts"])
	assert.Equal(t, float64(2), decision.Metrics["distinct_hashtags"])
	assert.Equal(t, float64(275), decision.Metrics["top_hashtag_avg_engagement"])
	joined := strings.Join(decision.Facts, "\n")
	assert.Contains(t, joined, "3 of 4 posts use hashtags")
	assert.Contains(t, joined, "#daily performs worst")
}

func TestBuild_HashtagsAbsent(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	posts := []domain.Post{{LikeCount: 10, Caption: "plain"}, {LikeCount: 20}}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentHashtags, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "no hashtags in use", decision.Verdict)
	assert.Contains(t, decision.NextStep, "hashtags")
}

func TestBuild_WhyDetectsDrop(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	// Newest-first: 2 recent posts at 50, 4 baseline posts at 200.
	posts := []domain.Post{
		{LikeCount: 50}, {LikeCount: 50},
		{LikeCount: 200}, {LikeCount: 200}, {LikeCount: 200}, {LikeCount: 200},
	}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentWhyAboutPosts, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "recent posts underperform the baseline", decision.Verdict)
	assert.Equal(t, float64(50), decision.Metrics["recent_avg_engagement"])
	assert.Equal(t, float64(200), decision.Metrics["baseline_avg_engagement"])
	assert.Equal(t, float64(75), decision.Metrics["drop_percent"])
}

func TestBuild_WhyStableWithinBand(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	posts := []domain.Post{
		{LikeCount: 105}, {LikeCount: 95},
		{LikeCount: 100}, {LikeCount: 100}, {LikeCount: 100}, {LikeCount: 100},
	}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentWhyAboutPosts, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "recent performance is in line with the baseline", decision.Verdict)
	assert.NotContains(t, decision.Metrics, "drop_percent")
	assert.NotContains(t, decision.Metrics, "gain_percent")
}

func TestBuild_FrequencyFromSpan(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	// 7 posts across exactly two weeks, so 3.5 per week.
	start := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, 7)
	for i := range posts {
		ts := start.AddDate(0, 0, i*14/6).Unix()
		posts[i] = domain.Post{LikeCount: 10, Timestamp: &ts}
	}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentPostingFrequency, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, 3.5, decision.Metrics["posts_per_week"])
	assert.Equal(t, "about 3.5 posts per week", decision.Verdict)
	assert.Equal(t, float64(14), decision.Metrics["span_days"])
}

func TestBuild_FrequencyWithoutDates(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	posts := []domain.Post{{LikeCount: 10}, {LikeCount: 20}, {LikeCount: 30}, {LikeCount: 40}, {LikeCount: 50}}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentPostingFrequency, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "cadence not measurable", decision.Verdict)
	require.NotEmpty(t, decision.Limitations)
}

func TestBuild_AccountMetrics(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	followers := 5000
	avgLikes := 132.4
	rate := 2.87
	snapshot := &domain.DataSnapshot{
		AccountID:             "acct",
		Source:                domain.SourceStatsProvider,
		HasAccountMetrics:     true,
		Followers:             &followers,
		AvgLikes:              &avgLikes,
		EngagementRatePercent: &rate,
	}

	decision := builder.Build(domain.IntentAccountMetrics, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(nil))

	assert.Equal(t, float64(5000), decision.Metrics["followers"])
	assert.Equal(t, 132.4, decision.Metrics["avg_likes"])
	assert.Equal(t, 2.87, decision.Metrics["engagement_rate_percent"])
	joined := strings.Join(decision.Facts, "\n")
	assert.Contains(t, joined, "5000 followers")
	assert.Contains(t, joined, "2.87%")
}

func TestBuild_CaptionComparison(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	long := strings.Repeat("detailed caption text ", 6) // over 100 chars
	posts := []domain.Post{
		{LikeCount: 300, Caption: long},
		{LikeCount: 280, Caption: long},
		{LikeCount: 60, Caption: "short"},
		{LikeCount: 40, Caption: "quick one #ad"},
	}
	snapshot := buildSnapshot(posts)

	decision := builder.Build(domain.IntentCaptionsOrPaidPost, domain.ModeAnalytics, snapshot, usecase.AnalyzeBuckets(snapshot.Posts))

	assert.Equal(t, "long captions perform better", decision.Verdict)
	assert.Equal(t, float64(1), decision.Metrics["paid_posts"])
	assert.Equal(t, float64(290), decision.Metrics["long_caption_avg_engagement"])
	assert.Equal(t, float64(50), decision.Metrics["short_caption_avg_engagement"])
}

func TestBuild_StrategyMode(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())
	followers := 900
	snapshot := &domain.DataSnapshot{
		AccountID:         "acct",
		Source:            domain.SourcePrecomputed,
		PostCount:         8,
		HasAccountMetrics: true,
		Followers:         &followers,
	}

	decision := builder.Build(domain.IntentGeneration, domain.ModeStrategy, snapshot, usecase.AnalyzeBuckets(nil))

	assert.Equal(t, "strategy guidance", decision.Verdict)
	joined := strings.Join(decision.Facts, "\n")
	assert.Contains(t, joined, "8 posts")
	assert.Contains(t, joined, "900 followers")
	assert.NotEmpty(t, decision.NextStep)
}

func TestBuild_NilSnapshotDoesNotPanic(t *testing.T) {
	builder := usecase.NewFactBuilder(usecase.DefaultThresholds())

	decision := builder.Build(domain.IntentGeneration, domain.ModeStrategy, nil, usecase.AnalyzeBuckets(nil))

	require.NotNil(t, decision)
	assert.Equal(t, float64(0), decision.Metrics["post_count"])
}
