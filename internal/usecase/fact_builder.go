package usecase

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"insight-orchestrator/internal/domain"
)

// BucketAnalysis bundles the four time-bucket aggregations for one snapshot.
type BucketAnalysis struct {
	ByHour    map[string]domain.BucketStats
	ByWeekday map[string]domain.BucketStats
	Split     map[string]domain.BucketStats
	ByDayPart map[string]domain.BucketStats
}

// AnalyzeBuckets runs all four aggregations over the snapshot's posts.
func AnalyzeBuckets(posts []domain.Post) BucketAnalysis {
	return BucketAnalysis{
		ByHour:    domain.EngagementByHour(posts),
		ByWeekday: domain.EngagementByWeekday(posts),
		Split:     domain.EngagementWeekdaySplit(posts),
		ByDayPart: domain.EngagementByDayPart(posts),
	}
}

// FactBuilder deterministically computes every number, ranking, and label
// that may be asserted downstream. Its FinalDecision is the single source
// of truth for the narrative stage.
type FactBuilder struct {
	thresholds Thresholds
}

func NewFactBuilder(thresholds Thresholds) FactBuilder {
	return FactBuilder{thresholds: thresholds}
}

// Build renders the FinalDecision for one request. The insufficient-data
// branch still states what was checked and an intent-specific next step;
// it never collapses into a generic refusal.
func (b FactBuilder) Build(
	intent domain.Intent,
	mode domain.ResponseMode,
	snapshot *domain.DataSnapshot,
	analysis BucketAnalysis,
) *domain.FinalDecision {
	decision := &domain.FinalDecision{
		ID:      uuid.NewString(),
		Intent:  intent,
		Mode:    mode,
		Metrics: map[string]float64{},
	}
	if snapshot == nil {
		snapshot = domain.EmptySnapshot("")
	}
	decision.Metrics["post_count"] = float64(snapshot.PostCount)

	switch mode {
	case domain.ModeStrategy:
		b.buildStrategy(decision, intent, snapshot)
	case domain.ModeLimitation:
		b.buildLimitation(decision, intent, snapshot)
	default:
		b.buildAnalytics(decision, intent, snapshot, analysis)
	}
	return decision
}

func (b FactBuilder) buildStrategy(d *domain.FinalDecision, intent domain.Intent, snapshot *domain.DataSnapshot) {
	d.Verdict = "strategy guidance"
	if snapshot.PostCount > 0 {
		d.Facts = append(d.Facts, fmt.Sprintf("The account has %d posts in the current analysis window.", snapshot.PostCount))
	}
	if snapshot.Followers != nil {
		d.Facts = append(d.Facts, fmt.Sprintf("The account has %d followers.", *snapshot.Followers))
		d.Metrics["followers"] = float64(*snapshot.Followers)
	}
	if len(d.Facts) == 0 {
		d.Facts = append(d.Facts, "No account data informs this answer; guidance below is strategic, not measured.")
	}
	if intent == domain.IntentDiagnosis {
		d.NextStep = "Pick the weakest area from the guidance above and ask a focused follow-up, for example about posting time or hashtags."
	} else {
		d.NextStep = "Ask a specific question about this account's posts, timing, or hashtags to get a data-backed answer."
	}
}

func (b FactBuilder) buildLimitation(d *domain.FinalDecision, intent domain.Intent, snapshot *domain.DataSnapshot) {
	d.Verdict = "not enough data"
	d.Facts = append(d.Facts,
		"Checked the precomputed analytics store, the provider cache, and the statistics provider for this account.",
		fmt.Sprintf("Found %d posts with engagement data.", snapshot.PostCount),
	)
	if snapshot.HasAccountMetrics && snapshot.Followers != nil {
		d.Facts = append(d.Facts, fmt.Sprintf("Account-level metrics exist: %d followers.", *snapshot.Followers))
		d.Metrics["followers"] = float64(*snapshot.Followers)
	}

	threshold := b.thresholds.forIntent(intent)
	if threshold > 0 {
		d.Limitations = append(d.Limitations,
			fmt.Sprintf("This question needs at least %d posts; only %d are available.", threshold, snapshot.PostCount))
		d.Metrics["required_posts"] = float64(threshold)
	}

	switch intent {
	case domain.IntentHashtags:
		d.Limitations = append(d.Limitations, "Hashtag performance cannot be measured without enough captioned posts.")
		d.NextStep = "Add 3-5 topical hashtags to your next posts so hashtag performance can be measured."
	case domain.IntentPostingTime:
		d.Limitations = append(d.Limitations, "Timing buckets need more samples before a best hour can be named.")
		d.NextStep = "Post at varied hours across the week so the timing analysis has enough samples to compare."
	case domain.IntentBestPost:
		d.Limitations = append(d.Limitations, "Post ranking needs per-post engagement data that is not available yet.")
		d.NextStep = "Run a full analysis of this account to pull in recent posts, then ask about the best post again."
	case domain.IntentWhyAboutPosts:
		d.Limitations = append(d.Limitations, "Performance comparisons need a baseline of recent posts.")
		d.NextStep = "Run a full analysis of this account so recent and older posts can be compared."
	case domain.IntentPostingFrequency:
		d.Limitations = append(d.Limitations, "Frequency needs dated posts spanning more than a few days.")
		d.NextStep = "Keep posting on a regular schedule; after a few more posts the cadence can be measured."
	case domain.IntentFollowersGrowth, domain.IntentAccountMetrics:
		d.Limitations = append(d.Limitations, "Account-level metrics are unavailable from every source.")
		d.NextStep = "Run a full analysis of this account to fetch follower and engagement metrics, then ask again."
	case domain.IntentCaptionsOrPaidPost:
		d.Limitations = append(d.Limitations, "Caption analysis needs enough posts with caption text.")
		d.NextStep = "Write fuller captions on upcoming posts so caption performance can be compared."
	default:
		d.NextStep = "Run a full analysis of this account, then ask again."
	}
}

func (b FactBuilder) buildAnalytics(
	d *domain.FinalDecision,
	intent domain.Intent,
	snapshot *domain.DataSnapshot,
	analysis BucketAnalysis,
) {
	if snapshot.Window != nil {
		d.Facts = append(d.Facts, fmt.Sprintf("Analysis window: %s.", snapshot.Window.Label))
	}

	switch intent {
	case domain.IntentBestPost:
		b.bestPostFacts(d, snapshot)
	case domain.IntentPostingTime:
		b.postingTimeFacts(d, analysis)
	case domain.IntentHashtags:
		b.hashtagFacts(d, snapshot)
	case domain.IntentWhyAboutPosts:
		b.whyFacts(d, snapshot, analysis)
	case domain.IntentPostingFrequency:
		b.frequencyFacts(d, snapshot)
	case domain.IntentFollowersGrowth, domain.IntentAccountMetrics:
		b.accountMetricFacts(d, intent, snapshot)
	case domain.IntentCaptionsOrPaidPost:
		b.captionFacts(d, snapshot)
	}

	if d.NextStep == "" {
		d.NextStep = "Keep posting consistently and re-run this analysis after your next few posts."
	}
}

func (b FactBuilder) bestPostFacts(d *domain.FinalDecision, snapshot *domain.DataSnapshot) {
	ranked := make([]domain.Post, len(snapshot.Posts))
	copy(ranked, snapshot.Posts)
	// Stable sort: ties keep original post order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagement() > ranked[j].Engagement()
	})

	total := 0
	for _, p := range snapshot.Posts {
		total += p.Engagement()
	}
	avg := round2(float64(total) / float64(len(snapshot.Posts)))

	best := ranked[0]
	d.Verdict = "best post identified"
	d.Metrics["best_engagement"] = float64(best.Engagement())
	d.Metrics["best_likes"] = float64(best.LikeCount)
	d.Metrics["best_comments"] = float64(best.CommentCount)
	d.Metrics["avg_engagement"] = avg

	topFact := fmt.Sprintf("The top post has %d engagement (%d likes, %d comments).",
		best.Engagement(), best.LikeCount, best.CommentCount)
	if best.URL != "" {
		topFact = fmt.Sprintf("The top post (%s) has %d engagement (%d likes, %d comments).",
			best.URL, best.Engagement(), best.LikeCount, best.CommentCount)
	}
	d.Facts = append(d.Facts, topFact,
		fmt.Sprintf("Average engagement across %d posts is %s.", len(snapshot.Posts), formatNumber(avg)))
	if len(ranked) > 1 {
		d.Facts = append(d.Facts, fmt.Sprintf("The runner-up post has %d engagement.", ranked[1].Engagement()))
	}
	if best.MediaKind == domain.MediaKindReel {
		d.Facts = append(d.Facts, "The top post is a reel.")
	}
	d.NextStep = "Study what the top post did differently and repeat that format in your next post."
}

func (b FactBuilder) postingTimeFacts(d *domain.FinalDecision, analysis BucketAnalysis) {
	slotRanking := domain.RankBuckets(domain.DayPartOrder, analysis.ByDayPart)
	if !slotRanking.Determined {
		d.Verdict = "no timing determination possible"
		d.Facts = append(d.Facts, "None of the analyzed posts carry a usable timestamp, so timing buckets are all empty.")
		d.Limitations = append(d.Limitations, "Time-of-day analysis needs posts with timestamps.")
		d.NextStep = "Run a full analysis of this account to refresh post timestamps, then ask again."
		return
	}

	d.Verdict = fmt.Sprintf("best slot: %s", slotRanking.Best)
	d.Metrics["best_slot_avg_engagement"] = round2(slotRanking.BestStats.AvgEngagement)
	d.Metrics["best_slot_posts"] = float64(slotRanking.BestStats.PostCount)
	d.Facts = append(d.Facts, fmt.Sprintf("%s is the strongest slot: %d posts averaging %s engagement.",
		slotRanking.Best, slotRanking.BestStats.PostCount, formatNumber(round2(slotRanking.BestStats.AvgEngagement))))
	if slotRanking.Worst != slotRanking.Best {
		d.Facts = append(d.Facts, fmt.Sprintf("%s is the weakest slot: %d posts averaging %s engagement.",
			slotRanking.Worst, slotRanking.WorstStats.PostCount, formatNumber(round2(slotRanking.WorstStats.AvgEngagement))))
	}

	hourRanking := domain.RankBuckets(domain.HourOrder, analysis.ByHour)
	if hourRanking.Determined {
		d.Facts = append(d.Facts, fmt.Sprintf("The single best hour is %s with %s average engagement over %d posts.",
			hourRanking.Best, formatNumber(round2(hourRanking.BestStats.AvgEngagement)), hourRanking.BestStats.PostCount))
	}

	dayRanking := domain.RankBuckets(domain.WeekdayOrder, analysis.ByWeekday)
	if dayRanking.Determined {
		d.Facts = append(d.Facts, fmt.Sprintf("%s is the strongest weekday at %s average engagement.",
			dayRanking.Best, formatNumber(round2(dayRanking.BestStats.AvgEngagement))))
	}

	d.NextStep = fmt.Sprintf("Schedule your next posts in the %s slot and compare results after a week.",
		strings.ToLower(slotRanking.Best))
}

var hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

func (b FactBuilder) hashtagFacts(d *domain.FinalDecision, snapshot *domain.DataSnapshot) {
	type tagStats struct {
		tag        string
		posts      int
		engagement int
	}
	byTag := map[string]*tagStats{}
	var order []string
	taggedPosts := 0
	for _, p := range snapshot.Posts {
		tags := hashtagPattern.FindAllString(strings.ToLower(p.Caption), -1)
		if len(tags) == 0 {
			continue
		}
		taggedPosts++
		seen := map[string]bool{}
		for _, tag := range tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			stats, ok := byTag[tag]
			if !ok {
				stats = &tagStats{tag: tag}
				byTag[tag] = stats
				order = append(order, tag)
			}
			stats.posts++
			stats.engagement += p.Engagement()
		}
	}

	d.Metrics["tagged_posts"] = float64(taggedPosts)
	d.Metrics["distinct_hashtags"] = float64(len(byTag))

	if len(byTag) == 0 {
		d.Verdict = "no hashtags in use"
		d.Facts = append(d.Facts, fmt.Sprintf("None of the %d analyzed posts use hashtags.", snapshot.PostCount))
		d.NextStep = "Add 3-5 topical hashtags to your next posts so hashtag performance can be measured."
		return
	}

	ranked := make([]*tagStats, 0, len(byTag))
	for _, tag := range order {
		ranked = append(ranked, byTag[tag])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ai := float64(ranked[i].engagement) / float64(ranked[i].posts)
		aj := float64(ranked[j].engagement) / float64(ranked[j].posts)
		return ai > aj
	})

	top := ranked[0]
	topAvg := round2(float64(top.engagement) / float64(top.posts))
	d.Verdict = fmt.Sprintf("top hashtag: %s", top.tag)
	d.Metrics["top_hashtag_avg_engagement"] = topAvg
	d.Facts = append(d.Facts,
		fmt.Sprintf("%d of %d posts use hashtags, %d distinct tags in total.", taggedPosts, snapshot.PostCount, len(byTag)),
		fmt.Sprintf("%s performs best: %s average engagement across %d posts.", top.tag, formatNumber(topAvg), top.posts))
	if len(ranked) > 1 {
		bottom := ranked[len(ranked)-1]
		bottomAvg := round2(float64(bottom.engagement) / float64(bottom.posts))
		d.Facts = append(d.Facts, fmt.Sprintf("%s performs worst at %s average engagement.", bottom.tag, formatNumber(bottomAvg)))
	}
	d.NextStep = fmt.Sprintf("Lean on %s and similar tags in your next posts, and drop the weakest performers.", top.tag)
}

func (b FactBuilder) whyFacts(d *domain.FinalDecision, snapshot *domain.DataSnapshot, analysis BucketAnalysis) {
	posts := snapshot.Posts
	recentCount := len(posts) / 3
	if recentCount == 0 {
		recentCount = 1
	}
	// Providers order posts newest-first; the first third is "recent" and
	// the remainder is the baseline.
	recentTotal, baselineTotal := 0, 0
	for i, p := range posts {
		if i < recentCount {
			recentTotal += p.Engagement()
		} else {
			baselineTotal += p.Engagement()
		}
	}
	recentAvg := round2(float64(recentTotal) / float64(recentCount))
	baselineCount := len(posts) - recentCount
	baselineAvg := recentAvg
	if baselineCount > 0 {
		baselineAvg = round2(float64(baselineTotal) / float64(baselineCount))
	}

	d.Metrics["recent_avg_engagement"] = recentAvg
	d.Metrics["baseline_avg_engagement"] = baselineAvg
	d.Facts = append(d.Facts,
		fmt.Sprintf("The %d most recent posts average %s engagement.", recentCount, formatNumber(recentAvg)),
		fmt.Sprintf("The %d earlier posts average %s engagement.", baselineCount, formatNumber(baselineAvg)))

	switch {
	case baselineAvg > 0 && recentAvg < baselineAvg*0.8:
		drop := round2((1 - recentAvg/baselineAvg) * 100)
		d.Verdict = "recent posts underperform the baseline"
		d.Metrics["drop_percent"] = drop
		d.Facts = append(d.Facts, fmt.Sprintf("Recent engagement is down %s%% versus the baseline.", formatNumber(drop)))
	case baselineAvg > 0 && recentAvg > baselineAvg*1.2:
		gain := round2((recentAvg/baselineAvg - 1) * 100)
		d.Verdict = "recent posts outperform the baseline"
		d.Metrics["gain_percent"] = gain
		d.Facts = append(d.Facts, fmt.Sprintf("Recent engagement is up %s%% versus the baseline.", formatNumber(gain)))
	default:
		d.Verdict = "recent performance is in line with the baseline"
	}

	split := domain.RankBuckets(domain.SplitOrder, analysis.Split)
	if split.Determined && split.Best != split.Worst {
		d.Facts = append(d.Facts, fmt.Sprintf("%s posts outperform %s posts (%s vs %s average engagement).",
			split.Best, strings.ToLower(split.Worst),
			formatNumber(round2(split.BestStats.AvgEngagement)),
			formatNumber(round2(split.WorstStats.AvgEngagement))))
	}
	d.NextStep = "Compare your weakest recent post against the baseline average above and change one variable at a time."
}

func (b FactBuilder) frequencyFacts(d *domain.FinalDecision, snapshot *domain.DataSnapshot) {
	var earliest, latest int64
	dated := 0
	for _, p := range snapshot.Posts {
		if p.Timestamp == nil {
			continue
		}
		ts := *p.Timestamp
		if dated == 0 || ts < earliest {
			earliest = ts
		}
		if dated == 0 || ts > latest {
			latest = ts
		}
		dated++
	}

	d.Metrics["dated_posts"] = float64(dated)
	if dated < 2 || latest == earliest {
		d.Verdict = "cadence not measurable"
		d.Facts = append(d.Facts, fmt.Sprintf("Only %d of %d posts carry a usable timestamp, which is too few to measure cadence.", dated, snapshot.PostCount))
		d.Limitations = append(d.Limitations, "Posting frequency needs at least two dated posts.")
		d.NextStep = "Run a full analysis of this account to refresh post timestamps, then ask again."
		return
	}

	spanDays := float64(latest-earliest) / 86400.0
	perWeek := round2(float64(dated) / spanDays * 7)
	d.Verdict = fmt.Sprintf("about %s posts per week", formatNumber(perWeek))
	d.Metrics["posts_per_week"] = perWeek
	d.Metrics["span_days"] = round2(spanDays)
	d.Facts = append(d.Facts,
		fmt.Sprintf("%d dated posts span %s days, about %s posts per week.", dated, formatNumber(round2(spanDays)), formatNumber(perWeek)))
	if perWeek < 3 {
		d.NextStep = "Increase cadence toward 3-4 posts per week and hold it for a month before judging results."
	} else {
		d.NextStep = "Hold your current cadence steady and shift effort toward post quality and timing."
	}
}

func (b FactBuilder) accountMetricFacts(d *domain.FinalDecision, intent domain.Intent, snapshot *domain.DataSnapshot) {
	d.Verdict = "account metrics available"
	if snapshot.Followers != nil {
		d.Metrics["followers"] = float64(*snapshot.Followers)
		d.Facts = append(d.Facts, fmt.Sprintf("The account has %d followers.", *snapshot.Followers))
	}
	if snapshot.AvgLikes != nil {
		avg := round2(*snapshot.AvgLikes)
		d.Metrics["avg_likes"] = avg
		d.Facts = append(d.Facts, fmt.Sprintf("Posts average %s likes.", formatNumber(avg)))
	}
	if snapshot.AvgComments != nil {
		avg := round2(*snapshot.AvgComments)
		d.Metrics["avg_comments"] = avg
		d.Facts = append(d.Facts, fmt.Sprintf("Posts average %s comments.", formatNumber(avg)))
	}
	if snapshot.EngagementRatePercent != nil {
		rate := round2(*snapshot.EngagementRatePercent)
		d.Metrics["engagement_rate_percent"] = rate
		d.Facts = append(d.Facts, fmt.Sprintf("The engagement rate is %s%%.", formatNumber(rate)))
	}
	if intent == domain.IntentFollowersGrowth {
		d.NextStep = "Focus on the content formats with the highest engagement above; growth follows engagement rate."
	} else {
		d.NextStep = "Benchmark these numbers again after two weeks of consistent posting."
	}
}

var paidMarkers = []string{"#ad", "#sponsored", "paid partnership", "#partner", "#gifted"}

func (b FactBuilder) captionFacts(d *domain.FinalDecision, snapshot *domain.DataSnapshot) {
	paidCount := 0
	longTotal, shortTotal := 0, 0
	longPosts, shortPosts := 0, 0
	for _, p := range snapshot.Posts {
		caption := strings.ToLower(p.Caption)
		for _, marker := range paidMarkers {
			if strings.Contains(caption, marker) {
				paidCount++
				break
			}
		}
		if len(p.Caption) >= 100 {
			longTotal += p.Engagement()
			longPosts++
		} else {
			shortTotal += p.Engagement()
			shortPosts++
		}
	}

	d.Metrics["paid_posts"] = float64(paidCount)
	d.Metrics["long_caption_posts"] = float64(longPosts)
	d.Facts = append(d.Facts, fmt.Sprintf("%d of %d posts look like paid or sponsored content.", paidCount, snapshot.PostCount))

	if longPosts > 0 && shortPosts > 0 {
		longAvg := round2(float64(longTotal) / float64(longPosts))
		shortAvg := round2(float64(shortTotal) / float64(shortPosts))
		d.Metrics["long_caption_avg_engagement"] = longAvg
		d.Metrics["short_caption_avg_engagement"] = shortAvg
		d.Facts = append(d.Facts, fmt.Sprintf("Long captions (100+ chars) average %s engagement; short captions average %s.",
			formatNumber(longAvg), formatNumber(shortAvg)))
		if longAvg >= shortAvg {
			d.Verdict = "long captions perform better"
			d.NextStep = "Keep writing fuller captions; they out-earn short ones on this account."
		} else {
			d.Verdict = "short captions perform better"
			d.NextStep = "Tighten your captions; shorter ones out-earn long ones on this account."
		}
		return
	}
	d.Verdict = "caption styles are uniform"
	d.NextStep = "Vary caption length across your next posts so long and short styles can be compared."
}

func (t Thresholds) forIntent(intent domain.Intent) int {
	return NewSufficiencyGate(t).Threshold(intent)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// formatNumber trims trailing zeros so 159.50 renders as "159.5" and 4.00
// as "4".
func formatNumber(value float64) string {
	formatted := strings.TrimRight(fmt.Sprintf("%.2f", value), "0")
	return strings.TrimRight(formatted, ".")
}
