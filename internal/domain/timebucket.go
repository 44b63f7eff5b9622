package domain

import "fmt"

// BucketStats aggregates engagement for one time bucket. AvgEngagement is 0
// for empty buckets, never NaN.
type BucketStats struct {
	TotalEngagement int
	PostCount       int
	AvgEngagement   float64
}

// Fixed bucket orders. Ranking ties resolve to the earlier label, so these
// double as tie-break orders.
var (
	WeekdayOrder = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	DayPartOrder = []string{"Morning", "Afternoon", "Evening", "Night"}
	SplitOrder   = []string{"Weekdays", "Weekends"}
	HourOrder    = hourOrder()
)

func hourOrder() []string {
	labels := make([]string, 24)
	for h := 0; h < 24; h++ {
		labels[h] = HourLabel(h)
	}
	return labels
}

// HourLabel formats an hour bucket key, e.g. "09:00".
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// DayPartFor maps an hour to its fixed day-part slot: Morning 06-12,
// Afternoon 12-18, Evening 18-24, Night 00-06.
func DayPartFor(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 18:
		return "Afternoon"
	case hour >= 18:
		return "Evening"
	default:
		return "Night"
	}
}

// EngagementByHour buckets posts into 24 hourly slots. Posts without a
// timestamp are skipped; every slot is present even when empty.
func EngagementByHour(posts []Post) map[string]BucketStats {
	buckets := emptyBuckets(HourOrder)
	forEachTimed(posts, func(p Post, hour int, _ string) {
		addToBucket(buckets, HourLabel(hour), p.Engagement())
	})
	finalizeBuckets(buckets)
	return buckets
}

// EngagementByWeekday buckets posts by weekday name, Sunday through Saturday.
func EngagementByWeekday(posts []Post) map[string]BucketStats {
	buckets := emptyBuckets(WeekdayOrder)
	forEachTimed(posts, func(p Post, _ int, weekday string) {
		addToBucket(buckets, weekday, p.Engagement())
	})
	finalizeBuckets(buckets)
	return buckets
}

// EngagementWeekdaySplit buckets posts into Mon-Fri versus Sat-Sun.
func EngagementWeekdaySplit(posts []Post) map[string]BucketStats {
	buckets := emptyBuckets(SplitOrder)
	forEachTimed(posts, func(p Post, _ int, weekday string) {
		key := "Weekdays"
		if weekday == "Saturday" || weekday == "Sunday" {
			key = "Weekends"
		}
		addToBucket(buckets, key, p.Engagement())
	})
	finalizeBuckets(buckets)
	return buckets
}

// EngagementByDayPart buckets posts into the four fixed day-part slots.
func EngagementByDayPart(posts []Post) map[string]BucketStats {
	buckets := emptyBuckets(DayPartOrder)
	forEachTimed(posts, func(p Post, hour int, _ string) {
		addToBucket(buckets, DayPartFor(hour), p.Engagement())
	})
	finalizeBuckets(buckets)
	return buckets
}

// BucketRanking names the best and worst non-empty buckets. Determined is
// false when every bucket is empty; callers must not invent a winner then.
type BucketRanking struct {
	Best       string
	BestStats  BucketStats
	Worst      string
	WorstStats BucketStats
	Determined bool
}

// RankBuckets picks best and worst by average engagement among buckets with
// at least one post. Ties go to the label that appears earlier in order.
func RankBuckets(order []string, buckets map[string]BucketStats) BucketRanking {
	var ranking BucketRanking
	for _, label := range order {
		stats, ok := buckets[label]
		if !ok || stats.PostCount == 0 {
			continue
		}
		if !ranking.Determined {
			ranking = BucketRanking{
				Best: label, BestStats: stats,
				Worst: label, WorstStats: stats,
				Determined: true,
			}
			continue
		}
		if stats.AvgEngagement > ranking.BestStats.AvgEngagement {
			ranking.Best, ranking.BestStats = label, stats
		}
		if stats.AvgEngagement < ranking.WorstStats.AvgEngagement {
			ranking.Worst, ranking.WorstStats = label, stats
		}
	}
	return ranking
}

func emptyBuckets(order []string) map[string]BucketStats {
	buckets := make(map[string]BucketStats, len(order))
	for _, label := range order {
		buckets[label] = BucketStats{}
	}
	return buckets
}

func forEachTimed(posts []Post, fn func(p Post, hour int, weekday string)) {
	for _, p := range posts {
		postedAt, ok := p.PostedAt()
		if !ok {
			continue
		}
		fn(p, postedAt.Hour(), postedAt.Weekday().String())
	}
}

func addToBucket(buckets map[string]BucketStats, key string, engagement int) {
	stats := buckets[key]
	stats.TotalEngagement += engagement
	stats.PostCount++
	buckets[key] = stats
}

func finalizeBuckets(buckets map[string]BucketStats) {
	for key, stats := range buckets {
		if stats.PostCount > 0 {
			stats.AvgEngagement = float64(stats.TotalEngagement) / float64(stats.PostCount)
			buckets[key] = stats
		}
	}
}
