package domain

import "time"

// MediaKind distinguishes video-style reels from regular feed posts.
type MediaKind string

const (
	MediaKindReel MediaKind = "reel"
	MediaKindPost MediaKind = "post"
)

// Post is the canonical shape every provider record is normalized into.
// Timestamp is nil when no source field resolved; such posts still count
// for engagement and ranking but are skipped by time-bucket aggregation.
type Post struct {
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Timestamp    *int64    `json:"timestamp,omitempty"`
	Caption      string    `json:"caption"`
	MediaKind    MediaKind `json:"media_kind"`
	URL          string    `json:"url,omitempty"`
}

// Engagement is always likes plus comments.
func (p Post) Engagement() int {
	return p.LikeCount + p.CommentCount
}

// PostedAt returns the post time in UTC and whether a timestamp resolved.
func (p Post) PostedAt() (time.Time, bool) {
	if p.Timestamp == nil {
		return time.Time{}, false
	}
	return time.Unix(*p.Timestamp, 0).UTC(), true
}
