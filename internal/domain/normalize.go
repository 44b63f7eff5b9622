package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const millisecondCutoff = int64(1e12)

// timestampFields lists the candidate field names in resolution order.
// The first present numeric (or numeric-string) value wins.
var timestampFields = []string{
	"taken_at_timestamp",
	"taken_at",
	"timestamp",
	"created_time",
	"device_timestamp",
	"taken_at_ts",
	"date",
}

var likeFields = []string{"like_count", "likes", "likes_count", "likesCount"}

var commentFields = []string{"comment_count", "comments", "comments_count", "commentsCount"}

var urlFields = []string{"url", "permalink", "link", "post_url"}

var shortcodeFields = []string{"shortcode", "code"}

// PostNormalizer converts heterogeneous provider records into canonical
// Posts. It is a stateless policy object; Normalize is pure.
type PostNormalizer struct{}

func NewPostNormalizer() PostNormalizer {
	return PostNormalizer{}
}

// Normalize maps one raw provider record to a Post. Missing timestamps stay
// absent; they are never defaulted to zero or the current time.
func (n PostNormalizer) Normalize(raw map[string]any) Post {
	post := Post{
		LikeCount:    firstNonNegativeInt(raw, likeFields),
		CommentCount: firstNonNegativeInt(raw, commentFields),
		Caption:      captionField(raw),
		MediaKind:    mediaKindField(raw),
		URL:          resolveURL(raw),
	}
	if ts, ok := resolveTimestamp(raw); ok {
		post.Timestamp = &ts
	}
	return post
}

// NormalizeAll maps a batch of raw records, preserving input order.
func (n PostNormalizer) NormalizeAll(raws []map[string]any) []Post {
	posts := make([]Post, 0, len(raws))
	for _, raw := range raws {
		posts = append(posts, n.Normalize(raw))
	}
	return posts
}

func resolveTimestamp(raw map[string]any) (int64, bool) {
	for _, field := range timestampFields {
		value, ok := raw[field]
		if !ok || value == nil {
			continue
		}
		ts, ok := asInt64(value)
		if !ok {
			continue
		}
		if ts > millisecondCutoff {
			ts /= 1000
		}
		return ts, true
	}
	return 0, false
}

func resolveURL(raw map[string]any) string {
	for _, field := range urlFields {
		if s, ok := raw[field].(string); ok && strings.HasPrefix(s, "http") {
			return s
		}
	}
	for _, field := range shortcodeFields {
		if s, ok := raw[field].(string); ok && s != "" {
			return fmt.Sprintf("https://www.instagram.com/p/%s/", s)
		}
	}
	return ""
}

func captionField(raw map[string]any) string {
	for _, field := range []string{"caption", "caption_text", "title"} {
		switch v := raw[field].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			// Some providers nest the caption as {"text": "..."}.
			if text, ok := v["text"].(string); ok && text != "" {
				return text
			}
		}
	}
	return ""
}

func mediaKindField(raw map[string]any) MediaKind {
	if b, ok := raw["is_video"].(bool); ok && b {
		return MediaKindReel
	}
	if mt, ok := asInt64(raw["media_type"]); ok && mt == 2 {
		return MediaKindReel
	}
	if s, ok := raw["product_type"].(string); ok && strings.EqualFold(s, "clips") {
		return MediaKindReel
	}
	if s, ok := raw["type"].(string); ok && strings.EqualFold(s, "video") {
		return MediaKindReel
	}
	return MediaKindPost
}

func firstNonNegativeInt(raw map[string]any, fields []string) int {
	for _, field := range fields {
		if v, ok := asInt64(raw[field]); ok && v >= 0 {
			return int(v)
		}
	}
	return 0
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return parsed, true
		}
		if parsed, err := v.Float64(); err == nil {
			return int64(parsed), true
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return parsed, true
		}
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int64(parsed), true
		}
	}
	return 0, false
}
