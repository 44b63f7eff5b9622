package domain

import (
	"context"
	"strings"
)

// WindowMode says whether a snapshot covers "last N posts" or "last N days".
type WindowMode string

const (
	WindowModeDays  WindowMode = "days"
	WindowModePosts WindowMode = "posts"
)

// WindowDescriptor labels the data window a snapshot represents.
type WindowDescriptor struct {
	Mode  WindowMode `json:"mode"`
	Label string     `json:"label"`
}

// SnapshotSourceName identifies which of the three sources produced a
// snapshot. Exactly one source ever contributes post-level data.
type SnapshotSourceName string

const (
	SourcePrecomputed   SnapshotSourceName = "precomputed"
	SourceRawCache      SnapshotSourceName = "raw_cache"
	SourceStatsProvider SnapshotSourceName = "stats_provider"
	SourceNone          SnapshotSourceName = "none"
)

// DataSnapshot is the resolved, single-sourced view of one account used to
// answer one question. Posts may be empty while HasAccountMetrics is true.
type DataSnapshot struct {
	AccountID             string
	Source                SnapshotSourceName
	PostCount             int
	Posts                 []Post
	HasAccountMetrics     bool
	Followers             *int
	AvgLikes              *float64
	AvgComments           *float64
	EngagementRatePercent *float64
	Window                *WindowDescriptor
}

// Empty reports whether no source produced any signal at all.
func (s *DataSnapshot) Empty() bool {
	return s == nil || (s.PostCount == 0 && !s.HasAccountMetrics)
}

// EmptySnapshot is what the resolver publishes when every source came back
// with nothing.
func EmptySnapshot(accountID string) *DataSnapshot {
	return &DataSnapshot{AccountID: accountID, Source: SourceNone}
}

// SnapshotSource is one strategy in the priority-ordered fallback chain.
// (nil, nil) means the source produced nothing and the chain continues.
type SnapshotSource interface {
	Name() SnapshotSourceName
	TryResolve(ctx context.Context, accountID string) (*DataSnapshot, error)
}

// NormalizeAccountID lower-cases, trims, and strips a leading @ so store
// keys are stable across user spellings.
func NormalizeAccountID(id string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(id)), "@")
}
