package domain

import (
	"context"
	"time"
)

// InsightDocument is the precomputed analytics payload stored per account.
type InsightDocument struct {
	Posts                 []Post            `json:"posts"`
	Followers             *int              `json:"followers,omitempty"`
	AvgLikes              *float64          `json:"avg_likes,omitempty"`
	AvgComments           *float64          `json:"avg_comments,omitempty"`
	EngagementRatePercent *float64          `json:"engagement_rate_percent,omitempty"`
	Window                *WindowDescriptor `json:"window,omitempty"`
	GeneratedAt           time.Time         `json:"generated_at"`
}

// AnalyticsStore is the precomputed analytics document store, keyed by
// normalized account id. Get returns (nil, nil) when no document exists.
type AnalyticsStore interface {
	Get(ctx context.Context, normalizedID string) (*InsightDocument, error)
	Put(ctx context.Context, normalizedID string, doc *InsightDocument) error
}

// ProviderCacheEntry holds raw scraped media exactly as a provider shipped
// it, before normalization.
type ProviderCacheEntry struct {
	Media     []map[string]any `json:"media"`
	Followers *int             `json:"followers,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// RawCacheStore is the raw provider cache. Get returns (nil, nil) on miss.
type RawCacheStore interface {
	Get(ctx context.Context, accountID string) (*ProviderCacheEntry, error)
}

// AccountStats is the statistics provider's account-level answer. It never
// carries post-level detail.
type AccountStats struct {
	Followers             int     `json:"followers"`
	AvgLikes              float64 `json:"avg_likes"`
	AvgComments           float64 `json:"avg_comments"`
	EngagementRatePercent float64 `json:"engagement_rate_percent"`
}

// StatsProvider is the live third-party statistics service. Calls must be
// time-bounded by the caller's context and client.
type StatsProvider interface {
	Get(ctx context.Context, accountID string) (*AccountStats, error)
}

// Message is one chat turn sent to or received from the language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMResponse carries the model output and whether generation finished.
type LLMResponse struct {
	Text string
	Done bool
}

// LLMClient generates free text from chat messages. Its output carries no
// guarantees and is always subject to validation.
type LLMClient interface {
	Generate(ctx context.Context, messages []Message, maxTokens int) (*LLMResponse, error)
	Version() string
}

// RefreshJobStatus tracks an insight refresh job through the queue.
type RefreshJobStatus string

const (
	RefreshJobStatusNew        RefreshJobStatus = "new"
	RefreshJobStatusProcessing RefreshJobStatus = "processing"
	RefreshJobStatusCompleted  RefreshJobStatus = "completed"
	RefreshJobStatusFailed     RefreshJobStatus = "failed"
)

// RefreshJob asks the worker to rebuild one account's insight document from
// the raw provider cache.
type RefreshJob struct {
	ID           string
	AccountID    string
	Status       RefreshJobStatus
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshJobRepository is the Postgres-backed refresh queue.
type RefreshJobRepository interface {
	Enqueue(ctx context.Context, accountID string) error
	AcquireNextJob(ctx context.Context) (*RefreshJob, error)
	UpdateStatus(ctx context.Context, id string, status RefreshJobStatus, errorMessage *string) error
}
