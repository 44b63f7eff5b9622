package source

import (
	"context"
	"fmt"

	"insight-orchestrator/internal/domain"
)

// PrecomputedSource serves snapshots from the precomputed analytics store.
// It is the highest-priority source in the chain.
type PrecomputedSource struct {
	store domain.AnalyticsStore
}

func NewPrecomputedSource(store domain.AnalyticsStore) *PrecomputedSource {
	return &PrecomputedSource{store: store}
}

func (s *PrecomputedSource) Name() domain.SnapshotSourceName {
	return domain.SourcePrecomputed
}

// TryResolve looks up the account's insight document under its normalized
// id. A zero-post document is still returned; the resolver decides whether
// to treat it as a miss while keeping its account metrics.
func (s *PrecomputedSource) TryResolve(ctx context.Context, accountID string) (*domain.DataSnapshot, error) {
	key := domain.NormalizeAccountID(accountID)
	doc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("precomputed store lookup: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	snapshot := &domain.DataSnapshot{
		AccountID: key,
		Source:    domain.SourcePrecomputed,
		PostCount: len(doc.Posts),
		Posts:     doc.Posts,
		Followers: doc.Followers,
		AvgLikes:  doc.AvgLikes,
		Window:    doc.Window,
	}
	snapshot.AvgComments = doc.AvgComments
	snapshot.EngagementRatePercent = doc.EngagementRatePercent
	snapshot.HasAccountMetrics = doc.Followers != nil || doc.AvgLikes != nil ||
		doc.AvgComments != nil || doc.EngagementRatePercent != nil
	return snapshot, nil
}

var _ domain.SnapshotSource = (*PrecomputedSource)(nil)
