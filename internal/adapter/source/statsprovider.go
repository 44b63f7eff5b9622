package source

import (
	"context"
	"fmt"

	"insight-orchestrator/internal/domain"
)

// StatsProviderSource is the last-resort source: a live network call that
// yields account-level metrics only, never post-level detail.
type StatsProviderSource struct {
	provider domain.StatsProvider
}

func NewStatsProviderSource(provider domain.StatsProvider) *StatsProviderSource {
	return &StatsProviderSource{provider: provider}
}

func (s *StatsProviderSource) Name() domain.SnapshotSourceName {
	return domain.SourceStatsProvider
}

func (s *StatsProviderSource) TryResolve(ctx context.Context, accountID string) (*domain.DataSnapshot, error) {
	stats, err := s.provider.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("stats provider call: %w", err)
	}
	if stats == nil {
		return nil, nil
	}

	followers := stats.Followers
	avgLikes := stats.AvgLikes
	avgComments := stats.AvgComments
	rate := stats.EngagementRatePercent
	return &domain.DataSnapshot{
		AccountID:             domain.NormalizeAccountID(accountID),
		Source:                domain.SourceStatsProvider,
		HasAccountMetrics:     true,
		Followers:             &followers,
		AvgLikes:              &avgLikes,
		AvgComments:           &avgComments,
		EngagementRatePercent: &rate,
	}, nil
}

var _ domain.SnapshotSource = (*StatsProviderSource)(nil)
