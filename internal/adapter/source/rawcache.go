package source

import (
	"context"
	"fmt"

	"insight-orchestrator/internal/domain"
)

// RawCacheSource serves snapshots built by normalizing raw provider media
// from the cache. Tried after the precomputed store, before the live
// statistics provider.
type RawCacheSource struct {
	store      domain.RawCacheStore
	normalizer domain.PostNormalizer
}

func NewRawCacheSource(store domain.RawCacheStore, normalizer domain.PostNormalizer) *RawCacheSource {
	return &RawCacheSource{store: store, normalizer: normalizer}
}

func (s *RawCacheSource) Name() domain.SnapshotSourceName {
	return domain.SourceRawCache
}

// TryResolve looks up the cache first under the exact submitted id, then
// under the normalized form.
func (s *RawCacheSource) TryResolve(ctx context.Context, accountID string) (*domain.DataSnapshot, error) {
	entry, err := s.store.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("raw cache lookup: %w", err)
	}

	key := domain.NormalizeAccountID(accountID)
	if entry == nil && key != accountID {
		entry, err = s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("raw cache lookup (normalized): %w", err)
		}
	}
	if entry == nil {
		return nil, nil
	}

	posts := s.normalizer.NormalizeAll(entry.Media)
	snapshot := &domain.DataSnapshot{
		AccountID: key,
		Source:    domain.SourceRawCache,
		PostCount: len(posts),
		Posts:     posts,
		Followers: entry.Followers,
	}
	snapshot.HasAccountMetrics = entry.Followers != nil
	if len(posts) > 0 {
		snapshot.Window = &domain.WindowDescriptor{
			Mode:  domain.WindowModePosts,
			Label: fmt.Sprintf("last %d posts", len(posts)),
		}
	}
	return snapshot, nil
}

var _ domain.SnapshotSource = (*RawCacheSource)(nil)
