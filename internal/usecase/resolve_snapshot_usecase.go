package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"insight-orchestrator/internal/domain"
)

// ResolveSnapshotUsecase produces one DataSnapshot per account by walking
// the priority-ordered source chain and publishing the first usable result.
type ResolveSnapshotUsecase interface {
	Execute(ctx context.Context, accountID string) (*domain.DataSnapshot, error)
}

type resolveSnapshotUsecase struct {
	sources  []domain.SnapshotSource
	cache    *expirable.LRU[string, *domain.DataSnapshot]
	group    singleflight.Group
	enqueuer domain.RefreshJobRepository
	log      *slog.Logger
}

// ResolveSnapshotOption tweaks optional resolver behavior.
type ResolveSnapshotOption func(*resolveSnapshotUsecase)

// WithRefreshEnqueuer makes the resolver queue a precompute job whenever it
// had to serve an account from the raw cache, so the next question hits the
// precomputed store instead.
func WithRefreshEnqueuer(repo domain.RefreshJobRepository) ResolveSnapshotOption {
	return func(u *resolveSnapshotUsecase) {
		u.enqueuer = repo
	}
}

// NewResolveSnapshotUsecase wires the ordered source chain with a
// per-process snapshot cache. cacheSize <= 0 disables caching.
func NewResolveSnapshotUsecase(
	sources []domain.SnapshotSource,
	cacheSize int,
	cacheTTL time.Duration,
	log *slog.Logger,
	opts ...ResolveSnapshotOption,
) ResolveSnapshotUsecase {
	u := &resolveSnapshotUsecase{
		sources: sources,
		log:     log,
	}
	if cacheSize > 0 {
		u.cache = expirable.NewLRU[string, *domain.DataSnapshot](cacheSize, nil, cacheTTL)
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *resolveSnapshotUsecase) Execute(ctx context.Context, accountID string) (*domain.DataSnapshot, error) {
	key := domain.NormalizeAccountID(accountID)

	if u.cache != nil {
		if snapshot, ok := u.cache.Get(key); ok {
			return snapshot, nil
		}
	}

	result, err, _ := u.group.Do(key, func() (any, error) {
		snapshot := u.resolve(ctx, accountID, key)
		if u.cache != nil && !snapshot.Empty() {
			u.cache.Add(key, snapshot)
		}
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.DataSnapshot), nil
}

// resolve walks the chain in strict priority order. Source failures are
// swallowed as "produced nothing"; only the precomputed store's failures
// are logged loudly, since those usually mean a configuration problem
// rather than missing data.
func (u *resolveSnapshotUsecase) resolve(ctx context.Context, accountID, key string) *domain.DataSnapshot {
	var pendingMetrics *domain.DataSnapshot

	for _, source := range u.sources {
		if ctx.Err() != nil {
			break
		}

		snapshot, err := source.TryResolve(ctx, accountID)
		if err != nil {
			if source.Name() == domain.SourcePrecomputed {
				u.log.Error("precomputed analytics store failed, falling through",
					slog.String("account_id", key),
					slog.String("error", err.Error()))
			} else {
				u.log.Warn("snapshot source produced nothing",
					slog.String("source", string(source.Name())),
					slog.String("account_id", key),
					slog.String("error", err.Error()))
			}
			continue
		}
		if snapshot == nil {
			continue
		}

		if snapshot.PostCount > 0 {
			u.maybeEnqueueRefresh(ctx, source.Name(), key)
			return snapshot
		}

		// A precomputed document with zero posts is treated as not-found,
		// but its account metrics survive in case every later source also
		// comes back post-less.
		if source.Name() == domain.SourcePrecomputed {
			if snapshot.HasAccountMetrics {
				pendingMetrics = snapshot
			}
			continue
		}

		if snapshot.HasAccountMetrics {
			return mergeAccountMetrics(snapshot, pendingMetrics)
		}
	}

	if pendingMetrics != nil {
		return pendingMetrics
	}
	return domain.EmptySnapshot(key)
}

func (u *resolveSnapshotUsecase) maybeEnqueueRefresh(ctx context.Context, source domain.SnapshotSourceName, key string) {
	if u.enqueuer == nil || source != domain.SourceRawCache {
		return
	}
	if err := u.enqueuer.Enqueue(ctx, key); err != nil {
		u.log.Warn("failed to enqueue insight refresh",
			slog.String("account_id", key),
			slog.String("error", err.Error()))
	}
}

// mergeAccountMetrics fills metric fields the winning zero-post snapshot is
// missing from the stashed precomputed metrics. Post-level fields never mix.
func mergeAccountMetrics(snapshot, pending *domain.DataSnapshot) *domain.DataSnapshot {
	if pending == nil {
		return snapshot
	}
	if snapshot.Followers == nil {
		snapshot.Followers = pending.Followers
	}
	if snapshot.AvgLikes == nil {
		snapshot.AvgLikes = pending.AvgLikes
	}
	if snapshot.AvgComments == nil {
		snapshot.AvgComments = pending.AvgComments
	}
	if snapshot.EngagementRatePercent == nil {
		snapshot.EngagementRatePercent = pending.EngagementRatePercent
	}
	return snapshot
}
