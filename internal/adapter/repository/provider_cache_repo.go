package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"insight-orchestrator/internal/domain"
)

type providerCacheRepository struct {
	pool *pgxpool.Pool
}

// NewProviderCacheRepository creates the Postgres-backed raw provider
// cache. Keys are stored exactly as the scraping subsystem wrote them, so
// callers try both the submitted and the normalized id.
func NewProviderCacheRepository(pool *pgxpool.Pool) domain.RawCacheStore {
	return &providerCacheRepository{pool: pool}
}

func (r *providerCacheRepository) Get(ctx context.Context, accountID string) (*domain.ProviderCacheEntry, error) {
	query := `
		SELECT payload, fetched_at
		FROM provider_cache
		WHERE account_id = $1
	`
	var payloadBytes []byte
	var fetchedAt time.Time
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&payloadBytes, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provider cache entry: %w", err)
	}

	var entry domain.ProviderCacheEntry
	if err := json.Unmarshal(payloadBytes, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider cache entry: %w", err)
	}
	entry.FetchedAt = fetchedAt
	return &entry, nil
}
