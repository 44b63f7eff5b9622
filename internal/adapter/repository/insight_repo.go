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

type insightRepository struct {
	pool *pgxpool.Pool
}

// NewInsightRepository creates the Postgres-backed precomputed analytics
// store, keyed by normalized account id.
func NewInsightRepository(pool *pgxpool.Pool) domain.AnalyticsStore {
	return &insightRepository{pool: pool}
}

func (r *insightRepository) Get(ctx context.Context, normalizedID string) (*domain.InsightDocument, error) {
	query := `
		SELECT doc, generated_at
		FROM account_insights
		WHERE account_id = $1
	`
	var docBytes []byte
	var generatedAt time.Time
	err := r.pool.QueryRow(ctx, query, normalizedID).Scan(&docBytes, &generatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read insight document: %w", err)
	}

	var doc domain.InsightDocument
	if err := json.Unmarshal(docBytes, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal insight document: %w", err)
	}
	doc.GeneratedAt = generatedAt
	return &doc, nil
}

func (r *insightRepository) Put(ctx context.Context, normalizedID string, doc *domain.InsightDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal insight document: %w", err)
	}

	query := `
		INSERT INTO account_insights (account_id, doc, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id)
		DO UPDATE SET doc = EXCLUDED.doc, generated_at = EXCLUDED.generated_at
	`
	if _, err := r.pool.Exec(ctx, query, normalizedID, docBytes, doc.GeneratedAt); err != nil {
		return fmt.Errorf("failed to upsert insight document: %w", err)
	}
	return nil
}
