package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"insight-orchestrator/internal/domain"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	jobTimeout          = 30 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// RefreshWorker drains the refresh queue, rebuilding one account's
// precomputed insight document from the raw provider cache per job.
type RefreshWorker struct {
	jobRepo    domain.RefreshJobRepository
	rawCache   domain.RawCacheStore
	insights   domain.AnalyticsStore
	normalizer domain.PostNormalizer
	logger     *slog.Logger
	stopChan   chan struct{}
	backoff    time.Duration
}

func NewRefreshWorker(
	jobRepo domain.RefreshJobRepository,
	rawCache domain.RawCacheStore,
	insights domain.AnalyticsStore,
	normalizer domain.PostNormalizer,
	logger *slog.Logger,
) *RefreshWorker {
	return &RefreshWorker{
		jobRepo:    jobRepo,
		rawCache:   rawCache,
		insights:   insights,
		normalizer: normalizer,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

func (w *RefreshWorker) Start() {
	w.logger.Info("Starting RefreshWorker")
	go w.run()
}

func (w *RefreshWorker) Stop() {
	w.logger.Info("Stopping RefreshWorker")
	close(w.stopChan)
}

func (w *RefreshWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *RefreshWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("Failed to acquire refresh job", "error", err)
		w.increaseBackoff()
		return
	}
	if job == nil {
		w.backoff = 0
		return
	}

	if err := w.rebuild(ctx, job.AccountID); err != nil {
		w.logger.Error("Refresh job failed",
			"job_id", job.ID,
			"account_id", job.AccountID,
			"error", err)
		message := err.Error()
		if uerr := w.jobRepo.UpdateStatus(ctx, job.ID, domain.RefreshJobStatusFailed, &message); uerr != nil {
			w.logger.Error("Failed to mark refresh job failed", "job_id", job.ID, "error", uerr)
		}
		w.increaseBackoff()
		return
	}

	if err := w.jobRepo.UpdateStatus(ctx, job.ID, domain.RefreshJobStatusCompleted, nil); err != nil {
		w.logger.Error("Failed to mark refresh job completed", "job_id", job.ID, "error", err)
	}
	w.backoff = 0
	w.logger.Info("Refresh job completed", "job_id", job.ID, "account_id", job.AccountID)
}

// rebuild recomputes the insight document for one account from raw media.
func (w *RefreshWorker) rebuild(ctx context.Context, accountID string) error {
	entry, err := w.rawCache.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load raw cache entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("no raw cache entry for account %s", accountID)
	}

	posts := w.normalizer.NormalizeAll(entry.Media)
	doc := &domain.InsightDocument{
		Posts:       posts,
		Followers:   entry.Followers,
		GeneratedAt: time.Now().UTC(),
	}
	if len(posts) > 0 {
		likeTotal, commentTotal := 0, 0
		for _, p := range posts {
			likeTotal += p.LikeCount
			commentTotal += p.CommentCount
		}
		avgLikes := float64(likeTotal) / float64(len(posts))
		avgComments := float64(commentTotal) / float64(len(posts))
		doc.AvgLikes = &avgLikes
		doc.AvgComments = &avgComments
		if entry.Followers != nil && *entry.Followers > 0 {
			rate := (avgLikes + avgComments) / float64(*entry.Followers) * 100
			doc.EngagementRatePercent = &rate
		}
		doc.Window = &domain.WindowDescriptor{
			Mode:  domain.WindowModePosts,
			Label: fmt.Sprintf("last %d posts", len(posts)),
		}
	}

	if err := w.insights.Put(ctx, domain.NormalizeAccountID(accountID), doc); err != nil {
		return fmt.Errorf("failed to store insight document: %w", err)
	}
	return nil
}

func (w *RefreshWorker) increaseBackoff() {
	if w.backoff == 0 {
		w.backoff = initialBackoff
		return
	}
	w.backoff *= 2
	if w.backoff > maxBackoff {
		w.backoff = maxBackoff
	}
}
