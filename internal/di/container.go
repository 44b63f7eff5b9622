package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"insight-orchestrator/internal/adapter/chat_http"
	"insight-orchestrator/internal/adapter/llm"
	"insight-orchestrator/internal/adapter/repository"
	"insight-orchestrator/internal/adapter/source"
	"insight-orchestrator/internal/adapter/statsapi"
	"insight-orchestrator/internal/domain"
	"insight-orchestrator/internal/infra/config"
	"insight-orchestrator/internal/infra/httpclient"
	"insight-orchestrator/internal/usecase"
	"insight-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	InsightStore domain.AnalyticsStore
	RawCache     domain.RawCacheStore
	JobRepo      domain.RefreshJobRepository

	Resolver usecase.ResolveSnapshotUsecase
	Answer   usecase.AnswerUsecase

	Worker  *worker.RefreshWorker
	Handler *chat_http.Handler
}

// NewApplicationComponents wires all dependencies from config and the
// database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	// Repositories
	insightStore := repository.NewInsightRepository(pool)
	rawCache := repository.NewProviderCacheRepository(pool)
	jobRepo := repository.NewRefreshJobRepository(pool)

	// Shared HTTP clients with connection pooling
	statsHTTP := httpclient.NewPooledClient(time.Duration(cfg.StatsProviderTimeout) * time.Second)
	llmHTTP := httpclient.NewPooledClient(time.Duration(cfg.LLMTimeout) * time.Second)

	// External clients
	statsClient := statsapi.NewClient(cfg.StatsProviderURL, statsHTTP)
	generator := llm.NewOllamaGenerator(cfg.LLMURL, cfg.LLMModel, llmHTTP)

	// Snapshot source chain, strict priority order.
	normalizer := domain.NewPostNormalizer()
	sources := []domain.SnapshotSource{
		source.NewPrecomputedSource(insightStore),
		source.NewRawCacheSource(rawCache, normalizer),
		source.NewStatsProviderSource(statsClient),
	}

	resolver := usecase.NewResolveSnapshotUsecase(
		sources,
		cfg.SnapshotCacheSize,
		time.Duration(cfg.SnapshotCacheTTLMin)*time.Minute,
		log,
		usecase.WithRefreshEnqueuer(jobRepo),
	)

	thresholds := usecase.Thresholds{
		PostingTime: cfg.MinPostsPostingTime,
		BestPost:    cfg.MinPostsBestPost,
		Why:         cfg.MinPostsWhy,
		Hashtags:    cfg.MinPostsHashtags,
		Frequency:   cfg.MinPostsFrequency,
		Captions:    cfg.MinPostsCaptions,
	}
	gate := usecase.NewSufficiencyGate(thresholds)
	factBuilder := usecase.NewFactBuilder(thresholds)
	promptBuilder := usecase.NewXMLPromptBuilder()

	limiter := rate.NewLimiter(rate.Limit(float64(cfg.GenerationPerMinute)/60.0), cfg.GenerationPerMinute)

	answer := usecase.NewAnswerUsecase(
		usecase.NewIntentClassifier(),
		resolver,
		gate,
		factBuilder,
		promptBuilder,
		generator,
		usecase.NewResponseValidator(),
		cfg.AnswerMaxTokens,
		cfg.PromptVersion,
		log,
		usecase.WithGenerationLimiter(limiter),
	)

	refreshWorker := worker.NewRefreshWorker(jobRepo, rawCache, insightStore, normalizer, log)
	handler := chat_http.NewHandler(answer, jobRepo)

	return &ApplicationComponents{
		InsightStore: insightStore,
		RawCache:     rawCache,
		JobRepo:      jobRepo,
		Resolver:     resolver,
		Answer:       answer,
		Worker:       refreshWorker,
		Handler:      handler,
	}
}
