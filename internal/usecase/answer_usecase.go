package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"insight-orchestrator/internal/domain"
)

// AnswerInput carries one chat question for one account.
type AnswerInput struct {
	AccountID string
	Question  string
	History   []domain.Message
}

// AnswerOutput is the normalized chat reply returned to the handler.
type AnswerOutput struct {
	Reply      string
	Intent     domain.Intent
	Mode       domain.ResponseMode
	DecisionID string
	Fallback   bool
	Reason     string
}

// AnswerUsecase is the single operation the chat endpoint calls.
type AnswerUsecase interface {
	Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error)
}

type answerUsecase struct {
	classifier    *IntentClassifier
	resolver      ResolveSnapshotUsecase
	gate          SufficiencyGate
	facts         FactBuilder
	promptBuilder PromptBuilder
	llmClient     domain.LLMClient
	validator     ResponseValidator
	limiter       *rate.Limiter
	maxTokens     int
	promptVersion string
	log           *slog.Logger
}

// AnswerOption tweaks optional answer pipeline behavior.
type AnswerOption func(*answerUsecase)

// WithGenerationLimiter caps LLM calls; when the limiter rejects, the
// deterministic template serves the reply instead of queueing.
func WithGenerationLimiter(limiter *rate.Limiter) AnswerOption {
	return func(u *answerUsecase) {
		u.limiter = limiter
	}
}

// NewAnswerUsecase wires the full decision pipeline: classify, resolve,
// gate, build facts, render narrative, validate or fall back.
func NewAnswerUsecase(
	classifier *IntentClassifier,
	resolver ResolveSnapshotUsecase,
	gate SufficiencyGate,
	facts FactBuilder,
	promptBuilder PromptBuilder,
	llmClient domain.LLMClient,
	validator ResponseValidator,
	maxTokens int,
	promptVersion string,
	log *slog.Logger,
	opts ...AnswerOption,
) AnswerUsecase {
	u := &answerUsecase{
		classifier:    classifier,
		resolver:      resolver,
		gate:          gate,
		facts:         facts,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		validator:     validator,
		maxTokens:     maxTokens,
		promptVersion: promptVersion,
		log:           log,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *answerUsecase) Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	// Malformed input is the only error class a caller ever sees.
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}
	if strings.TrimSpace(input.AccountID) == "" {
		return nil, fmt.Errorf("account id is required")
	}

	intent := u.classifier.Classify(input.Question)

	snapshot, err := u.resolver.Execute(ctx, input.AccountID)
	if err != nil {
		// The resolver swallows source failures itself; an error here means
		// the request is already dead (cancellation).
		return nil, err
	}

	mode := u.gate.DecideMode(intent, snapshot)
	analysis := AnalyzeBuckets(snapshot.Posts)
	decision := u.facts.Build(intent, mode, snapshot, analysis)

	reply, fallback, reason := u.renderNarrative(ctx, input, decision)

	return &AnswerOutput{
		Reply:      reply,
		Intent:     intent,
		Mode:       mode,
		DecisionID: decision.ID,
		Fallback:   fallback,
		Reason:     reason,
	}, nil
}

// renderNarrative asks the model for free text and keeps it only when it
// survives validation; every failure path returns the deterministic
// template assembled from the decision.
func (u *answerUsecase) renderNarrative(ctx context.Context, input AnswerInput, decision *domain.FinalDecision) (string, bool, string) {
	template := RenderTemplate(decision)

	if u.limiter != nil && !u.limiter.Allow() {
		u.log.Warn("generation rate limited, serving template",
			slog.String("decision_id", decision.ID))
		return template, true, "generation rate limited"
	}

	messages, err := u.promptBuilder.Build(PromptInput{
		Question:      input.Question,
		PromptVersion: u.promptVersion,
		Decision:      decision,
		History:       input.History,
	})
	if err != nil {
		u.log.Warn("failed to build narrative prompt",
			slog.String("decision_id", decision.ID),
			slog.String("error", err.Error()))
		return template, true, fmt.Sprintf("prompt build failed: %v", err)
	}

	llmResp, err := u.llmClient.Generate(ctx, messages, u.maxTokens)
	if err != nil {
		u.log.Warn("llm generation failed, serving template",
			slog.String("decision_id", decision.ID),
			slog.String("error", err.Error()))
		return template, true, fmt.Sprintf("llm generation failed: %v", err)
	}
	if llmResp == nil || strings.TrimSpace(llmResp.Text) == "" || !llmResp.Done {
		u.log.Warn("llm returned unusable response, serving template",
			slog.String("decision_id", decision.ID))
		return template, true, "empty or incomplete llm response"
	}

	if err := u.validator.Validate(llmResp.Text, decision); err != nil {
		u.log.Warn("narrative rejected by validator, serving template",
			slog.String("decision_id", decision.ID),
			slog.String("error", err.Error()))
		return template, true, fmt.Sprintf("validation failed: %v", err)
	}

	return strings.TrimSpace(llmResp.Text), false, ""
}
