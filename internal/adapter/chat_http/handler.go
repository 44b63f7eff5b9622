package chat_http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"insight-orchestrator/internal/domain"
	"insight-orchestrator/internal/usecase"
)

type Handler struct {
	answerUsecase usecase.AnswerUsecase
	jobRepo       domain.RefreshJobRepository
}

func NewHandler(answerUsecase usecase.AnswerUsecase, jobRepo domain.RefreshJobRepository) *Handler {
	return &Handler{
		answerUsecase: answerUsecase,
		jobRepo:       jobRepo,
	}
}

type answerRequest struct {
	AccountID string        `json:"account_id"`
	Question  string        `json:"question"`
	History   []historyTurn `json:"history,omitempty"`
}

type historyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type answerResponse struct {
	Reply      string `json:"reply"`
	Intent     string `json:"intent"`
	Mode       string `json:"mode"`
	DecisionID string `json:"decision_id"`
	Fallback   bool   `json:"fallback"`
}

// Answer a free-text analytics question for one account.
// (POST /v1/chat/answer)
func (h *Handler) Answer(ctx echo.Context) error {
	var req answerRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	history := make([]domain.Message, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, domain.Message{Role: turn.Role, Content: turn.Content})
	}

	output, err := h.answerUsecase.Execute(ctx.Request().Context(), usecase.AnswerInput{
		AccountID: req.AccountID,
		Question:  req.Question,
		History:   history,
	})
	if err != nil {
		// The pipeline only errors on malformed input or cancellation; data
		// problems always come back as a reply.
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, answerResponse{
		Reply:      output.Reply,
		Intent:     string(output.Intent),
		Mode:       string(output.Mode),
		DecisionID: output.DecisionID,
		Fallback:   output.Fallback,
	})
}

type refreshRequest struct {
	AccountID string `json:"account_id"`
}

// Queue a precomputed-analytics rebuild for one account.
// (POST /internal/insights/refresh)
func (h *Handler) Refresh(ctx echo.Context) error {
	var req refreshRequest
	if err := ctx.Bind(&req); err != nil || req.AccountID == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "account_id is required"})
	}

	key := domain.NormalizeAccountID(req.AccountID)
	if err := h.jobRepo.Enqueue(ctx.Request().Context(), key); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to enqueue refresh"})
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued", "account_id": key})
}
