package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chatbot-relay/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	msgMessageRequired = "Message is required"
	msgInvalidBody     = "Invalid JSON body"
	msgBodyTooLarge    = "Request body too large"
	msgNotFound        = "Not found"
	msgProcessing      = "An error occurred while processing your request"

	defaultMaxBodyBytes = 1 << 20
)

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// Handler serves the chat API over net/http and API Gateway proxy events.
// It holds no per-request state.
type Handler struct {
	chat         ChatUseCase
	maxBodyBytes int64
}

type Option func(*Handler)

func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	h := &Handler{chat: uc, maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) handleChat(ctx context.Context, body []byte) (int, any) {
	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		slog.WarnContext(ctx, "invalid chat request body", "err", err, "correlation_id", correlationID(ctx))
		return http.StatusBadRequest, errorResponse{Error: msgInvalidBody}
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{Message: req.Message})
	if err != nil {
		return errorFor(ctx, err)
	}
	return http.StatusOK, chatResponse{Response: out.Response, Status: "success"}
}

func (h *Handler) handleHealth() (int, any) {
	return http.StatusOK, healthResponse{Status: "healthy", Service: "chatbot-api"}
}

func errorFor(ctx context.Context, err error) (int, any) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorMissingInput {
		return http.StatusBadRequest, errorResponse{Error: msgMessageRequired}
	}
	slog.ErrorContext(ctx, "error in chat endpoint", "err", err, "correlation_id", correlationID(ctx))
	return http.StatusInternalServerError, errorResponse{Error: msgProcessing, Details: err.Error()}
}

type correlationKey struct{}

func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
