package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"corporate-agent/internal/domain"
	"corporate-agent/internal/integrations/moonshot"
	"corporate-agent/internal/metrics"
)

const (
	sourceAPI      = "api"
	sourceFallback = "fallback"
)

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ReplyService turns one inbound text into one reply. It never fails: any
// problem with the completion API yields the Fallback reply instead.
type ReplyService struct {
	llm   LLMClient
	model string
}

func NewReplyService(llm LLMClient, model string) (*ReplyService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = moonshot.DefaultModel
	}
	return &ReplyService{llm: llm, model: model}, nil
}

func (s *ReplyService) Reply(ctx context.Context, text, senderName string) string {
	start := time.Now()
	reply, err := s.llm.Chat(ctx, s.model, buildPromptMessages(text))
	if err != nil {
		logCompletionFailure(err)
		metrics.RepliesTotal.WithLabelValues(sourceFallback).Inc()
		return Fallback(text, senderName)
	}
	metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	metrics.RepliesTotal.WithLabelValues(sourceAPI).Inc()
	return reply
}

func logCompletionFailure(err error) {
	if errors.Is(err, moonshot.ErrMissingAPIKey) {
		slog.Info("completion API key not configured, using fallback reply")
		return
	}
	if status, ok := upstreamStatusCode(err); ok {
		slog.Warn("completion API returned error status, using fallback reply", "status", status, "err", err)
		return
	}
	slog.Warn("completion API call failed, using fallback reply", "err", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
