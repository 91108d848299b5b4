package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"corporate-agent/internal/domain"
	"corporate-agent/internal/metrics"
)

type Replier interface {
	Reply(ctx context.Context, text, senderName string) string
}

type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// RelayService handles one inbound platform message end to end: reply,
// send, record.
type RelayService struct {
	replies  Replier
	notifier Notifier
	recorder *Recorder
	now      func() time.Time
}

func NewRelayService(replies Replier, notifier Notifier, recorder *Recorder) (*RelayService, error) {
	if replies == nil {
		return nil, errors.New("usecase: replier must not be nil")
	}
	if notifier == nil {
		return nil, errors.New("usecase: notifier must not be nil")
	}
	if recorder == nil {
		return nil, errors.New("usecase: recorder must not be nil")
	}
	return &RelayService{
		replies:  replies,
		notifier: notifier,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

// Handle replies to msg on its originating chat and submits the exchange for
// persistence. Only a failure to reach the platform is returned; a rejected
// send is logged and the exchange is still recorded.
func (s *RelayService) Handle(ctx context.Context, msg domain.IncomingMessage) error {
	slog.Info("incoming message", "chat_id", msg.ChatID, "from", msg.SenderName, "text_len", len(msg.Text))

	reply := s.replies.Reply(ctx, msg.Text, msg.SenderName)

	if err := s.notifier.SendMessage(ctx, msg.ChatID, reply); err != nil {
		metrics.TelegramSendsTotal.WithLabelValues("error").Inc()
		if _, ok := upstreamStatusCode(err); !ok {
			return newError(ErrorUpstream, "telegram_send_error", err)
		}
		slog.Warn("telegram rejected reply", "chat_id", msg.ChatID, "err", err)
	} else {
		metrics.TelegramSendsTotal.WithLabelValues("ok").Inc()
	}

	s.recorder.Go(ctx, domain.ConversationRecord{
		ChatID:    strconv.FormatInt(msg.ChatID, 10),
		Message:   msg.Text,
		Response:  reply,
		Timestamp: s.now().UnixMilli(),
	})
	return nil
}

// Flush waits for writes submitted by Handle.
func (s *RelayService) Flush(ctx context.Context) error {
	return s.recorder.Wait(ctx)
}
