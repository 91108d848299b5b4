package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"corporate-agent/internal/domain"
	"corporate-agent/internal/metrics"
)

const defaultWriteTimeout = 30 * time.Second

type ConversationAppender interface {
	AppendConversation(ctx context.Context, rec domain.ConversationRecord) error
}

// Recorder issues conversation writes off the caller's goroutine and tracks
// them until they finish. Write failures are logged, never returned. Go and
// Wait may be called concurrently, including a Go racing a shutdown Wait.
type Recorder struct {
	store        ConversationAppender
	writeTimeout time.Duration

	mu      sync.Mutex
	pending int
	idle    chan struct{} // closed when pending drops to zero
}

func NewRecorder(store ConversationAppender, writeTimeout time.Duration) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("usecase: conversation store must not be nil")
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Recorder{store: store, writeTimeout: writeTimeout}, nil
}

// Go starts the write for rec. The write outlives cancellation of ctx but
// keeps its values.
func (r *Recorder) Go(ctx context.Context, rec domain.ConversationRecord) {
	writeCtx := context.WithoutCancel(ctx)
	r.begin()
	go func() {
		defer r.done()
		ctx, cancel := context.WithTimeout(writeCtx, r.writeTimeout)
		defer cancel()

		if err := r.store.AppendConversation(ctx, rec); err != nil {
			metrics.ConversationWritesTotal.WithLabelValues("error").Inc()
			slog.Error("failed to store conversation", "chat_id", rec.ChatID, "err", err)
			return
		}
		metrics.ConversationWritesTotal.WithLabelValues("ok").Inc()
	}()
}

func (r *Recorder) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == 0 {
		r.idle = make(chan struct{})
	}
	r.pending++
}

func (r *Recorder) done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending--
	if r.pending == 0 {
		close(r.idle)
	}
}

// Wait blocks until no write started by Go is in flight or ctx is done.
// Writes started while Wait is blocked are waited for too.
func (r *Recorder) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.pending == 0 {
			r.mu.Unlock()
			return nil
		}
		idle := r.idle
		r.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
