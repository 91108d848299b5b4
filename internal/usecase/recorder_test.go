package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"corporate-agent/internal/domain"
)

type mockStore struct {
	mu      sync.Mutex
	records []domain.ConversationRecord
	err     error
	block   chan struct{}
	ctxErrs []error
}

func (m *mockStore) AppendConversation(ctx context.Context, rec domain.ConversationRecord) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return m.err
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestNewRecorder_NilStore(t *testing.T) {
	_, err := NewRecorder(nil, 0)
	require.ErrorContains(t, err, "must not be nil")
}

func TestRecorder_WaitBlocksUntilWritesFinish(t *testing.T) {
	store := &mockStore{block: make(chan struct{})}
	r, err := NewRecorder(store, time.Second)
	require.NoError(t, err)

	r.Go(context.Background(), domain.ConversationRecord{ChatID: "1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
	require.Zero(t, store.count())

	close(store.block)
	require.NoError(t, r.Wait(context.Background()))
	require.Equal(t, 1, store.count())
}

func TestRecorder_SurvivesCallerCancellation(t *testing.T) {
	store := &mockStore{}
	r, err := NewRecorder(store, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Go(ctx, domain.ConversationRecord{ChatID: "1"})

	require.NoError(t, r.Wait(context.Background()))
	require.Equal(t, 1, store.count())
	require.NoError(t, store.ctxErrs[0])
}

func TestRecorder_WriteErrorIsSwallowed(t *testing.T) {
	store := &mockStore{err: errors.New("disk full")}
	r, err := NewRecorder(store, time.Second)
	require.NoError(t, err)

	r.Go(context.Background(), domain.ConversationRecord{ChatID: "1"})
	require.NoError(t, r.Wait(context.Background()))
	require.Equal(t, 1, store.count())
}

func TestRecorder_GoDuringWait(t *testing.T) {
	store := &mockStore{}
	r, err := NewRecorder(store, time.Second)
	require.NoError(t, err)

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			r.Go(context.Background(), domain.ConversationRecord{ChatID: "1"})
			_ = r.Wait(context.Background())
		}()
	}
	wg.Wait()

	require.NoError(t, r.Wait(context.Background()))
	require.Equal(t, writers, store.count())
}

func TestRecorder_WaitWithNothingPending(t *testing.T) {
	r, err := NewRecorder(&mockStore{}, time.Second)
	require.NoError(t, err)
	require.NoError(t, r.Wait(context.Background()))
}
