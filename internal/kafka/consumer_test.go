package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeReader serves a fixed batch, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumer_CommitsOnlySuccessfulMessages(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeReader{pending: []kafka.Message{
		{Key: []byte("menu-1"), Offset: 1, Value: []byte("ok")},
		{Key: []byte("menu-2"), Offset: 2, Value: []byte("fail")},
		{Key: []byte("menu-1"), Offset: 3, Value: []byte("ok")},
	}}
	c := newConsumer(r, 3)

	var mu sync.Mutex
	handled := 0
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		handled++
		mu.Unlock()
		if string(m.Value) == "fail" {
			return errors.New("boom")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return r.commits() == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	assert.Equal(t, 3, handled)
	mu.Unlock()
	assert.True(t, r.closed)
	for _, m := range r.committed {
		assert.Equal(t, "ok", string(m.Value))
	}
}

func TestConsumer_SameKeyKeepsOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var pending []kafka.Message
	for i := 0; i < 50; i++ {
		pending = append(pending, kafka.Message{Key: []byte("menu-5"), Offset: int64(i)})
	}
	r := &fakeReader{pending: pending}
	c := newConsumer(r, 4)

	var mu sync.Mutex
	var seen []int64
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		seen = append(seen, m.Offset)
		mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	require.Eventually(t, func() bool { return r.commits() == 50 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	for i, off := range seen {
		assert.Equal(t, int64(i), off)
	}
}
