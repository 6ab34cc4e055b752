package rabbitmq

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	id     int
	closed atomic.Bool
}

func (f *fakeChannel) IsClosed() bool { return f.closed.Load() }
func (f *fakeChannel) Close() error   { f.closed.Store(true); return nil }

func newFakePool(size int) (*channelPool[*fakeChannel], *atomic.Int32) {
	var opened atomic.Int32
	return newChannelPool(size, func() (*fakeChannel, error) {
		return &fakeChannel{id: int(opened.Add(1))}, nil
	}), &opened
}

func TestChannelPool_ReusesHealthyChannel(t *testing.T) {
	pool, opened := newFakePool(2)
	ctx := context.Background()

	var first, second *fakeChannel
	require.NoError(t, pool.with(ctx, func(ch *fakeChannel) error { first = ch; return nil }))
	require.NoError(t, pool.with(ctx, func(ch *fakeChannel) error { second = ch; return nil }))

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), opened.Load())
}

func TestChannelPool_DiscardsFailedChannel(t *testing.T) {
	pool, opened := newFakePool(2)
	ctx := context.Background()
	boom := errors.New("channel exception")

	var failed *fakeChannel
	err := pool.with(ctx, func(ch *fakeChannel) error { failed = ch; return boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, failed.IsClosed())

	var next *fakeChannel
	require.NoError(t, pool.with(ctx, func(ch *fakeChannel) error { next = ch; return nil }))
	assert.NotSame(t, failed, next)
	assert.Equal(t, int32(2), opened.Load())
}

func TestChannelPool_SkipsIdleChannelClosedByBroker(t *testing.T) {
	pool, _ := newFakePool(1)
	ctx := context.Background()

	var first *fakeChannel
	require.NoError(t, pool.with(ctx, func(ch *fakeChannel) error { first = ch; return nil }))
	first.closed.Store(true)

	require.NoError(t, pool.with(ctx, func(ch *fakeChannel) error {
		assert.NotSame(t, first, ch)
		return nil
	}))
}

func TestChannelPool_BoundsConcurrentUse(t *testing.T) {
	pool, _ := newFakePool(1)

	held, err := pool.acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	pool.release(held, false)
	ch, err := pool.acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, held, ch)
}

func TestChannelPool_OpenErrorFreesSlot(t *testing.T) {
	calls := 0
	pool := newChannelPool(1, func() (*fakeChannel, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection blocked")
		}
		return &fakeChannel{}, nil
	})

	_, err := pool.acquire(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = pool.acquire(ctx)
	require.NoError(t, err)
}

func TestChannelPool_Close(t *testing.T) {
	pool, _ := newFakePool(2)
	ctx := context.Background()

	var idle *fakeChannel
	require.NoError(t, pool.with(ctx, func(ch *fakeChannel) error { idle = ch; return nil }))

	pool.close()
	assert.True(t, idle.IsClosed())

	_, err := pool.acquire(ctx)
	require.ErrorIs(t, err, ErrPoolClosed)
}

func TestChannelPool_NestedAcquireWaitsForSlot(t *testing.T) {
	pool, _ := newFakePool(1)

	err := pool.with(context.Background(), func(outer *fakeChannel) error {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		return pool.with(ctx, func(*fakeChannel) error { return nil })
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The slot is free again once the outer call returns.
	require.NoError(t, pool.with(context.Background(), func(*fakeChannel) error { return nil }))
}
