package rabbitmq

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when acquiring from a closed pool.
var ErrPoolClosed = errors.New("channel pool closed")

type poolable interface {
	IsClosed() bool
	Close() error
}

// channelPool hands out at most size channels at a time. Channels are opened
// lazily, returned to the idle set after a clean use and discarded after an
// error, so a channel closed by the broker is never handed out again.
type channelPool[C poolable] struct {
	open  func() (C, error)
	slots chan struct{}
	idle  chan C

	mu     sync.Mutex
	closed bool
}

func newChannelPool[C poolable](size int, open func() (C, error)) *channelPool[C] {
	return &channelPool[C]{
		open:  open,
		slots: make(chan struct{}, size),
		idle:  make(chan C, size),
	}
}

func (p *channelPool[C]) acquire(ctx context.Context) (C, error) {
	var zero C

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		<-p.slots
		return zero, ErrPoolClosed
	}

	for {
		select {
		case ch := <-p.idle:
			if ch.IsClosed() {
				continue
			}
			return ch, nil
		default:
		}
		ch, err := p.open()
		if err != nil {
			<-p.slots
			return zero, err
		}
		return ch, nil
	}
}

func (p *channelPool[C]) release(ch C, failed bool) {
	defer func() { <-p.slots }()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if failed || closed || ch.IsClosed() {
		_ = ch.Close()
		return
	}
	select {
	case p.idle <- ch:
	default:
		_ = ch.Close()
	}
}

// with runs fn on a pooled channel and releases it afterwards.
func (p *channelPool[C]) with(ctx context.Context, fn func(C) error) error {
	ch, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	err = fn(ch)
	p.release(ch, err != nil)
	return err
}

func (p *channelPool[C]) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for {
		select {
		case ch := <-p.idle:
			_ = ch.Close()
		default:
			return
		}
	}
}
