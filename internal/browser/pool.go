package browser

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Acquire after the pool is closed.
var ErrPoolClosed = errors.New("browser pool is closed")

// PageFactory creates a new Page. The Pool calls it once per acquired
// slot; the default factory opens a headless Chrome tab.
type PageFactory func(ctx context.Context) (Page, error)

// Pool bounds the number of concurrently open browser tabs.
//
// Design decision: We use a buffered channel as a semaphore rather than
// keeping idle tabs alive because:
//  1. A fresh tab per audit avoids state leaking between sites
//  2. Chrome's own process pool already amortizes tab startup
//  3. Slot accounting stays trivially correct under cancellation
type Pool struct {
	// sem holds one token per available slot.
	sem chan struct{}

	// factory creates pages for acquired slots.
	factory PageFactory

	// mu guards closed.
	mu     sync.Mutex
	closed bool
}

// NewPool creates a Pool with the given number of slots, handing out
// pages from factory. Size must be at least one. Production code passes
// a Chrome factory; tests pass a fake.
func NewPool(size int, factory PageFactory) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		sem:     make(chan struct{}, size),
		factory: factory,
	}
	for i := 0; i < size; i++ {
		p.sem <- struct{}{}
	}
	return p
}

// Acquire blocks until a slot is free, then creates a page in it.
// The caller must call Release with the returned page when done.
func (p *Pool) Acquire(ctx context.Context) (Page, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.sem:
	}

	page, err := p.factory(ctx)
	if err != nil {
		p.sem <- struct{}{}
		return nil, err
	}
	return page, nil
}

// Release closes the page and frees its slot.
func (p *Pool) Release(page Page) {
	if page != nil {
		_ = page.Close()
	}
	p.sem <- struct{}{}
}

// Close marks the pool closed. In-flight pages finish normally; new
// Acquire calls fail with ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
