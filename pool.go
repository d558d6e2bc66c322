package html2pptx

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one renderer is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// errPoolClosed is returned by Acquire after Close.
var errPoolClosed = errors.New("renderer pool closed")

// rendererPool hands out renderers, one browser each, to at most size
// concurrent slides. Renderers are created lazily on first acquire and
// every instance is closed with the pool at the end of the job.
type rendererPool struct {
	size      int
	factory   func() pageRenderer
	renderers []pageRenderer
	sem       chan pageRenderer
	mu        sync.Mutex
	created   int
	closed    bool
}

func newRendererPool(n int, factory func() pageRenderer) *rendererPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &rendererPool{
		size:      n,
		factory:   factory,
		renderers: make([]pageRenderer, 0, n),
		sem:       make(chan pageRenderer, n),
	}
}

// Acquire gets a renderer, creating one if the pool is not full.
// Blocks until one is released or ctx is done.
func (p *rendererPool) Acquire(ctx context.Context) (pageRenderer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errPoolClosed
	}

	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, errPoolClosed
		}
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errPoolClosed
	}
	if p.created < p.size {
		p.created++
		r := p.factory()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r, ok := <-p.sem:
		if !ok {
			return nil, errPoolClosed
		}
		return r, nil
	}
}

// Release returns a renderer to the pool.
// The lock is held while sending: the channel has room for every renderer,
// so the send never blocks.
func (p *rendererPool) Release(r pageRenderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close releases all browser resources. Safe to call more than once.
func (p *rendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *rendererPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the renderer pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return min(workers, MaxPoolSize)
	}

	// GOMAXPROCS is container-aware through automaxprocs in the CLI.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return max(MinPoolSize, min(n, MaxPoolSize))
}
