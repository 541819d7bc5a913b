package render

import "sync"

// Pool recycles contexts across renders. Get hands out a reset context and
// Put resets before returning it to the free list, so a context never leaks
// variables between documents.
type Pool struct {
	mu   sync.Mutex
	free []*Context
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns a context from the free list, or a fresh one when the pool is
// empty.
func (p *Pool) Get() *Context {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.free)
	if n == 0 {
		return NewContext()
	}
	c := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	return c
}

// Put resets c and returns it to the pool. Nil contexts are ignored. The
// caller must not use c afterwards.
func (p *Pool) Put(c *Context) {
	if c == nil {
		return
	}
	c.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, c)
}
