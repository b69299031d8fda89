package audio

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrPoolExhausted is returned when every handle of the pool is in use.
var ErrPoolExhausted = errors.New("audio: handle pool exhausted")

// ErrPoolClosed is returned from Acquire after Teardown.
var ErrPoolClosed = errors.New("audio: handle pool closed")

// Handle is one acquired playback slot. The holder releases it when the
// associated sound or hit finishes.
type Handle struct {
	ID  uuid.UUID
	URL string
}

// Pool bounds the number of simultaneously held playback handles. Handles
// are tied to the session lifetime, not to individual render/event cycles.
type Pool struct {
	mu     sync.Mutex
	limit  int
	active map[uuid.UUID]*Handle
	closed bool
}

// NewPool creates a pool with the given handle limit; limits below one are
// raised to one.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{
		limit:  limit,
		active: make(map[uuid.UUID]*Handle),
	}
}

// Acquire reserves a handle for the given resource URL.
func (p *Pool) Acquire(url string) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if len(p.active) >= p.limit {
		return nil, ErrPoolExhausted
	}
	h := &Handle{ID: uuid.New(), URL: url}
	p.active[h.ID] = h
	return h, nil
}

// Release returns a handle to the pool. Releasing an unknown or already
// released handle is a no-op.
func (p *Pool) Release(h *Handle) {
	if h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, h.ID)
}

// Active reports how many handles are currently held.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Teardown releases every handle and refuses further acquisition. Called
// when the owning session is torn down.
func (p *Pool) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.active = make(map[uuid.UUID]*Handle)
}
