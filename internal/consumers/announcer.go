// Package consumers holds the side-effect consumers that subscribe to the
// session bus: the notification log, the speech queue and the sound-effect
// player. None of them talk to each other or to the transport.
package consumers

import (
	"sync"
	"time"
)

// Politeness is the announcement urgency handed to the output sink, matching
// the two live-region modes of screen readers.
type Politeness string

const (
	PolitenessPolite    Politeness = "polite"
	PolitenessAssertive Politeness = "assertive"
)

// DefaultAnnounceInterval is the pace at which queued announcements are
// released to the output.
const DefaultAnnounceInterval = 150 * time.Millisecond

// Output receives one released announcement.
type Output func(text string, politeness Politeness)

// Announcer is the queueing state machine shared by the notification log
// and the speech queue: a FIFO of pending texts, popped one at a time by a
// fixed-interval ticker. Idle while the queue is empty, announcing
// otherwise.
type Announcer struct {
	mu         sync.Mutex
	queue      []string
	politeness Politeness
	announcing bool

	out    Output
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewAnnouncer starts the queue ticker. Intervals of zero or less fall back
// to DefaultAnnounceInterval.
func NewAnnouncer(interval time.Duration, out Output) *Announcer {
	if interval <= 0 {
		interval = DefaultAnnounceInterval
	}
	a := &Announcer{
		politeness: PolitenessPolite,
		out:        out,
		ticker:     time.NewTicker(interval),
		done:       make(chan struct{}),
	}
	go a.run()
	return a
}

// Announce enqueues a text. An interrupting announcement clears everything
// still pending and switches the queue to assertive mode; a regular one
// appends and switches back to polite.
func (a *Announcer) Announce(text string, interrupt bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if interrupt {
		a.queue = a.queue[:0]
		a.politeness = PolitenessAssertive
	} else {
		a.politeness = PolitenessPolite
	}
	a.queue = append(a.queue, text)
}

// Announcing reports whether the machine is currently between pops of a
// non-empty queue.
func (a *Announcer) Announcing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.announcing
}

// Pending returns the number of queued, not yet released announcements.
func (a *Announcer) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Teardown stops the ticker. Queued announcements are discarded; the ticker
// must never fire against a torn-down session. Safe to call repeatedly.
func (a *Announcer) Teardown() {
	a.once.Do(func() {
		a.ticker.Stop()
		close(a.done)
	})
}

func (a *Announcer) run() {
	for {
		select {
		case <-a.done:
			return
		case <-a.ticker.C:
			a.tick()
		}
	}
}

// tick releases at most one queued announcement to the output.
func (a *Announcer) tick() {
	a.mu.Lock()
	if len(a.queue) == 0 {
		a.announcing = false
		a.mu.Unlock()
		return
	}
	text := a.queue[0]
	a.queue = a.queue[1:]
	a.announcing = true
	pol := a.politeness
	a.mu.Unlock()

	a.out(text, pol)
}
