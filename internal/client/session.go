// Package client ties one game session together: it owns the authoritative
// Game value, feeds stream deltas through the reconciliation engine,
// publishes the synthesized events on the session bus and manages teardown
// of everything that holds a timer or connection.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Timtam/hitster-sub000/internal/audio"
	"github.com/Timtam/hitster-sub000/internal/events"
	"github.com/Timtam/hitster-sub000/internal/game"
	"github.com/Timtam/hitster-sub000/internal/models"
	"github.com/Timtam/hitster-sub000/internal/protocol"
	"github.com/Timtam/hitster-sub000/internal/transport"
)

// Options configures a session. Every callback is optional.
type Options struct {
	Log   logrus.FieldLogger
	Audio audio.Source

	// OnAudioURL receives the freshly resolved hit audio URL whenever a new
	// hit becomes playable (game start, skip, guessing-phase entry).
	OnAudioURL func(url string)
	// OnInterrupted is the user-visible "connection lost" callback. The
	// session does not reconnect by itself; the caller must refetch a
	// snapshot and build a new session.
	OnInterrupted func(err error)
	// OnRemoved fires when the server removed the local player from the
	// game; the UI should navigate away.
	OnRemoved func()
}

// Session is the state container of one joined game.
type Session struct {
	gameID string
	log    logrus.FieldLogger

	mu   sync.Mutex
	game models.Game

	rec    *game.Reconciler
	bus    *events.Bus
	stream *transport.Stream

	audioSrc      audio.Source
	onAudioURL    func(string)
	onInterrupted func(error)
	onRemoved     func()

	teardowns []func()
	torn      bool
}

// NewSession creates a session around an initial snapshot. Each session
// gets its own bus; nothing outlives Teardown.
func NewSession(initial models.Game, opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("game", initial.ID)
	return &Session{
		gameID:        initial.ID,
		log:           log,
		game:          initial.Clone(),
		rec:           game.NewReconciler(log),
		bus:           events.NewBus(log),
		audioSrc:      opts.Audio,
		onAudioURL:    opts.OnAudioURL,
		onInterrupted: opts.OnInterrupted,
		onRemoved:     opts.OnRemoved,
	}
}

// Bus exposes the session's event bus so the UI and the built-in consumers
// can subscribe.
func (s *Session) Bus() *events.Bus { return s.bus }

// Snapshot returns a read-only deep copy of the current game.
func (s *Session) Snapshot() models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Clone()
}

// Connect opens the push stream for this session's game.
func (s *Session) Connect(ctx context.Context, baseURL string) error {
	s.mu.Lock()
	if s.stream != nil {
		s.mu.Unlock()
		return fmt.Errorf("session %s already connected", s.gameID)
	}
	s.mu.Unlock()

	stream, err := transport.Open(ctx, baseURL, s.gameID, s.ApplyDelta, s.handleStreamClose, s.log)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()
	return nil
}

// ApplyDelta folds one delta into the game and publishes the resulting
// events. Deltas are handled strictly in call order; the transport invokes
// this from its single read loop.
func (s *Session) ApplyDelta(d protocol.Delta) {
	s.mu.Lock()
	prev := s.game
	next, evs := s.rec.Apply(s.game, d)
	s.game = next
	s.mu.Unlock()

	removed := false
	for _, ev := range evs {
		s.bus.Publish(string(ev.Type), ev)
		if ev.Type == game.EventLeftGame && ev.You {
			removed = true
		}
	}

	if needsAudioRefresh(prev.State, next.State, evs) {
		s.refreshAudio()
	}
	if removed && s.onRemoved != nil {
		s.onRemoved()
	}
}

// needsAudioRefresh decides whether a new playable hit is available:
// entering the guessing phase (covers game start) or skipping a hit.
func needsAudioRefresh(prev, next models.GameState, evs []game.Event) bool {
	if next == models.GameStateGuessing && prev != models.GameStateGuessing {
		return true
	}
	for _, ev := range evs {
		if ev.Type == game.EventSkippedHit {
			return true
		}
	}
	return false
}

func (s *Session) refreshAudio() {
	if s.audioSrc == nil || s.onAudioURL == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url, err := s.audioSrc.HitAudioURL(ctx, s.gameID)
	if err != nil {
		s.log.WithError(err).Warn("hit audio refresh failed")
		return
	}
	s.onAudioURL(url)
}

func (s *Session) handleStreamClose(err error) {
	if err == nil {
		return
	}
	s.log.WithError(err).Error("game stream lost")
	if s.onInterrupted != nil {
		s.onInterrupted(err)
	}
}

// OnTeardown registers a function to run during Teardown, typically a
// consumer's own teardown. Registered functions run in reverse order.
func (s *Session) OnTeardown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns = append(s.teardowns, fn)
}

// Teardown closes the stream and runs every registered teardown exactly
// once. Timer-owning consumers must be registered here so no ticker fires
// against a torn-down session.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return
	}
	s.torn = true
	stream := s.stream
	teardowns := s.teardowns
	s.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	for i := len(teardowns) - 1; i >= 0; i-- {
		teardowns[i]()
	}
}

// FetchSnapshot loads the full state of a game, used to build a session and
// again before any reconnect: a dropped stream has no replay, so resuming
// delta application without a fresh snapshot would silently diverge.
func FetchSnapshot(ctx context.Context, client *http.Client, baseURL, gameID string) (models.Game, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	url := fmt.Sprintf("%s/api/games/%s", strings.TrimSuffix(baseURL, "/"), gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Game{}, fmt.Errorf("build snapshot request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Game{}, fmt.Errorf("fetch game snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Game{}, fmt.Errorf("fetch game snapshot: unexpected status %d", resp.StatusCode)
	}

	var g models.Game
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return models.Game{}, fmt.Errorf("decode game snapshot: %w", err)
	}
	if g.ID == "" {
		g.ID = gameID
	}
	return g, nil
}
