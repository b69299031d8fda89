package consumers

import (
	"time"

	"github.com/Timtam/hitster-sub000/internal/events"
	"github.com/Timtam/hitster-sub000/internal/game"
	"github.com/Timtam/hitster-sub000/internal/i18n"
)

// SpeechQueue feeds the TTS output. Same queueing discipline as the
// notification log but separately instantiated, and limited to the events
// worth speaking aloud, with shorter phrasing.
type SpeechQueue struct {
	ann  *Announcer
	loc  *i18n.Localizer
	bus  *events.Bus
	subs []events.Subscription
}

// NewSpeechQueue subscribes the speech queue to the session bus.
func NewSpeechQueue(bus *events.Bus, loc *i18n.Localizer, interval time.Duration, out Output) *SpeechQueue {
	s := &SpeechQueue{
		ann: NewAnnouncer(interval, out),
		loc: loc,
		bus: bus,
	}
	for _, name := range []game.EventType{
		game.EventJoinedGame,
		game.EventLeftGame,
		game.EventHitRevealed,
	} {
		s.subs = append(s.subs, bus.Subscribe(string(name), s.handle))
	}
	return s
}

// Teardown unsubscribes from the bus and stops the queue ticker.
func (s *SpeechQueue) Teardown() {
	for _, sub := range s.subs {
		s.bus.Unsubscribe(sub)
	}
	s.ann.Teardown()
}

func (s *SpeechQueue) handle(ev game.Event) {
	switch ev.Type {
	case game.EventJoinedGame:
		s.ann.Announce(s.loc.T("speech.joined", playerName(ev.Player)), false)
	case game.EventLeftGame:
		if ev.You {
			s.ann.Announce(s.loc.T("speech.removed"), true)
			return
		}
		s.ann.Announce(s.loc.T("speech.left", playerName(ev.Player)), false)
	case game.EventHitRevealed:
		if ev.Hit == nil {
			return
		}
		s.ann.Announce(s.loc.T("speech.hit_revealed", ev.Hit.Title, ev.Hit.Artist, ev.Hit.Year), false)
	}
}
