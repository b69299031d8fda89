package consumers

import (
	"time"

	"github.com/Timtam/hitster-sub000/internal/events"
	"github.com/Timtam/hitster-sub000/internal/game"
	"github.com/Timtam/hitster-sub000/internal/i18n"
	"github.com/Timtam/hitster-sub000/internal/models"
)

// NotificationLog turns domain events into queued textual announcements. It
// owns its own Announcer instance and subscribes independently of the other
// consumers.
type NotificationLog struct {
	ann  *Announcer
	loc  *i18n.Localizer
	bus  *events.Bus
	subs []events.Subscription
}

// NewNotificationLog subscribes the log to the session bus.
func NewNotificationLog(bus *events.Bus, loc *i18n.Localizer, interval time.Duration, out Output) *NotificationLog {
	n := &NotificationLog{
		ann: NewAnnouncer(interval, out),
		loc: loc,
		bus: bus,
	}
	for _, name := range []game.EventType{
		game.EventJoinedGame,
		game.EventLeftGame,
		game.EventGameStarted,
		game.EventGameEnded,
		game.EventTokenReceived,
		game.EventScored,
		game.EventGuessed,
		game.EventSkippedHit,
		game.EventClaimedHit,
		game.EventHitRevealed,
	} {
		n.subs = append(n.subs, bus.Subscribe(string(name), n.handle))
	}
	return n
}

// Teardown unsubscribes from the bus and stops the queue ticker.
func (n *NotificationLog) Teardown() {
	for _, s := range n.subs {
		n.bus.Unsubscribe(s)
	}
	n.ann.Teardown()
}

func (n *NotificationLog) handle(ev game.Event) {
	switch ev.Type {
	case game.EventJoinedGame:
		n.ann.Announce(n.loc.T("notify.joined", playerName(ev.Player)), false)
	case game.EventLeftGame:
		if ev.You {
			// Being removed preempts whatever is still queued.
			n.ann.Announce(n.loc.T("notify.removed"), true)
			return
		}
		n.ann.Announce(n.loc.T("notify.left", playerName(ev.Player)), false)
	case game.EventGameStarted:
		n.ann.Announce(n.loc.T("notify.game_started"), false)
	case game.EventGameEnded:
		if ev.Winner != nil {
			n.ann.Announce(n.loc.T("notify.game_ended", ev.Winner.Name), true)
			return
		}
		n.ann.Announce(n.loc.T("notify.game_ended_draw"), true)
	case game.EventTokenReceived:
		n.ann.Announce(n.loc.T("notify.token_received", playerName(ev.Player)), false)
	case game.EventScored:
		if ev.Winner != nil {
			n.ann.Announce(n.loc.T("notify.scored", ev.Winner.Name), false)
			return
		}
		n.ann.Announce(n.loc.T("notify.scored_nobody"), false)
	case game.EventGuessed:
		if ev.Player != nil && ev.Player.Guess == nil {
			n.ann.Announce(n.loc.T("notify.guess_passed", playerName(ev.Player)), false)
			return
		}
		n.ann.Announce(n.loc.T("notify.guessed", playerName(ev.Player)), false)
	case game.EventSkippedHit:
		n.ann.Announce(n.loc.T("notify.skipped", playerName(ev.Player), hitTitle(ev.Hit), hitArtist(ev.Hit)), false)
	case game.EventClaimedHit:
		n.ann.Announce(n.loc.T("notify.claimed", playerName(ev.Player)), false)
	case game.EventHitRevealed:
		if ev.Hit == nil {
			return
		}
		n.ann.Announce(n.loc.T("notify.hit_revealed", ev.Hit.Title, ev.Hit.Artist, ev.Hit.Year), false)
	}
}

func playerName(p *models.Player) string {
	if p == nil {
		return "?"
	}
	return p.Name
}

func hitTitle(h *models.Hit) string {
	if h == nil {
		return "?"
	}
	return h.Title
}

func hitArtist(h *models.Hit) string {
	if h == nil {
		return "?"
	}
	return h.Artist
}
