package consumers

import (
	"github.com/Timtam/hitster-sub000/internal/events"
	"github.com/Timtam/hitster-sub000/internal/game"
	"github.com/Timtam/hitster-sub000/internal/models"
	"github.com/Timtam/hitster-sub000/internal/session"
)

// Cue names one sound effect.
type Cue string

const (
	CuePayToken     Cue = "pay_token"
	CueReceiveToken Cue = "receive_token"
	CueYouScore     Cue = "you_score"
	CueYouFail      Cue = "you_fail"
	CueClaim        Cue = "claim"
	CueYouWin       Cue = "you_win"
	CueYouLose      Cue = "you_lose"
	CueJoin         Cue = "join"
	CueLeave        Cue = "leave"
)

// PlayFunc plays one resolved cue at the given volume.
type PlayFunc func(cue Cue, volume float64)

// SoundPlayer is a stateless mapper from domain events to sound cues. Which
// cue plays depends on whether the event is about the local player, read
// from the session provider per event. A volume preference of zero
// suppresses mapping entirely; the audio resource is never even resolved.
type SoundPlayer struct {
	identity session.Provider
	volume   func() float64
	snapshot func() models.Game
	play     PlayFunc
	bus      *events.Bus
	subs     []events.Subscription
}

// NewSoundPlayer subscribes the player to the session bus. snapshot yields
// the current game (for the mode check); volume is the user preference,
// re-read per event.
func NewSoundPlayer(bus *events.Bus, identity session.Provider, snapshot func() models.Game, volume func() float64, play PlayFunc) *SoundPlayer {
	p := &SoundPlayer{
		identity: identity,
		volume:   volume,
		snapshot: snapshot,
		play:     play,
		bus:      bus,
	}
	for _, name := range []game.EventType{
		game.EventGuessed,
		game.EventScored,
		game.EventTokenReceived,
		game.EventClaimedHit,
		game.EventGameEnded,
		game.EventJoinedGame,
		game.EventLeftGame,
	} {
		p.subs = append(p.subs, bus.Subscribe(string(name), p.handle))
	}
	return p
}

// Teardown unsubscribes the player from the bus.
func (p *SoundPlayer) Teardown() {
	for _, s := range p.subs {
		p.bus.Unsubscribe(s)
	}
}

func (p *SoundPlayer) handle(ev game.Event) {
	vol := p.volume()
	if vol <= 0 {
		// Suppressed: do not even resolve the cue or touch the resource.
		return
	}
	mode := p.snapshot().Mode
	cue, ok := CueFor(ev, p.identity.Current().UserID, mode)
	if !ok {
		return
	}
	p.play(cue, vol)
}

// CueFor maps one event to at most one cue, relative to the local player.
func CueFor(ev game.Event, youID string, mode models.GameMode) (Cue, bool) {
	local := mode == models.GameModeLocal
	switch ev.Type {
	case game.EventGuessed:
		// A committed guess out of turn costs a token; passing makes no
		// sound.
		if ev.Player == nil || ev.Player.Guess == nil {
			return "", false
		}
		return CuePayToken, true
	case game.EventScored:
		if ev.Winner != nil && (local || ev.Winner.ID == youID) {
			return CueYouScore, true
		}
		if containsPlayer(ev.Players, youID) {
			return CueYouFail, true
		}
		return "", false
	case game.EventTokenReceived:
		if local || (ev.Player != nil && ev.Player.ID == youID) {
			return CueReceiveToken, true
		}
		return "", false
	case game.EventClaimedHit:
		if local || (ev.Player != nil && ev.Player.ID == youID) {
			return CueClaim, true
		}
		return "", false
	case game.EventGameEnded:
		if ev.Winner != nil && (ev.Winner.ID == youID || local) {
			return CueYouWin, true
		}
		if !local && ev.Game != nil && containsPlayer(ev.Game.Players, youID) {
			return CueYouLose, true
		}
		return "", false
	case game.EventJoinedGame:
		return CueJoin, true
	case game.EventLeftGame:
		return CueLeave, true
	}
	return "", false
}

func containsPlayer(players []models.Player, id string) bool {
	if id == "" {
		return false
	}
	for i := range players {
		if players[i].ID == id {
			return true
		}
	}
	return false
}
