// Package game holds the reconciliation engine: it owns the merge rules that
// fold push-stream deltas into the local game state and synthesizes the
// domain events the raw deltas do not name.
package game

import (
	"github.com/sirupsen/logrus"

	"github.com/Timtam/hitster-sub000/internal/models"
	"github.com/Timtam/hitster-sub000/internal/protocol"
)

// Reconciler applies deltas to a game. Apply is a pure function of its
// inputs; the only side channel is the logger, used for dropped references.
type Reconciler struct {
	log logrus.FieldLogger
}

// NewReconciler creates a reconciler. A nil logger falls back to the
// standard logrus logger.
func NewReconciler(log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{log: log}
}

// Apply merges one delta into the given game and returns the next state
// together with the synthesized domain events, in emission order. The input
// game is never mutated. Identical (game, delta) pairs always produce
// identical results.
//
// A delta referencing an unknown player id is a reference mismatch: the rest
// of the delta is applied, only the unresolvable reference is dropped and
// logged. Apply never panics on a parsed delta.
func (r *Reconciler) Apply(g models.Game, d protocol.Delta) (models.Game, []Event) {
	next := g.Clone()
	var events []Event

	// State-diff inference runs against the previous-vs-incoming pair,
	// before the merge touches anything.
	if d.Type == protocol.DeltaChangeState {
		events = append(events, r.inferStateChange(&g, &d)...)
	}

	// Any delta carrying a revealed hit announces it.
	if d.Hit != nil {
		events = append(events, Event{
			Type:   EventHitRevealed,
			Hit:    cloneHit(d.Hit),
			Player: revealLastScored(&g, &d),
		})
	}

	switch d.Type {
	case protocol.DeltaChangeState:
		r.applyChangeState(&next, &d)
	case protocol.DeltaJoin:
		next.Players = append(next.Players, models.ClonePlayers(d.Players)...)
		events = append(events, Event{Type: EventJoinedGame, Player: cloneFirstPlayer(&d)})
	case protocol.DeltaLeave:
		events = append(events, r.applyLeave(&next, &d))
	case protocol.DeltaGuess:
		r.replacePlayers(&next, &d)
		events = append(events, Event{Type: EventGuessed, Player: cloneFirstPlayer(&d)})
	case protocol.DeltaSkip:
		r.replacePlayers(&next, &d)
		events = append(events, Event{Type: EventSkippedHit, Player: cloneFirstPlayer(&d), Hit: cloneHit(d.Hit)})
	case protocol.DeltaClaim:
		r.replacePlayers(&next, &d)
		events = append(events, Event{Type: EventClaimedHit, Player: cloneFirstPlayer(&d)})
	case protocol.DeltaUpdate:
		applyUpdate(&next, &d)
	}

	// Post-merge events need the resulting state for their snapshots.
	if d.Type == protocol.DeltaChangeState {
		switch *d.State {
		case models.GameStateConfirming:
			events = append(events, Event{
				Type:    EventScored,
				Winner:  clonePlayerPtr(next.LastScored),
				Players: models.ClonePlayers(next.Players),
			})
		case models.GameStateOpen:
			snapshot := next.Clone()
			events = append(events, Event{
				Type:   EventGameEnded,
				Winner: clonePlayerPtr(d.Winner),
				Game:   &snapshot,
			})
		}
	}

	return next, events
}

// applyChangeState sets the new phase and replaces whichever of players, hit
// and last_scored the delta carries. Absent fields stay untouched.
func (r *Reconciler) applyChangeState(next *models.Game, d *protocol.Delta) {
	next.State = *d.State
	if d.Players != nil {
		next.Players = models.ClonePlayers(d.Players)
	}
	if d.Hit != nil {
		next.Hit = cloneHit(d.Hit)
	}
	if d.LastScored != nil {
		next.LastScored = clonePlayerPtr(d.LastScored)
	}
}

// applyLeave removes the listed players. A leave without a player list means
// the local player was removed from the game; the state is left alone and
// the emitted event tells the session to navigate away.
func (r *Reconciler) applyLeave(next *models.Game, d *protocol.Delta) Event {
	if len(d.Players) == 0 {
		return Event{Type: EventLeftGame, You: true}
	}
	for i := range d.Players {
		idx := playerIndex(next.Players, d.Players[i].ID)
		if idx < 0 {
			r.log.WithFields(logrus.Fields{
				"game":   next.ID,
				"delta":  d.Type,
				"player": d.Players[i].ID,
			}).Warn("reference mismatch: leave for unknown player dropped")
			continue
		}
		next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	}
	return Event{Type: EventLeftGame, Player: cloneFirstPlayer(d)}
}

// replacePlayers swaps the matching player records in place, preserving list
// order. Unknown ids are dropped and logged; everything else still applies.
func (r *Reconciler) replacePlayers(next *models.Game, d *protocol.Delta) {
	for i := range d.Players {
		idx := playerIndex(next.Players, d.Players[i].ID)
		if idx < 0 {
			r.log.WithFields(logrus.Fields{
				"game":   next.ID,
				"delta":  d.Type,
				"player": d.Players[i].ID,
			}).Warn("reference mismatch: update for unknown player dropped")
			continue
		}
		next.Players[idx] = d.Players[i].Clone()
	}
}

// applyUpdate merges only the settings fields the delta carries.
func applyUpdate(next *models.Game, d *protocol.Delta) {
	if d.Goal != nil {
		next.Settings.Goal = *d.Goal
	}
	if d.StartTokens != nil {
		next.Settings.StartTokens = *d.StartTokens
	}
	if d.HitDuration != nil {
		next.Settings.HitDuration = *d.HitDuration
	}
	if d.Packs != nil {
		next.Settings.Packs = append([]string(nil), d.Packs...)
	}
}

func playerIndex(players []models.Player, id string) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneHit(h *models.Hit) *models.Hit {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}

func clonePlayerPtr(p *models.Player) *models.Player {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}

func cloneFirstPlayer(d *protocol.Delta) *models.Player {
	if len(d.Players) == 0 {
		return nil
	}
	c := d.Players[0].Clone()
	return &c
}

// revealLastScored picks the most recent scorer to attach to a hit reveal:
// the delta's own last_scored when present, the known one otherwise.
func revealLastScored(g *models.Game, d *protocol.Delta) *models.Player {
	if d.LastScored != nil {
		return clonePlayerPtr(d.LastScored)
	}
	return clonePlayerPtr(g.LastScored)
}
