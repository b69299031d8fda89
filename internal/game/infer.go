package game

import (
	"github.com/Timtam/hitster-sub000/internal/models"
	"github.com/Timtam/hitster-sub000/internal/protocol"
)

// inferStateChange diffs the previous state against an incoming change_state
// delta and synthesizes the transition events the wire does not name.
// Scored and GameEnded are handled after the merge because their payloads
// snapshot the resulting state.
func (r *Reconciler) inferStateChange(prev *models.Game, d *protocol.Delta) []Event {
	var events []Event

	// Leaving the lobby for the first guessing phase is the game start.
	if prev.State == models.GameStateOpen && *d.State == models.GameStateGuessing {
		events = append(events, Event{Type: EventGameStarted})
	}

	// A settlement just finished. The wire carries no "token granted"
	// message; the only way to see it is the turn player's token count
	// changing across the Confirming -> Guessing transition.
	if prev.State == models.GameStateConfirming && *d.State == models.GameStateGuessing {
		if p := tokenRecipient(prev, d.Players); p != nil {
			events = append(events, Event{Type: EventTokenReceived, Player: p})
		}
	}

	return events
}

// tokenRecipient returns a copy of the incoming turn player if their token
// count differs from the previous snapshot, nil otherwise.
func tokenRecipient(prev *models.Game, incoming []models.Player) *models.Player {
	for i := range incoming {
		if !incoming[i].TurnPlayer {
			continue
		}
		before := prev.PlayerByID(incoming[i].ID)
		if before != nil && before.Tokens != incoming[i].Tokens {
			c := incoming[i].Clone()
			return &c
		}
		return nil
	}
	return nil
}
