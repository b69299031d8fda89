// Package protocol decodes the named wire messages of the game's push stream
// into typed deltas. It validates shape only; semantics live in the
// reconciliation engine.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Timtam/hitster-sub000/internal/models"
)

// DeltaType names a wire message on the push stream.
type DeltaType string

const (
	DeltaChangeState DeltaType = "change_state" // Game phase changed; may replace players/hit/last_scored.
	DeltaJoin        DeltaType = "join"         // One player joined.
	DeltaLeave       DeltaType = "leave"        // One player left; empty player list means the local player was removed.
	DeltaGuess       DeltaType = "guess"        // A player committed or cleared a guess.
	DeltaSkip        DeltaType = "skip"         // The turn player skipped the current hit.
	DeltaClaim       DeltaType = "claim"        // A player claimed a hit card.
	DeltaUpdate      DeltaType = "update"       // Game settings changed.
)

// Delta is a partial update to one game. Every field is optional on the
// wire; nil/absent fields must never overwrite existing state.
type Delta struct {
	Type DeltaType `json:"-"`

	State      *models.GameState `json:"state,omitempty"`
	Players    []models.Player   `json:"players,omitempty"`
	Hit        *models.Hit       `json:"hit,omitempty"`
	LastScored *models.Player    `json:"last_scored,omitempty"`
	Winner     *models.Player    `json:"winner,omitempty"` // Carried by round-end change_state messages.

	// Settings subset carried by update deltas. Pointers so that "absent"
	// and "zero" stay distinguishable.
	Goal        *int     `json:"goal,omitempty"`
	StartTokens *int     `json:"start_tokens,omitempty"`
	HitDuration *int     `json:"hit_duration,omitempty"`
	Packs       []string `json:"packs,omitempty"`
}

// MalformedDeltaError reports a wire message that could not be decoded into
// a valid delta. The message is dropped and the stream continues.
type MalformedDeltaError struct {
	Type   DeltaType
	Reason string
	Err    error
}

func (e *MalformedDeltaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %q delta: %s: %v", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %q delta: %s", e.Type, e.Reason)
}

func (e *MalformedDeltaError) Unwrap() error { return e.Err }

var validStates = map[models.GameState]bool{
	models.GameStateOpen:         true,
	models.GameStateGuessing:     true,
	models.GameStateIntercepting: true,
	models.GameStateConfirming:   true,
}

// ParseDelta decodes the raw payload of a named wire message. Unknown JSON
// fields are ignored; a missing required field rejects the single message.
func ParseDelta(name string, payload []byte) (Delta, error) {
	typ := DeltaType(name)
	switch typ {
	case DeltaChangeState, DeltaJoin, DeltaLeave, DeltaGuess, DeltaSkip, DeltaClaim, DeltaUpdate:
	default:
		return Delta{}, &MalformedDeltaError{Type: typ, Reason: "unknown delta type"}
	}

	var d Delta
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &d); err != nil {
			return Delta{}, &MalformedDeltaError{Type: typ, Reason: "undecodable payload", Err: err}
		}
	}
	d.Type = typ

	if err := d.validate(); err != nil {
		return Delta{}, err
	}
	return d, nil
}

// validate enforces the per-type required fields.
func (d *Delta) validate() error {
	switch d.Type {
	case DeltaChangeState:
		if d.State == nil {
			return &MalformedDeltaError{Type: d.Type, Reason: "missing state"}
		}
		if !validStates[*d.State] {
			return &MalformedDeltaError{Type: d.Type, Reason: fmt.Sprintf("unknown state %q", *d.State)}
		}
	case DeltaJoin:
		if len(d.Players) == 0 {
			return &MalformedDeltaError{Type: d.Type, Reason: "missing player"}
		}
	case DeltaGuess, DeltaSkip, DeltaClaim:
		if len(d.Players) == 0 {
			return &MalformedDeltaError{Type: d.Type, Reason: "missing players"}
		}
	case DeltaLeave, DeltaUpdate:
		// leave without players means "you were removed"; update without
		// fields is a valid no-op.
	}
	for i := range d.Players {
		if d.Players[i].ID == "" {
			return &MalformedDeltaError{Type: d.Type, Reason: "player without id"}
		}
	}
	return nil
}
