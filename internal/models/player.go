package models

// PlayerState describes what a single player is currently doing.
type PlayerState string

const (
	PlayerStateWaiting      PlayerState = "Waiting"
	PlayerStateGuessing     PlayerState = "Guessing"
	PlayerStateIntercepting PlayerState = "Intercepting"
	PlayerStateConfirming   PlayerState = "Confirming"
)

// Player is one participant of a game.
type Player struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	State      PlayerState `json:"state"`
	Creator    bool        `json:"creator"`
	TurnPlayer bool        `json:"turn_player"`
	Tokens     int         `json:"tokens"`
	Hits       []Hit       `json:"hits"`  // Won cards on this player's timeline.
	Slots      []Slot      `json:"slots"` // Open year ranges the player may guess into.
	Guess      *Slot       `json:"guess,omitempty"`
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	out := p
	if p.Hits != nil {
		out.Hits = append([]Hit(nil), p.Hits...)
	}
	if p.Slots != nil {
		out.Slots = append([]Slot(nil), p.Slots...)
	}
	if p.Guess != nil {
		g := *p.Guess
		out.Guess = &g
	}
	return out
}

// ClonePlayers deep-copies a player list.
func ClonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	return out
}
