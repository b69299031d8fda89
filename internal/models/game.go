package models

// GameState describes which phase of a round a game is currently in.
type GameState string

// Game phases. A round walks Open -> Guessing -> (Intercepting) -> Confirming
// and back; the server never jumps Open -> Confirming directly.
const (
	GameStateOpen         GameState = "Open"
	GameStateGuessing     GameState = "Guessing"
	GameStateIntercepting GameState = "Intercepting"
	GameStateConfirming   GameState = "Confirming"
)

// GameMode describes who can see and join a game.
type GameMode string

const (
	GameModePublic  GameMode = "Public"
	GameModePrivate GameMode = "Private"
	// GameModeLocal is a pass-the-device game where every player shares one
	// client. Consumers treat every player as "you" in this mode.
	GameModeLocal GameMode = "Local"
)

// GameSettings holds the adjustable parameters of a game.
type GameSettings struct {
	Goal        int      `json:"goal"`         // Hits needed to win.
	StartTokens int      `json:"start_tokens"` // Tokens each player begins with.
	HitDuration int      `json:"hit_duration"` // Playback length per hit, in seconds.
	Packs       []string `json:"packs"`        // Active hit pack identifiers.
}

// Game is the authoritative local copy of one game session. It is owned by
// the session container and mutated only through the reconciliation engine;
// everything handed to consumers is a deep copy.
type Game struct {
	ID         string       `json:"id"`
	Players    []Player     `json:"players"`
	State      GameState    `json:"state"`
	Hit        *Hit         `json:"hit,omitempty"`         // Revealed hit, nil while hidden.
	LastScored *Player      `json:"last_scored,omitempty"` // Player who scored most recently, if any.
	Mode       GameMode     `json:"mode"`
	Settings   GameSettings `json:"settings"`
}

// Clone returns a deep copy of the game. Event payload snapshots are built
// from clones so that downstream mutation cannot corrupt the authoritative
// state.
func (g Game) Clone() Game {
	out := g
	if g.Players != nil {
		out.Players = make([]Player, len(g.Players))
		for i, p := range g.Players {
			out.Players[i] = p.Clone()
		}
	}
	if g.Hit != nil {
		h := *g.Hit
		out.Hit = &h
	}
	if g.LastScored != nil {
		p := g.LastScored.Clone()
		out.LastScored = &p
	}
	if g.Settings.Packs != nil {
		out.Settings.Packs = append([]string(nil), g.Settings.Packs...)
	}
	return out
}

// PlayerByID returns a pointer into the game's player list, or nil if the id
// is unknown.
func (g *Game) PlayerByID(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// TurnPlayer returns the player whose timeline the current round is played
// on, or nil while the game is open. At most one player carries the flag.
func (g *Game) TurnPlayer() *Player {
	for i := range g.Players {
		if g.Players[i].TurnPlayer {
			return &g.Players[i]
		}
	}
	return nil
}
