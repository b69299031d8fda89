package game

import "github.com/Timtam/hitster-sub000/internal/models"

// EventType names a synthesized domain event published on the session bus.
type EventType string

// Constants defining the domain events derived from incoming deltas.
const (
	EventGameStarted   EventType = "game_started"   // Game left the open phase; first round begins.
	EventGameEnded     EventType = "game_ended"     // Round cycle ended; game returned to the open phase.
	EventTokenReceived EventType = "token_received" // The turn player gained a token between settlements.
	EventHitRevealed   EventType = "hit_revealed"   // The current hit's artist/title/year became public.
	EventGuessed       EventType = "guessed"        // A player committed (or passed on) a guess.
	EventSkippedHit    EventType = "skipped_hit"    // The turn player skipped the current hit.
	EventClaimedHit    EventType = "claimed_hit"    // A player claimed a hit card.
	EventJoinedGame    EventType = "joined_game"    // A player joined.
	EventLeftGame      EventType = "left_game"      // A player left, or the local player was removed.
	EventScored        EventType = "scored"         // A guess was settled; the game entered Confirming.
)

// Event is one synthesized domain event. Payload fields are deep copies
// taken at emission time; consumers may hold on to them freely. Immutable
// once published.
type Event struct {
	Type EventType

	// Player is the acting or affected player, depending on Type.
	Player *models.Player
	// Hit carries the revealed or skipped hit for EventHitRevealed and
	// EventSkippedHit.
	Hit *models.Hit
	// Winner carries the scoring player (EventScored) or the overall winner
	// (EventGameEnded); nil when there is none.
	Winner *models.Player
	// Players is the full post-settlement player list snapshot for
	// EventScored.
	Players []models.Player
	// Game is the resulting game snapshot for EventGameEnded.
	Game *models.Game
	// You marks an EventLeftGame that removed the local player; the delta
	// carried no player list and the session should navigate away.
	You bool
}
