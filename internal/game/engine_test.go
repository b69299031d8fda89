package game

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Timtam/hitster-sub000/internal/models"
	"github.com/Timtam/hitster-sub000/internal/protocol"
)

func newTestReconciler() *Reconciler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewReconciler(log)
}

func statePtr(s models.GameState) *models.GameState { return &s }
func intPtr(i int) *int                             { return &i }

// openGame is the §8 starting point: one creator waiting in an open lobby.
func openGame() models.Game {
	return models.Game{
		ID:    "g1",
		State: models.GameStateOpen,
		Mode:  models.GameModePublic,
		Players: []models.Player{
			{ID: "a", Name: "A", State: models.PlayerStateWaiting, Creator: true},
		},
		Settings: models.GameSettings{Goal: 10, StartTokens: 2, HitDuration: 20},
	}
}

func eventsOfType(events []Event, typ EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestApplyIsPure(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	d, err := protocol.ParseDelta("change_state", []byte(`{
		"state": "Guessing",
		"players": [{"id": "a", "name": "A", "turn_player": true, "tokens": 2}]
	}`))
	require.NoError(t, err)

	next1, events1 := r.Apply(g, d)
	next2, events2 := r.Apply(g, d)

	assert.Equal(t, next1, next2, "identical input must yield identical state")
	assert.Equal(t, events1, events2, "identical input must yield identical events")

	// The input game must stay untouched.
	assert.Equal(t, models.GameStateOpen, g.State)
	assert.False(t, g.Players[0].TurnPlayer)
}

func TestEmptyUpdateIsNoop(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	d, err := protocol.ParseDelta("update", []byte(`{}`))
	require.NoError(t, err)

	next, events := r.Apply(g, d)
	assert.Equal(t, g, next)
	assert.Empty(t, events)
}

func TestUpdateMergesOnlyPresentFields(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.Settings.Packs = []string{"base"}
	d, err := protocol.ParseDelta("update", []byte(`{"goal": 15, "hit_duration": 30}`))
	require.NoError(t, err)

	next, events := r.Apply(g, d)
	assert.Equal(t, 15, next.Settings.Goal)
	assert.Equal(t, 30, next.Settings.HitDuration)
	assert.Equal(t, 2, next.Settings.StartTokens, "absent field must not overwrite")
	assert.Equal(t, []string{"base"}, next.Settings.Packs, "absent packs must not overwrite")
	assert.Empty(t, events)
}

func TestJoinThenLeaveRestoresPlayerSet(t *testing.T) {
	r := newTestReconciler()
	g := openGame()

	join := protocol.Delta{Type: protocol.DeltaJoin, Players: []models.Player{{ID: "b", Name: "B"}}}
	mid, events := r.Apply(g, join)
	require.Len(t, mid.Players, 2)
	joined := eventsOfType(events, EventJoinedGame)
	require.Len(t, joined, 1)
	assert.Equal(t, "b", joined[0].Player.ID)

	leave := protocol.Delta{Type: protocol.DeltaLeave, Players: []models.Player{{ID: "b", Name: "B"}}}
	final, events := r.Apply(mid, leave)
	left := eventsOfType(events, EventLeftGame)
	require.Len(t, left, 1)
	assert.False(t, left[0].You)

	ids := func(players []models.Player) map[string]bool {
		m := map[string]bool{}
		for _, p := range players {
			m[p.ID] = true
		}
		return m
	}
	assert.Equal(t, ids(g.Players), ids(final.Players))
}

func TestLeaveWithoutPlayersMeansRemoved(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	d := protocol.Delta{Type: protocol.DeltaLeave}

	next, events := r.Apply(g, d)
	assert.Equal(t, g.Players, next.Players, "removal of the local player mutates nothing")
	left := eventsOfType(events, EventLeftGame)
	require.Len(t, left, 1)
	assert.True(t, left[0].You)
	assert.Nil(t, left[0].Player)
}

func TestGameStartedOnOpenToGuessing(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	d := protocol.Delta{
		Type:  protocol.DeltaChangeState,
		State: statePtr(models.GameStateGuessing),
		Players: []models.Player{
			{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2, State: models.PlayerStateGuessing},
		},
	}

	next, events := r.Apply(g, d)
	assert.Equal(t, models.GameStateGuessing, next.State)
	require.Len(t, eventsOfType(events, EventGameStarted), 1)

	// Applying Guessing -> Guessing again must not restart the game.
	_, events = r.Apply(next, d)
	assert.Empty(t, eventsOfType(events, EventGameStarted))
}

func TestTokenReceivedOnConfirmingToGuessing(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateConfirming
	g.Players = []models.Player{
		{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2},
		{ID: "b", Name: "B", Tokens: 1},
	}
	d := protocol.Delta{
		Type:  protocol.DeltaChangeState,
		State: statePtr(models.GameStateGuessing),
		Players: []models.Player{
			{ID: "a", Name: "A", TurnPlayer: true, Tokens: 3},
			{ID: "b", Name: "B", Tokens: 1},
		},
	}

	next, events := r.Apply(g, d)
	received := eventsOfType(events, EventTokenReceived)
	require.Len(t, received, 1)
	assert.Equal(t, "a", received[0].Player.ID)
	assert.Equal(t, 3, received[0].Player.Tokens)
	assert.Equal(t, 3, next.Players[0].Tokens)

	// Same transition with unchanged tokens stays silent.
	d.Players[0].Tokens = 2
	_, events = r.Apply(g, d)
	assert.Empty(t, eventsOfType(events, EventTokenReceived))
}

func TestNoTokenEventWithoutConfirmingOrigin(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateIntercepting
	g.Players = []models.Player{{ID: "a", TurnPlayer: true, Tokens: 2}}
	d := protocol.Delta{
		Type:    protocol.DeltaChangeState,
		State:   statePtr(models.GameStateGuessing),
		Players: []models.Player{{ID: "a", TurnPlayer: true, Tokens: 3}},
	}

	_, events := r.Apply(g, d)
	assert.Empty(t, eventsOfType(events, EventTokenReceived))
}

func TestScoredOnConfirming(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateIntercepting
	g.Players = []models.Player{
		{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2},
		{ID: "b", Name: "B", Tokens: 1},
	}
	d := protocol.Delta{
		Type:       protocol.DeltaChangeState,
		State:      statePtr(models.GameStateConfirming),
		LastScored: &models.Player{ID: "b", Name: "B"},
		Players: []models.Player{
			{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2},
			{ID: "b", Name: "B", Tokens: 1, Hits: []models.Hit{{ID: "h1", Year: 1999}}},
		},
	}

	next, events := r.Apply(g, d)
	scored := eventsOfType(events, EventScored)
	require.Len(t, scored, 1)
	require.NotNil(t, scored[0].Winner)
	assert.Equal(t, "b", scored[0].Winner.ID)
	require.Len(t, scored[0].Players, 2)

	// The snapshot must be isolated from the authoritative state.
	scored[0].Players[1].Hits[0].Year = 1234
	assert.Equal(t, 1999, next.Players[1].Hits[0].Year)
}

func TestScoredKeepsKnownWinnerWhenDeltaOmitsIt(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateIntercepting
	g.LastScored = &models.Player{ID: "b", Name: "B"}
	g.Players = []models.Player{
		{ID: "a", Name: "A", TurnPlayer: true},
		{ID: "b", Name: "B"},
	}
	d := protocol.Delta{
		Type:  protocol.DeltaChangeState,
		State: statePtr(models.GameStateConfirming),
	}

	_, events := r.Apply(g, d)
	scored := eventsOfType(events, EventScored)
	require.Len(t, scored, 1)
	require.NotNil(t, scored[0].Winner)
	assert.Equal(t, "b", scored[0].Winner.ID)
}

func TestScoredWithoutWinner(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateGuessing
	g.Players = []models.Player{{ID: "a", TurnPlayer: true}}
	d := protocol.Delta{
		Type:    protocol.DeltaChangeState,
		State:   statePtr(models.GameStateConfirming),
		Players: []models.Player{{ID: "a", TurnPlayer: true}},
	}

	_, events := r.Apply(g, d)
	scored := eventsOfType(events, EventScored)
	require.Len(t, scored, 1)
	assert.Nil(t, scored[0].Winner)
}

func TestGameEndedOnOpen(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateConfirming
	g.Players = []models.Player{
		{ID: "a", Name: "A", TurnPlayer: true, Tokens: 1},
		{ID: "b", Name: "B", Tokens: 0},
	}
	d := protocol.Delta{
		Type:   protocol.DeltaChangeState,
		State:  statePtr(models.GameStateOpen),
		Winner: &models.Player{ID: "b", Name: "B"},
		Players: []models.Player{
			{ID: "a", Name: "A", State: models.PlayerStateWaiting},
			{ID: "b", Name: "B", State: models.PlayerStateWaiting},
		},
	}

	next, events := r.Apply(g, d)
	ended := eventsOfType(events, EventGameEnded)
	require.Len(t, ended, 1)
	require.NotNil(t, ended[0].Winner)
	assert.Equal(t, "b", ended[0].Winner.ID)
	require.NotNil(t, ended[0].Game)
	assert.Equal(t, models.GameStateOpen, ended[0].Game.State)

	// Snapshot isolation.
	ended[0].Game.Players[0].Name = "corrupted"
	assert.Equal(t, "A", next.Players[0].Name)
}

func TestHitRevealedOnAnyDeltaCarryingHit(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateGuessing
	g.LastScored = &models.Player{ID: "a", Name: "A"}
	g.Players = []models.Player{{ID: "a", Name: "A", TurnPlayer: true}}
	d := protocol.Delta{
		Type:    protocol.DeltaChangeState,
		State:   statePtr(models.GameStateConfirming),
		Hit:     &models.Hit{ID: "h7", Artist: "Artist", Title: "Title", Year: 2001},
		Players: []models.Player{{ID: "a", Name: "A", TurnPlayer: true}},
	}

	next, events := r.Apply(g, d)
	revealed := eventsOfType(events, EventHitRevealed)
	require.Len(t, revealed, 1)
	assert.Equal(t, "h7", revealed[0].Hit.ID)
	require.NotNil(t, revealed[0].Player, "reveal should carry the known last scorer")
	assert.Equal(t, "a", revealed[0].Player.ID)
	require.NotNil(t, next.Hit)
	assert.Equal(t, "h7", next.Hit.ID)
}

func TestGuessReplacesPlayerInPlace(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateGuessing
	g.Players = []models.Player{
		{ID: "a", Name: "A", TurnPlayer: true, State: models.PlayerStateGuessing},
		{ID: "b", Name: "B"},
	}
	guess := &models.Slot{ID: 3, FromYear: 1990, ToYear: 2000}
	d := protocol.Delta{
		Type: protocol.DeltaGuess,
		Players: []models.Player{
			{ID: "a", Name: "A", TurnPlayer: true, State: models.PlayerStateIntercepting, Guess: guess},
		},
	}

	next, events := r.Apply(g, d)
	require.Len(t, next.Players, 2)
	assert.Equal(t, "a", next.Players[0].ID, "list order must be preserved")
	require.NotNil(t, next.Players[0].Guess)
	assert.Equal(t, 3, next.Players[0].Guess.ID)

	guessed := eventsOfType(events, EventGuessed)
	require.Len(t, guessed, 1)
	assert.Equal(t, "a", guessed[0].Player.ID)
}

func TestGuessWithNullGuessStillEmitsGuessed(t *testing.T) {
	// §8 scenario: guess{players:[A(guess=null)]} yields one Guessed event
	// with a nil guess.
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateGuessing
	g.Players = []models.Player{{ID: "a", Name: "A", TurnPlayer: true, Guess: &models.Slot{ID: 1}}}
	d := protocol.Delta{
		Type:    protocol.DeltaGuess,
		Players: []models.Player{{ID: "a", Name: "A", TurnPlayer: true}},
	}

	next, events := r.Apply(g, d)
	assert.Nil(t, next.Players[0].Guess, "replacement record clears the guess")
	guessed := eventsOfType(events, EventGuessed)
	require.Len(t, guessed, 1)
	assert.Nil(t, guessed[0].Player.Guess)
}

func TestSkipReplacesPlayerAndEmitsSkippedHit(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateGuessing
	g.Players = []models.Player{{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2}}
	d := protocol.Delta{
		Type:    protocol.DeltaSkip,
		Players: []models.Player{{ID: "a", Name: "A", TurnPlayer: true, Tokens: -1}},
		Hit:     &models.Hit{ID: "h1", Artist: "X", Title: "Y", Year: 1970},
	}

	next, events := r.Apply(g, d)
	// Clamping is not the engine's job; the record is replaced verbatim.
	assert.Equal(t, -1, next.Players[0].Tokens)

	skipped := eventsOfType(events, EventSkippedHit)
	require.Len(t, skipped, 1)
	assert.Equal(t, "a", skipped[0].Player.ID)
	require.NotNil(t, skipped[0].Hit)
	assert.Equal(t, "h1", skipped[0].Hit.ID)
}

func TestClaimReplacesPlayerAndEmitsClaimedHit(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateConfirming
	g.Players = []models.Player{{ID: "a", Name: "A", TurnPlayer: true, Tokens: 3}}
	d := protocol.Delta{
		Type:    protocol.DeltaClaim,
		Players: []models.Player{{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2, Hits: []models.Hit{{ID: "h9"}}}},
	}

	next, events := r.Apply(g, d)
	assert.Equal(t, 2, next.Players[0].Tokens)
	require.Len(t, next.Players[0].Hits, 1)

	claimed := eventsOfType(events, EventClaimedHit)
	require.Len(t, claimed, 1)
	assert.Equal(t, "a", claimed[0].Player.ID)
}

func TestReferenceMismatchAppliesRemainder(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	g.State = models.GameStateGuessing
	g.Players = []models.Player{
		{ID: "a", Name: "A", TurnPlayer: true, Tokens: 2},
		{ID: "b", Name: "B", Tokens: 1},
	}
	d := protocol.Delta{
		Type: protocol.DeltaGuess,
		Players: []models.Player{
			{ID: "ghost", Name: "Ghost", Tokens: 99},
			{ID: "b", Name: "B", Tokens: 0, State: models.PlayerStateIntercepting},
		},
	}

	next, events := r.Apply(g, d)
	require.Len(t, next.Players, 2, "unknown player must not be appended")
	assert.Equal(t, 0, next.Players[1].Tokens, "known player must still be replaced")
	assert.Equal(t, 2, next.Players[0].Tokens)
	// The event still fires; the first listed player is the actor.
	require.Len(t, eventsOfType(events, EventGuessed), 1)
}

func TestLeaveUnknownPlayerIsDropped(t *testing.T) {
	r := newTestReconciler()
	g := openGame()
	d := protocol.Delta{Type: protocol.DeltaLeave, Players: []models.Player{{ID: "ghost"}}}

	next, events := r.Apply(g, d)
	assert.Equal(t, g.Players, next.Players)
	require.Len(t, eventsOfType(events, EventLeftGame), 1)
}

// TestLobbyScenario walks the §8 join/start/guess script end to end.
func TestLobbyScenario(t *testing.T) {
	r := newTestReconciler()
	g := openGame()

	// join{player: B}
	d, err := protocol.ParseDelta("join", []byte(`{"players": [{"id": "b", "name": "B"}]}`))
	require.NoError(t, err)
	g, events := r.Apply(g, d)
	require.Len(t, g.Players, 2)
	assert.Equal(t, "a", g.Players[0].ID)
	assert.Equal(t, "b", g.Players[1].ID)
	joined := eventsOfType(events, EventJoinedGame)
	require.Len(t, joined, 1)
	assert.Equal(t, "b", joined[0].Player.ID)

	// change_state{state: Guessing, players: [A(turn_player), B]}
	d, err = protocol.ParseDelta("change_state", []byte(`{
		"state": "Guessing",
		"players": [
			{"id": "a", "name": "A", "turn_player": true, "tokens": 0},
			{"id": "b", "name": "B"}
		]
	}`))
	require.NoError(t, err)
	g, events = r.Apply(g, d)
	assert.Equal(t, models.GameStateGuessing, g.State)
	require.Len(t, eventsOfType(events, EventGameStarted), 1)

	// guess{players: [A(guess=null)]}
	d, err = protocol.ParseDelta("guess", []byte(`{
		"players": [{"id": "a", "name": "A", "turn_player": true, "tokens": 0}]
	}`))
	require.NoError(t, err)
	_, events = r.Apply(g, d)
	guessed := eventsOfType(events, EventGuessed)
	require.Len(t, guessed, 1)
	assert.Nil(t, guessed[0].Player.Guess)
}
