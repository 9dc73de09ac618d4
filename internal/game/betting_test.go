package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seatPlayers builds active players with the given stacks, seated in
// order.
func seatPlayers(stacks ...int) []*Player {
	players := make([]*Player, len(stacks))
	for seat, chips := range stacks {
		players[seat] = &Player{
			ID:     string(rune('a' + seat)),
			Seat:   seat,
			Chips:  chips,
			Status: StatusActive,
		}
	}
	return players
}

func TestBettingCheckAround(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 100, 100)
	br := newBettingRound(players, 0, 0, 10, -1)

	for seat := 0; seat < 3; seat++ {
		require.Equal(t, seat, br.ToAct())
		require.False(t, br.Complete())
		require.NoError(t, br.Apply(seat, Action{Type: Check}))
	}
	assert.True(t, br.Complete())
	assert.Equal(t, -1, br.ToAct())
}

func TestBettingTurnOrderEnforced(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 100, 100)
	br := newBettingRound(players, 0, 0, 10, -1)

	err := br.Apply(1, Action{Type: Check})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// A rejected action leaves the round untouched
	assert.Equal(t, 0, br.ToAct())
	assert.False(t, br.acted[1])
}

func TestBettingCheckFacingBetIllegal(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 100)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 20}))
	err := br.Apply(1, Action{Type: Check})
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, 1, br.ToAct())
}

func TestBettingCallClosesAction(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 100, 100)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 20}))
	require.NoError(t, br.Apply(1, Action{Type: Fold}))
	require.False(t, br.Complete())
	require.NoError(t, br.Apply(2, Action{Type: Call}))

	assert.True(t, br.Complete())
	assert.Equal(t, 80, players[2].Chips)
	assert.Equal(t, StatusFolded, players[1].Status)
}

func TestBettingMinRaiseEnforced(t *testing.T) {
	t.Parallel()

	players := seatPlayers(200, 200)
	br := newBettingRound(players, 0, 10, 10, -1)

	// Raising to 15 is a 5-chip raise, below the 10 minimum
	err := br.Apply(0, Action{Type: Raise, Amount: 15})
	require.ErrorIs(t, err, ErrIllegalAction)

	// Raising to 25 makes the next minimum raise 15
	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 25}))
	assert.Equal(t, 25, br.CurrentBet)
	assert.Equal(t, 15, br.MinRaise)

	err = br.Apply(1, Action{Type: Raise, Amount: 39})
	require.ErrorIs(t, err, ErrIllegalAction)
	require.NoError(t, br.Apply(1, Action{Type: Raise, Amount: 40}))
	assert.Equal(t, 15, br.MinRaise)
}

func TestBettingFullRaiseReopensAction(t *testing.T) {
	t.Parallel()

	players := seatPlayers(500, 500, 500)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 20}))
	require.NoError(t, br.Apply(1, Action{Type: Call}))
	require.NoError(t, br.Apply(2, Action{Type: Raise, Amount: 60}))

	// Seat 0 already acted, but the full raise reopens the betting
	assert.Contains(t, br.LegalActions(0), Raise)
	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 120}))
	assert.Equal(t, 120, br.CurrentBet)
}

func TestBettingUnderRaiseAllInDoesNotReopen(t *testing.T) {
	t.Parallel()

	players := seatPlayers(200, 200, 14)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 10}))
	require.NoError(t, br.Apply(1, Action{Type: Call}))

	// Seat 2 shoves for 14: a 4-chip raise, short of the 10 minimum.
	// The bet moves to 14 but betting is not reopened.
	require.NoError(t, br.Apply(2, Action{Type: AllIn}))
	assert.Equal(t, 14, br.CurrentBet)
	assert.Equal(t, 10, br.MinRaise)
	assert.Equal(t, StatusAllIn, players[2].Status)

	// Seats that already matched the earlier bet may call or fold,
	// never raise.
	assert.NotContains(t, br.LegalActions(0), Raise)
	err := br.Apply(0, Action{Type: Raise, Amount: 30})
	require.ErrorIs(t, err, ErrIllegalAction)

	require.NoError(t, br.Apply(0, Action{Type: Call}))
	require.False(t, br.Complete())
	require.NoError(t, br.Apply(1, Action{Type: Call}))
	assert.True(t, br.Complete())
}

func TestBettingFullAllInRaiseReopens(t *testing.T) {
	t.Parallel()

	players := seatPlayers(200, 200, 25)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 10}))
	require.NoError(t, br.Apply(1, Action{Type: Call}))

	// A 15-chip all-in raise meets the minimum and reopens
	require.NoError(t, br.Apply(2, Action{Type: AllIn}))
	assert.Equal(t, 25, br.CurrentBet)
	assert.Equal(t, 15, br.MinRaise)
	assert.Contains(t, br.LegalActions(0), Raise)
}

func TestBettingShortCallIsAllIn(t *testing.T) {
	t.Parallel()

	players := seatPlayers(200, 30)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 50}))
	require.NoError(t, br.Apply(1, Action{Type: Call}))

	assert.Equal(t, StatusAllIn, players[1].Status)
	assert.Equal(t, 30, players[1].Bet)
	assert.True(t, br.Complete())
}

func TestBettingBigBlindOption(t *testing.T) {
	t.Parallel()

	// Preflop with blinds already posted: seat 1 SB, seat 2 BB
	players := seatPlayers(100, 95, 90)
	players[1].Bet = 5
	players[2].Bet = 10
	br := newBettingRound(players, 0, 10, 10, 2)

	require.NoError(t, br.Apply(0, Action{Type: Call}))
	require.NoError(t, br.Apply(1, Action{Type: Call}))

	// All bets match, but the big blind still has the option
	require.False(t, br.Complete())
	require.Equal(t, 2, br.ToAct())
	assert.Contains(t, br.LegalActions(2), Raise)

	require.NoError(t, br.Apply(2, Action{Type: Check}))
	assert.True(t, br.Complete())
}

func TestBettingBigBlindOptionRaise(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 95, 90)
	players[1].Bet = 5
	players[2].Bet = 10
	br := newBettingRound(players, 0, 10, 10, 2)

	require.NoError(t, br.Apply(0, Action{Type: Call}))
	require.NoError(t, br.Apply(1, Action{Type: Call}))
	require.NoError(t, br.Apply(2, Action{Type: Raise, Amount: 30}))

	// The raise puts the action back on the earlier callers
	require.False(t, br.Complete())
	assert.Equal(t, 0, br.ToAct())
	assert.Equal(t, 30, br.CurrentBet)
}

func TestBettingFoldToOneEndsRound(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 100, 100)
	br := newBettingRound(players, 0, 0, 10, -1)

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 20}))
	require.NoError(t, br.Apply(1, Action{Type: Fold}))
	require.NoError(t, br.Apply(2, Action{Type: Fold}))

	assert.True(t, br.Complete())
	assert.Equal(t, -1, br.ToAct())
}

func TestBettingLegalActions(t *testing.T) {
	t.Parallel()

	players := seatPlayers(100, 100)
	br := newBettingRound(players, 0, 0, 10, -1)

	assert.Equal(t, []ActionType{Fold, Check, Raise, AllIn}, br.LegalActions(0))
	assert.Nil(t, br.LegalActions(1), "only the acting seat has legal actions")

	require.NoError(t, br.Apply(0, Action{Type: Raise, Amount: 20}))
	assert.Equal(t, []ActionType{Fold, Call, Raise, AllIn}, br.LegalActions(1))
}
