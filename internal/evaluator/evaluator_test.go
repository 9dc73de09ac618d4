package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardroom/internal/deck"
)

// c builds a card from shorthand like "As", "Td", "9c"
func c(s string) deck.Card {
	ranks := map[byte]deck.Rank{
		'2': deck.Two, '3': deck.Three, '4': deck.Four, '5': deck.Five,
		'6': deck.Six, '7': deck.Seven, '8': deck.Eight, '9': deck.Nine,
		'T': deck.Ten, 'J': deck.Jack, 'Q': deck.Queen, 'K': deck.King,
		'A': deck.Ace,
	}
	suits := map[byte]deck.Suit{
		's': deck.Spades, 'h': deck.Hearts, 'd': deck.Diamonds, 'c': deck.Clubs,
	}
	return deck.NewCard(ranks[s[0]], suits[s[1]])
}

func cards(ss ...string) []deck.Card {
	out := make([]deck.Card, len(ss))
	for i, s := range ss {
		out[i] = c(s)
	}
	return out
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    []string
		category Category
		high     deck.Rank
	}{
		{
			name:     "royal flush",
			cards:    []string{"As", "Ks", "Qs", "Js", "Ts", "2d", "3c"},
			category: StraightFlush,
			high:     deck.Ace,
		},
		{
			name:     "straight flush",
			cards:    []string{"9h", "8h", "7h", "6h", "5h", "Ad", "Ac"},
			category: StraightFlush,
			high:     deck.Nine,
		},
		{
			name:     "steel wheel",
			cards:    []string{"Ad", "2d", "3d", "4d", "5d", "Kc", "Ks"},
			category: StraightFlush,
			high:     deck.Five,
		},
		{
			name:     "four of a kind",
			cards:    []string{"8s", "8h", "8d", "8c", "Kd", "2c", "3h"},
			category: FourOfAKind,
			high:     deck.Eight,
		},
		{
			name:     "full house",
			cards:    []string{"Ks", "Kh", "Kd", "4c", "4d", "9h", "2s"},
			category: FullHouse,
			high:     deck.King,
		},
		{
			name:     "flush",
			cards:    []string{"Ac", "Jc", "8c", "5c", "2c", "Kd", "Ks"},
			category: Flush,
			high:     deck.Ace,
		},
		{
			name:     "straight",
			cards:    []string{"9s", "8d", "7h", "6c", "5s", "Ad", "Ah"},
			category: Straight,
			high:     deck.Nine,
		},
		{
			name:     "wheel straight",
			cards:    []string{"As", "2d", "3h", "4c", "5s", "Kd", "9h"},
			category: Straight,
			high:     deck.Five,
		},
		{
			name:     "three of a kind",
			cards:    []string{"7s", "7h", "7d", "Kc", "9d", "4h", "2s"},
			category: ThreeOfAKind,
			high:     deck.Seven,
		},
		{
			name:     "two pair",
			cards:    []string{"As", "Ah", "4d", "4c", "9d", "7h", "2s"},
			category: TwoPair,
			high:     deck.Ace,
		},
		{
			name:     "one pair",
			cards:    []string{"Js", "Jh", "9d", "7c", "5d", "3h", "2s"},
			category: OnePair,
			high:     deck.Jack,
		},
		{
			name:     "high card",
			cards:    []string{"As", "Jh", "9d", "7c", "5d", "3h", "2s"},
			category: HighCard,
			high:     deck.Ace,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rank, err := Evaluate(cards(tc.cards...))
			require.NoError(t, err)
			assert.Equal(t, tc.category, rank.Category)
			assert.Equal(t, tc.high, rank.Tiebreak[0])
		})
	}
}

func TestEvaluateWrongCardCount(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(cards("As", "Ks", "Qs", "Js", "Ts"))
	assert.ErrorIs(t, err, ErrWrongCardCount)

	_, err = Evaluate(nil)
	assert.ErrorIs(t, err, ErrWrongCardCount)
}

func TestEvaluateDeterministicAndOrderInvariant(t *testing.T) {
	t.Parallel()

	hand := cards("Ks", "Kh", "Kd", "4c", "4d", "9h", "2s")

	want, err := Evaluate(hand)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 50; i++ {
		shuffled := make([]deck.Card, len(hand))
		copy(shuffled, hand)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Evaluate(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestKickersBreakTies(t *testing.T) {
	t.Parallel()

	// Both hold a pair of aces; the second player's king kicker wins.
	a, err := Evaluate(cards("As", "Ah", "Qd", "9c", "5d", "3h", "2s"))
	require.NoError(t, err)
	b, err := Evaluate(cards("Ad", "Ac", "Kd", "9h", "5s", "3c", "2d"))
	require.NoError(t, err)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
}

func TestExactTieAcrossSuits(t *testing.T) {
	t.Parallel()

	// Same straight in different suits is an exact tie.
	a, err := Evaluate(cards("9s", "8d", "7h", "6c", "5s", "2d", "2h"))
	require.NoError(t, err)
	b, err := Evaluate(cards("9c", "8h", "7d", "6s", "5c", "3d", "3h"))
	require.NoError(t, err)

	assert.Equal(t, 0, a.Compare(b))
}

func TestBoardPlaysForBothIsTie(t *testing.T) {
	t.Parallel()

	// Board is a royal flush, hole cards irrelevant.
	board := []string{"As", "Ks", "Qs", "Js", "Ts"}
	a, err := Evaluate(cards(append([]string{"2d", "3c"}, board...)...))
	require.NoError(t, err)
	b, err := Evaluate(cards(append([]string{"7h", "8h"}, board...)...))
	require.NoError(t, err)

	assert.Equal(t, StraightFlush, a.Category)
	assert.Equal(t, 0, a.Compare(b))
}

func TestFullHouseBeatsFlush(t *testing.T) {
	t.Parallel()

	fh, err := Evaluate(cards("Ks", "Kh", "Kd", "4c", "4d", "9h", "2s"))
	require.NoError(t, err)
	fl, err := Evaluate(cards("Ac", "Jc", "8c", "5c", "2c", "Kd", "9s"))
	require.NoError(t, err)

	assert.Equal(t, 1, fh.Compare(fl))
}

func TestTwoPairPicksBestTwoOfThree(t *testing.T) {
	t.Parallel()

	// Aces, eights and threes available: best hand uses aces and eights
	// with the leftover trey-or-better kicker.
	rank, err := Evaluate(cards("As", "Ah", "8d", "8c", "3d", "3h", "Ks"))
	require.NoError(t, err)

	assert.Equal(t, TwoPair, rank.Category)
	assert.Equal(t, deck.Ace, rank.Tiebreak[0])
	assert.Equal(t, deck.Eight, rank.Tiebreak[1])
	assert.Equal(t, deck.King, rank.Tiebreak[2])
}

func TestHandRankDescriptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cards []string
		want  string
	}{
		{[]string{"As", "Ks", "Qs", "Js", "Ts", "2d", "3c"}, "royal flush"},
		{[]string{"9h", "8h", "7h", "6h", "5h", "Ad", "Ac"}, "nine-high straight flush"},
		{[]string{"Ks", "Kh", "Kd", "4c", "4d", "9h", "2s"}, "full house, kings over fours"},
		{[]string{"As", "Ah", "4d", "4c", "9d", "7h", "2s"}, "two pair, aces and fours"},
		{[]string{"Js", "Jh", "9d", "7c", "5d", "3h", "2s"}, "pair of jacks"},
		{[]string{"As", "Jh", "9d", "7c", "5d", "3h", "2s"}, "ace high"},
		{[]string{"6s", "6h", "6d", "Kc", "9d", "4h", "2s"}, "three of a kind, sixes"},
	}

	for _, tc := range tests {
		rank, err := Evaluate(cards(tc.cards...))
		require.NoError(t, err)
		assert.Equal(t, tc.want, rank.String())
	}
}
