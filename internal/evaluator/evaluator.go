// Package evaluator ranks the best five-card poker hand available from
// seven cards (two hole cards plus the board). Evaluation is a pure
// function: it enumerates all 21 five-card combinations and keeps the
// strongest, which is plenty fast at this scale and trivially testable.
package evaluator

import (
	"errors"
	"fmt"
	"sort"

	"cardroom/internal/deck"
)

// Category enumerates hand categories from weakest to strongest.
type Category int

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is a totally ordered hand strength: category first, then the
// tie-break ranks in descending significance. Two hands with equal
// category and tie-breaks are an exact tie, a first-class outcome.
type HandRank struct {
	Category Category
	Tiebreak [5]deck.Rank
}

// Compare returns 1 if h beats other, -1 if other beats h, 0 on a tie.
func (h HandRank) Compare(other HandRank) int {
	if h.Category != other.Category {
		if h.Category > other.Category {
			return 1
		}
		return -1
	}
	for i := range h.Tiebreak {
		if h.Tiebreak[i] != other.Tiebreak[i] {
			if h.Tiebreak[i] > other.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// String describes the hand the way a dealer would announce it
func (h HandRank) String() string {
	switch h.Category {
	case HighCard:
		return h.Tiebreak[0].Name() + " high"
	case OnePair:
		return "pair of " + h.Tiebreak[0].Plural()
	case TwoPair:
		return fmt.Sprintf("two pair, %s and %s", h.Tiebreak[0].Plural(), h.Tiebreak[1].Plural())
	case ThreeOfAKind:
		return "three of a kind, " + h.Tiebreak[0].Plural()
	case Straight:
		return h.Tiebreak[0].Name() + "-high straight"
	case Flush:
		return h.Tiebreak[0].Name() + "-high flush"
	case FullHouse:
		return fmt.Sprintf("full house, %s over %s", h.Tiebreak[0].Plural(), h.Tiebreak[1].Plural())
	case FourOfAKind:
		return "four of a kind, " + h.Tiebreak[0].Plural()
	case StraightFlush:
		if h.Tiebreak[0] == deck.Ace {
			return "royal flush"
		}
		return h.Tiebreak[0].Name() + "-high straight flush"
	default:
		return "unknown hand"
	}
}

// ErrWrongCardCount is returned when Evaluate is called with anything
// other than seven cards.
var ErrWrongCardCount = errors.New("evaluator: exactly 7 cards required")

// Evaluate ranks the best five-card hand from exactly seven cards. The
// result is independent of input order.
func Evaluate(cards []deck.Card) (HandRank, error) {
	if len(cards) != 7 {
		return HandRank{}, fmt.Errorf("%w, got %d", ErrWrongCardCount, len(cards))
	}

	var best HandRank
	var combo [5]deck.Card

	// All C(7,5)=21 combinations: choose the two indices to drop.
	for skipA := 0; skipA < 7; skipA++ {
		for skipB := skipA + 1; skipB < 7; skipB++ {
			n := 0
			for i, c := range cards {
				if i == skipA || i == skipB {
					continue
				}
				combo[n] = c
				n++
			}
			rank := rankFive(combo)
			if best.Category == 0 || rank.Compare(best) > 0 {
				best = rank
			}
		}
	}

	return best, nil
}

// rankFive ranks a single five-card hand
func rankFive(cards [5]deck.Card) HandRank {
	sorted := cards[:]
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	flush := true
	for _, c := range sorted[1:] {
		if c.Suit != sorted[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, straight := straightHighCard(sorted)

	if straight && flush {
		return HandRank{Category: StraightFlush, Tiebreak: [5]deck.Rank{straightHigh}}
	}

	// Group ranks by multiplicity, groups ordered by count then rank so
	// the dominant group comes first.
	type group struct {
		rank  deck.Rank
		count int
	}
	var groups []group
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Rank == sorted[i].Rank {
			j++
		}
		groups = append(groups, group{rank: sorted[i].Rank, count: j - i})
		i = j
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	var tb [5]deck.Rank
	for i, g := range groups {
		tb[i] = g.rank
	}

	switch {
	case groups[0].count == 4:
		return HandRank{Category: FourOfAKind, Tiebreak: tb}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Tiebreak: tb}
	case flush:
		return HandRank{Category: Flush, Tiebreak: tb}
	case straight:
		return HandRank{Category: Straight, Tiebreak: [5]deck.Rank{straightHigh}}
	case groups[0].count == 3:
		return HandRank{Category: ThreeOfAKind, Tiebreak: tb}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandRank{Category: TwoPair, Tiebreak: tb}
	case groups[0].count == 2:
		return HandRank{Category: OnePair, Tiebreak: tb}
	default:
		return HandRank{Category: HighCard, Tiebreak: tb}
	}
}

// straightHighCard reports whether the descending-sorted cards form a
// straight and its high card. The wheel (A-2-3-4-5) counts with a high
// card of five.
func straightHighCard(sorted []deck.Card) (deck.Rank, bool) {
	run := true
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Rank != sorted[i-1].Rank-1 {
			run = false
			break
		}
	}
	if run {
		return sorted[0].Rank, true
	}

	// Wheel: ace plays low under 5-4-3-2
	if sorted[0].Rank == deck.Ace &&
		sorted[1].Rank == deck.Five &&
		sorted[2].Rank == deck.Four &&
		sorted[3].Rank == deck.Three &&
		sorted[4].Rank == deck.Two {
		return deck.Five, true
	}

	return 0, false
}
