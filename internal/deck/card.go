package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank. Aces are high (14) but play low for wheel
// straights during evaluation.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

var rankNames = map[Rank]string{
	Two: "deuce", Three: "three", Four: "four", Five: "five",
	Six: "six", Seven: "seven", Eight: "eight", Nine: "nine",
	Ten: "ten", Jack: "jack", Queen: "queen", King: "king", Ace: "ace",
}

// Name returns the long-form rank name used in hand descriptions
func (r Rank) Name() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return "?"
}

// Plural returns the plural rank name ("kings", "sixes")
func (r Rank) Plural() string {
	if r == Six {
		return "sixes"
	}
	return r.Name() + "s"
}

// Card represents a playing card. It is an immutable value type;
// equality is struct equality.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Compare orders cards by rank, then suit. Returns -1, 0 or 1.
func (c Card) Compare(other Card) int {
	switch {
	case c.Rank < other.Rank:
		return -1
	case c.Rank > other.Rank:
		return 1
	case c.Suit < other.Suit:
		return -1
	case c.Suit > other.Suit:
		return 1
	default:
		return 0
	}
}
