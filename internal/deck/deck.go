package deck

import (
	"errors"
	"math/rand"
)

// ErrEmptyDeck is returned when dealing from an exhausted deck. With at
// most ten seats a hand never draws more than 25 cards, so hitting this
// indicates a logic defect upstream.
var ErrEmptyDeck = errors.New("deck: no cards remaining")

// Deck is a shuffled 52-card deck dealt without replacement. A deck is
// owned by a single hand and is not safe for concurrent use.
type Deck struct {
	cards [52]Card
	next  int
}

// New creates a new deck shuffled with the supplied RNG. The RNG is
// required so that deals are reproducible from a seed.
func New(rng *rand.Rand) *Deck {
	d := &Deck{}

	i := 0
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	// Fisher-Yates
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}

	return d
}

// Rigged creates an unshuffled deck that deals the given cards in order,
// for deterministic showdown tests. Remaining cards follow in new-deck
// order, skipping any that were requested.
func Rigged(cards ...Card) *Deck {
	d := &Deck{}
	seen := make(map[Card]bool, len(cards))
	i := 0
	for _, c := range cards {
		d.cards[i] = c
		seen[c] = true
		i++
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			if !seen[c] {
				d.cards[i] = c
				i++
			}
		}
	}
	return d
}

// Deal removes and returns the top card
func (d *Deck) Deal() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// DealN deals n cards from the deck
func (d *Deck) DealN(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrEmptyDeck
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
