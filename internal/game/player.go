package game

import "cardroom/internal/deck"

// SeatStatus tracks a seat's standing within the current hand
type SeatStatus int

const (
	StatusActive SeatStatus = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
)

// String returns the string representation of a seat status
func (s SeatStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFolded:
		return "folded"
	case StatusAllIn:
		return "all-in"
	case StatusSittingOut:
		return "sitting-out"
	default:
		return "unknown"
	}
}

// Player is a seated player. The stack persists across hands within a
// session; hole cards and betting totals are per-hand state.
type Player struct {
	ID        string
	Name      string
	Seat      int
	Chips     int
	HoleCards []deck.Card
	Status    SeatStatus
	Bet       int // Contribution this betting round
	TotalBet  int // Contribution this hand
	Leaving   bool
}

// CanAct returns true if the player may still take actions this hand
func (p *Player) CanAct() bool {
	return p.Status == StatusActive
}

// InHand returns true if the player has not folded and is dealt in
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// resetForHand clears per-hand state before the next deal
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.Bet = 0
	p.TotalBet = 0
	if p.Chips > 0 {
		p.Status = StatusActive
	} else {
		p.Status = StatusSittingOut
	}
}

// commit moves up to amount chips from the stack into the current bet,
// returning the amount actually committed. Committing the whole stack
// moves the seat to all-in.
func (p *Player) commit(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 && p.Status == StatusActive {
		p.Status = StatusAllIn
	}
	return amount
}
