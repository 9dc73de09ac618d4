package game

import "fmt"

// ActionType represents a player action kind
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Raise
	AllIn
)

// String returns the string representation of an action type
func (a ActionType) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// Action is a player intent. Amount is the total round bet being raised
// to and is only meaningful for Raise.
type Action struct {
	Type   ActionType
	Amount int
}

// BettingRound enforces turn order and legal-action rules for one
// street. It operates on the session's shared seating array; seats are
// addressed by index with modular wraparound.
type BettingRound struct {
	players []*Player
	current int

	// CurrentBet is the per-seat round contribution required to stay in
	CurrentBet int
	// MinRaise is the minimum increment for the next full raise
	MinRaise int

	// acted tracks which seats have acted since the last full raise. An
	// under-minimum all-in raise does not clear these flags, so seats
	// that already matched the previous bet may call the shove but not
	// re-raise.
	acted []bool

	// bbSeat and bbOption give the big blind its preflop option: the
	// round is not complete until the BB has acted, even with all bets
	// matched.
	bbSeat   int
	bbOption bool
}

// newBettingRound starts a street. firstToAct should already point at a
// seat that can act, or -1 when every live seat is all-in.
func newBettingRound(players []*Player, firstToAct, currentBet, minRaise, bbSeat int) *BettingRound {
	return &BettingRound{
		players:    players,
		current:    firstToAct,
		CurrentBet: currentBet,
		MinRaise:   minRaise,
		acted:      make([]bool, len(players)),
		bbSeat:     bbSeat,
		bbOption:   bbSeat >= 0,
	}
}

// ToAct returns the seat index due to act, or -1 when none
func (br *BettingRound) ToAct() int {
	return br.current
}

// Apply validates and applies one action for the given seat. On any
// error the round state is unchanged.
func (br *BettingRound) Apply(seat int, action Action) error {
	if seat != br.current || br.current < 0 {
		return ErrNotYourTurn
	}

	p := br.players[seat]
	toCall := br.CurrentBet - p.Bet

	switch action.Type {
	case Fold:
		p.Status = StatusFolded

	case Check:
		if toCall != 0 {
			return fmt.Errorf("%w: cannot check facing a bet of %d", ErrIllegalAction, toCall)
		}

	case Call:
		if toCall <= 0 {
			return fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		// Calling with fewer chips than the bet is an all-in for less
		p.commit(toCall)

	case Raise:
		if err := br.applyRaise(p, action.Amount); err != nil {
			return err
		}

	case AllIn:
		total := p.Bet + p.Chips
		if total > br.CurrentBet {
			raiseSize := total - br.CurrentBet
			if raiseSize >= br.MinRaise {
				br.reopen(raiseSize)
			}
			br.CurrentBet = total
		}
		p.commit(p.Chips)

	default:
		return fmt.Errorf("%w: unknown action", ErrIllegalAction)
	}

	br.acted[seat] = true
	if seat == br.bbSeat {
		br.bbOption = false
	}

	br.current = br.nextToAct(seat + 1)
	if br.Complete() {
		br.current = -1
	}
	return nil
}

// applyRaise handles Raise, where amount is the total round bet the seat
// raises to.
func (br *BettingRound) applyRaise(p *Player, amount int) error {
	if amount <= br.CurrentBet {
		return fmt.Errorf("%w: raise to %d does not exceed current bet %d", ErrIllegalAction, amount, br.CurrentBet)
	}
	needed := amount - p.Bet
	if needed > p.Chips {
		return fmt.Errorf("%w: insufficient chips", ErrIllegalAction)
	}
	if br.acted[p.Seat] {
		return fmt.Errorf("%w: betting is not reopened for this seat", ErrIllegalAction)
	}

	raiseSize := amount - br.CurrentBet
	shoving := needed == p.Chips
	if raiseSize < br.MinRaise && !shoving {
		return fmt.Errorf("%w: raise of %d below minimum %d", ErrIllegalAction, raiseSize, br.MinRaise)
	}

	if raiseSize >= br.MinRaise {
		br.reopen(raiseSize)
	}
	// An all-in raise below the minimum moves the bet but does not
	// reopen action for seats that already matched the previous bet.
	br.CurrentBet = amount
	p.commit(needed)
	return nil
}

// reopen registers a full raise: every other seat gets to act again.
// The raiser's own flag is set by the caller after the action applies.
func (br *BettingRound) reopen(raiseSize int) {
	br.MinRaise = raiseSize
	for i := range br.acted {
		br.acted[i] = false
	}
}

// nextToAct finds the next seat that can act, scanning clockwise
func (br *BettingRound) nextToAct(from int) int {
	n := len(br.players)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if br.players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// Complete reports whether the street's betting is finished: every seat
// still able to act has acted and matched the current bet, or at most
// one live seat remains.
func (br *BettingRound) Complete() bool {
	live := 0
	for _, p := range br.players {
		if p.InHand() {
			live++
		}
	}
	if live <= 1 {
		return true
	}

	if br.bbOption && br.players[br.bbSeat].CanAct() {
		return false
	}

	for seat, p := range br.players {
		if !p.CanAct() {
			continue
		}
		if !br.acted[seat] || p.Bet != br.CurrentBet {
			return false
		}
	}
	return true
}

// LegalActions returns the actions currently available to a seat,
// primarily for action-request messages to the transport.
func (br *BettingRound) LegalActions(seat int) []ActionType {
	if seat != br.current || seat < 0 {
		return nil
	}
	p := br.players[seat]
	toCall := br.CurrentBet - p.Bet

	actions := []ActionType{Fold}
	if toCall == 0 {
		actions = append(actions, Check)
	} else if p.Chips > 0 {
		actions = append(actions, Call)
	}
	if !br.acted[seat] && p.Chips > toCall {
		actions = append(actions, Raise)
	}
	if p.Chips > 0 {
		actions = append(actions, AllIn)
	}
	return actions
}
