package game

import (
	"fmt"
	"sort"

	"cardroom/internal/evaluator"
)

// Pot is one main or side pot: an amount and the seats eligible to win
// it. Pots are derived from the hand's contribution ledger, never
// mutated directly.
type Pot struct {
	Amount   int
	Eligible []int
}

// PotManager accumulates per-seat contributions across all betting
// rounds of one hand and computes main/side pot splits at resolution.
type PotManager struct {
	contrib []int
	folded  []bool
}

// NewPotManager creates a pot ledger for numSeats seats
func NewPotManager(numSeats int) *PotManager {
	return &PotManager{
		contrib: make([]int, numSeats),
		folded:  make([]bool, numSeats),
	}
}

// Contribute records chips a seat has put into the hand
func (pm *PotManager) Contribute(seat, amount int) {
	pm.contrib[seat] += amount
}

// Fold marks a seat ineligible to win any pot
func (pm *PotManager) Fold(seat int) {
	pm.folded[seat] = true
}

// Total returns the sum of all contributions
func (pm *PotManager) Total() int {
	total := 0
	for _, c := range pm.contrib {
		total += c
	}
	return total
}

// Build computes the pot structure. The uncalled portion of the largest
// bet, the excess above the next-highest contribution, is returned to
// its owner without entering any pot. Remaining contributions are
// sliced at each distinct level; each slice's eligible winners are the
// non-folded seats that contributed at least that level. Adjacent
// slices with identical eligibility collapse into one pot.
func (pm *PotManager) Build() (pots []Pot, refunds map[int]int) {
	refunds = make(map[int]int)

	effective := make([]int, len(pm.contrib))
	copy(effective, pm.contrib)

	// Refund the uncalled excess of the single largest contributor
	top, second := -1, 0
	for seat, c := range effective {
		if top == -1 || c > effective[top] {
			top = seat
		}
	}
	for seat, c := range effective {
		if seat != top && c > second {
			second = c
		}
	}
	if top >= 0 && effective[top] > second && !pm.folded[top] {
		refunds[top] = effective[top] - second
		effective[top] = second
	}

	// Distinct contribution levels, ascending
	levelSet := make(map[int]bool)
	for _, c := range effective {
		if c > 0 {
			levelSet[c] = true
		}
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for seat, c := range effective {
			if c > prev {
				slice := min(c, level) - prev
				pot.Amount += slice
			}
			if c >= level && !pm.folded[seat] {
				pot.Eligible = append(pot.Eligible, seat)
			}
		}
		prev = level
		if pot.Amount == 0 {
			continue
		}
		// Dead money above the highest live contribution, left behind by
		// a folded over-bettor, sinks into the last pot with winners.
		if len(pot.Eligible) == 0 {
			if n := len(pots); n > 0 {
				pots[n-1].Amount += pot.Amount
				continue
			}
		}
		if n := len(pots); n > 0 && equalSeats(pots[n-1].Eligible, pot.Eligible) {
			pots[n-1].Amount += pot.Amount
			continue
		}
		pots = append(pots, pot)
	}

	return pots, refunds
}

// Resolve distributes every pot to its winners and verifies chip
// conservation as a hard postcondition. ranks must cover every
// non-folded seat that reached showdown; a pot with a single eligible
// seat needs no rank. The button determines odd-chip order: leftover
// chips go one at a time to winners starting clockwise of the button.
func (pm *PotManager) Resolve(ranks map[int]evaluator.HandRank, button int) (payouts, refunds map[int]int, pots []Pot, err error) {
	pots, refunds = pm.Build()
	payouts = make(map[int]int)

	for _, pot := range pots {
		winners, err := potWinners(pot, ranks)
		if err != nil {
			return nil, nil, nil, err
		}

		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		isWinner := make(map[int]bool, len(winners))
		for _, seat := range winners {
			payouts[seat] += share
			isWinner[seat] = true
		}

		// Odd chips in button order, starting left of the button
		n := len(pm.contrib)
		for offset := 1; offset <= n && remainder > 0; offset++ {
			seat := (button + offset) % n
			if isWinner[seat] {
				payouts[seat]++
				remainder--
			}
		}
	}

	distributed := 0
	for _, amount := range payouts {
		distributed += amount
	}
	for _, amount := range refunds {
		distributed += amount
	}
	if distributed != pm.Total() {
		return nil, nil, nil, fmt.Errorf("%w: distributed %d of %d", ErrChipConservation, distributed, pm.Total())
	}

	return payouts, refunds, pots, nil
}

// potWinners returns the eligible seats holding the best rank
func potWinners(pot Pot, ranks map[int]evaluator.HandRank) ([]int, error) {
	if len(pot.Eligible) == 0 {
		return nil, fmt.Errorf("%w: pot of %d has no eligible winner", ErrChipConservation, pot.Amount)
	}
	if len(pot.Eligible) == 1 {
		return pot.Eligible, nil
	}

	var winners []int
	var best evaluator.HandRank
	for _, seat := range pot.Eligible {
		rank, ok := ranks[seat]
		if !ok {
			return nil, fmt.Errorf("%w: no showdown rank for seat %d", ErrChipConservation, seat)
		}
		if len(winners) == 0 {
			winners = []int{seat}
			best = rank
			continue
		}
		switch rank.Compare(best) {
		case 1:
			winners = []int{seat}
			best = rank
		case 0:
			winners = append(winners, seat)
		}
	}
	return winners, nil
}

func equalSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
