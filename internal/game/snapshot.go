package game

// SeatView is the public projection of one seat. Hole cards are only
// present for the viewer's own seat or at showdown.
type SeatView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Seat      int      `json:"seat"`
	Chips     int      `json:"chips"`
	Status    string   `json:"status"`
	Bet       int      `json:"bet"`
	TotalBet  int      `json:"total_bet"`
	HoleCards []string `json:"hole_cards,omitempty"`
}

// PotView is the public projection of one pot
type PotView struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// Snapshot is a render-ready view of the table for the transport. It
// carries no formatting; the transport decides presentation.
type Snapshot struct {
	Phase      string       `json:"phase"`
	HandNum    int          `json:"hand_num"`
	Button     int          `json:"button"`
	Board      []string     `json:"board"`
	Seats      []SeatView   `json:"seats"`
	Pots       []PotView    `json:"pots"`
	PotTotal   int          `json:"pot_total"`
	ToAct      int          `json:"to_act"` // seat index, -1 when none
	CurrentBet int          `json:"current_bet"`
	MinRaise   int          `json:"min_raise"`
	LastAction string       `json:"last_action,omitempty"`
	Results    []HandResult `json:"results,omitempty"`
}

// Snapshot projects the session state for one viewer. Readers see
// either the pre- or post-action state, never a torn mix; the table
// manager holds the read lock while this runs.
func (s *Session) Snapshot(viewerID string) Snapshot {
	snap := Snapshot{
		Phase:      s.phase.String(),
		HandNum:    s.handNum,
		Button:     s.button,
		Board:      make([]string, 0, len(s.board)),
		ToAct:      -1,
		LastAction: s.LastAction(),
		Results:    s.results,
	}

	for _, c := range s.board {
		snap.Board = append(snap.Board, c.String())
	}

	if s.betting != nil {
		snap.ToAct = s.betting.ToAct()
		snap.CurrentBet = s.betting.CurrentBet
		snap.MinRaise = s.betting.MinRaise
	}

	uncollected := 0
	for _, p := range s.players {
		uncollected += p.Bet
	}
	if s.pot != nil {
		snap.PotTotal = s.pot.Total() + uncollected
		pots, _ := s.pot.Build()
		for _, pot := range pots {
			snap.Pots = append(snap.Pots, PotView{Amount: pot.Amount, Eligible: pot.Eligible})
		}
	}

	showdown := s.phase == Showdown || (s.phase == HandComplete && len(s.results) > 0 && s.results[0].Hand != "")
	for _, p := range s.players {
		view := SeatView{
			ID:       p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
			Chips:    p.Chips,
			Status:   p.Status.String(),
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
		}
		if len(p.HoleCards) > 0 && (p.ID == viewerID || (showdown && p.InHand())) {
			for _, c := range p.HoleCards {
				view.HoleCards = append(view.HoleCards, c.String())
			}
		}
		snap.Seats = append(snap.Seats, view)
	}

	return snap
}
