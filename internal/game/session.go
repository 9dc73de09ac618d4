package game

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"cardroom/internal/deck"
	"cardroom/internal/evaluator"
)

// Phase is the session's top-level state
type Phase int

const (
	WaitingForPlayers Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
	HandComplete
)

// String returns the string representation of a phase
func (p Phase) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown", "complete"}[p]
}

// Config carries the table rules a session plays by. Blind sizes are
// inputs, never hardcoded.
type Config struct {
	SmallBlind int
	BigBlind   int
	MaxSeats   int
}

// Validate checks the configuration for playability
func (c Config) Validate() error {
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("big blind %d must exceed small blind %d", c.BigBlind, c.SmallBlind)
	}
	if c.MaxSeats < 2 || c.MaxSeats > 10 {
		return fmt.Errorf("max seats must be between 2 and 10, got %d", c.MaxSeats)
	}
	return nil
}

// Session drives one table through successive hands: dealing, betting
// rounds, showdown and pot resolution. It is not safe for concurrent
// use; the table manager serializes access.
type Session struct {
	cfg    Config
	rng    *rand.Rand
	logger *log.Logger

	players []*Player // seating in button order; index == Player.Seat
	queue   []*Player // joins queued until the current hand completes

	phase   Phase
	handNum int
	button  int

	deck    *deck.Deck
	board   []deck.Card
	betting *BettingRound
	pot     *PotManager

	preHandStacks []int
	handLog       []string
	results       []HandResult
}

// HandResult records one seat's outcome at resolution, for snapshots
// and transport rendering.
type HandResult struct {
	PlayerID string
	Name     string
	Won      int
	Refunded int
	Hand     string // showdown description, empty for uncontested wins
}

// NewSession creates a session for one table. The RNG is required so
// that entire hands replay deterministically from a seed.
func NewSession(cfg Config, rng *rand.Rand, logger *log.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:    cfg,
		rng:    rng,
		logger: logger.WithPrefix("session"),
		phase:  WaitingForPlayers,
	}, nil
}

// Phase returns the current phase
func (s *Session) Phase() Phase { return s.phase }

// Config returns the table rules the session plays by
func (s *Session) Config() Config { return s.cfg }

// HandNum returns the number of the hand in progress (1-based)
func (s *Session) HandNum() int { return s.handNum }

// Button returns the dealer button seat index
func (s *Session) Button() int { return s.button }

// HandInProgress reports whether a hand is being played
func (s *Session) HandInProgress() bool {
	return s.phase != WaitingForPlayers && s.phase != HandComplete
}

// Ready reports whether a new hand can start
func (s *Session) Ready() bool {
	if s.HandInProgress() {
		return false
	}
	ready := 0
	for _, p := range s.players {
		if p.Chips > 0 {
			ready++
		}
	}
	return ready >= 2
}

// Seats returns the seated players in button order
func (s *Session) Seats() []*Player { return s.players }

// PlayerCount returns seated plus queued players
func (s *Session) PlayerCount() int { return len(s.players) + len(s.queue) }

// AddPlayer seats a player with their buy-in. Mid-hand joins queue
// until the hand completes.
func (s *Session) AddPlayer(id, name string, buyIn int) error {
	if s.PlayerCount() >= s.cfg.MaxSeats {
		return ErrTableFull
	}
	if buyIn <= 0 {
		return fmt.Errorf("%w: buy-in must be positive", ErrIllegalAction)
	}
	if s.findPlayer(id) != nil {
		return ErrAlreadySeated
	}

	p := &Player{ID: id, Name: name, Chips: buyIn, Status: StatusSittingOut}
	if s.HandInProgress() {
		s.queue = append(s.queue, p)
		s.logger.Info("player queued for next hand", "player", name)
		return nil
	}

	p.Seat = len(s.players)
	s.players = append(s.players, p)
	s.logger.Info("player seated", "player", name, "seat", p.Seat, "chips", buyIn)
	return nil
}

// RemovePlayer unseats a player. Between hands the seat is released
// immediately; mid-hand the seat is folded and removed when the hand
// completes, forfeiting any chips already committed.
func (s *Session) RemovePlayer(id string) error {
	for _, q := range s.queue {
		if q.ID == id {
			s.queue = removePlayer(s.queue, q)
			return nil
		}
	}

	p := s.findPlayer(id)
	if p == nil {
		return ErrUnknownPlayer
	}

	if !s.HandInProgress() {
		s.unseat(p)
		return nil
	}

	p.Leaving = true
	if p.InHand() {
		return s.forceFold(p.Seat)
	}
	return nil
}

// StartHand deals a new hand. At least two seats with chips are
// required.
func (s *Session) StartHand() error {
	if s.HandInProgress() {
		return fmt.Errorf("%w: hand already in progress", ErrIllegalAction)
	}

	ready := 0
	for _, p := range s.players {
		if p.Chips > 0 {
			ready++
		}
	}
	if ready < 2 {
		s.phase = WaitingForPlayers
		return ErrNotEnoughPlayers
	}

	s.handNum++
	s.board = nil
	s.handLog = nil
	s.results = nil
	s.deck = deck.New(s.rng)
	s.pot = NewPotManager(len(s.players))

	s.preHandStacks = make([]int, len(s.players))
	for seat, p := range s.players {
		s.preHandStacks[seat] = p.Chips
		p.resetForHand()
		if p.Status == StatusSittingOut {
			s.pot.Fold(seat)
		}
	}

	if err := s.dealHoleCards(); err != nil {
		return s.abortHand(err)
	}

	s.postBlinds()
	s.phase = Preflop
	s.logger.Info("hand started", "hand", s.handNum, "button", s.button, "players", len(s.players))

	// Blinds can put short stacks all-in before anyone acts
	if s.betting.Complete() {
		return s.advance()
	}
	return nil
}

// startHandWithDeck is a test seam: identical to StartHand but deals
// from the supplied deck.
func (s *Session) startHandWithDeck(d *deck.Deck) error {
	if err := s.StartHand(); err != nil {
		return err
	}
	// Re-deal from the rigged deck
	s.deck = d
	for _, p := range s.players {
		if p.InHand() {
			cards, err := d.DealN(2)
			if err != nil {
				return s.abortHand(err)
			}
			p.HoleCards = cards
		}
	}
	return nil
}

// Apply routes a player's action into the current betting round and
// advances the hand when the round completes.
func (s *Session) Apply(playerID string, action Action) error {
	if !s.HandInProgress() || s.phase == Showdown {
		return ErrWrongPhase
	}
	p := s.findPlayer(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	if err := s.betting.Apply(p.Seat, action); err != nil {
		return err
	}

	s.logAction(p, action)

	if s.betting.Complete() {
		return s.advance()
	}
	return nil
}

// ToAct returns the player due to act, or nil
func (s *Session) ToAct() *Player {
	if !s.HandInProgress() || s.betting == nil {
		return nil
	}
	seat := s.betting.ToAct()
	if seat < 0 {
		return nil
	}
	return s.players[seat]
}

// LegalActions returns the actions available to the player due to act
func (s *Session) LegalActions(playerID string) []ActionType {
	p := s.findPlayer(playerID)
	if p == nil || s.betting == nil {
		return nil
	}
	return s.betting.LegalActions(p.Seat)
}

// CallAmount returns what the acting player must add to call
func (s *Session) CallAmount() int {
	p := s.ToAct()
	if p == nil {
		return 0
	}
	return s.betting.CurrentBet - p.Bet
}

// dealHoleCards deals two cards to every seat that is dealt in
func (s *Session) dealHoleCards() error {
	for _, p := range s.players {
		if p.Status != StatusActive {
			continue
		}
		cards, err := s.deck.DealN(2)
		if err != nil {
			return err
		}
		p.HoleCards = cards
	}
	return nil
}

// postBlinds posts blinds and opens the preflop betting round.
// Heads-up the button posts the small blind and acts first; otherwise
// blinds sit left of the button and UTG opens.
func (s *Session) postBlinds() {
	var sbSeat, bbSeat, firstToAct int

	if s.liveSeatCount() == 2 {
		sbSeat = s.nextDealtSeat(s.button)
		bbSeat = s.nextDealtSeat(sbSeat + 1)
		firstToAct = sbSeat
	} else {
		sbSeat = s.nextDealtSeat(s.button + 1)
		bbSeat = s.nextDealtSeat(sbSeat + 1)
		firstToAct = s.nextDealtSeat(bbSeat + 1)
	}

	sb := s.players[sbSeat]
	bb := s.players[bbSeat]
	sb.commit(min(s.cfg.SmallBlind, sb.Chips))
	bb.commit(min(s.cfg.BigBlind, bb.Chips))
	s.log(fmt.Sprintf("%s posts small blind %d, %s posts big blind %d", sb.Name, sb.Bet, bb.Name, bb.Bet))

	s.betting = newBettingRound(s.players, firstToAct, s.cfg.BigBlind, s.cfg.BigBlind, bbSeat)
	if !s.players[firstToAct].CanAct() {
		s.betting.current = s.betting.nextToAct(firstToAct + 1)
	}
}

// advance collects the street's bets and moves the hand forward:
// next street, uncontested finish, or showdown.
func (s *Session) advance() error {
	for seat, p := range s.players {
		if p.Bet > 0 {
			s.pot.Contribute(seat, p.Bet)
			p.Bet = 0
		}
		if p.Status == StatusFolded {
			s.pot.Fold(seat)
		}
	}

	if s.liveSeatCount() <= 1 {
		return s.finishUncontested()
	}

	for {
		var err error
		switch s.phase {
		case Preflop:
			s.phase = Flop
			err = s.dealBoard(3)
		case Flop:
			s.phase = Turn
			err = s.dealBoard(1)
		case Turn:
			s.phase = River
			err = s.dealBoard(1)
		case River:
			s.phase = Showdown
			return s.showdown()
		}
		if err != nil {
			return s.abortHand(err)
		}

		firstToAct := s.firstActiveSeat(s.button + 1)
		s.betting = newBettingRound(s.players, firstToAct, 0, s.cfg.BigBlind, -1)
		if firstToAct >= 0 && s.countActive() > 1 {
			return nil
		}
		// Everyone is all-in (or one side has no action): run out the board
	}
}

// dealBoard deals n community cards
func (s *Session) dealBoard(n int) error {
	cards, err := s.deck.DealN(n)
	if err != nil {
		return err
	}
	s.board = append(s.board, cards...)
	s.log(fmt.Sprintf("%s: %s", s.phase, cardString(s.board)))
	return nil
}

// showdown ranks every live seat against the board and distributes the
// pots.
func (s *Session) showdown() error {
	ranks := make(map[int]evaluator.HandRank)
	descriptions := make(map[int]string)
	for seat, p := range s.players {
		if !p.InHand() {
			continue
		}
		rank, err := evaluator.Evaluate(append(append([]deck.Card{}, p.HoleCards...), s.board...))
		if err != nil {
			return s.abortHand(err)
		}
		ranks[seat] = rank
		descriptions[seat] = rank.String()
	}

	payouts, refunds, _, err := s.pot.Resolve(ranks, s.button)
	if err != nil {
		return s.abortHand(err)
	}

	for seat, p := range s.players {
		won, refunded := payouts[seat], refunds[seat]
		if won == 0 && refunded == 0 {
			continue
		}
		p.Chips += won + refunded
		s.results = append(s.results, HandResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Won:      won,
			Refunded: refunded,
			Hand:     descriptions[seat],
		})
		if won > 0 {
			s.log(fmt.Sprintf("%s wins %d with %s", p.Name, won, descriptions[seat]))
		}
	}

	return s.completeHand()
}

// finishUncontested awards everything to the last live seat without
// revealing hole cards.
func (s *Session) finishUncontested() error {
	payouts, refunds, _, err := s.pot.Resolve(nil, s.button)
	if err != nil {
		return s.abortHand(err)
	}

	for seat, p := range s.players {
		won, refunded := payouts[seat], refunds[seat]
		if won == 0 && refunded == 0 {
			continue
		}
		p.Chips += won + refunded
		s.results = append(s.results, HandResult{PlayerID: p.ID, Name: p.Name, Won: won, Refunded: refunded})
		if won > 0 {
			s.log(fmt.Sprintf("%s wins %d uncontested", p.Name, won))
		}
	}

	return s.completeHand()
}

// completeHand applies end-of-hand housekeeping: busted and leaving
// seats go, queued players sit down, the button rotates, and the next
// hand begins if enough players remain.
func (s *Session) completeHand() error {
	s.phase = HandComplete
	s.betting = nil

	buttonPlayer := s.players[s.button]

	remaining := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Chips <= 0 {
			s.log(fmt.Sprintf("%s is busted", p.Name))
			continue
		}
		if p.Leaving {
			continue
		}
		remaining = append(remaining, p)
	}
	s.players = remaining

	admitted := 0
	for _, q := range s.queue {
		if len(s.players) >= s.cfg.MaxSeats {
			break
		}
		s.players = append(s.players, q)
		admitted++
	}
	s.queue = s.queue[admitted:]

	for seat, p := range s.players {
		p.Seat = seat
	}

	// Rotate the button to the next seated player, counting from
	// wherever the old button holder ended up (or was).
	s.button = s.nextButton(buttonPlayer)

	if len(s.players) < 2 {
		s.phase = WaitingForPlayers
		s.logger.Info("waiting for players", "seated", len(s.players))
	}
	// The next hand starts when the table manager calls StartHand,
	// after the transport has had a chance to observe the results.
	return nil
}

// nextButton picks the seat after the previous button holder
func (s *Session) nextButton(prev *Player) int {
	if len(s.players) == 0 {
		return 0
	}
	for seat, p := range s.players {
		if p == prev {
			return (seat + 1) % len(s.players)
		}
	}
	// Button holder left or busted; their old neighbour inherits
	if s.button < len(s.players) {
		return s.button % len(s.players)
	}
	return 0
}

// abortHand unwinds a hand after a fatal internal error. Stacks are
// restored to their pre-hand values; nothing is distributed.
func (s *Session) abortHand(cause error) error {
	s.logger.Error("hand aborted", "hand", s.handNum, "error", cause)
	for seat, p := range s.players {
		if seat < len(s.preHandStacks) {
			p.Chips = s.preHandStacks[seat]
		}
		p.Bet = 0
		p.TotalBet = 0
		p.HoleCards = nil
	}
	s.betting = nil
	s.board = nil
	s.phase = WaitingForPlayers
	return fmt.Errorf("%w: %v", ErrHandAborted, cause)
}

// forceFold folds a seat regardless of turn order, for disconnects and
// mid-hand leaves.
func (s *Session) forceFold(seat int) error {
	p := s.players[seat]
	if !p.InHand() {
		return nil
	}
	p.Status = StatusFolded
	s.pot.Fold(seat)
	s.log(fmt.Sprintf("%s folds (forced)", p.Name))

	if s.betting == nil {
		return nil
	}
	s.betting.acted[seat] = true
	if s.betting.bbSeat == seat {
		s.betting.bbOption = false
	}
	if s.betting.current == seat {
		s.betting.current = s.betting.nextToAct(seat + 1)
	}
	if s.betting.Complete() {
		s.betting.current = -1
		return s.advance()
	}
	return nil
}

// liveSeatCount counts seats still in the hand
func (s *Session) liveSeatCount() int {
	n := 0
	for _, p := range s.players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// countActive counts seats that can still act
func (s *Session) countActive() int {
	n := 0
	for _, p := range s.players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// firstActiveSeat scans clockwise from the given seat for one that can
// act, returning -1 when none can.
func (s *Session) firstActiveSeat(from int) int {
	n := len(s.players)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if s.players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// nextDealtSeat scans clockwise for a seat dealt into this hand
func (s *Session) nextDealtSeat(from int) int {
	n := len(s.players)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if s.players[seat].InHand() {
			return seat
		}
	}
	return from % n
}

func (s *Session) findPlayer(id string) *Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) unseat(target *Player) {
	s.players = removePlayer(s.players, target)
	for seat, p := range s.players {
		p.Seat = seat
	}
	if s.button >= len(s.players) {
		s.button = 0
	}
}

func (s *Session) logAction(p *Player, action Action) {
	switch action.Type {
	case Raise:
		s.log(fmt.Sprintf("%s raises to %d", p.Name, action.Amount))
	case AllIn:
		s.log(fmt.Sprintf("%s is all-in for %d", p.Name, p.TotalBet))
	default:
		s.log(fmt.Sprintf("%s %ss", p.Name, action.Type))
	}
}

func (s *Session) log(entry string) {
	s.handLog = append(s.handLog, entry)
	s.logger.Debug(entry, "hand", s.handNum)
}

// LastAction returns the most recent hand log entry
func (s *Session) LastAction() string {
	if len(s.handLog) == 0 {
		return ""
	}
	return s.handLog[len(s.handLog)-1]
}

// Results returns the outcome of the most recently resolved hand
func (s *Session) Results() []HandResult { return s.results }

// Board returns the community cards
func (s *Session) Board() []deck.Card { return s.board }

func removePlayer(players []*Player, target *Player) []*Player {
	out := players[:0]
	for _, p := range players {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}

func cardString(cards []deck.Card) string {
	out := ""
	for i, c := range cards {
		if i > 0 {
			out += " "
		}
		out += c.String()
	}
	return out
}
