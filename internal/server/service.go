package server

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"cardroom/internal/game"
	"cardroom/internal/table"
)

const (
	// botActDelay paces house bot decisions so hands are followable
	botActDelay = 250 * time.Millisecond

	// autoDealDelay leaves results on screen between hands
	autoDealDelay = 2 * time.Second
)

// Notifier pushes state changes to connected clients. The WebSocket
// server implements it; tests substitute a recorder.
type Notifier interface {
	BroadcastState(tableID string)
	RequestAction(playerID string, data ActionRequiredData)
}

// houseBot is a config-driven seat filler with a fixed strategy
type houseBot struct {
	id       string
	name     string
	strategy string
	tableID  string
}

// Service owns the tables and the policy around them: who may join,
// when the next hand deals, and how house bots act. Connections talk
// to the service, never to a session directly.
type Service struct {
	logger *log.Logger
	cfg    *Config
	clock  quartz.Clock
	tables *table.Manager

	notifier Notifier

	mu          sync.Mutex
	rng         *rand.Rand
	bots        map[string]*houseBot
	tableCfg    map[string]TableConfig
	tableIDs    map[string]string
	autoDeal    map[string]bool
	dealPending map[string]bool
}

// NewService creates the game service. The clock drives bot pacing,
// auto-dealing and turn timers.
func NewService(cfg *Config, logger *log.Logger, clock quartz.Clock, seed int64) *Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Service{
		logger:      logger.WithPrefix("service"),
		cfg:         cfg,
		clock:       clock,
		rng:         rand.New(rand.NewSource(seed)),
		bots:        make(map[string]*houseBot),
		tableCfg:    make(map[string]TableConfig),
		tableIDs:    make(map[string]string),
		autoDeal:    make(map[string]bool),
		dealPending: make(map[string]bool),
	}
	s.tables = table.NewManager(logger, clock, s.handleUpdate)
	return s
}

// SetNotifier wires the transport in. Must be called before Setup.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Setup opens the configured tables and seats their bots
func (s *Service) Setup() error {
	for _, tc := range s.cfg.Tables {
		id, err := s.tables.Create(table.Settings{
			Name: tc.Name,
			Game: game.Config{
				SmallBlind: tc.SmallBlind,
				BigBlind:   tc.BigBlind,
				MaxSeats:   tc.MaxSeats,
			},
			ActionTimeout: time.Duration(tc.ActionTimeout) * time.Second,
			Seed:          tc.Seed,
		})
		if err != nil {
			return fmt.Errorf("table %s: %w", tc.Name, err)
		}

		s.mu.Lock()
		s.tableCfg[id] = tc
		s.tableIDs[tc.Name] = id
		s.autoDeal[id] = tc.AutoDeal
		s.mu.Unlock()

		for _, bc := range s.cfg.BotsForTable(tc.Name) {
			if err := s.addBot(id, bc); err != nil {
				return fmt.Errorf("bot %s: %w", bc.Name, err)
			}
		}
	}
	return nil
}

// TableID resolves a configured table name to its ID
func (s *Service) TableID(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tableIDs[name]
	return id, ok
}

// ListTables returns the lobby listing
func (s *Service) ListTables() []table.Summary {
	return s.tables.List()
}

// Snapshot returns one viewer's projection of a table
func (s *Service) Snapshot(tableID, viewerID string) (game.Snapshot, error) {
	return s.tables.Snapshot(tableID, viewerID)
}

// Join seats a player, enforcing the table's buy-in bounds
func (s *Service) Join(tableID, playerID, name string, buyIn int) error {
	s.mu.Lock()
	tc, ok := s.tableCfg[tableID]
	s.mu.Unlock()
	if !ok {
		return table.ErrUnknownTable
	}
	if buyIn < tc.BuyInMin || buyIn > tc.BuyInMax {
		return fmt.Errorf("%w: buy-in %d outside %d-%d", game.ErrIllegalAction, buyIn, tc.BuyInMin, tc.BuyInMax)
	}
	return s.tables.Join(tableID, playerID, name, buyIn)
}

// Leave removes a player from a table
func (s *Service) Leave(tableID, playerID string) error {
	return s.tables.Leave(tableID, playerID)
}

// Act routes a wire action to a table
func (s *Service) Act(tableID, playerID string, data PlayerActionData) error {
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	return s.tables.Submit(tableID, playerID, action)
}

// addBot seats a house bot. Bots hold a player seat like anyone else;
// the service answers their action requests itself.
func (s *Service) addBot(tableID string, bc BotConfig) error {
	bot := &houseBot{
		id:       uuid.NewString(),
		name:     bc.Name,
		strategy: bc.Strategy,
		tableID:  tableID,
	}
	s.mu.Lock()
	s.bots[bot.id] = bot
	s.mu.Unlock()

	s.logger.Info("seating bot", "bot", bc.Name, "strategy", bc.Strategy)
	return s.tables.Join(tableID, bot.id, bc.Name, bc.BuyIn)
}

// handleUpdate runs after every table state change: push snapshots,
// then line up whatever happens next (a bot move, an action request,
// or the next deal).
func (s *Service) handleUpdate(tableID string) {
	if s.notifier != nil {
		s.notifier.BroadcastState(tableID)
	}

	snap, err := s.tables.Snapshot(tableID, "")
	if err != nil {
		return // table closed under us
	}

	if snap.ToAct >= 0 {
		seat := snap.Seats[snap.ToAct]
		s.mu.Lock()
		bot, isBot := s.bots[seat.ID]
		s.mu.Unlock()

		if isBot {
			s.clock.AfterFunc(botActDelay, func() { s.runBot(bot) })
			return
		}
		s.requestAction(tableID, seat.ID)
		return
	}

	s.mu.Lock()
	deal := s.autoDeal[tableID]
	s.mu.Unlock()
	if deal {
		s.scheduleDeal(tableID)
	}
}

// requestAction tells a human player it is their turn
func (s *Service) requestAction(tableID, playerID string) {
	if s.notifier == nil {
		return
	}
	legal, err := s.tables.LegalActions(tableID, playerID)
	if err != nil {
		return
	}
	snap, err := s.tables.Snapshot(tableID, playerID)
	if err != nil {
		return
	}

	actions := make([]string, len(legal))
	for i, a := range legal {
		actions[i] = a.String()
	}
	callAmount := 0
	if snap.ToAct >= 0 {
		callAmount = snap.CurrentBet - snap.Seats[snap.ToAct].Bet
	}

	s.mu.Lock()
	timeout := s.tableCfg[tableID].ActionTimeout
	s.mu.Unlock()

	s.notifier.RequestAction(playerID, ActionRequiredData{
		TableID:        tableID,
		LegalActions:   actions,
		CallAmount:     callAmount,
		MinRaiseTo:     snap.CurrentBet + snap.MinRaise,
		TimeoutSeconds: timeout,
	})
}

// scheduleDeal lines up the next hand once per completed hand
func (s *Service) scheduleDeal(tableID string) {
	s.mu.Lock()
	if s.dealPending[tableID] {
		s.mu.Unlock()
		return
	}
	s.dealPending[tableID] = true
	s.mu.Unlock()

	s.clock.AfterFunc(autoDealDelay, func() {
		s.mu.Lock()
		delete(s.dealPending, tableID)
		s.mu.Unlock()

		if err := s.tables.Deal(tableID); err != nil {
			s.logger.Debug("deal skipped", "table", tableID, "reason", err)
		}
	})
}

// runBot makes one bot decision if it is still the bot's turn
func (s *Service) runBot(bot *houseBot) {
	snap, err := s.tables.Snapshot(bot.tableID, bot.id)
	if err != nil || snap.ToAct < 0 {
		return
	}
	seat := snap.Seats[snap.ToAct]
	if seat.ID != bot.id {
		return
	}

	action := s.decide(bot, snap, seat)
	if err := s.tables.Submit(bot.tableID, bot.id, action); err != nil {
		s.logger.Error("bot action rejected, folding", "bot", bot.name, "error", err)
		_ = s.tables.Submit(bot.tableID, bot.id, game.Action{Type: game.Fold})
	}
}

// decide picks a bot's action from its strategy
func (s *Service) decide(bot *houseBot, snap game.Snapshot, seat game.SeatView) game.Action {
	toCall := snap.CurrentBet - seat.Bet

	switch bot.strategy {
	case "fold":
		if toCall == 0 {
			return game.Action{Type: game.Check}
		}
		return game.Action{Type: game.Fold}

	case "random":
		legal, err := s.tables.LegalActions(bot.tableID, bot.id)
		if err != nil || len(legal) == 0 {
			return game.Action{Type: game.Fold}
		}
		s.mu.Lock()
		pick := legal[s.rng.Intn(len(legal))]
		s.mu.Unlock()

		switch pick {
		case game.Raise:
			amount := snap.CurrentBet + snap.MinRaise
			if amount-seat.Bet >= seat.Chips {
				return game.Action{Type: game.AllIn}
			}
			return game.Action{Type: game.Raise, Amount: amount}
		case game.AllIn:
			// Shoving at random busts tables too fast to be useful
			if toCall == 0 {
				return game.Action{Type: game.Check}
			}
			return game.Action{Type: game.Call}
		default:
			return game.Action{Type: pick}
		}

	default: // call
		if toCall == 0 {
			return game.Action{Type: game.Check}
		}
		return game.Action{Type: game.Call}
	}
}
