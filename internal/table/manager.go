package table

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"cardroom/internal/game"
)

var (
	// ErrUnknownTable is returned when a request names a table the
	// manager does not host
	ErrUnknownTable = errors.New("unknown table")

	// ErrTableBusy is returned when a table cannot be closed because a
	// hand is still being played
	ErrTableBusy = errors.New("hand in progress")
)

// Settings describes one table to create. A zero ActionTimeout
// disables turn timers; a zero Seed draws one from the manager.
type Settings struct {
	Name          string
	Game          game.Config
	ActionTimeout time.Duration
	Seed          int64
}

// Summary holds lightweight table metadata for lobby listings
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SmallBlind int    `json:"small_blind"`
	BigBlind   int    `json:"big_blind"`
	MaxSeats   int    `json:"max_seats"`
	Players    int    `json:"players"`
	HandNum    int    `json:"hand_num"`
	Phase      string `json:"phase"`
}

// Table pairs one session with the lock that serializes it. Every
// mutation goes through the write lock; snapshots take the read lock,
// so a reader sees the state before or after an action, never both.
type Table struct {
	ID   string
	Name string

	mu      sync.RWMutex
	session *game.Session

	timeout time.Duration
	clock   quartz.Clock
	timer   *quartz.Timer
	turnGen int

	logger *log.Logger
	notify func(tableID string)
}

// Manager hosts independent tables. Tables do not share state; actions
// on different tables proceed in parallel.
type Manager struct {
	logger *log.Logger
	clock  quartz.Clock

	mu     sync.RWMutex
	tables map[string]*Table
	seeds  *rand.Rand

	// onUpdate fires after any state change, including timer-driven
	// ones, so the transport can push fresh snapshots
	onUpdate func(tableID string)
}

// NewManager creates a table manager. onUpdate may be nil.
func NewManager(logger *log.Logger, clock quartz.Clock, onUpdate func(tableID string)) *Manager {
	if onUpdate == nil {
		onUpdate = func(string) {}
	}
	return &Manager{
		logger:   logger.WithPrefix("tables"),
		clock:    clock,
		tables:   make(map[string]*Table),
		seeds:    rand.New(rand.NewSource(time.Now().UnixNano())),
		onUpdate: onUpdate,
	}
}

// Create opens a new table and returns its ID
func (m *Manager) Create(settings Settings) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seed := settings.Seed
	if seed == 0 {
		seed = m.seeds.Int63()
	}

	id := uuid.NewString()
	logger := m.logger.With("table", settings.Name)
	session, err := game.NewSession(settings.Game, rand.New(rand.NewSource(seed)), logger)
	if err != nil {
		return "", err
	}

	m.tables[id] = &Table{
		ID:      id,
		Name:    settings.Name,
		session: session,
		timeout: settings.ActionTimeout,
		clock:   m.clock,
		logger:  logger,
		notify:  func(tableID string) { m.onUpdate(tableID) },
	}
	m.logger.Info("table created", "table", settings.Name, "id", id, "seed", seed)
	return id, nil
}

// Close tears a table down between hands. A table with a hand in
// progress refuses to close; fold or finish the hand first.
func (m *Manager) Close(tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tbl, ok := m.tables[tableID]
	if !ok {
		return ErrUnknownTable
	}

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	if tbl.session.HandInProgress() {
		return ErrTableBusy
	}
	tbl.stopTimer()
	delete(m.tables, tableID)
	m.logger.Info("table closed", "table", tbl.Name, "id", tableID)
	return nil
}

// List returns a lobby summary of every table
func (m *Manager) List() []Summary {
	m.mu.RLock()
	tables := make([]*Table, 0, len(m.tables))
	for _, tbl := range m.tables {
		tables = append(tables, tbl)
	}
	m.mu.RUnlock()

	summaries := make([]Summary, 0, len(tables))
	for _, tbl := range tables {
		summaries = append(summaries, tbl.summary())
	}
	return summaries
}

// Lookup finds a table by ID
func (m *Manager) Lookup(tableID string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tbl, ok := m.tables[tableID]
	if !ok {
		return nil, ErrUnknownTable
	}
	return tbl, nil
}

// Join seats a player at a table
func (m *Manager) Join(tableID, playerID, name string, buyIn int) error {
	tbl, err := m.Lookup(tableID)
	if err != nil {
		return err
	}
	return tbl.mutate(func(s *game.Session) error {
		return s.AddPlayer(playerID, name, buyIn)
	})
}

// Leave removes a player from a table. Mid-hand the seat folds and is
// released when the hand completes.
func (m *Manager) Leave(tableID, playerID string) error {
	tbl, err := m.Lookup(tableID)
	if err != nil {
		return err
	}
	return tbl.mutate(func(s *game.Session) error {
		return s.RemovePlayer(playerID)
	})
}

// Submit routes a player action to a table
func (m *Manager) Submit(tableID, playerID string, action game.Action) error {
	tbl, err := m.Lookup(tableID)
	if err != nil {
		return err
	}
	return tbl.mutate(func(s *game.Session) error {
		return s.Apply(playerID, action)
	})
}

// Deal starts the next hand on a table
func (m *Manager) Deal(tableID string) error {
	tbl, err := m.Lookup(tableID)
	if err != nil {
		return err
	}
	return tbl.mutate(func(s *game.Session) error {
		return s.StartHand()
	})
}

// LegalActions returns the actions currently available to a player
func (m *Manager) LegalActions(tableID, playerID string) ([]game.ActionType, error) {
	tbl, err := m.Lookup(tableID)
	if err != nil {
		return nil, err
	}
	tbl.mu.RLock()
	defer tbl.mu.RUnlock()
	return tbl.session.LegalActions(playerID), nil
}

// Snapshot returns one viewer's projection of a table
func (m *Manager) Snapshot(tableID, viewerID string) (game.Snapshot, error) {
	tbl, err := m.Lookup(tableID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return tbl.Snapshot(viewerID), nil
}

// Snapshot returns one viewer's projection of the table
func (t *Table) Snapshot(viewerID string) game.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session.Snapshot(viewerID)
}

// Ready reports whether the table can deal its next hand
func (t *Table) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session.Ready()
}

func (t *Table) summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.session
	cfg := s.Config()
	return Summary{
		ID:         t.ID,
		Name:       t.Name,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
		MaxSeats:   cfg.MaxSeats,
		Players:    s.PlayerCount(),
		HandNum:    s.HandNum(),
		Phase:      s.Phase().String(),
	}
}

// mutate runs fn under the write lock, then rearms the turn timer and
// signals the transport. Action errors (out of turn, illegal action)
// are returned without a notification since nothing changed.
func (t *Table) mutate(fn func(*game.Session) error) error {
	t.mu.Lock()
	err := fn(t.session)
	t.rearmTimer()
	t.mu.Unlock()

	if err == nil || errors.Is(err, game.ErrHandAborted) {
		t.notify(t.ID)
	}
	return err
}

// rearmTimer schedules a forced action for the seat due to act. Caller
// holds the write lock. Each arming bumps the generation so a timer
// that fires after the player acted is ignored.
func (t *Table) rearmTimer() {
	t.stopTimer()
	if t.timeout <= 0 {
		return
	}
	p := t.session.ToAct()
	if p == nil {
		return
	}

	t.turnGen++
	gen := t.turnGen
	playerID := p.ID
	t.timer = t.clock.AfterFunc(t.timeout, func() {
		t.expireTurn(gen, playerID)
	})
}

func (t *Table) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// expireTurn forces the cheapest action for a player whose turn timer
// ran out: check when free, fold otherwise.
func (t *Table) expireTurn(gen int, playerID string) {
	t.mu.Lock()
	if gen != t.turnGen {
		t.mu.Unlock()
		return
	}
	p := t.session.ToAct()
	if p == nil || p.ID != playerID {
		t.mu.Unlock()
		return
	}

	action := game.Action{Type: game.Fold}
	if t.session.CallAmount() == 0 {
		action.Type = game.Check
	}
	t.logger.Warn("turn timer expired", "player", p.Name, "action", action.Type)

	err := t.session.Apply(playerID, action)
	t.rearmTimer()
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("forced action failed", "player", playerID, "error", err)
		return
	}
	t.notify(t.ID)
}
