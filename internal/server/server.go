package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server accepts WebSocket clients and fans table updates out to them.
// It implements Notifier for the game service.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	service     *Service
	httpServer  *http.Server
}

// NewServer creates a WebSocket server on top of the game service
func NewServer(addr string, logger *log.Logger, service *Service) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is deferred to the deployment's proxy
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		service:     service,
	}
	service.SetNotifier(s)
	return s
}

// Start runs the accept loop and blocks serving HTTP until Stop
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	s.logger.Info("starting websocket server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop closes every client connection and shuts the listener down
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				// A dropped client forfeits their seat; the session
				// folds them out of any hand in progress
				playerID, tableID := conn.PlayerID(), conn.TableID()
				if playerID != "" && tableID != "" {
					s.logger.Info("releasing disconnected player", "player", playerID, "table", tableID)
					_ = s.service.Leave(tableID, playerID)
				}
				_ = conn.Close()
			}
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades a client and registers it
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.service)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// BroadcastState sends each client at a table its own view of the
// state. Views differ per viewer, so every client gets a fresh
// snapshot rather than one shared message.
func (s *Server) BroadcastState(tableID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.TableID() != tableID {
			continue
		}
		snap, err := s.service.Snapshot(tableID, conn.PlayerID())
		if err != nil {
			return // table closed
		}
		msg, err := NewMessage(MessageTypeTableState, TableStateData{TableID: tableID, State: snap})
		if err != nil {
			s.logger.Error("failed to build state message", "error", err)
			return
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("failed to send state", "player", conn.PlayerID(), "error", err)
		}
	}
}

// RequestAction tells one player it is their turn
func (s *Server) RequestAction(playerID string, data ActionRequiredData) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.PlayerID() != playerID {
			continue
		}
		msg, err := NewMessage(MessageTypeActionRequired, data)
		if err != nil {
			s.logger.Error("failed to build action request", "error", err)
			return
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("failed to send action request", "player", playerID, "error", err)
		}
		return
	}
}
