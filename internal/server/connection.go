package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cardroom/internal/game"
	"cardroom/internal/table"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client: a read pump that dispatches
// requests to the service and a write pump that drains the send queue.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	service   *Service
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once

	playerID   string
	playerName string
	tableID    string
}

// NewConnection creates a connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *Service) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		service: service,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.PlayerID())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerID returns the authenticated player ID, empty before auth
func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// TableID returns the table this connection is seated at
func (c *Connection) TableID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

func (c *Connection) setPlayer(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
	c.playerName = name
}

func (c *Connection) setTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = tableID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one client request
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.PlayerID())

	switch msg.Type {
	case MessageTypeAuth:
		c.handleAuth(msg.Data)
	case MessageTypeListTables:
		c.handleListTables()
	case MessageTypeJoinTable:
		c.handleJoinTable(msg.Data)
	case MessageTypeLeaveTable:
		c.handleLeaveTable(msg.Data)
	case MessageTypePlayerAction:
		c.handlePlayerAction(msg.Data)
	default:
		c.sendError("unknown_type", "unrecognized message type")
	}
}

func (c *Connection) handleAuth(data json.RawMessage) {
	var auth AuthData
	if err := json.Unmarshal(data, &auth); err != nil || auth.PlayerName == "" {
		c.reply(MessageTypeAuthResponse, AuthResponseData{Success: false, Error: "player name required"})
		return
	}

	playerID := uuid.NewString()
	c.setPlayer(playerID, auth.PlayerName)
	c.logger.Info("player authenticated", "player", auth.PlayerName, "id", playerID)
	c.reply(MessageTypeAuthResponse, AuthResponseData{Success: true, PlayerID: playerID})
}

func (c *Connection) handleListTables() {
	c.reply(MessageTypeTableList, TableListData{Tables: c.service.ListTables()})
}

func (c *Connection) handleJoinTable(data json.RawMessage) {
	if c.PlayerID() == "" {
		c.sendError("not_authenticated", "authenticate first")
		return
	}
	var join JoinTableData
	if err := json.Unmarshal(data, &join); err != nil {
		c.sendError("invalid_message", "failed to parse join data")
		return
	}

	c.mu.RLock()
	playerID, playerName := c.playerID, c.playerName
	c.mu.RUnlock()

	if err := c.service.Join(join.TableID, playerID, playerName, join.BuyIn); err != nil {
		c.sendError(joinErrorCode(err), err.Error())
		return
	}
	c.setTable(join.TableID)

	snap, err := c.service.Snapshot(join.TableID, playerID)
	if err != nil {
		c.sendError("snapshot_failed", err.Error())
		return
	}
	c.reply(MessageTypeTableJoined, TableJoinedData{TableID: join.TableID, State: snap})
}

func (c *Connection) handleLeaveTable(data json.RawMessage) {
	var leave LeaveTableData
	if err := json.Unmarshal(data, &leave); err != nil {
		c.sendError("invalid_message", "failed to parse leave data")
		return
	}

	if err := c.service.Leave(leave.TableID, c.PlayerID()); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	c.setTable("")
	c.reply(MessageTypeTableLeft, TableLeftData{TableID: leave.TableID})
}

func (c *Connection) handlePlayerAction(data json.RawMessage) {
	var action PlayerActionData
	if err := json.Unmarshal(data, &action); err != nil {
		c.sendError("invalid_message", "failed to parse action data")
		return
	}
	if action.TableID == "" {
		action.TableID = c.TableID()
	}

	if err := c.service.Act(action.TableID, c.PlayerID(), action); err != nil {
		c.sendError(actionErrorCode(err), err.Error())
	}
}

func (c *Connection) reply(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("failed to build message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, table.ErrUnknownTable):
		return "unknown_table"
	case errors.Is(err, game.ErrTableFull):
		return "table_full"
	case errors.Is(err, game.ErrAlreadySeated):
		return "already_seated"
	default:
		return "join_failed"
	}
}

func actionErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrWrongPhase):
		return "no_betting"
	case errors.Is(err, game.ErrIllegalAction):
		return "illegal_action"
	default:
		return "action_failed"
	}
}
