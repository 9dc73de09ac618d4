package server

import (
	"encoding/json"
	"time"

	"cardroom/internal/game"
	"cardroom/internal/table"
)

// MessageType identifies a WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeAuth         MessageType = "auth"
	MessageTypeListTables   MessageType = "list_tables"
	MessageTypeJoinTable    MessageType = "join_table"
	MessageTypeLeaveTable   MessageType = "leave_table"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the WebSocket envelope: a type tag plus a JSON payload
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client to server payloads

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
	BuyIn   int    `json:"buyIn"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type PlayerActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

// Server to client payloads

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type TableListData struct {
	Tables []table.Summary `json:"tables"`
}

type TableJoinedData struct {
	TableID string        `json:"tableId"`
	State   game.Snapshot `json:"state"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
}

type TableStateData struct {
	TableID string        `json:"tableId"`
	State   game.Snapshot `json:"state"`
}

type ActionRequiredData struct {
	TableID        string   `json:"tableId"`
	LegalActions   []string `json:"legalActions"`
	CallAmount     int      `json:"callAmount"`
	MinRaiseTo     int      `json:"minRaiseTo"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseAction converts a wire action into a game action
func parseAction(data PlayerActionData) (game.Action, error) {
	switch data.Action {
	case "fold":
		return game.Action{Type: game.Fold}, nil
	case "check":
		return game.Action{Type: game.Check}, nil
	case "call":
		return game.Action{Type: game.Call}, nil
	case "raise":
		return game.Action{Type: game.Raise, Amount: data.Amount}, nil
	case "allin":
		return game.Action{Type: game.AllIn}, nil
	default:
		return game.Action{}, game.ErrIllegalAction
	}
}
