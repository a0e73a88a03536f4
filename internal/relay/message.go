package relay

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/chess-relay/internal/entity"
)

// Inbound actions.
const (
	ActionCreateSession = "createSession"
	ActionJoinSession   = "joinSession"
	ActionMove          = "move"
	ActionResetGame     = "resetGame"
	ActionUndoMove      = "undoMove"

	// aliases accepted from older clients
	actionCreateGame = "createGame"
	actionJoinGame   = "joinGame"
)

// Outbound actions.
const (
	ActionGameCreated          = "gameCreated"
	ActionPlayerColor          = "playerColor"
	ActionOpponentReady        = "opponentReady"
	ActionOpponentMove         = "opponentMove"
	ActionGameReset            = "gameReset"
	ActionUndoApplied          = "undoMove"
	ActionOpponentDisconnected = "opponentDisconnected"
	ActionError                = "error"
)

// Message is the envelope exchanged with clients in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	SessionID string      `json:"gameId"`
	Move      entity.Move `json:"move,omitempty"`
}

type ResponsePayload struct {
	SessionID string      `json:"gameId,omitempty"`
	Color     entity.Role `json:"color,omitempty"`
	Move      entity.Move `json:"move,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// NewMessage builds an outbound message. A nil payload is left out of the envelope.
func NewMessage(action string, payload *ResponsePayload) (*Message, error) {
	msg := &Message{Action: action}

	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	msg.Payload = raw

	return msg, nil
}

func (that *Message) decodePayload() (*RequestPayload, error) {
	var payload RequestPayload

	if len(that.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(that.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", that.Action, err)
	}

	return &payload, nil
}
