package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/chess-relay/internal/apperror"
	"github.com/rocketscienceinc/chess-relay/internal/entity"
	"github.com/rocketscienceinc/chess-relay/internal/registry"
)

const messageInvalidRequest = "invalid request"

type sessionRegistry interface {
	Create(connID string) (string, error)
	Join(sessionID, connID string) ([]entity.Participant, error)
	RecordMove(sessionID, senderID string, move entity.Move) ([]string, bool)
	Reset(sessionID string) ([]string, bool)
	Undo(sessionID string) ([]string, bool)
	RemoveConnection(connID string) (registry.Departure, bool)
}

type notifier interface {
	Send(connID string, msg *Message) error
}

type handlerFunc func(ctx context.Context, connID string, msg *Message) error

// Handler maps every inbound action to one registry operation and fans the outcome out to the session.
type Handler struct {
	logger   *slog.Logger
	registry sessionRegistry
	notifier notifier

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, registry sessionRegistry, notifier notifier) *Handler {
	handler := &Handler{
		logger:   logger.With("component", "relay"),
		registry: registry,
		notifier: notifier,

		handlers: make(map[string]handlerFunc),
	}

	handler.handlers[ActionCreateSession] = handler.handleCreateSession
	handler.handlers[ActionJoinSession] = handler.handleJoinSession
	handler.handlers[ActionMove] = handler.handleMove
	handler.handlers[ActionResetGame] = handler.handleReset
	handler.handlers[ActionUndoMove] = handler.handleUndo

	handler.handlers[actionCreateGame] = handler.handleCreateSession
	handler.handlers[actionJoinGame] = handler.handleJoinSession

	return handler
}

// Handle - decodes one inbound frame from connID and processes it to completion.
func (that *Handler) Handle(ctx context.Context, connID string, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return that.rejectRequest(connID, fmt.Errorf("failed to unmarshal message: %w", err))
	}

	handler, ok := that.handlers[msg.Action]
	if !ok {
		that.logger.Warn("rejected request", "connID", connID, "error", fmt.Errorf("%w: %s", apperror.ErrUnknownAction, msg.Action))

		return that.sendError(connID, fmt.Sprintf("%v: %q", apperror.ErrUnknownAction, msg.Action))
	}

	return handler(ctx, connID, &msg)
}

// Disconnect - removes connID from its session and tells whoever is left.
func (that *Handler) Disconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "Disconnect", "connID", connID)

	departure, ok := that.registry.RemoveConnection(connID)
	if !ok {
		log.DebugContext(ctx, "connection was not in a session")
		return
	}

	log = log.With("sessionID", departure.SessionID)

	that.broadcast(ctx, departure.Remaining, ActionOpponentDisconnected, nil)

	if departure.Deleted {
		log.Info("last participant left, session deleted")
		return
	}

	log.Info("participant left session", "remaining", len(departure.Remaining))
}

func (that *Handler) handleCreateSession(ctx context.Context, connID string, _ *Message) error {
	log := that.logger.With("method", "handleCreateSession", "connID", connID)

	sessionID, err := that.registry.Create(connID)
	if err != nil {
		log.Warn("failed to create session", "error", err)
		return that.sendError(connID, errorMessage(err))
	}

	log = log.With("sessionID", sessionID)

	if err = that.send(connID, ActionGameCreated, &ResponsePayload{SessionID: sessionID}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.InfoContext(ctx, "session created")

	return nil
}

func (that *Handler) handleJoinSession(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleJoinSession", "connID", connID)

	payload, err := msg.decodePayload()
	if err != nil {
		return that.rejectRequest(connID, err)
	}

	log = log.With("sessionID", payload.SessionID)

	participants, err := that.registry.Join(payload.SessionID, connID)
	if err != nil {
		log.Warn("failed to join session", "error", err)
		return that.sendError(connID, errorMessage(err))
	}

	for _, participant := range participants {
		resp := &ResponsePayload{
			SessionID: payload.SessionID,
			Color:     participant.Role,
		}

		if err = that.send(participant.ConnectionID, ActionPlayerColor, resp); err != nil {
			log.Error("failed to send player color", "recipient", participant.ConnectionID, "error", err)
		}
	}

	recipients := make([]string, 0, len(participants))
	for _, participant := range participants {
		recipients = append(recipients, participant.ConnectionID)
	}

	that.broadcast(ctx, recipients, ActionOpponentReady, &ResponsePayload{SessionID: payload.SessionID})

	log.InfoContext(ctx, "participant joined session")

	return nil
}

func (that *Handler) handleMove(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleMove", "connID", connID)

	payload, err := msg.decodePayload()
	if err != nil {
		return that.rejectRequest(connID, err)
	}

	recipients, ok := that.registry.RecordMove(payload.SessionID, connID, payload.Move)
	if !ok {
		log.DebugContext(ctx, "move for unknown session ignored", "sessionID", payload.SessionID)
		return nil
	}

	that.broadcast(ctx, recipients, ActionOpponentMove, &ResponsePayload{Move: payload.Move})

	return nil
}

func (that *Handler) handleReset(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleReset", "connID", connID)

	payload, err := msg.decodePayload()
	if err != nil {
		return that.rejectRequest(connID, err)
	}

	recipients, ok := that.registry.Reset(payload.SessionID)
	if !ok {
		log.DebugContext(ctx, "reset for unknown session ignored", "sessionID", payload.SessionID)
		return nil
	}

	that.broadcast(ctx, recipients, ActionGameReset, nil)

	log.InfoContext(ctx, "session reset", "sessionID", payload.SessionID)

	return nil
}

func (that *Handler) handleUndo(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleUndo", "connID", connID)

	payload, err := msg.decodePayload()
	if err != nil {
		return that.rejectRequest(connID, err)
	}

	recipients, ok := that.registry.Undo(payload.SessionID)
	if !ok {
		log.DebugContext(ctx, "nothing to undo", "sessionID", payload.SessionID)
		return nil
	}

	that.broadcast(ctx, recipients, ActionUndoApplied, nil)

	return nil
}

// broadcast delivers the same message to every recipient. A failed delivery never stops the others.
func (that *Handler) broadcast(ctx context.Context, recipients []string, action string, payload *ResponsePayload) {
	log := that.logger.With("method", "broadcast", "action", action)

	msg, err := NewMessage(action, payload)
	if err != nil {
		log.ErrorContext(ctx, "failed to build message", "error", err)
		return
	}

	for _, recipient := range recipients {
		if err = that.notifier.Send(recipient, msg); err != nil {
			log.WarnContext(ctx, "failed to deliver message", "recipient", recipient, "error", err)
		}
	}
}

func (that *Handler) send(connID, action string, payload *ResponsePayload) error {
	msg, err := NewMessage(action, payload)
	if err != nil {
		return err
	}

	if err = that.notifier.Send(connID, msg); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", action, connID, err)
	}

	return nil
}

func (that *Handler) sendError(connID, message string) error {
	return that.send(connID, ActionError, &ResponsePayload{Message: message})
}

// rejectRequest answers a malformed request with an error event. Only a failed reply is returned.
func (that *Handler) rejectRequest(connID string, err error) error {
	that.logger.Warn("rejected request", "connID", connID, "error", err)

	return that.sendError(connID, messageInvalidRequest)
}

// errorMessage turns a registry error into the text shown to the client.
func errorMessage(err error) string {
	for _, known := range []error{
		apperror.ErrSessionNotFound,
		apperror.ErrSessionFull,
		apperror.ErrAlreadyInSession,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "failed to process request"
}
