package registry

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/chess-relay/internal/apperror"
	"github.com/rocketscienceinc/chess-relay/internal/entity"
	"github.com/rocketscienceinc/chess-relay/internal/pkg"
)

// Departure describes what happened to a session when one of its connections went away.
type Departure struct {
	SessionID string
	Remaining []string
	Deleted   bool
}

// Registry owns every live session and the connection -> session index.
// It never talks to connections itself: operations return the connection ids that must be notified.
type Registry struct {
	mu sync.Mutex

	sessions    map[string]*entity.Session
	connections map[string]string

	generateID func() string
}

func New() *Registry {
	return &Registry{
		sessions:    make(map[string]*entity.Session),
		connections: make(map[string]string),
		generateID:  pkg.GenerateSessionID,
	}
}

// Create - opens a session owned by connID and returns its id.
func (that *Registry) Create(connID string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.connections[connID]; ok {
		return "", fmt.Errorf("%w: session id %s", apperror.ErrAlreadyInSession, current)
	}

	id := that.generateID()
	for that.exists(id) {
		id = that.generateID()
	}

	that.sessions[id] = entity.NewSession(id, connID)
	that.connections[connID] = id

	return id, nil
}

// Join - adds connID as the second participant and returns both participants in join order.
func (that *Registry) Join(sessionID, connID string) ([]entity.Participant, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session id %s", apperror.ErrSessionNotFound, sessionID)
	}

	if current, ok := that.connections[connID]; ok {
		return nil, fmt.Errorf("%w: session id %s", apperror.ErrAlreadyInSession, current)
	}

	if _, err := session.AddParticipant(connID); err != nil {
		return nil, fmt.Errorf("%w: session id %s", err, sessionID)
	}

	that.connections[connID] = sessionID

	participants := make([]entity.Participant, 0, len(session.Participants))
	for _, p := range session.Participants {
		participants = append(participants, *p)
	}

	return participants, nil
}

// RecordMove - appends move to the session log and returns the connections it must be relayed to.
// The sender is never among them. Reports false if the session does not exist.
func (that *Registry) RecordMove(sessionID, senderID string, move entity.Move) ([]string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[sessionID]
	if !ok {
		return nil, false
	}

	session.PushMove(move)

	return session.PeersOf(senderID), true
}

// Reset - clears the move log and returns every participant of the session.
func (that *Registry) Reset(sessionID string) ([]string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[sessionID]
	if !ok {
		return nil, false
	}

	session.ClearMoves()

	return session.ConnectionIDs(), true
}

// Undo - drops the last move and returns every participant of the session.
// Reports false when the session is unknown or has nothing to undo.
func (that *Registry) Undo(sessionID string) ([]string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[sessionID]
	if !ok {
		return nil, false
	}

	if !session.PopMove() {
		return nil, false
	}

	return session.ConnectionIDs(), true
}

// RemoveConnection - detaches connID from its session, deleting the session once nobody is left.
func (that *Registry) RemoveConnection(connID string) (Departure, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	sessionID, ok := that.connections[connID]
	if !ok {
		return Departure{}, false
	}

	delete(that.connections, connID)

	session, ok := that.sessions[sessionID]
	if !ok {
		return Departure{}, false
	}

	session.RemoveParticipant(connID)

	departure := Departure{
		SessionID: sessionID,
		Remaining: session.ConnectionIDs(),
	}

	if session.IsEmpty() {
		delete(that.sessions, sessionID)
		departure.Deleted = true
	}

	return departure, true
}

// Session - returns a copy of the session, safe to read without holding the lock.
func (that *Registry) Session(id string) (entity.Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return entity.Session{}, false
	}

	return session.Clone(), true
}

// SessionOf - returns the id of the session connID belongs to.
func (that *Registry) SessionOf(connID string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id, ok := that.connections[connID]

	return id, ok
}

func (that *Registry) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}

func (that *Registry) exists(id string) bool {
	_, ok := that.sessions[id]
	return ok
}
