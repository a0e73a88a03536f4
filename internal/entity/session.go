package entity

import (
	"encoding/json"
	"slices"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/chess-relay/internal/apperror"
)

const MaxParticipants = 2

// Move is relayed as-is and never interpreted.
type Move = json.RawMessage

type Session struct {
	ID           string         `json:"id"`
	Participants []*Participant `json:"participants"`
	Moves        []Move         `json:"moves"`
}

// NewSession creates a session owned by the creating connection.
func NewSession(id, connID string) *Session {
	return &Session{
		ID: id,
		Participants: []*Participant{
			{ConnectionID: connID, Role: RoleFirst},
		},
		Moves: []Move{},
	}
}

func (that *Session) IsFull() bool {
	return len(that.Participants) >= MaxParticipants
}

func (that *Session) IsEmpty() bool {
	return len(that.Participants) == 0
}

func (that *Session) HasParticipant(connID string) bool {
	return lo.ContainsBy(that.Participants, func(p *Participant) bool {
		return p.ConnectionID == connID
	})
}

// AddParticipant appends the joining connection as the second participant.
// Whoever is already seated plays first, even if they joined as second.
func (that *Session) AddParticipant(connID string) (*Participant, error) {
	if that.IsFull() {
		return nil, apperror.ErrSessionFull
	}

	for _, seated := range that.Participants {
		seated.Role = RoleFirst
	}

	participant := &Participant{ConnectionID: connID, Role: RoleSecond}
	that.Participants = append(that.Participants, participant)

	return participant, nil
}

// RemoveParticipant reports whether connID was a participant.
func (that *Session) RemoveParticipant(connID string) bool {
	before := len(that.Participants)

	that.Participants = lo.Reject(that.Participants, func(p *Participant, _ int) bool {
		return p.ConnectionID == connID
	})

	return len(that.Participants) != before
}

func (that *Session) PushMove(move Move) {
	that.Moves = append(that.Moves, move)
}

// PopMove removes the last move. It returns false when the log is empty.
func (that *Session) PopMove() bool {
	if len(that.Moves) == 0 {
		return false
	}

	that.Moves[len(that.Moves)-1] = nil
	that.Moves = that.Moves[:len(that.Moves)-1]

	return true
}

func (that *Session) ClearMoves() {
	that.Moves = []Move{}
}

// ConnectionIDs returns every participant's connection, in join order.
func (that *Session) ConnectionIDs() []string {
	return lo.Map(that.Participants, func(p *Participant, _ int) string {
		return p.ConnectionID
	})
}

// PeersOf returns the connections of everyone except connID.
func (that *Session) PeersOf(connID string) []string {
	return lo.FilterMap(that.Participants, func(p *Participant, _ int) (string, bool) {
		return p.ConnectionID, p.ConnectionID != connID
	})
}

// Clone returns a deep copy that shares no memory with the receiver.
func (that *Session) Clone() Session {
	return Session{
		ID: that.ID,
		Participants: lo.Map(that.Participants, func(p *Participant, _ int) *Participant {
			clone := *p
			return &clone
		}),
		Moves: lo.Map(that.Moves, func(m Move, _ int) Move {
			return slices.Clone(m)
		}),
	}
}
