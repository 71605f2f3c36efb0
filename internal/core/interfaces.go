package core

//go:generate mockgen -destination=mock_core/mock_sender.go -package=mock_core github.com/dkeye/chatrelay/internal/core Sender

import "github.com/dkeye/chatrelay/internal/domain"

// SessionID identifies one live transport connection.
type SessionID string

// Presence is the single source of truth for who is in which room.
// Implementations must be safe for concurrent use without external locking.
type Presence interface {
	// Join records sid as username in room. A previous membership of sid is
	// released and returned.
	Join(sid SessionID, room domain.RoomID, username string) (domain.MemberInfo, bool)
	RemoveBySession(sid SessionID) (domain.MemberInfo, bool)
	// Members returns a sorted snapshot the caller owns.
	Members(room domain.RoomID) []string
}

// Sender is the outbound capability of the transport.
// Sends are fire-and-forget; failures are the transport's concern.
type Sender interface {
	SendToTopic(topic string, payload any)
	SendToSession(sid SessionID, channel string, payload any)
}

type RoomInfo struct {
	Name        domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}
