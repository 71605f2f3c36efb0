package domain

import "strings"

const (
	TypeChat  = "CHAT"
	TypeJoin  = "JOIN"
	TypeLeave = "LEAVE"
)

// Message is the chat payload exchanged with clients. Every field is optional
// on the way in.
type Message struct {
	Sender  string `json:"sender"`
	Type    string `json:"type"`
	Content string `json:"content"`
	RoomID  RoomID `json:"roomId"`
}

// Normalized returns a copy with type upper-cased and defaulted to CHAT,
// room defaulted to DefaultRoom and sender defaulted to DefaultUsername.
func (m Message) Normalized() Message {
	m.Type = strings.ToUpper(strings.TrimSpace(m.Type))
	if m.Type == "" {
		m.Type = TypeChat
	}
	m.RoomID = m.RoomID.OrDefault()
	m.Sender = strings.TrimSpace(m.Sender)
	if m.Sender == "" {
		m.Sender = DefaultUsername
	}
	return m
}

// LeaveMessage builds the LEAVE notice broadcast when a member's connection drops.
func LeaveMessage(info MemberInfo) Message {
	return Message{
		Sender:  info.Username,
		Type:    TypeLeave,
		Content: info.LeftContent(),
		RoomID:  info.RoomID,
	}
}
