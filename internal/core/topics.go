package core

import "github.com/dkeye/chatrelay/internal/domain"

const (
	// MessageTopic carries chat, join and leave messages of every room;
	// clients filter on the message's roomId.
	MessageTopic = "/topic/message"
	// MembersQueue is the private channel delivering a roster to one connection.
	MembersQueue = "/user/queue/members"
)

// MembersTopic is the roster topic of one room.
func MembersTopic(room domain.RoomID) string {
	return "/topic/" + string(room) + "/members"
}
