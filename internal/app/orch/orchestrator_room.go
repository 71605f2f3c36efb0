package orch

import (
	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) join(sid core.SessionID, msg domain.Message) {
	o.Metrics.Event("join")
	if prev, ok := o.Presence.Join(sid, msg.RoomID, msg.Sender); ok && prev != domain.NewMemberInfo(msg.RoomID, msg.Sender) {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(prev.RoomID)).Str("room", string(msg.RoomID)).Msg("moved to room")
	}
	members := o.Presence.Members(msg.RoomID)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(msg.RoomID)).Str("user", msg.Sender).Int("members", len(members)).Msg("join")

	// Existing members see the join first; the roster push after it is idempotent.
	o.Sender.SendToTopic(core.MessageTopic, msg)
	o.Sender.SendToSession(sid, core.MembersQueue, members)
	o.Sender.SendToTopic(core.MembersTopic(msg.RoomID), members)
}

// leave trusts the stored membership over the room named in the message.
func (o *Orchestrator) leave(sid core.SessionID, msg domain.Message) {
	o.Metrics.Event("leave")
	room := msg.RoomID
	if info, ok := o.Presence.RemoveBySession(sid); ok {
		room = info.RoomID
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Str("user", msg.Sender).Msg("leave")

	o.Sender.SendToTopic(core.MessageTopic, msg)
	o.Sender.SendToTopic(core.MembersTopic(room), o.Presence.Members(room))
}

// OnDisconnect handles a dropped connection. Only a connection that still
// held a membership produces broadcasts.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Metrics.Event("disconnect")
	info, ok := o.Presence.RemoveBySession(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("disconnect without membership")
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(info.RoomID)).Str("user", info.Username).Msg("disconnect")

	o.Sender.SendToTopic(core.MessageTopic, domain.LeaveMessage(info))
	o.Sender.SendToTopic(core.MembersTopic(info.RoomID), o.Presence.Members(info.RoomID))
}
