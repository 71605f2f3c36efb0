// Package orch turns transport events into presence changes and outbound sends.
package orch

import (
	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Orchestrator is the room coordinator. It keeps no state of its own: every
// event mutates Presence first and only then pushes through Sender.
type Orchestrator struct {
	Presence core.Presence
	Sender   core.Sender
	Metrics  *metrics.Metrics
}

func (o *Orchestrator) OnConnect(sid core.SessionID) {
	o.Metrics.Event("connect")
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("connected")
}

// OnMessage handles one inbound chat message. A nil message is ignored.
func (o *Orchestrator) OnMessage(sid core.SessionID, in *domain.Message) {
	if in == nil {
		return
	}
	msg := in.Normalized()

	switch msg.Type {
	case domain.TypeJoin:
		o.join(sid, msg)
	case domain.TypeLeave:
		o.leave(sid, msg)
	default:
		o.Metrics.Event("chat")
		o.Sender.SendToTopic(core.MessageTopic, msg)
	}
}
