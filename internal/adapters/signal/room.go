package signal

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleSubscribe(sid core.SessionID, conn *WsSignalConn, f inFrame) {
	topic := strings.TrimSpace(f.Topic)
	if topic == "" {
		ctl.sendError(conn, "topic_required")
		return
	}
	if !ctl.Broker.Subscribe(sid, topic) {
		ctl.sendError(conn, "not_registered")
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("topic", topic).Msg("subscribe")
	ctl.sendJSON(conn, core.Envelope{Type: "subscribed", Topic: topic})
}

func (ctl *SignalWSController) handleUnsubscribe(sid core.SessionID, conn *WsSignalConn, f inFrame) {
	topic := strings.TrimSpace(f.Topic)
	if topic == "" {
		ctl.sendError(conn, "topic_required")
		return
	}
	ctl.Broker.Unsubscribe(sid, topic)
	ctl.sendJSON(conn, core.Envelope{Type: "unsubscribed", Topic: topic})
}

// handleSend forwards a chat message to the orchestrator. A null or missing
// payload reaches it as nil and is ignored there.
func (ctl *SignalWSController) handleSend(sid core.SessionID, conn *WsSignalConn, nickname string, f inFrame) {
	var msg *domain.Message
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, &msg); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad send payload")
			ctl.sendError(conn, "bad_payload")
			return
		}
	}
	if msg != nil && strings.TrimSpace(msg.Sender) == "" && nickname != "" {
		msg.Sender = nickname
	}
	ctl.Orch.OnMessage(sid, msg)
}
