package app

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Broker is the in-process topic broker behind core.Sender. Connections
// register under their session id, subscribe to topics, and receive frames
// through non-blocking TrySend. It never closes adapter-owned connections
// except when the Policy asks to kick one.
type Broker struct {
	Policy  Policy
	Metrics *metrics.Metrics

	mu     sync.RWMutex
	conns  map[core.SessionID]core.SignalConnection
	topics map[string]map[core.SessionID]struct{}
	subs   map[core.SessionID]map[string]struct{}
}

var _ core.Sender = (*Broker)(nil)

func NewBroker(policy Policy, m *metrics.Metrics) *Broker {
	return &Broker{
		Policy:  policy,
		Metrics: m,
		conns:   make(map[core.SessionID]core.SignalConnection),
		topics:  make(map[string]map[core.SessionID]struct{}),
		subs:    make(map[core.SessionID]map[string]struct{}),
	}
}

// PublishResult reports delivery stats for one frame.
type PublishResult struct {
	SendTo  int
	Dropped []core.SessionID
}

type target struct {
	sid  core.SessionID
	conn core.SignalConnection
}

func (b *Broker) Register(sid core.SessionID, conn core.SignalConnection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[sid] = conn
	log.Debug().Str("module", "app.broker").Str("sid", string(sid)).Msg("registered connection")
}

// Unregister drops the connection and all of its subscriptions.
func (b *Broker) Unregister(sid core.SessionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic := range b.subs[sid] {
		b.removeSub(topic, sid)
	}
	delete(b.subs, sid)
	delete(b.conns, sid)
	log.Debug().Str("module", "app.broker").Str("sid", string(sid)).Msg("unregistered connection")
}

// Subscribe reports false when sid is not registered.
func (b *Broker) Subscribe(sid core.SessionID, topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.conns[sid]; !ok {
		return false
	}
	set, ok := b.topics[topic]
	if !ok {
		set = make(map[core.SessionID]struct{})
		b.topics[topic] = set
	}
	set[sid] = struct{}{}
	mine, ok := b.subs[sid]
	if !ok {
		mine = make(map[string]struct{})
		b.subs[sid] = mine
	}
	mine[topic] = struct{}{}
	log.Debug().Str("module", "app.broker").Str("sid", string(sid)).Str("topic", topic).Msg("subscribed")
	return true
}

func (b *Broker) Unsubscribe(sid core.SessionID, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeSub(topic, sid)
	delete(b.subs[sid], topic)
}

// removeSub must be called with mu held.
func (b *Broker) removeSub(topic string, sid core.SessionID) {
	set, ok := b.topics[topic]
	if !ok {
		return
	}
	delete(set, sid)
	if len(set) == 0 {
		delete(b.topics, topic)
	}
}

func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *Broker) SendToTopic(topic string, payload any) {
	frame, ok := encodeMessage(topic, payload)
	if !ok {
		return
	}
	b.mu.RLock()
	targets := make([]target, 0, len(b.topics[topic]))
	for sid := range b.topics[topic] {
		if conn, ok := b.conns[sid]; ok {
			targets = append(targets, target{sid: sid, conn: conn})
		}
	}
	b.mu.RUnlock()

	res := b.deliver(topic, targets, frame)
	log.Debug().Str("module", "app.broker").Str("topic", topic).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
}

// SendToSession delivers on a private channel; no subscription is needed.
func (b *Broker) SendToSession(sid core.SessionID, channel string, payload any) {
	frame, ok := encodeMessage(channel, payload)
	if !ok {
		return
	}
	b.mu.RLock()
	conn, ok := b.conns[sid]
	b.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "app.broker").Str("sid", string(sid)).Str("channel", channel).Msg("private send to unknown session")
		return
	}
	b.deliver(channel, []target{{sid: sid, conn: conn}}, frame)
}

func (b *Broker) deliver(topic string, targets []target, frame core.Frame) PublishResult {
	res := PublishResult{}
	var slow []target
	for _, t := range targets {
		if err := t.conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, t.sid)
			slow = append(slow, t)
			continue
		}
		res.SendTo++
	}
	b.Metrics.Delivered(res.SendTo)
	b.Metrics.Dropped(len(res.Dropped))

	if b.Policy == nil {
		return res
	}
	for _, t := range slow {
		switch b.Policy.OnBackPressure(topic, t.sid) {
		case KickMember:
			log.Warn().Str("module", "app.broker").Str("sid", string(t.sid)).Str("topic", topic).Msg("kicking slow subscriber")
			b.Metrics.Kicked()
			t.conn.Close()
		case DropFrame, NoAction:
		}
	}
	return res
}

func encodeMessage(topic string, payload any) (core.Frame, bool) {
	b, err := json.Marshal(core.Envelope{Type: "message", Topic: topic, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "app.broker").Str("topic", topic).Msg("encode frame")
		return nil, false
	}
	return b, true
}
