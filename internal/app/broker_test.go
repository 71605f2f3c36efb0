package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full || c.closed {
		return errors.New("queue full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) envelopes(t *testing.T) []testEnvelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]testEnvelope, 0, len(c.frames))
	for _, f := range c.frames {
		var env testEnvelope
		if err := json.Unmarshal(f, &env); err != nil {
			t.Fatalf("decode frame %s: %v", f, err)
		}
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type testEnvelope struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func TestBrokerTopicFanOut(t *testing.T) {
	b := NewBroker(SimplePolicy{}, nil)
	c1, c2, c3 := &fakeConn{}, &fakeConn{}, &fakeConn{}
	b.Register("c1", c1)
	b.Register("c2", c2)
	b.Register("c3", c3)
	b.Subscribe("c1", core.MessageTopic)
	b.Subscribe("c2", core.MessageTopic)
	b.Subscribe("c3", core.MembersTopic("r1"))

	b.SendToTopic(core.MessageTopic, domain.Message{Sender: "alice", Type: domain.TypeChat, Content: "hi", RoomID: "r1"})

	for name, c := range map[string]*fakeConn{"c1": c1, "c2": c2} {
		envs := c.envelopes(t)
		if len(envs) != 1 {
			t.Fatalf("%s got %d frames, want 1", name, len(envs))
		}
		if envs[0].Type != "message" || envs[0].Topic != core.MessageTopic {
			t.Fatalf("%s envelope = %+v", name, envs[0])
		}
		var msg domain.Message
		if err := json.Unmarshal(envs[0].Payload, &msg); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if msg.Content != "hi" || msg.RoomID != "r1" {
			t.Fatalf("%s payload = %+v", name, msg)
		}
	}
	if n := len(c3.envelopes(t)); n != 0 {
		t.Fatalf("c3 got %d frames, want 0", n)
	}
}

func TestBrokerSendToSession(t *testing.T) {
	b := NewBroker(nil, nil)
	c1, c2 := &fakeConn{}, &fakeConn{}
	b.Register("c1", c1)
	b.Register("c2", c2)

	b.SendToSession("c1", core.MembersQueue, []string{})
	b.SendToSession("missing", core.MembersQueue, []string{"x"})

	envs := c1.envelopes(t)
	if len(envs) != 1 || envs[0].Topic != core.MembersQueue {
		t.Fatalf("c1 envelopes = %+v", envs)
	}
	if string(envs[0].Payload) != "[]" {
		t.Fatalf("payload = %s, want []", envs[0].Payload)
	}
	if n := len(c2.envelopes(t)); n != 0 {
		t.Fatalf("c2 got %d frames, want 0", n)
	}
}

func TestBrokerSubscribeRequiresRegistration(t *testing.T) {
	b := NewBroker(nil, nil)
	if b.Subscribe("ghost", core.MessageTopic) {
		t.Fatal("unregistered session subscribed")
	}
	if n := b.Subscribers(core.MessageTopic); n != 0 {
		t.Fatalf("subscribers = %d, want 0", n)
	}
}

func TestBrokerUnregisterDropsSubscriptions(t *testing.T) {
	b := NewBroker(nil, nil)
	c1 := &fakeConn{}
	b.Register("c1", c1)
	b.Subscribe("c1", core.MessageTopic)
	b.Subscribe("c1", core.MembersTopic("r1"))

	b.Unregister("c1")
	b.SendToTopic(core.MessageTopic, "x")

	if n := b.Subscribers(core.MessageTopic); n != 0 {
		t.Fatalf("message subscribers = %d, want 0", n)
	}
	if n := b.Subscribers(core.MembersTopic("r1")); n != 0 {
		t.Fatalf("members subscribers = %d, want 0", n)
	}
	if n := len(c1.envelopes(t)); n != 0 {
		t.Fatalf("c1 got %d frames after unregister", n)
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker(nil, nil)
	c1 := &fakeConn{}
	b.Register("c1", c1)
	b.Subscribe("c1", core.MessageTopic)
	b.Unsubscribe("c1", core.MessageTopic)

	b.SendToTopic(core.MessageTopic, "x")
	if n := len(c1.envelopes(t)); n != 0 {
		t.Fatalf("c1 got %d frames after unsubscribe", n)
	}
}

func TestBrokerBackpressurePolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		wantClosed bool
		wantKicked float64
	}{
		{name: "simple kicks", policy: SimplePolicy{}, wantClosed: true, wantKicked: 1},
		{name: "tolerant drops", policy: TolerantPolicy{}, wantClosed: false, wantKicked: 0},
		{name: "no policy", policy: nil, wantClosed: false, wantKicked: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			b := NewBroker(tt.policy, metrics.New(reg))
			slow, fast := &fakeConn{full: true}, &fakeConn{}
			b.Register("slow", slow)
			b.Register("fast", fast)
			b.Subscribe("slow", core.MessageTopic)
			b.Subscribe("fast", core.MessageTopic)

			b.SendToTopic(core.MessageTopic, "x")

			if slow.isClosed() != tt.wantClosed {
				t.Fatalf("slow closed = %v, want %v", slow.isClosed(), tt.wantClosed)
			}
			if fast.isClosed() {
				t.Fatal("fast subscriber closed")
			}
			if n := len(fast.envelopes(t)); n != 1 {
				t.Fatalf("fast got %d frames, want 1", n)
			}
			if got := counterValue(t, reg, "chatrelay_subscribers_kicked_total"); got != tt.wantKicked {
				t.Fatalf("kicked = %v, want %v", got, tt.wantKicked)
			}
			if got := counterValue(t, reg, "chatrelay_frames_dropped_total"); got != 1 {
				t.Fatalf("dropped = %v, want 1", got)
			}
		})
	}
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			var sum float64
			for _, m := range f.GetMetric() {
				sum += m.GetCounter().GetValue()
			}
			return sum
		}
	}
	return 0
}
