package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Connected()
	m.Disconnected()
	m.Event("join")
	m.Delivered(3)
	m.Dropped(1)
	m.Kicked()
}

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Connected()
	m.Connected()
	m.Disconnected()
	m.Event("join")
	m.Event("join")
	m.Delivered(4)
	m.Dropped(0)
	m.Kicked()

	if got := testutil.ToFloat64(m.connections); got != 1 {
		t.Fatalf("connections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("join")); got != 2 {
		t.Fatalf("join events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.delivered); got != 4 {
		t.Fatalf("delivered = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.dropped); got != 0 {
		t.Fatalf("dropped = %v, want 0", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).Kicked()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "chatrelay_subscribers_kicked_total 1") {
		t.Fatalf("body missing kicked counter:\n%s", rr.Body.String())
	}
}
