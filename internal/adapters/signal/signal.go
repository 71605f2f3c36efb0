// Package signal is the websocket transport: it turns connections into
// connect, inbound-message and disconnect events for the orchestrator and
// registers each connection with the broker for outbound frames.
package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/dkeye/chatrelay/internal/app"
	"github.com/dkeye/chatrelay/internal/app/orch"
	"github.com/dkeye/chatrelay/internal/config"
	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// NicknameKey is the gin context key holding the session nickname, used as
// the default sender of inbound messages.
const NicknameKey = "nickname"

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Broker  *app.Broker
	Cfg     *config.Config
	Metrics *metrics.Metrics

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, broker *app.Broker, cfg *config.Config, m *metrics.Metrics) *SignalWSController {
	return &SignalWSController{
		Orch:    o,
		Broker:  broker,
		Cfg:     cfg,
		Metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browsers whose origin is listed; "*" allows every origin.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		log.Warn().Str("module", "signal").Str("origin", origin).Msg("origin rejected")
		return false
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and serves the connection until either
// side closes it or ctx ends.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	nickname := c.GetString(NicknameKey)

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.Cfg.SendBuffer)
	ctl.Broker.Register(sid, conn)
	ctl.Metrics.Connected()
	ctl.Orch.OnConnect(sid)
	ctl.sendJSON(conn, core.Envelope{Type: "connected", Session: sid})

	go ctl.serve(ctx, sid, conn, nickname)
}

func (ctl *SignalWSController) serve(ctx context.Context, sid core.SessionID, conn *WsSignalConn, nickname string) {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() { ctl.writePump(connCtx, conn) })
	wg.Go(func() {
		defer cancel()
		ctl.readPump(sid, conn, nickname)
	})
	wg.Go(func() {
		<-connCtx.Done()
		conn.Close()
	})
	wg.Wait()

	ctl.Broker.Unregister(sid)
	ctl.Orch.OnDisconnect(sid)
	ctl.Metrics.Disconnected()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("connection closed")
}
