package signal

import "github.com/dkeye/chatrelay/internal/core"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, core.Envelope{Type: "pong"})
}
