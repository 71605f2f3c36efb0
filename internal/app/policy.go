package app

import "github.com/dkeye/chatrelay/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a subscriber whose queue rejected a frame.
type Policy interface {
	OnBackPressure(topic string, sid core.SessionID) BackpressureAction
}

// SimplePolicy disconnects slow subscribers; their disconnect then runs the
// usual leave flow.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(string, core.SessionID) BackpressureAction {
	return KickMember
}

// TolerantPolicy drops the frame and keeps the subscriber.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(string, core.SessionID) BackpressureAction {
	return DropFrame
}
