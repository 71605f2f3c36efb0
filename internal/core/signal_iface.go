package core

// Frame is an encoded outbound payload.
type Frame []byte

// SignalConnection abstracts a client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Envelope is the JSON frame written to clients.
type Envelope struct {
	Type    string    `json:"type"`
	Topic   string    `json:"topic,omitempty"`
	Session SessionID `json:"session,omitempty"`
	Error   string    `json:"error,omitempty"`
	Payload any       `json:"payload,omitempty"`
}
