package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultRoom is used whenever a message or request does not name a room.
const DefaultRoom RoomID = "default"

// RoomID names a chat room. Clients may send it as a JSON string or number;
// it is coerced to a string once while decoding.
type RoomID string

func (r *RoomID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoomID(strings.TrimSpace(s))
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*r = RoomID(n.String())
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*r = RoomID(fmt.Sprint(b))
		return nil
	}
	return fmt.Errorf("room id: unsupported json value %s", data)
}

// OrDefault returns DefaultRoom for an empty id.
func (r RoomID) OrDefault() RoomID {
	if r == "" {
		return DefaultRoom
	}
	return r
}
