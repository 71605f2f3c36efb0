package domain

// MemberInfo is the (room, username) pair held by one connection.
// No transport or lifecycle logic here.
type MemberInfo struct {
	RoomID   RoomID `json:"roomId"`
	Username string `json:"username"`
}

func NewMemberInfo(room RoomID, username string) MemberInfo {
	return MemberInfo{RoomID: room, Username: username}
}

// LeftContent is the text of the LEAVE message synthesized on disconnect.
func (m MemberInfo) LeftContent() string {
	return m.Username + " has left"
}
