package app

import (
	"sort"
	"sync"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomMembers counts, per username, the live connections holding the
// (room, username) pair. A name is a member while its count is positive.
type roomMembers struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *roomMembers) add(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[username]++
	return len(r.counts)
}

// release is a no-op when the name is not present.
func (r *roomMembers) release(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.counts[username]
	if !ok {
		return
	}
	if n <= 1 {
		delete(r.counts, username)
		return
	}
	r.counts[username] = n - 1
}

func (r *roomMembers) snapshot() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.counts))
	for name := range r.counts {
		out = append(out, name)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

func (r *roomMembers) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counts)
}

// PresenceStore is a threadsafe in-memory map of connection -> (room, user)
// and room -> usernames. Updates lock per key; unrelated rooms and
// connections never contend.
type PresenceStore struct {
	sessions sync.Map // core.SessionID -> domain.MemberInfo
	rooms    sync.Map // domain.RoomID -> *roomMembers
}

var _ core.Presence = (*PresenceStore)(nil)

func NewPresenceStore() *PresenceStore {
	return &PresenceStore{}
}

func (s *PresenceStore) room(id domain.RoomID) *roomMembers {
	if r, ok := s.rooms.Load(id); ok {
		return r.(*roomMembers)
	}
	r, _ := s.rooms.LoadOrStore(id, &roomMembers{counts: make(map[string]int)})
	return r.(*roomMembers)
}

// Join records sid as username in room. Empty arguments make it a no-op.
// A previous membership held by sid is released from its room and returned,
// so a re-join never leaves a ghost name behind.
func (s *PresenceStore) Join(sid core.SessionID, room domain.RoomID, username string) (domain.MemberInfo, bool) {
	if sid == "" || room == "" || username == "" {
		return domain.MemberInfo{}, false
	}
	info := domain.NewMemberInfo(room, username)

	// Count the new pair before publishing the session record: whoever
	// removes the record afterwards always finds the count it releases.
	count := s.room(room).add(username)
	prev, loaded := s.sessions.Swap(sid, info)

	var old domain.MemberInfo
	if loaded {
		old = prev.(domain.MemberInfo)
		s.room(old.RoomID).release(old.Username)
	}
	log.Info().
		Str("module", "app.presence").
		Str("sid", string(sid)).
		Str("room", string(room)).
		Str("user", username).
		Int("count", count).
		Msg("member joined")
	return old, loaded
}

// RemoveBySession deletes the membership of sid and releases its name from
// the room. It reports false when sid has no membership.
func (s *PresenceStore) RemoveBySession(sid core.SessionID) (domain.MemberInfo, bool) {
	v, ok := s.sessions.LoadAndDelete(sid)
	if !ok {
		return domain.MemberInfo{}, false
	}
	info := v.(domain.MemberInfo)
	if r, ok := s.rooms.Load(info.RoomID); ok {
		r.(*roomMembers).release(info.Username)
	}
	log.Info().
		Str("module", "app.presence").
		Str("sid", string(sid)).
		Str("room", string(info.RoomID)).
		Str("user", info.Username).
		Msg("member removed")
	return info, true
}

// Members returns a sorted copy of the room's usernames; unknown rooms are empty.
func (s *PresenceStore) Members(room domain.RoomID) []string {
	if room == "" {
		return []string{}
	}
	r, ok := s.rooms.Load(room)
	if !ok {
		return []string{}
	}
	return r.(*roomMembers).snapshot()
}

func (s *PresenceStore) RoomOf(sid core.SessionID) (domain.MemberInfo, bool) {
	v, ok := s.sessions.Load(sid)
	if !ok {
		return domain.MemberInfo{}, false
	}
	return v.(domain.MemberInfo), true
}

// Rooms lists rooms that currently have members, sorted by name.
func (s *PresenceStore) Rooms() []core.RoomInfo {
	out := make([]core.RoomInfo, 0)
	s.rooms.Range(func(k, v any) bool {
		if n := v.(*roomMembers).size(); n > 0 {
			out = append(out, core.RoomInfo{Name: k.(domain.RoomID), MemberCount: n})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
