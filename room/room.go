package room

import (
	"log"
	"sync"
	"time"

	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/session"
)

// Room is one active broadcast scope. Members are kept in insertion
// order; a Room never outlives its last member.
type Room struct {
	code protocol.RoomCode

	mu      sync.Mutex
	name    string
	members []*session.User
	index   map[protocol.SocketID]*session.User
	pending *initQueue
}

// NewRoom creates an empty room. bulkInitTTL bounds the catch-up
// bookkeeping of joiners; pass 0 for the default.
func NewRoom(code protocol.RoomCode, name string, bulkInitTTL time.Duration) *Room {
	return &Room{
		code:    code,
		name:    name,
		index:   make(map[protocol.SocketID]*session.User),
		pending: newInitQueue(bulkInitTTL),
	}
}

// Code returns the room's shareable code.
func (r *Room) Code() protocol.RoomCode { return r.code }

// Name returns the room's current display name.
func (r *Room) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// Rename unconditionally overwrites the room name. Deliberately not
// restricted to the creator: any member may rename the shared room.
// The changeRoomName event is relayed by the dispatcher's pass-on path.
func (r *Room) Rename(newName string) {
	r.mu.Lock()
	r.name = newName
	r.mu.Unlock()
}

// AddMember inserts a user into the room under the requested display
// name (validated, with fallback to the user's default name), registers
// the joiner for catch-up when peers exist, and broadcasts a join event
// to the rest of the room. It returns the effective display name.
func (r *Room) AddMember(u *session.User, requestedName string) string {
	r.mu.Lock()
	if _, exists := r.index[u.ID()]; exists {
		// Re-join is a no-op; the recorded name stays authoritative.
		name := u.NameFor(r.code)
		r.mu.Unlock()
		return name
	}

	// Snapshot the pre-existing members before the joiner is inserted;
	// these are the catch-up targets, in insertion order.
	targets := make([]protocol.SocketID, len(r.members))
	for i, m := range r.members {
		targets[i] = m.ID()
	}

	name := u.JoinRoom(r.code, requestedName)
	r.members = append(r.members, u)
	r.index[u.ID()] = u
	r.mu.Unlock()

	if len(targets) > 0 {
		r.pending.add(u.ID(), targets)
	}

	r.BroadcastEvent(u, protocol.NewEvent(protocol.EvtJoin, u.ID(), r.code, name))
	return name
}

// RemoveMember removes a user from the room and clears any catch-up
// bookkeeping it still holds. Broadcasting the leave or disconnect
// event is the caller's job, since the event name depends on whether
// this is an explicit leave or a connection close. Returns true when
// the room is now empty and should be released.
func (r *Room) RemoveMember(u *session.User) bool {
	r.mu.Lock()
	if _, exists := r.index[u.ID()]; !exists {
		r.mu.Unlock()
		return false
	}
	delete(r.index, u.ID())
	for i, m := range r.members {
		if m.ID() == u.ID() {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	empty := len(r.members) == 0
	r.mu.Unlock()

	u.LeaveRoom(r.code)
	r.pending.remove(u.ID())
	return empty
}

// Has reports whether the given socket id is currently a member.
func (r *Room) Has(id protocol.SocketID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.index[id]
	return ok
}

// MemberCount returns the current number of members.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Members returns the members in insertion order.
func (r *Room) Members() []*session.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*session.User, len(r.members))
	copy(out, r.members)
	return out
}

// Peers lists every member except the given one as [id, name] pairs,
// the shape carried inside joinData.
func (r *Room) Peers(except *session.User) []protocol.Peer {
	peers := make([]protocol.Peer, 0)
	for _, m := range r.Members() {
		if m != except {
			peers = append(peers, protocol.Peer{ID: m.ID(), Name: m.NameFor(r.code)})
		}
	}
	return peers
}

// BroadcastEvent sends a control event to every member except the
// sender. Delivery is fire and forget: members whose socket is not
// ready are skipped, send errors are logged and do not abort the loop.
func (r *Room) BroadcastEvent(sender *session.User, msg protocol.Message) {
	for _, m := range r.Members() {
		if m == sender {
			continue
		}
		if err := m.SendEvent(msg); err != nil {
			log.Printf("room %d: dropping %s event to %s: %v", r.code, msg.Evt, m, err)
		}
	}
}

// BroadcastFrame forwards a binary frame verbatim to every member
// except the sender. The frame must already carry the sender id prefix.
func (r *Room) BroadcastFrame(sender *session.User, frame []int16) {
	for _, m := range r.Members() {
		if m == sender {
			continue
		}
		if err := m.SendFrame(frame); err != nil {
			log.Printf("room %d: dropping binary frame to %s: %v", r.code, m, err)
		}
	}
}

// ServeBulkInit routes one catch-up request from a joiner to the first
// member present at join time that has not been asked yet. The frame is
// forwarded prefixed with the joiner's id so the member knows whom to
// answer. A request with no remaining targets, or from a joiner whose
// bookkeeping has expired, is dropped.
func (r *Room) ServeBulkInit(joiner *session.User, frame []int16) {
	prefixed := joiner.EncodePositionFrame(frame)
	for {
		id, ok := r.pending.next(joiner.ID())
		if !ok {
			return
		}
		r.mu.Lock()
		target := r.index[id]
		r.mu.Unlock()
		if target == nil {
			// Target left the room since the snapshot; try the next one.
			continue
		}
		if err := target.SendFrame(prefixed); err != nil {
			log.Printf("room %d: dropping bulk-init request to %s: %v", r.code, target, err)
		}
		return
	}
}

// awaitingBulkInit reports whether a joiner still has catch-up
// bookkeeping; used by tests and the registry.
func (r *Room) awaitingBulkInit(id protocol.SocketID) bool {
	return r.pending.pending(id)
}

// shutdown releases room resources once the registry drops the room.
func (r *Room) shutdown() {
	r.pending.clear()
}
