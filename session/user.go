package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/validate"
)

// ErrInactiveSend is returned when a send is attempted before the user
// has completed its first control handshake.
var ErrInactiveSend = errors.New("send on inactive session")

// Sender is the transport surface a user writes to.
type Sender interface {
	// SendJSON writes one text frame containing the JSON encoding of v.
	SendJSON(v any) error
	// SendBinary writes one binary frame.
	SendBinary(data []byte) error
	// Ready reports whether the underlying socket can accept writes.
	Ready() bool
}

// IDSource hands out process-unique socket ids, monotonically.
// The zero value is ready to use; the first id is 0.
type IDSource struct {
	next atomic.Int32
}

// Next returns the next unused socket id.
func (s *IDSource) Next() protocol.SocketID {
	return protocol.SocketID(s.next.Add(1) - 1)
}

// User is the server-side identity of one connection.
type User struct {
	id          protocol.SocketID
	defaultName string
	sender      Sender
	rate        *RateLimiter

	mu     sync.Mutex
	active bool
	rooms  map[protocol.RoomCode]string // room code -> display name in that room
}

// NewUser creates an inactive user for a freshly opened connection.
func NewUser(id protocol.SocketID, sender Sender, rate *RateLimiter) *User {
	return &User{
		id:          id,
		defaultName: DefaultName(id),
		sender:      sender,
		rate:        rate,
		rooms:       make(map[protocol.RoomCode]string),
	}
}

// DefaultName derives the fallback display name for a socket id.
func DefaultName(id protocol.SocketID) string {
	return fmt.Sprintf("User #%d", id)
}

// ID returns the user's socket id.
func (u *User) ID() protocol.SocketID { return u.id }

// DefaultName returns the generated fallback name.
func (u *User) DefaultName() string { return u.defaultName }

// Rate returns the user's flood-control counter.
func (u *User) Rate() *RateLimiter { return u.rate }

// Activate marks the user usable for broadcast sending. It is called
// once the first control message arrives and is idempotent.
func (u *User) Activate() {
	u.mu.Lock()
	u.active = true
	u.mu.Unlock()
}

// Active reports whether the user has completed its handshake.
func (u *User) Active() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.active
}

// ResolveName validates a requested display name and falls back to the
// user's default name when it is unusable.
func (u *User) ResolveName(requested string) string {
	if name, ok := validate.Username(requested); ok {
		return name
	}
	return u.defaultName
}

// JoinRoom records membership of a room together with the display name
// used there, and returns the effective name.
func (u *User) JoinRoom(code protocol.RoomCode, requestedName string) string {
	name := u.ResolveName(requestedName)
	u.mu.Lock()
	u.rooms[code] = name
	u.mu.Unlock()
	return name
}

// LeaveRoom forgets membership of a room.
func (u *User) LeaveRoom(code protocol.RoomCode) {
	u.mu.Lock()
	delete(u.rooms, code)
	u.mu.Unlock()
}

// Rename updates the user's display name in one room only; names are
// room-scoped, not global. Returns the effective name after validation.
func (u *User) Rename(code protocol.RoomCode, newName string) string {
	return u.JoinRoom(code, newName)
}

// NameFor returns the display name used in the given room, or the
// default name when the user is not a member.
func (u *User) NameFor(code protocol.RoomCode) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if name, ok := u.rooms[code]; ok {
		return name
	}
	return u.defaultName
}

// InRoom reports membership of a room.
func (u *User) InRoom(code protocol.RoomCode) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.rooms[code]
	return ok
}

// RoomCodes returns the codes of all rooms the user is currently in.
func (u *User) RoomCodes() []protocol.RoomCode {
	u.mu.Lock()
	defer u.mu.Unlock()
	codes := make([]protocol.RoomCode, 0, len(u.rooms))
	for code := range u.rooms {
		codes = append(codes, code)
	}
	return codes
}

// SendEvent delivers one control event to this user. The message is
// dropped silently when the socket is not ready; sending on an inactive
// user is a programming-order fault and fails with ErrInactiveSend.
func (u *User) SendEvent(msg protocol.Message) error {
	if !u.sender.Ready() {
		return nil
	}
	if !u.Active() {
		return fmt.Errorf("%w: evt %q to %s", ErrInactiveSend, msg.Evt, u)
	}
	return u.sender.SendJSON(msg)
}

// SendFrame delivers one binary frame, with the same readiness and
// activity rules as SendEvent.
func (u *User) SendFrame(frame []int16) error {
	if !u.sender.Ready() {
		return nil
	}
	if !u.Active() {
		return fmt.Errorf("%w: binary frame to %s", ErrInactiveSend, u)
	}
	return u.sender.SendBinary(protocol.EncodeFrame(frame))
}

// EncodePositionFrame prepends this user's id to an outbound payload so
// peers can attribute the anonymous position data to its sender.
func (u *User) EncodePositionFrame(frame []int16) []int16 {
	return protocol.PrependID(u.id, frame)
}

func (u *User) String() string {
	state := "inactive"
	if u.Active() {
		state = "active"
	}
	return fmt.Sprintf("user #%d (%s)", u.id, state)
}
