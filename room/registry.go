package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/openboard/sketchd/protocol"
	"github.com/openboard/sketchd/session"
	"github.com/openboard/sketchd/validate"
)

var (
	// ErrUnknownRoom is returned for a room code with no active room.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrNotAMember is returned when the room exists but the requester
	// is not currently in it.
	ErrNotAMember = errors.New("not a member of room")
)

// Registry owns every active room. Rooms are only ever created and
// deleted through it, which keeps room codes unique among active rooms
// and recyclable once a room empties.
type Registry struct {
	mu    sync.Mutex
	rooms map[protocol.RoomCode]*Room

	bulkInitTTL time.Duration
}

// NewRegistry creates an empty registry. bulkInitTTL configures the
// catch-up bookkeeping lifetime of rooms it creates; 0 means default.
func NewRegistry(bulkInitTTL time.Duration) *Registry {
	return &Registry{
		rooms:       make(map[protocol.RoomCode]*Room),
		bulkInitTTL: bulkInitTTL,
	}
}

// CreateRoom allocates a fresh code and constructs an empty room named
// after its creator. The creator is not added as a member here.
func (g *Registry) CreateRoom(creator *session.User, creatorName string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := g.allocCode()
	name := creator.ResolveName(creatorName) + "'s room"
	r := NewRoom(code, name, g.bulkInitTTL)
	g.rooms[code] = r
	return r
}

// GetOrCreate returns the room for the hinted code when it is valid and
// active, and otherwise creates a new room for the requester. Used for
// the initial connection, where a stale or absent hint must not fail.
func (g *Registry) GetOrCreate(creator *session.User, hint protocol.RoomCode, creatorName string) *Room {
	if validate.RoomCode(hint) {
		g.mu.Lock()
		if r, ok := g.rooms[hint]; ok {
			g.mu.Unlock()
			return r
		}
		g.mu.Unlock()
	}
	return g.CreateRoom(creator, creatorName)
}

// Get looks up an active room by code.
func (g *Registry) Get(code protocol.RoomCode) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[code]
	return r, ok
}

// GetWithMembership resolves a room code on behalf of a requester.
// Every operation that broadcasts into a room goes through this check,
// so handlers never re-validate membership.
func (g *Registry) GetWithMembership(requester *session.User, code protocol.RoomCode) (*Room, error) {
	r, ok := g.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: code %d", ErrUnknownRoom, code)
	}
	if !r.Has(requester.ID()) {
		return nil, fmt.Errorf("%w %d: %s", ErrNotAMember, code, requester)
	}
	return r, nil
}

// ReleaseIfEmpty deletes the room exactly when its member set is empty,
// freeing its code for reuse. Invoked whenever a member leaves.
func (g *Registry) ReleaseIfEmpty(r *Room) {
	if r.MemberCount() > 0 {
		return
	}
	g.mu.Lock()
	// Only delete the registered instance; a racing re-create of the
	// same code must not be torn down.
	if cur, ok := g.rooms[r.Code()]; ok && cur == r {
		delete(g.rooms, r.Code())
		g.mu.Unlock()
		r.shutdown()
		return
	}
	g.mu.Unlock()
}

// Rooms returns all active rooms ordered by code.
func (g *Registry) Rooms() []*Room {
	g.mu.Lock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	g.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}

// Count returns the number of active rooms.
func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// allocCode draws random codes in [1, 9999] until one is free. Callers
// hold g.mu. Room count is far below the code space, so this terminates
// after O(1) attempts in expectation.
func (g *Registry) allocCode() protocol.RoomCode {
	for {
		code := protocol.RoomCode(rand.IntN(validate.MaxRoomCode) + 1)
		if _, taken := g.rooms[code]; !taken {
			return code
		}
	}
}
