package room

import (
	"errors"
	"testing"

	"github.com/openboard/sketchd/validate"
)

func TestCreateRoom(t *testing.T) {
	g := NewRegistry(0)
	creator, _ := activeUser(0)
	r := g.CreateRoom(creator, "Alice")

	if !validate.RoomCode(r.Code()) {
		t.Errorf("Expected code in [1, %d], got %d", validate.MaxRoomCode, r.Code())
	}
	if r.Name() != "Alice's room" {
		t.Errorf("Expected \"Alice's room\", got %q", r.Name())
	}
	if r.MemberCount() != 0 {
		t.Error("Expected the creator not to be a member yet")
	}
	if g.Count() != 1 {
		t.Errorf("Expected 1 active room, got %d", g.Count())
	}
}

func TestCreateRoomDefaultName(t *testing.T) {
	g := NewRegistry(0)
	creator, _ := activeUser(4)
	r := g.CreateRoom(creator, "   ")
	if r.Name() != "User #4's room" {
		t.Errorf("Expected \"User #4's room\", got %q", r.Name())
	}
}

func TestCreateRoomCodesAreUnique(t *testing.T) {
	g := NewRegistry(0)
	creator, _ := activeUser(0)
	seen := make(map[int16]bool)
	for i := 0; i < 200; i++ {
		r := g.CreateRoom(creator, "x")
		code := int16(r.Code())
		if seen[code] {
			t.Fatalf("Code %d allocated twice among active rooms", code)
		}
		seen[code] = true
	}
}

func TestGetOrCreate(t *testing.T) {
	g := NewRegistry(0)
	creator, _ := activeUser(0)
	existing := g.CreateRoom(creator, "Alice")

	// A valid hint for an active room resolves to that room.
	joiner, _ := activeUser(1)
	if r := g.GetOrCreate(joiner, existing.Code(), "Bob"); r != existing {
		t.Error("Expected the hinted room")
	}

	// A stale hint falls back to creating a new room.
	stale := existing.Code()%validate.MaxRoomCode + 1
	if _, ok := g.Get(stale); ok {
		t.Skipf("Code %d happens to be active", stale)
	}
	if r := g.GetOrCreate(joiner, stale, "Bob"); r == existing {
		t.Error("Expected a fresh room for a stale hint")
	}

	// An absent hint (zero) always creates.
	before := g.Count()
	g.GetOrCreate(joiner, 0, "Bob")
	if g.Count() != before+1 {
		t.Error("Expected a fresh room for hint 0")
	}
}

func TestGetWithMembership(t *testing.T) {
	g := NewRegistry(0)
	creator, _ := activeUser(0)
	r := g.CreateRoom(creator, "Alice")
	r.AddMember(creator, "Alice")

	got, err := g.GetWithMembership(creator, r.Code())
	if err != nil || got != r {
		t.Fatalf("Expected the member's room, got (%v, %v)", got, err)
	}

	outsider, _ := activeUser(1)
	if _, err := g.GetWithMembership(outsider, r.Code()); !errors.Is(err, ErrNotAMember) {
		t.Errorf("Expected ErrNotAMember, got %v", err)
	}

	if _, err := g.GetWithMembership(creator, 0); !errors.Is(err, ErrUnknownRoom) {
		t.Errorf("Expected ErrUnknownRoom for code 0, got %v", err)
	}
}

func TestReleaseIfEmpty(t *testing.T) {
	g := NewRegistry(0)
	u, _ := activeUser(0)
	r := g.CreateRoom(u, "Alice")
	r.AddMember(u, "Alice")

	// An occupied room is never released.
	g.ReleaseIfEmpty(r)
	if _, ok := g.Get(r.Code()); !ok {
		t.Fatal("Expected occupied room to survive")
	}

	r.RemoveMember(u)
	g.ReleaseIfEmpty(r)
	if _, ok := g.Get(r.Code()); ok {
		t.Error("Expected empty room to be released")
	}
	if g.Count() != 0 {
		t.Errorf("Expected 0 active rooms, got %d", g.Count())
	}
}

func TestReleaseIfEmptySparesRecreatedCode(t *testing.T) {
	g := NewRegistry(0)
	u, _ := activeUser(0)
	old := g.CreateRoom(u, "Alice")

	// Simulate a release racing a re-create of the same code.
	g.mu.Lock()
	replacement := NewRoom(old.Code(), "replacement", 0)
	g.rooms[old.Code()] = replacement
	g.mu.Unlock()

	g.ReleaseIfEmpty(old)
	if got, ok := g.Get(old.Code()); !ok || got != replacement {
		t.Error("Expected the replacement room to survive the stale release")
	}
}

func TestRoomsSortedByCode(t *testing.T) {
	g := NewRegistry(0)
	u, _ := activeUser(0)
	for i := 0; i < 20; i++ {
		g.CreateRoom(u, "x")
	}
	rooms := g.Rooms()
	if len(rooms) != 20 {
		t.Fatalf("Expected 20 rooms, got %d", len(rooms))
	}
	for i := 1; i < len(rooms); i++ {
		if rooms[i-1].Code() >= rooms[i].Code() {
			t.Fatal("Expected rooms ordered by code")
		}
	}
}
