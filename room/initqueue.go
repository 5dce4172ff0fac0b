package room

import (
	"sync"
	"time"

	"github.com/openboard/sketchd/protocol"
)

// DefaultBulkInitTTL bounds how long a joiner's catch-up bookkeeping is
// kept. A join that is never fully served simply proceeds with an empty
// canvas; this is best effort, not a correctness guarantee.
const DefaultBulkInitTTL = 10 * time.Second

// initQueue tracks, per newly joined member, which of the members
// present at join time have already been asked to serve catch-up data.
type initQueue struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[protocol.SocketID]*initEntry
}

type initEntry struct {
	// targets is the ordered snapshot of member ids present when the
	// joiner arrived. Round-robin walks this list exactly once.
	targets []protocol.SocketID
	served  map[protocol.SocketID]bool
	expire  *time.Timer
}

func newInitQueue(ttl time.Duration) *initQueue {
	if ttl <= 0 {
		ttl = DefaultBulkInitTTL
	}
	return &initQueue{
		ttl:     ttl,
		entries: make(map[protocol.SocketID]*initEntry),
	}
}

// add registers a joiner with the given target snapshot. The entry
// expires unconditionally after the queue's TTL.
func (q *initQueue) add(joiner protocol.SocketID, targets []protocol.SocketID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if old, ok := q.entries[joiner]; ok {
		old.expire.Stop()
	}
	entry := &initEntry{
		targets: targets,
		served:  make(map[protocol.SocketID]bool),
	}
	entry.expire = time.AfterFunc(q.ttl, func() { q.remove(joiner) })
	q.entries[joiner] = entry
}

// remove drops a joiner's bookkeeping, stopping its expiry timer.
func (q *initQueue) remove(joiner protocol.SocketID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if entry, ok := q.entries[joiner]; ok {
		entry.expire.Stop()
		delete(q.entries, joiner)
	}
}

// next returns the first snapshot member that has not yet been asked to
// serve this joiner, marking it as asked. ok is false when the joiner
// has no pending entry or every target has been served.
func (q *initQueue) next(joiner protocol.SocketID) (target protocol.SocketID, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, found := q.entries[joiner]
	if !found {
		return 0, false
	}
	for _, id := range entry.targets {
		if !entry.served[id] {
			entry.served[id] = true
			return id, true
		}
	}
	return 0, false
}

// pending reports whether a joiner still has catch-up bookkeeping.
func (q *initQueue) pending(joiner protocol.SocketID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[joiner]
	return ok
}

// clear drops all bookkeeping; used when a room is deleted.
func (q *initQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for joiner, entry := range q.entries {
		entry.expire.Stop()
		delete(q.entries, joiner)
	}
}
