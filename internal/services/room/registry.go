package room

import (
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/mindroll/internal/model"
)

// entry guards a single room. closed is set, under mu, when the room is
// deleted so that callers who looked the entry up earlier see it as gone.
type entry struct {
	mu     sync.Mutex
	room   *model.Room
	closed bool
}

// registry maps room ids to their entries.
// Lock order is entry.mu before registry.mu; nothing waits on an entry
// while holding registry.mu.
type registry struct {
	mu    sync.Mutex
	rooms map[model.RoomID]*entry
}

func newRegistry() *registry {
	return &registry{rooms: make(map[model.RoomID]*entry)}
}

// insert adds a new room, reporting false if the id is taken
func (r *registry) insert(room *model.Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return false
	}
	r.rooms[room.ID] = &entry{room: room}
	return true
}

// acquire returns the locked entry for id. The caller must unlock it.
func (r *registry) acquire(id model.RoomID) (*entry, error) {
	r.mu.Lock()
	e, ok := r.rooms[id]
	r.mu.Unlock()
	if !ok {
		return nil, model.ErrRoomNotFound
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	return e, nil
}

// remove deletes a room. The caller must hold e.mu.
func (r *registry) remove(e *entry) {
	e.closed = true
	r.mu.Lock()
	if r.rooms[e.room.ID] == e {
		delete(r.rooms, e.room.ID)
	}
	r.mu.Unlock()
}

// entries returns every entry, ordered by room id. None are locked.
func (r *registry) entries() []*entry {
	r.mu.Lock()
	out := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		out = append(out, e)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b *entry) int {
		return strings.Compare(string(a.room.ID), string(b.room.ID))
	})
	return out
}
