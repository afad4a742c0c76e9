package support

import (
	"sort"
	"sync"
)

// State is the handoff state of a room.
type State string

const (
	StateBot       State = "BOT"
	StateRequested State = "REQUESTED"
	StateLive      State = "LIVE"
	// StateClosed is reported once a live leg ended and nobody asked again.
	StateClosed State = "CLOSED"
)

// Entry is the process-local handoff state of one room.
// HandoffAccepted implies HandoffRequested; only the methods below mutate the flags.
type Entry struct {
	HandoffRequested bool   `json:"handoffRequested"`
	HandoffAccepted  bool   `json:"handoffAccepted"`
	UserName         string `json:"userName"`
	UserNickname     string `json:"userNickname"`

	closed bool
}

// State derives the state machine position from the flags.
func (e Entry) State() State {
	switch {
	case e.HandoffAccepted:
		return StateLive
	case e.HandoffRequested:
		return StateRequested
	case e.closed:
		return StateClosed
	default:
		return StateBot
	}
}

func (e *Entry) request(name, nickname string) {
	e.HandoffRequested = true
	e.HandoffAccepted = false
	e.UserName = name
	e.UserNickname = nickname
	e.closed = false
}

func (e *Entry) accept() {
	e.HandoffAccepted = e.HandoffRequested
}

// reset clears both flags and keeps the captured display fields.
func (e *Entry) reset() {
	e.HandoffRequested = false
	e.HandoffAccepted = false
	e.closed = true
}

// PendingHandoff is a room waiting for an agent.
type PendingHandoff struct {
	RoomID       string `json:"roomId"`
	UserName     string `json:"userName"`
	UserNickname string `json:"userNickname"`
}

// Rooms is the room registry used by the coordinator. Tests substitute a fresh
// instance per case; Reset drops every room.
type Rooms interface {
	// With runs fn while holding the room's lock. Work for one room is serialized.
	With(roomID string, fn func(e *Entry))
	Get(roomID string) Entry
	Remove(roomID string)
	Pending(roomID string) []PendingHandoff
	Reset()
}

type room struct {
	mu    sync.Mutex
	entry Entry
	// evicted is set under mu when the room leaves the map; holders of a stale
	// pointer must look the room up again.
	evicted bool
}

// Registry is a concurrent map of rooms, each guarded by its own mutex.
type Registry struct {
	rooms sync.Map // string -> *room
}

func NewRegistry() *Registry {
	return &Registry{}
}

var _ Rooms = (*Registry)(nil)

func (r *Registry) load(roomID string) *room {
	if v, ok := r.rooms.Load(roomID); ok {
		return v.(*room)
	}
	v, _ := r.rooms.LoadOrStore(roomID, &room{})
	return v.(*room)
}

// lock returns the live room for roomID with its mutex held.
func (r *Registry) lock(roomID string) *room {
	for {
		rm := r.load(roomID)
		rm.mu.Lock()
		if !rm.evicted {
			return rm
		}
		rm.mu.Unlock()
	}
}

func (r *Registry) With(roomID string, fn func(e *Entry)) {
	rm := r.lock(roomID)
	defer rm.mu.Unlock()
	fn(&rm.entry)
}

// Get returns a snapshot. A room never seen yields the zero Entry.
func (r *Registry) Get(roomID string) Entry {
	v, ok := r.rooms.Load(roomID)
	if !ok {
		return Entry{}
	}
	rm := v.(*room)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.evicted {
		return Entry{}
	}
	return rm.entry
}

// Remove evicts a room. It waits for work in progress on the room to finish.
func (r *Registry) Remove(roomID string) {
	if v, ok := r.rooms.Load(roomID); ok {
		r.evict(roomID, v.(*room))
	}
}

func (r *Registry) evict(roomID string, rm *room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.evicted = true
	r.rooms.CompareAndDelete(roomID, rm)
}

// Pending lists rooms with an unanswered handoff request, sorted by room id.
// A non-empty roomID restricts the result to that room.
func (r *Registry) Pending(roomID string) []PendingHandoff {
	out := []PendingHandoff{}
	collect := func(id string, rm *room) {
		rm.mu.Lock()
		e := rm.entry
		rm.mu.Unlock()
		if e.HandoffRequested && !e.HandoffAccepted {
			out = append(out, PendingHandoff{RoomID: id, UserName: e.UserName, UserNickname: e.UserNickname})
		}
	}
	if roomID != "" {
		if v, ok := r.rooms.Load(roomID); ok {
			collect(roomID, v.(*room))
		}
		return out
	}
	r.rooms.Range(func(k, v any) bool {
		collect(k.(string), v.(*room))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func (r *Registry) Reset() {
	r.rooms.Range(func(k, v any) bool {
		r.evict(k.(string), v.(*room))
		return true
	})
}
