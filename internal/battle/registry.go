package battle

import (
	"crypto/rand"
	"time"
)

const (
	roomIDLength  = 6
	roomIDCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Registry owns the mapping from room id to room. It is created once
// at startup and handed to the gateway; nothing else holds a reference,
// so single-owner access replaces locking (all calls happen on the
// gateway event loop).
type Registry struct {
	rooms map[string]*Room
}

// RoomSummary is the diagnostics view of a room. It never exposes quiz
// content.
type RoomSummary struct {
	ID           string    `json:"id"`
	Participants int       `json:"participants"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom generates a fresh id, inserts a waiting room with the
// creator as host and sole participant, and returns it.
func (reg *Registry) CreateRoom(hostID, hostName string) *Room {
	var id string
	for {
		id = newRoomID()
		if _, taken := reg.rooms[id]; !taken {
			break
		}
	}

	room := newRoom(id, hostID, hostName)
	reg.rooms[id] = room
	return room
}

// Get looks up a room by id. Callers must treat !ok as a user-visible
// "room not found", never as a silent no-op.
func (reg *Registry) Get(id string) (*Room, bool) {
	room, ok := reg.rooms[id]
	return room, ok
}

// Remove deletes a room. Idempotent.
func (reg *Registry) Remove(id string) {
	delete(reg.rooms, id)
}

// Len returns the number of active rooms
func (reg *Registry) Len() int {
	return len(reg.rooms)
}

// List returns summaries of all active rooms for diagnostics
func (reg *Registry) List() []RoomSummary {
	summaries := make([]RoomSummary, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		summaries = append(summaries, RoomSummary{
			ID:           room.ID,
			Participants: room.Size(),
			Status:       room.Status,
			CreatedAt:    room.CreatedAt,
		})
	}
	return summaries
}

// newRoomID returns a short human-readable invite token: 6 random
// base-36 characters, uppercased. 36^6 keeps the collision chance
// negligible for the handful of concurrently active rooms; the
// CreateRoom loop handles the rest.
func newRoomID() string {
	buf := make([]byte, roomIDLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken
		panic(err)
	}

	id := make([]byte, roomIDLength)
	for i, b := range buf {
		id[i] = roomIDCharset[int(b)%len(roomIDCharset)]
	}
	return string(id)
}
