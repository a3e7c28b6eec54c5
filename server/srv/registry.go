package srv

import (
	"errors"
	"math/rand"
)

var (
	ErrRoomNotFound  = errors.New("game not found")
	ErrRoomFull      = errors.New("game is full")
	ErrAlreadyInRoom = errors.New("already in a game")
)

// RoomRegistry owns the room table and the connection->room index. It is not
// internally locked: every call happens under the hub mutex, which gives each
// inbound message run-to-completion semantics over all room state.
type RoomRegistry struct {
	codeLength int
	rooms      map[string]*Room
	byConn     map[int64]*Room
}

func NewRoomRegistry(codeLength int) *RoomRegistry {
	if codeLength < 4 {
		codeLength = 6
	}
	return &RoomRegistry{
		codeLength: codeLength,
		rooms:      make(map[string]*Room),
		byConn:     make(map[int64]*Room),
	}
}

// Create allocates a room under a code distinct from every live room's code.
// A destroyed room's code may later be handed out again by chance.
func (reg *RoomRegistry) Create(name string, maxPlayers int) *Room {
	var code string
	for {
		code = genCode(reg.codeLength)
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}
	r := NewRoom(code, name, maxPlayers)
	reg.rooms[code] = r
	return r
}

// Get looks up a live room by code.
func (reg *RoomRegistry) Get(code string) (*Room, bool) {
	r, ok := reg.rooms[code]
	return r, ok
}

// RoomFor returns the room a connection is currently bound to.
func (reg *RoomRegistry) RoomFor(connID int64) (*Room, bool) {
	r, ok := reg.byConn[connID]
	return r, ok
}

// Bind ties a connection to a room for the connection's lifetime.
func (reg *RoomRegistry) Bind(connID int64, r *Room) {
	reg.byConn[connID] = r
}

// Unbind drops a connection's room binding.
func (reg *RoomRegistry) Unbind(connID int64) {
	delete(reg.byConn, connID)
}

// Destroy removes a room and every routing entry pointing at it. Idempotent;
// messages racing a teardown find nothing and become no-ops.
func (reg *RoomRegistry) Destroy(code string) {
	r, ok := reg.rooms[code]
	if !ok {
		return
	}
	for id := range r.Players {
		delete(reg.byConn, id)
	}
	delete(reg.rooms, code)
}

// Len reports the number of live rooms.
func (reg *RoomRegistry) Len() int { return len(reg.rooms) }

func genCode(n int) string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I to avoid confusion
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
