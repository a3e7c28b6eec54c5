package srv

import (
	"pixelminer/shared/protocol"
)

// PlayerRecord is the server's per-player snapshot: the last self-reported
// wire state plus the connection it belongs to. The server trusts these
// values as reported; there is no authority-of-truth check beyond last
// writer wins.
type PlayerRecord struct {
	protocol.PlayerState
	conn *client
}

// RocketState is shared per room. The server keeps a single value regardless
// of which planet each player is viewing.
type RocketState struct {
	Placed bool
	Pos    protocol.Vec2
}

// Room is one isolated game session: a roster of players and one shared
// world, addressed by a short code. All mutation happens under the hub
// mutex.
type Room struct {
	Code       string
	Name       string
	HostID     int64
	MaxPlayers int
	Players    map[int64]*PlayerRecord
	World      *WorldState
	Rocket     RocketState
}

func NewRoom(code, name string, maxPlayers int) *Room {
	return &Room{
		Code:       code,
		Name:       name,
		MaxPlayers: maxPlayers,
		Players:    make(map[int64]*PlayerRecord),
		World:      NewWorldState(),
	}
}

func (r *Room) addPlayer(c *client, st protocol.PlayerState) *PlayerRecord {
	p := &PlayerRecord{PlayerState: st, conn: c}
	r.Players[st.ID] = p
	return p
}

func (r *Room) removePlayer(id int64) {
	delete(r.Players, id)
}

func (r *Room) full() bool {
	return len(r.Players) >= r.MaxPlayers
}

// broadcast sends to every connection in the room.
func (r *Room) broadcast(typ string, v interface{}) {
	for _, p := range r.Players {
		sendJSON(p.conn, typ, v)
	}
}

// broadcastExcept sends to every connection in the room but the given one.
func (r *Room) broadcastExcept(exceptID int64, typ string, v interface{}) {
	for id, p := range r.Players {
		if id == exceptID {
			continue
		}
		sendJSON(p.conn, typ, v)
	}
}

// snapshotPlayers copies the current roster for a gameState message.
func (r *Room) snapshotPlayers() []protocol.PlayerState {
	out := make([]protocol.PlayerState, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p.PlayerState)
	}
	return out
}

// playersOnPlanet returns the roster subset on the given planet, excluding
// the requesting connection.
func (r *Room) playersOnPlanet(planet string, exceptID int64) []protocol.PlayerState {
	out := make([]protocol.PlayerState, 0, len(r.Players))
	for id, p := range r.Players {
		if id == exceptID || p.CurrentPlanet != planet {
			continue
		}
		out = append(out, p.PlayerState)
	}
	return out
}

func (r *Room) rocketPos() *protocol.Vec2 {
	if !r.Rocket.Placed {
		return nil
	}
	pos := r.Rocket.Pos
	return &pos
}
