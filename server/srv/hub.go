package srv

import (
	"encoding/json"
	"math/rand"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"pixelminer/shared/protocol"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   int64
	name string
}

// sendJSON enqueues an envelope on the client's outbound channel. It never
// blocks: a client that cannot drain fast enough loses best-effort updates
// rather than stalling the relay.
func sendJSON(c *client, typ string, v interface{}) {
	if c == nil {
		return
	}
	b, _ := json.Marshal(v)
	env := protocol.MsgEnvelope{Type: typ, Data: b}
	out, _ := json.Marshal(env)
	select {
	case c.send <- out:
	default:
	}
}

// Options tunes room behavior; zero values fall back to sane defaults.
type Options struct {
	CodeLength        int
	DefaultMaxPlayers int
	MaxRoomPlayers    int
}

// Hub owns every connection and the room registry. A single mutex serializes
// all state mutation, so each inbound message runs to completion before the
// next one touches room state.
type Hub struct {
	mu       sync.Mutex
	opts     Options
	clients  map[*client]struct{}
	registry *RoomRegistry
	stats    *Metrics
}

func NewHub(opts Options) *Hub {
	if opts.CodeLength == 0 {
		opts.CodeLength = 6
	}
	if opts.DefaultMaxPlayers == 0 {
		opts.DefaultMaxPlayers = 4
	}
	if opts.MaxRoomPlayers == 0 {
		opts.MaxRoomPlayers = 8
	}
	return &Hub{
		opts:     opts,
		clients:  make(map[*client]struct{}),
		registry: NewRoomRegistry(opts.CodeLength),
		stats:    &Metrics{},
	}
}

// Stats exposes the relay counters.
func (h *Hub) Stats() *Metrics { return h.stats }

// HandleWS runs a guest connection until it closes.
func (h *Hub) HandleWS(conn *websocket.Conn) {
	h.handleConn(conn, "")
}

// HandleWSAuth runs an authenticated connection, binding the account's
// display name to the player record.
func (h *Hub) HandleWSAuth(conn *websocket.Conn, username string) {
	h.handleConn(conn, username)
}

func (h *Hub) handleConn(conn *websocket.Conn, name string) {
	c := &client{conn: conn, send: make(chan []byte, 64), id: protocol.NewID(), name: name}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writer()
	c.reader(h)
}

func (c *client) writer() {
	defer c.conn.Close()
	for b := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (c *client) reader(h *Hub) {
	defer func() {
		c.conn.Close()
		h.disconnect(c)
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			Log.Debugw("read closed", "conn", c.id, "err", err)
			return
		}
		var env protocol.MsgEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			// A bad frame drops; it must never take down the connection.
			Log.Warnw("malformed envelope", "conn", c.id, "err", err)
			h.stats.IncBadMessages()
			continue
		}
		h.dispatch(c, env)
	}
}

// dispatch routes one inbound message. Payload decode failures are logged
// and dropped per message, not per connection.
func (h *Hub) dispatch(c *client, env protocol.MsgEnvelope) {
	decode := func(v interface{}) bool {
		if len(env.Data) == 0 {
			return true
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			Log.Warnw("malformed payload", "conn", c.id, "type", env.Type, "err", err)
			h.stats.IncBadMessages()
			return false
		}
		return true
	}

	switch env.Type {

	// ---------- Rooms / sessions ----------
	case "hostGame":
		var m protocol.HostGame
		if decode(&m) {
			h.handleHostGame(c, m)
		}
	case "joinGame":
		var m protocol.JoinGame
		if decode(&m) {
			h.handleJoinGame(c, m)
		}

	// ---------- World transfer ----------
	case "startWorldUpload":
		var m protocol.StartWorldUpload
		if decode(&m) {
			h.handleStartWorldUpload(c, m)
		}
	case "worldChunk":
		var m protocol.WorldChunk
		if decode(&m) {
			h.handleWorldChunk(c, m)
		}
	case "finishWorldUpload":
		var m protocol.FinishWorldUpload
		if decode(&m) {
			h.handleFinishWorldUpload(c, m)
		}
	case "requestWorldData":
		var m protocol.RequestWorldData
		if decode(&m) {
			h.handleRequestWorldData(c, m)
		}

	// ---------- Event relay ----------
	case "playerMove":
		var m protocol.PlayerMove
		if decode(&m) {
			h.relayPlayerMove(c, m)
		}
	case "blockMined":
		var m protocol.BlockMined
		if decode(&m) {
			h.relayBlockMined(c, m)
		}
	case "toolChanged":
		var m protocol.ToolChanged
		if decode(&m) {
			h.relayToolChanged(c, m)
		}
	case "miningStart":
		var m protocol.MiningStart
		if decode(&m) {
			h.relayMiningStart(c, m)
		}
	case "miningStop":
		h.relayMiningStop(c)
	case "laserActivated":
		h.relayLaserActivated(c)
	case "laserDeactivated":
		h.relayLaserDeactivated(c)
	case "laserUpdate":
		var m protocol.LaserUpdate
		if decode(&m) {
			h.relayLaserUpdate(c, m)
		}
	case "jetpackActivated":
		h.relayJetpackActivated(c)
	case "jetpackDeactivated":
		h.relayJetpackDeactivated(c)
	case "toolRotation":
		var m protocol.ToolRotation
		if decode(&m) {
			h.relayToolRotation(c, m)
		}
	case "planetChanged":
		var m protocol.PlanetChanged
		if decode(&m) {
			h.relayPlanetChanged(c, m)
		}
	case "rocketPurchased":
		var m protocol.RocketPurchased
		if decode(&m) {
			h.relayRocketPurchased(c, m)
		}
	case "rocketPosition":
		var m protocol.RocketPosition
		if decode(&m) {
			h.relayRocketPosition(c, m)
		}
	case "rocketLaunched":
		var m protocol.RocketLaunched
		if decode(&m) {
			h.relayRocketLaunched(c, m)
		}
	case "getPlayersOnPlanet":
		var m protocol.GetPlayersOnPlanet
		if decode(&m) {
			h.handleGetPlayersOnPlanet(c, m)
		}

	default:
		Log.Debugw("unknown message type", "conn", c.id, "type", env.Type)
		h.stats.IncBadMessages()
	}
}

func (h *Hub) handleHostGame(c *client, m protocol.HostGame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, bound := h.registry.RoomFor(c.id); bound {
		sendJSON(c, "gameHosted", protocol.GameHosted{Success: false})
		return
	}

	maxPlayers := m.MaxPlayers
	if maxPlayers < 1 {
		maxPlayers = h.opts.DefaultMaxPlayers
	}
	if maxPlayers > h.opts.MaxRoomPlayers {
		maxPlayers = h.opts.MaxRoomPlayers
	}

	r := h.registry.Create(m.GameName, maxPlayers)
	r.HostID = c.id
	r.addPlayer(c, newPlayerState(c))
	h.registry.Bind(c.id, r)
	h.stats.IncRoomsCreated()
	h.stats.IncPlayersJoined()
	Log.Infow("room created", "code", r.Code, "host", c.id, "maxPlayers", maxPlayers)

	sendJSON(c, "gameHosted", protocol.GameHosted{GameCode: r.Code, Success: true})
	sendJSON(c, "gameState", h.gameStateFor(r, c.id))
}

func (h *Hub) handleJoinGame(c *client, m protocol.JoinGame) {
	code := strings.ToUpper(strings.TrimSpace(m.GameCode))

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, bound := h.registry.RoomFor(c.id); bound {
		sendJSON(c, "joinResponse", protocol.JoinResponse{Success: false, Message: ErrAlreadyInRoom.Error()})
		return
	}
	r, ok := h.registry.Get(code)
	if !ok {
		sendJSON(c, "joinResponse", protocol.JoinResponse{Success: false, Message: ErrRoomNotFound.Error()})
		return
	}
	if r.full() {
		sendJSON(c, "joinResponse", protocol.JoinResponse{Success: false, Message: ErrRoomFull.Error()})
		return
	}

	st := newPlayerState(c)
	// Spawn near the host with a randomized offset so players don't stack
	// exactly on top of each other.
	if host, ok := r.Players[r.HostID]; ok {
		st.X = host.X + float64(rand.Intn(120)-60)
		st.Y = host.Y
	}
	r.addPlayer(c, st)
	h.registry.Bind(c.id, r)
	h.stats.IncPlayersJoined()
	Log.Infow("player joined", "code", r.Code, "conn", c.id, "players", len(r.Players))

	sendJSON(c, "joinResponse", protocol.JoinResponse{Success: true, GameCode: r.Code})
	sendJSON(c, "gameState", h.gameStateFor(r, c.id))
	r.broadcastExcept(c.id, "newPlayer", protocol.NewPlayer{Player: st})
}

// disconnect tears down a connection's room membership. If the host left, or
// the room emptied, the room is destroyed; its code becomes unknown to
// subsequent joins.
func (h *Hub) disconnect(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c)
	r, ok := h.registry.RoomFor(c.id)
	if !ok {
		return
	}
	r.removePlayer(c.id)
	h.registry.Unbind(c.id)
	r.broadcast("playerDisconnected", protocol.PlayerDisconnected{ID: c.id})

	if c.id == r.HostID || len(r.Players) == 0 {
		h.registry.Destroy(r.Code)
		h.stats.IncRoomsDestroyed()
		Log.Infow("room destroyed", "code", r.Code, "hostLeft", c.id == r.HostID)
	}
}

func (h *Hub) gameStateFor(r *Room, playerID int64) protocol.GameState {
	gs := protocol.GameState{
		PlayerID: playerID,
		GameCode: r.Code,
		Players:  r.snapshotPlayers(),
	}
	if r.World.HasData() {
		gs.WorldBlocks = r.World.Snapshot()
	}
	if pos := r.rocketPos(); pos != nil {
		gs.HasRocket = true
		gs.RocketPosition = pos
	}
	return gs
}

func newPlayerState(c *client) protocol.PlayerState {
	return protocol.PlayerState{
		ID:            c.id,
		Name:          c.name,
		Direction:     1,
		Health:        100,
		CurrentTool:   "pickaxe-basic",
		CurrentPlanet: "earth",
	}
}
