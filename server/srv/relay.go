package srv

import (
	"pixelminer/shared/protocol"
)

// Event relay: durable facts (position, tool, planet, world blocks, rocket)
// mutate room state, everything else fans out verbatim. Every handler is a
// silent no-op when the sender isn't bound to a room: these are best-effort
// real-time updates racing disconnects and teardowns, never errors.

// roomOf resolves the sender's room under the hub lock.
func (h *Hub) roomOf(c *client) (*Room, *PlayerRecord, bool) {
	r, ok := h.registry.RoomFor(c.id)
	if !ok {
		return nil, nil, false
	}
	p, ok := r.Players[c.id]
	if !ok {
		return nil, nil, false
	}
	return r, p, true
}

func (h *Hub) relayPlayerMove(c *client, m protocol.PlayerMove) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, p, ok := h.roomOf(c)
	if !ok {
		return
	}
	// Overwrite the advisory kinematic state as reported; the server does
	// not simulate physics.
	p.X, p.Y = m.X, m.Y
	p.Direction = m.Direction
	p.VelocityX, p.VelocityY = m.VelocityX, m.VelocityY
	p.OnGround = m.OnGround
	p.Health = m.Health
	p.Depth = m.Depth
	if m.CurrentPlanet != "" {
		p.CurrentPlanet = m.CurrentPlanet
	}
	if m.CurrentTool != "" {
		p.CurrentTool = m.CurrentTool
	}
	if m.ToolType != "" {
		p.ToolType = m.ToolType
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerMoved", protocol.PlayerMoved{ID: c.id, PlayerMove: m})
}

func (h *Hub) relayBlockMined(c *client, m protocol.BlockMined) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	r.World.SetMined(m.X, m.Y)
	h.stats.IncBlocksMined()
	h.stats.IncEventsRelayed()
	// Sender included: every client converges on the same cell state.
	r.broadcast("worldUpdated", protocol.WorldUpdated{X: m.X, Y: m.Y, Block: nil})
}

func (h *Hub) relayToolChanged(c *client, m protocol.ToolChanged) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, p, ok := h.roomOf(c)
	if !ok {
		return
	}
	p.CurrentTool = m.Tool
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerToolChanged", protocol.PlayerToolChanged{ID: c.id, Tool: m.Tool})
}

func (h *Hub) relayMiningStart(c *client, m protocol.MiningStart) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerMiningStart", protocol.PlayerMiningStart{ID: c.id, X: m.X, Y: m.Y, Tool: m.Tool})
}

func (h *Hub) relayMiningStop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerMiningStop", protocol.PlayerMiningStop{ID: c.id})
}

func (h *Hub) relayLaserActivated(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerLaserActivated", protocol.PlayerLaserActivated{ID: c.id})
}

func (h *Hub) relayLaserDeactivated(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerLaserDeactivated", protocol.PlayerLaserDeactivated{ID: c.id})
}

func (h *Hub) relayLaserUpdate(c *client, m protocol.LaserUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerLaserUpdate", protocol.PlayerLaserUpdate{ID: c.id, Angle: m.Angle})
}

func (h *Hub) relayJetpackActivated(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerJetpackActivated", protocol.PlayerJetpackActivated{ID: c.id})
}

func (h *Hub) relayJetpackDeactivated(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerJetpackDeactivated", protocol.PlayerJetpackDeactivated{ID: c.id})
}

func (h *Hub) relayToolRotation(c *client, m protocol.ToolRotation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "playerToolRotation", protocol.PlayerToolRotation{ID: c.id, Angle: m.Angle, Direction: m.Direction})
}

func (h *Hub) relayPlanetChanged(c *client, m protocol.PlanetChanged) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, p, ok := h.roomOf(c)
	if !ok {
		return
	}
	p.CurrentPlanet = m.Planet
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "planetChanged", protocol.PlayerPlanetChanged{PlayerID: c.id, Planet: m.Planet})
}

func (h *Hub) relayRocketPurchased(c *client, m protocol.RocketPurchased) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	r.Rocket = RocketState{Placed: true, Pos: protocol.Vec2{X: m.RocketX, Y: m.RocketY}}
	h.stats.IncEventsRelayed()
	// All connections, sender included: rocket placement is room state.
	r.broadcast("rocketPurchased", protocol.RocketPurchasedEvent{PlayerID: c.id, RocketX: m.RocketX, RocketY: m.RocketY})
}

func (h *Hub) relayRocketPosition(c *client, m protocol.RocketPosition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	r.Rocket = RocketState{Placed: true, Pos: protocol.Vec2{X: m.X, Y: m.Y}}
	h.stats.IncEventsRelayed()
	r.broadcast("rocketPositionUpdate", protocol.RocketPositionUpdate{PlayerID: c.id, X: m.X, Y: m.Y})
}

func (h *Hub) relayRocketLaunched(c *client, m protocol.RocketLaunched) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	// Relayed verbatim; the originator re-sends a confirm so receivers must
	// apply it idempotently.
	h.stats.IncEventsRelayed()
	r.broadcastExcept(c.id, "rocketLaunched", protocol.RocketLaunchedEvent{PlayerID: c.id, RocketLaunched: m})
}

func (h *Hub) handleGetPlayersOnPlanet(c *client, m protocol.GetPlayersOnPlanet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	sendJSON(c, "playersOnPlanet", protocol.PlayersOnPlanet{
		Planet:  m.Planet,
		Players: r.playersOnPlanet(m.Planet, c.id),
	})
}

// ---------- World transfer ----------

func (h *Hub) handleStartWorldUpload(c *client, m protocol.StartWorldUpload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	r.World.BeginUpload(m.TotalRows, m.BlockCount, m.PlanetType)
	if m.HasRocket && m.RocketPosition != nil {
		r.Rocket = RocketState{Placed: true, Pos: *m.RocketPosition}
	}
	Log.Infow("world upload started", "code", r.Code, "conn", c.id,
		"totalRows", m.TotalRows, "blockCount", m.BlockCount, "planet", m.PlanetType)
}

func (h *Hub) handleWorldChunk(c *client, m protocol.WorldChunk) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	r.World.MergeChunk(m.ChunkData)
	h.stats.IncChunksMerged()
}

func (h *Hub) handleFinishWorldUpload(c *client, m protocol.FinishWorldUpload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	r.World.FinishUpload()
	Log.Infow("world upload finished", "code", r.Code, "conn", c.id,
		"chunks", r.World.chunksMerged, "cells", r.World.KnownCells(), "declaredBlocks", m.BlockCount)
}

func (h *Hub) handleRequestWorldData(c *client, m protocol.RequestWorldData) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, _, ok := h.roomOf(c)
	if !ok {
		return
	}
	if !r.World.HasData() {
		// Recovery is client policy: retry after a delay, then fall back to
		// local generation.
		sendJSON(c, "worldDataResponse", protocol.WorldDataResponse{
			Success: false,
			Message: "world data not available yet",
		})
		return
	}
	resp := protocol.WorldDataResponse{
		Success:     true,
		WorldBlocks: r.World.Snapshot(),
	}
	if pos := r.rocketPos(); pos != nil {
		resp.HasRocket = true
		resp.RocketPosition = pos
	}
	sendJSON(c, "worldDataResponse", resp)
}
