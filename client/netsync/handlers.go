package netsync

import (
	"encoding/json"
	"log"

	"pixelminer/shared/protocol"
)

// Handle applies one inbound envelope to the sync state. Unknown types and
// malformed payloads are dropped; the game must survive anything the wire
// delivers.
func (s *State) Handle(env Msg) {
	decode := func(v interface{}) bool {
		if err := json.Unmarshal(env.Data, v); err != nil {
			log.Printf("netsync: bad %s payload: %v", env.Type, err)
			return false
		}
		return true
	}

	switch env.Type {

	case "gameHosted":
		var m protocol.GameHosted
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if m.Success {
			s.gameCode = m.GameCode
			s.hosting = true
		}
		s.mu.Unlock()
		if !m.Success && s.listener != nil {
			s.listener.Status("could not create game")
		}

	case "joinResponse":
		var m protocol.JoinResponse
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if m.Success {
			s.gameCode = m.GameCode
			s.hosting = false
		}
		s.mu.Unlock()
		if !m.Success && s.listener != nil {
			s.listener.Status(m.Message)
		}

	case "gameState":
		var m protocol.GameState
		if !decode(&m) {
			return
		}
		s.applyGameState(m)

	case "newPlayer":
		var m protocol.NewPlayer
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.upsertRemoteLocked(m.Player)
		s.mu.Unlock()

	case "playerMoved":
		var m protocol.PlayerMoved
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.applyMoveLocked(m)
		s.mu.Unlock()

	case "worldUpdated":
		var m protocol.WorldUpdated
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		cols := s.world[m.Y]
		if cols == nil {
			cols = make(map[int]*protocol.Block)
			s.world[m.Y] = cols
		}
		cols[m.X] = m.Block
		s.mu.Unlock()
		if s.listener != nil {
			s.listener.WorldBlockUpdated(m.X, m.Y, m.Block)
		}

	case "playerToolChanged":
		var m protocol.PlayerToolChanged
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.CurrentTool = m.Tool
		}
		s.mu.Unlock()

	case "playerMiningStart":
		var m protocol.PlayerMiningStart
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.Mining = true
			rp.MiningX, rp.MiningY = m.X, m.Y
		}
		s.mu.Unlock()

	case "playerMiningStop":
		var m protocol.PlayerMiningStop
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.Mining = false
		}
		s.mu.Unlock()

	case "playerLaserActivated":
		var m protocol.PlayerLaserActivated
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.LaserOn = true
		}
		s.mu.Unlock()

	case "playerLaserDeactivated":
		var m protocol.PlayerLaserDeactivated
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.LaserOn = false
		}
		s.mu.Unlock()

	case "playerLaserUpdate":
		var m protocol.PlayerLaserUpdate
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.LaserAngle = m.Angle
		}
		s.mu.Unlock()

	case "playerJetpackActivated":
		var m protocol.PlayerJetpackActivated
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.JetpackOn = true
		}
		s.mu.Unlock()

	case "playerJetpackDeactivated":
		var m protocol.PlayerJetpackDeactivated
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.JetpackOn = false
		}
		s.mu.Unlock()

	case "playerToolRotation":
		var m protocol.PlayerToolRotation
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		if rp, ok := s.remotes[m.ID]; ok {
			rp.ToolAngle = m.Angle
			rp.Direction = m.Direction
		}
		s.mu.Unlock()

	case "planetChanged":
		var m protocol.PlayerPlanetChanged
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.applyPlanetChangeLocked(m)
		s.mu.Unlock()

	case "rocketPurchased":
		var m protocol.RocketPurchasedEvent
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.rocketPlaced = true
		s.rocketPos = protocol.Vec2{X: m.RocketX, Y: m.RocketY}
		pos := s.rocketPos
		s.mu.Unlock()
		if s.listener != nil {
			s.listener.RocketUpdated(pos)
		}

	case "rocketPositionUpdate":
		var m protocol.RocketPositionUpdate
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.rocketPlaced = true
		s.rocketPos = protocol.Vec2{X: m.X, Y: m.Y}
		pos := s.rocketPos
		s.mu.Unlock()
		if s.listener != nil {
			s.listener.RocketUpdated(pos)
		}

	case "rocketLaunched":
		var m protocol.RocketLaunchedEvent
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.applyRocketLaunchLocked(m)
		s.mu.Unlock()

	case "playersOnPlanet":
		var m protocol.PlayersOnPlanet
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		for _, p := range m.Players {
			s.upsertRemoteLocked(p)
		}
		s.mu.Unlock()

	case "playerDisconnected":
		var m protocol.PlayerDisconnected
		if !decode(&m) {
			return
		}
		s.mu.Lock()
		s.dropRemoteLocked(m.ID)
		delete(s.lastTransition, transitionKey{playerID: m.ID, kind: "planet"})
		delete(s.lastTransition, transitionKey{playerID: m.ID, kind: "rocketLaunch"})
		s.mu.Unlock()

	case "worldDataResponse":
		var m protocol.WorldDataResponse
		if !decode(&m) {
			return
		}
		if m.Success {
			s.applyWorld(m.WorldBlocks, m.HasRocket, m.RocketPosition)
		}

	default:
		log.Printf("netsync: unhandled message type %q", env.Type)
	}
}

func (s *State) applyGameState(m protocol.GameState) {
	s.mu.Lock()
	s.playerID = m.PlayerID
	if m.GameCode != "" {
		s.gameCode = m.GameCode
	}
	for _, p := range m.Players {
		s.upsertRemoteLocked(p)
	}
	s.mu.Unlock()

	if len(m.WorldBlocks) > 0 {
		s.applyWorld(m.WorldBlocks, m.HasRocket, m.RocketPosition)
	}
}

func (s *State) applyWorld(blocks protocol.WorldBlocks, hasRocket bool, rocket *protocol.Vec2) {
	s.mu.Lock()
	s.world = blocks.Clone()
	s.worldReady = true
	if hasRocket && rocket != nil {
		s.rocketPlaced = true
		s.rocketPos = *rocket
	}
	placed := s.rocketPlaced
	pos := s.rocketPos
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.WorldLoaded(blocks, placed, pos)
	}
}
