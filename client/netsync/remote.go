package netsync

import (
	"fmt"

	"pixelminer/shared/protocol"
)

// RemotePlayer mirrors one visible peer. A peer exists in the map only while
// visible; absent peers have no entry. Positions snap to the latest received
// value, no interpolation.
type RemotePlayer struct {
	protocol.PlayerState

	Mining     bool
	MiningX    int
	MiningY    int
	LaserOn    bool
	LaserAngle float64
	JetpackOn  bool
	ToolAngle  float64

	lastMoveTS int64
}

// Remotes returns a snapshot of the currently visible peers.
func (s *State) Remotes() []RemotePlayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RemotePlayer, 0, len(s.remotes))
	for _, rp := range s.remotes {
		out = append(out, *rp)
	}
	return out
}

// RemoteVisible reports whether a peer is currently instantiated.
func (s *State) RemoteVisible(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.remotes[id]
	return ok
}

// upsertRemoteLocked drives absent -> visible. Visibility is gated by a
// planet match: a peer viewing a different planet must not be instantiated.
func (s *State) upsertRemoteLocked(p protocol.PlayerState) {
	if p.ID == 0 || p.ID == s.playerID {
		return
	}
	if p.CurrentPlanet != "" && p.CurrentPlanet != s.localPlanet {
		s.dropRemoteLocked(p.ID)
		return
	}
	rp, ok := s.remotes[p.ID]
	if !ok {
		rp = &RemotePlayer{PlayerState: p}
		s.remotes[p.ID] = rp
		if s.listener != nil {
			s.listener.RemotePlayerSpawned(p)
		}
		return
	}
	rp.PlayerState = p
}

// dropRemoteLocked drives visible -> absent.
func (s *State) dropRemoteLocked(id int64) {
	if _, ok := s.remotes[id]; !ok {
		return
	}
	delete(s.remotes, id)
	if s.listener != nil {
		s.listener.RemotePlayerRemoved(id)
	}
}

func (s *State) applyMoveLocked(ev protocol.PlayerMoved) {
	if ev.ID == 0 || ev.ID == s.playerID {
		return
	}
	if ev.CurrentPlanet != "" && ev.CurrentPlanet != s.localPlanet {
		s.dropRemoteLocked(ev.ID)
		return
	}
	rp, ok := s.remotes[ev.ID]
	if !ok {
		// First sighting of this peer; a move from an untracked peer
		// instantiates it.
		st := protocol.PlayerState{
			ID:            ev.ID,
			X:             ev.X,
			Y:             ev.Y,
			Direction:     ev.Direction,
			VelocityX:     ev.VelocityX,
			VelocityY:     ev.VelocityY,
			OnGround:      ev.OnGround,
			Health:        ev.Health,
			Depth:         ev.Depth,
			CurrentTool:   ev.CurrentTool,
			ToolType:      ev.ToolType,
			CurrentPlanet: ev.CurrentPlanet,
		}
		s.upsertRemoteLocked(st)
		if rp = s.remotes[ev.ID]; rp != nil {
			rp.lastMoveTS = ev.Timestamp
		}
		return
	}
	// Updates carry the sender's clock; out-of-order delivery across the
	// relay is resolved by dropping anything older than the last applied.
	if ev.Timestamp != 0 && ev.Timestamp < rp.lastMoveTS {
		return
	}
	rp.lastMoveTS = ev.Timestamp
	rp.X, rp.Y = ev.X, ev.Y
	rp.Direction = ev.Direction
	rp.VelocityX, rp.VelocityY = ev.VelocityX, ev.VelocityY
	rp.OnGround = ev.OnGround
	rp.Health = ev.Health
	rp.Depth = ev.Depth
	if ev.CurrentTool != "" {
		rp.CurrentTool = ev.CurrentTool
	}
	if ev.ToolType != "" {
		rp.ToolType = ev.ToolType
	}
	if ev.CurrentPlanet != "" {
		rp.CurrentPlanet = ev.CurrentPlanet
	}
}

// applyPlanetChangeLocked handles a peer's planet transition. Duplicate
// deliveries are expected; re-applying the same target is a no-op so the
// teardown never runs twice.
func (s *State) applyPlanetChangeLocked(ev protocol.PlayerPlanetChanged) {
	key := transitionKey{playerID: ev.PlayerID, kind: "planet"}
	if s.lastTransition[key] == ev.Planet {
		return
	}
	s.lastTransition[key] = ev.Planet

	if rp, ok := s.remotes[ev.PlayerID]; ok {
		rp.CurrentPlanet = ev.Planet
		if ev.Planet != s.localPlanet {
			s.dropRemoteLocked(ev.PlayerID)
		}
	}
}

// applyRocketLaunchLocked removes the launching peer immediately (not
// waiting for a roster snapshot). The confirm re-send carries the same
// timestamp and target, so the identity key makes the repeat a no-op.
func (s *State) applyRocketLaunchLocked(ev protocol.RocketLaunchedEvent) {
	key := transitionKey{playerID: ev.PlayerID, kind: "rocketLaunch"}
	val := fmt.Sprintf("%s@%d", ev.TargetPlanet, ev.Timestamp)
	if s.lastTransition[key] == val {
		return
	}
	s.lastTransition[key] = val
	s.lastTransition[transitionKey{playerID: ev.PlayerID, kind: "planet"}] = ev.TargetPlanet

	if ev.TargetPlanet != s.localPlanet {
		s.dropRemoteLocked(ev.PlayerID)
	} else if rp, ok := s.remotes[ev.PlayerID]; ok {
		rp.CurrentPlanet = ev.TargetPlanet
	}
}
