package srv

import "sync/atomic"

// Metrics tracks relay-level counters for monitoring and debugging. All
// fields are updated atomically so the snapshot endpoint never contends
// with message handling.
type Metrics struct {
	RoomsCreated   int64
	RoomsDestroyed int64
	PlayersJoined  int64
	EventsRelayed  int64
	ChunksMerged   int64
	BlocksMined    int64
	BadMessages    int64
}

func (m *Metrics) IncRoomsCreated()   { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncRoomsDestroyed() { atomic.AddInt64(&m.RoomsDestroyed, 1) }
func (m *Metrics) IncPlayersJoined()  { atomic.AddInt64(&m.PlayersJoined, 1) }
func (m *Metrics) IncEventsRelayed()  { atomic.AddInt64(&m.EventsRelayed, 1) }
func (m *Metrics) IncChunksMerged()   { atomic.AddInt64(&m.ChunksMerged, 1) }
func (m *Metrics) IncBlocksMined()    { atomic.AddInt64(&m.BlocksMined, 1) }
func (m *Metrics) IncBadMessages()    { atomic.AddInt64(&m.BadMessages, 1) }

// Snapshot returns a read-only copy suitable for JSON output.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"rooms_created":   atomic.LoadInt64(&m.RoomsCreated),
		"rooms_destroyed": atomic.LoadInt64(&m.RoomsDestroyed),
		"players_joined":  atomic.LoadInt64(&m.PlayersJoined),
		"events_relayed":  atomic.LoadInt64(&m.EventsRelayed),
		"chunks_merged":   atomic.LoadInt64(&m.ChunksMerged),
		"blocks_mined":    atomic.LoadInt64(&m.BlocksMined),
		"bad_messages":    atomic.LoadInt64(&m.BadMessages),
	}
}
