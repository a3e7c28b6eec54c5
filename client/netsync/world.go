package netsync

import (
	"log"
	"time"

	"pixelminer/shared/protocol"
)

// UploadWorld pushes the full terrain grid to the room: an informational
// start, the rows split into bounded chunks sent back-to-back (the ordered
// transport carries them, no per-chunk acknowledgment), and an informational
// finish. A dropped connection mid-upload means a full restart.
func (s *State) UploadWorld(blocks protocol.WorldBlocks, planetType string, hasRocket bool, rocket protocol.Vec2) error {
	start := protocol.StartWorldUpload{
		TotalRows:  len(blocks.Rows()),
		BlockCount: blocks.Count(),
		PlanetType: planetType,
		HasRocket:  hasRocket,
	}
	if hasRocket {
		pos := rocket
		start.RocketPosition = &pos
	}
	if err := s.net.Send("startWorldUpload", start); err != nil {
		return err
	}

	chunks := blocks.SplitRows(s.opts.RowsPerChunk)
	sent := 0
	for i, chunk := range chunks {
		if err := s.net.Send("worldChunk", protocol.WorldChunk{
			ChunkIndex:  i,
			TotalChunks: len(chunks),
			ChunkData:   chunk,
			RowCount:    len(chunk),
		}); err != nil {
			return err
		}
		sent++
	}

	return s.net.Send("finishWorldUpload", protocol.FinishWorldUpload{
		TotalSent:  sent,
		BlockCount: blocks.Count(),
	})
}

// SyncWorld drives the guest-side download: request the world, re-request
// after a timeout, and after a second timeout give up on the room and build
// a local world with the injected generator, uploading it back as a recovery
// measure in case the host's upload was lost.
//
// Runs in its own goroutine; returns once the world is ready.
func (s *State) SyncWorld(planet string) {
	if s.WorldReady() {
		return
	}
	_ = s.net.Send("requestWorldData", protocol.RequestWorldData{Planet: planet})

	time.Sleep(s.opts.RetryDelay)
	if s.WorldReady() {
		return
	}
	log.Printf("netsync: no world data yet, retrying")
	_ = s.net.Send("requestWorldData", protocol.RequestWorldData{Planet: planet})

	time.Sleep(s.opts.FallbackDelay)
	if s.WorldReady() {
		return
	}

	if s.generate == nil {
		if s.listener != nil {
			s.listener.Status("world download failed")
		}
		return
	}
	log.Printf("netsync: world download timed out, generating locally")
	if s.listener != nil {
		s.listener.Status("generating world")
	}
	blocks := s.generate(planet)
	s.applyWorld(blocks, false, nil)
	if err := s.UploadWorld(blocks, planet, false, protocol.Vec2{}); err != nil {
		log.Printf("netsync: recovery upload failed: %v", err)
	}
}
