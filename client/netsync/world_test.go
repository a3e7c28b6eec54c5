package netsync

import (
	"encoding/json"
	"fmt"
	"testing"

	"pixelminer/shared/protocol"
)

func testGrid(rows, cols int) protocol.WorldBlocks {
	w := make(protocol.WorldBlocks, rows)
	for y := 0; y < rows; y++ {
		w[y] = make(map[int]*protocol.Block, cols)
		for x := 0; x < cols; x++ {
			w[y][x] = &protocol.Block{Name: fmt.Sprintf("stone-%d-%d", x, y)}
		}
	}
	return w
}

func TestUploadWorldChunking(t *testing.T) {
	s, net, _ := newTestState(nil)
	src := testGrid(250, 2)

	if err := s.UploadWorld(src, "earth", true, protocol.Vec2{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}

	types := net.types()
	want := []string{"startWorldUpload", "worldChunk", "worldChunk", "worldChunk", "finishWorldUpload"}
	if len(types) != len(want) {
		t.Fatalf("sent %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("message %d is %q, want %q", i, types[i], want[i])
		}
	}

	var start protocol.StartWorldUpload
	if err := json.Unmarshal(net.sent[0].Data, &start); err != nil {
		t.Fatal(err)
	}
	if start.TotalRows != 250 || start.BlockCount != 500 || start.PlanetType != "earth" {
		t.Fatalf("start = %+v", start)
	}
	if !start.HasRocket || start.RocketPosition == nil || start.RocketPosition.X != 5 {
		t.Fatalf("rocket info lost: %+v", start)
	}

	// Merging the chunks back reproduces the source grid.
	merged := make(protocol.WorldBlocks)
	for _, m := range net.sent[1:4] {
		var ch protocol.WorldChunk
		if err := json.Unmarshal(m.Data, &ch); err != nil {
			t.Fatal(err)
		}
		if ch.TotalChunks != 3 {
			t.Fatalf("totalChunks = %d, want 3", ch.TotalChunks)
		}
		merged.Merge(ch.ChunkData)
	}
	if merged.Count() != src.Count() {
		t.Fatalf("merged %d cells, want %d", merged.Count(), src.Count())
	}

	var fin protocol.FinishWorldUpload
	if err := json.Unmarshal(net.sent[4].Data, &fin); err != nil {
		t.Fatal(err)
	}
	if fin.TotalSent != 3 || fin.BlockCount != 500 {
		t.Fatalf("finish = %+v", fin)
	}
}

func TestSyncWorldReturnsWhenReady(t *testing.T) {
	s, net, _ := newTestState(nil)
	deliver(t, s, "worldDataResponse", protocol.WorldDataResponse{
		Success:     true,
		WorldBlocks: testGrid(2, 2),
	})

	s.SyncWorld("earth")

	if len(net.types()) != 0 {
		t.Fatalf("sync with a ready world sent %v, want nothing", net.types())
	}
}

func TestSyncWorldRetriesThenFallsBack(t *testing.T) {
	gen := func(planet string) protocol.WorldBlocks {
		if planet != "earth" {
			return nil
		}
		return testGrid(3, 3)
	}
	s, net, rec := newTestState(gen)

	// No data ever arrives; the sync must retry once, then generate locally
	// and upload the result so the room recovers too.
	s.SyncWorld("earth")

	if n := net.count("requestWorldData"); n != 2 {
		t.Fatalf("requestWorldData sent %d times, want 2", n)
	}
	if !s.WorldReady() {
		t.Fatal("world should be ready after local generation")
	}
	if b, known := s.BlockAt(1, 1); !known || b == nil {
		t.Fatal("generated grid not applied locally")
	}
	if rec.loaded != 1 {
		t.Fatalf("WorldLoaded ran %d times, want 1", rec.loaded)
	}
	for _, typ := range []string{"startWorldUpload", "finishWorldUpload"} {
		if net.count(typ) != 1 {
			t.Fatalf("recovery upload missing %q, sent %v", typ, net.types())
		}
	}
}

func TestSyncWorldWithoutGenerator(t *testing.T) {
	s, net, rec := newTestState(nil)

	s.SyncWorld("earth")

	if s.WorldReady() {
		t.Fatal("no generator, no world")
	}
	if n := net.count("requestWorldData"); n != 2 {
		t.Fatalf("requestWorldData sent %d times, want 2", n)
	}
	if len(rec.statuses) == 0 {
		t.Fatal("failure should surface a status")
	}
}

func TestWorldDataFailureLeavesStateUntouched(t *testing.T) {
	s, _, rec := newTestState(nil)

	deliver(t, s, "worldDataResponse", protocol.WorldDataResponse{
		Success: false,
		Message: "world data not available yet",
	})

	if s.WorldReady() {
		t.Fatal("failed response must not mark the world ready")
	}
	if rec.loaded != 0 {
		t.Fatal("failed response must not fire WorldLoaded")
	}
}
