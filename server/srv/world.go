package srv

import (
	"pixelminer/shared/protocol"
)

// WorldState is a room's authoritative terrain grid plus upload bookkeeping.
// Chunks merge directly into the grid as they arrive; there is no atomicity,
// so concurrent readers can observe a partially uploaded world, and a host
// that never finishes leaves whatever partial data arrived.
type WorldState struct {
	blocks protocol.WorldBlocks

	// Declared upload totals, recorded for diagnostics only. The protocol
	// does not verify them against what actually arrived.
	declaredRows   int
	declaredBlocks int
	planetType     string
	chunksMerged   int
	uploadDone     bool
}

func NewWorldState() *WorldState {
	return &WorldState{blocks: make(protocol.WorldBlocks)}
}

// BeginUpload records the uploader's declared totals.
func (w *WorldState) BeginUpload(totalRows, blockCount int, planetType string) {
	w.declaredRows = totalRows
	w.declaredBlocks = blockCount
	w.planetType = planetType
	w.chunksMerged = 0
	w.uploadDone = false
}

// MergeChunk merges one chunk's rows into the grid, overwriting any existing
// entries for those coordinates. Returns the number of cells written.
func (w *WorldState) MergeChunk(chunk protocol.WorldBlocks) int {
	w.chunksMerged++
	return w.blocks.Merge(chunk)
}

// FinishUpload marks the logical end of the batch.
func (w *WorldState) FinishUpload() {
	w.uploadDone = true
}

// SetMined marks a cell as known-empty. Mining is monotone: there is no
// un-mining, so a repeat write is a no-op.
func (w *WorldState) SetMined(x, y int) {
	w.blocks.SetMined(x, y)
}

// BlockAt reports the cell's occupant and whether the cell is known at all.
func (w *WorldState) BlockAt(x, y int) (*protocol.Block, bool) {
	cols, ok := w.blocks[y]
	if !ok {
		return nil, false
	}
	b, ok := cols[x]
	return b, ok
}

// HasData reports whether any world data has arrived yet.
func (w *WorldState) HasData() bool {
	return len(w.blocks) > 0
}

// Snapshot returns a copy of the grid safe to hand to the encoder after the
// hub mutex is released.
func (w *WorldState) Snapshot() protocol.WorldBlocks {
	return w.blocks.Clone()
}

// KnownCells reports the number of known cells, for metrics and logs.
func (w *WorldState) KnownCells() int {
	return w.blocks.Count()
}
