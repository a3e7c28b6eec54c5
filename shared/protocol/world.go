package protocol

import "sort"

// Block is the wire representation of a single occupied terrain cell.
// Color and Value are display/economy metadata the server passes through
// without interpreting.
type Block struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Value int    `json:"value,omitempty"`
}

// WorldBlocks is the sparse terrain grid: row -> column -> block.
// An absent entry means "not yet known", a nil *Block means "known empty"
// (mined out), a non-nil *Block means "occupied". encoding/json renders the
// int keys as string object keys, matching the browser client's format.
type WorldBlocks map[int]map[int]*Block

// Merge copies every entry of src into w, overwriting existing cells.
// Returns the number of cells written.
func (w WorldBlocks) Merge(src WorldBlocks) int {
	n := 0
	for row, cols := range src {
		dst := w[row]
		if dst == nil {
			dst = make(map[int]*Block, len(cols))
			w[row] = dst
		}
		for col, b := range cols {
			dst[col] = b
			n++
		}
	}
	return n
}

// SetMined marks the cell at (x, y) as known-empty. Re-mining an already
// empty cell is a harmless overwrite.
func (w WorldBlocks) SetMined(x, y int) {
	cols := w[y]
	if cols == nil {
		cols = make(map[int]*Block)
		w[y] = cols
	}
	cols[x] = nil
}

// Count returns the number of known cells (occupied or mined).
func (w WorldBlocks) Count() int {
	n := 0
	for _, cols := range w {
		n += len(cols)
	}
	return n
}

// Rows returns the row indexes in ascending order.
func (w WorldBlocks) Rows() []int {
	rows := make([]int, 0, len(w))
	for r := range w {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// Clone returns a deep copy of the grid. Block pointers are shared; blocks
// are immutable once placed on the wire.
func (w WorldBlocks) Clone() WorldBlocks {
	out := make(WorldBlocks, len(w))
	for row, cols := range w {
		c := make(map[int]*Block, len(cols))
		for col, b := range cols {
			c[col] = b
		}
		out[row] = c
	}
	return out
}

// SplitRows slices the grid into chunks of at most rowsPerChunk rows each,
// in ascending row order. Used by the uploading client to keep individual
// wire messages small; any chunking merges back to the identical grid.
func (w WorldBlocks) SplitRows(rowsPerChunk int) []WorldBlocks {
	if rowsPerChunk < 1 {
		rowsPerChunk = 1
	}
	rows := w.Rows()
	var chunks []WorldBlocks
	for start := 0; start < len(rows); start += rowsPerChunk {
		end := start + rowsPerChunk
		if end > len(rows) {
			end = len(rows)
		}
		chunk := make(WorldBlocks, end-start)
		for _, r := range rows[start:end] {
			chunk[r] = w[r]
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Vec2 is a world-space position in pixel units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
