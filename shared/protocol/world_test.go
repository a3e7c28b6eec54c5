package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWorldBlocksWireFormat(t *testing.T) {
	w := WorldBlocks{
		3: {7: {Name: "dirt", Value: 2}, 8: nil},
	}
	b, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	// Rows and columns go over the wire as string object keys, and a mined
	// cell stays present as an explicit null.
	s := string(b)
	if !strings.Contains(s, `"3"`) || !strings.Contains(s, `"7"`) {
		t.Fatalf("keys not rendered as strings: %s", s)
	}
	if !strings.Contains(s, `"8":null`) {
		t.Fatalf("mined cell lost on the wire: %s", s)
	}

	var back WorldBlocks
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if blk := back[3][7]; blk == nil || blk.Name != "dirt" {
		t.Fatalf("round trip lost the block: %+v", back)
	}
	if blk, ok := back[3][8]; !ok || blk != nil {
		t.Fatal("round trip lost the known-empty cell")
	}
}

func TestSplitRowsCoversEveryRowOnce(t *testing.T) {
	w := make(WorldBlocks)
	for y := -2; y < 11; y++ {
		w[y] = map[int]*Block{0: {Name: "stone"}}
	}

	chunks := w.SplitRows(5)
	if len(chunks) != 3 {
		t.Fatalf("13 rows at 5 per chunk gave %d chunks, want 3", len(chunks))
	}
	seen := make(map[int]int)
	for _, ch := range chunks {
		for y := range ch {
			seen[y]++
		}
	}
	for y := -2; y < 11; y++ {
		if seen[y] != 1 {
			t.Fatalf("row %d appears %d times across chunks", y, seen[y])
		}
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id := NewID()
		if id <= 0 {
			t.Fatalf("id %d not positive", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
