package srv

import (
	"encoding/json"
	"net/http"
)

// HandleMetrics serves the relay counters plus live room/connection gauges.
func (h *Hub) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	rooms := h.registry.Len()
	conns := len(h.clients)
	h.mu.Unlock()

	snap := h.stats.Snapshot()
	snap["live_rooms"] = rooms
	snap["live_connections"] = conns

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}
