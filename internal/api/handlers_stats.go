package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleVisionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"vision":      s.visionStats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
