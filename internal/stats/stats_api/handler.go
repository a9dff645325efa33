package stats_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/stats"
)

type Handler struct {
	Stats  *stats.Service
	Logger *logger.Logger
}

// PublicStats serves the landing-page counters.
func (h *Handler) PublicStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.Stats.PublicStats(r.Context())
	if err != nil {
		h.Logger.Error("STATS", fmt.Sprintf("failed to compute public stats: %v", err))
		http.Error(w, "failed to fetch stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
