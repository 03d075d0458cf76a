package api

import (
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	now           Clock
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, now Clock) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, now: now}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeFailure(w, h.now, NewKind("api.get_stats", ErrMethodNotAllowed))
		return
	}
	if err := writeJSON(w, http.StatusOK, h.statsProvider.GetStats()); err != nil {
		writeFailure(w, h.now, Wrap("api.get_stats", err))
	}
}
