package handlers

import "net/http"

// IndexStatus reports the state of the disease catalog index
type IndexStatus interface {
	IsLoaded() bool
	Size() int
}

// HealthHandler handles liveness checks
type HealthHandler struct {
	index IndexStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(index IndexStatus) *HealthHandler {
	return &HealthHandler{index: index}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"index_loaded": h.index.IsLoaded(),
		"index_size":   h.index.Size(),
	})
}
