package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
)

// probeTimeout bounds every backend ping done by the ops endpoints.
const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz answers 200 when the store answers a ping, 503 otherwise.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		w.Header().Set("Cache-Control", "no-store")
		if err := d.Directory.Ready(ctx); err != nil {
			d.Logger.Warn("readiness probe failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
