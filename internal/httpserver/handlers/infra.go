package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// closer is implemented by publishers that track their broker connection.
type closer interface {
	IsClosed() bool
}

// Infra reports the state of the store, the listing cache and the event publisher.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"store":  checkStore(ctx, d),
			"cache":  checkCache(ctx, d),
			"events": checkEvents(d),
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

// overallStatus is critical without a store and degraded when an enabled
// optional component is down.
func overallStatus(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	for name, c := range components {
		if name != "store" && c.Enabled && !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	st := componentStatus{Enabled: true, Mode: d.StoreBackend}
	if err := d.Directory.Ready(ctx); err != nil {
		st.Impact = "all-endpoints-failing"
		st.Error = err.Error()
		return st
	}
	st.OK = true
	return st
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.Cache == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "listings-served-from-store"}
	}
	if err := d.Cache.Ping(ctx); err != nil {
		return componentStatus{
			Enabled: true,
			Mode:    "degraded",
			Impact:  "listings-served-from-store",
			Error:   err.Error(),
		}
	}
	return componentStatus{OK: true, Enabled: true, Mode: "redis"}
}

func checkEvents(d deps.Deps) componentStatus {
	c, ok := d.Events.(closer)
	if !ok {
		return componentStatus{OK: true, Mode: "disabled", Impact: "events-dropped"}
	}
	if c.IsClosed() {
		return componentStatus{
			Enabled: true,
			Mode:    "degraded",
			Impact:  "events-dropped",
			Error:   "broker connection closed",
		}
	}
	return componentStatus{OK: true, Enabled: true, Mode: "amqp"}
}
