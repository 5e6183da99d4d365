package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"songbook/pkg/api/handlers"
	"songbook/pkg/engine"
	"songbook/pkg/keys"
)

// probeState is the body of the health and readiness endpoints.
type probeState struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func writeProbe(w http.ResponseWriter, code int, st probeState) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(st)
}

// Router builds the full HTTP handler: song and search routes, health
// endpoints, prometheus metrics and the static web root as fallback.
// ready reports whether the store and index are usable, for /readyz.
func Router(e *engine.Engine, k *keys.Keyring, webRoot string, ready func() bool) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeProbe(w, http.StatusOK, probeState{Status: "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			writeProbe(w, http.StatusServiceUnavailable, probeState{Status: "unavailable", Reason: "store or index not answering"})
			return
		}
		writeProbe(w, http.StatusOK, probeState{Status: "ok"})
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler())

	handlers.RegisterSongs(r, e, k, webRoot)

	// Everything else is the static web client.
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(webRoot)))

	return r
}
