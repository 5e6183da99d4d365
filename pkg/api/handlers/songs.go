package handlers

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"songbook/pkg/auth"
	"songbook/pkg/engine"
	"songbook/pkg/keys"
	"songbook/pkg/logger"
	"songbook/pkg/song"
)

const maxBodyBytes = 1 << 20

// Songs bridges HTTP requests to the engine. The handlers only extract
// the operation descriptor and transmit the result; authorization,
// validation and consistency all live behind engine.Handle.
type Songs struct {
	Engine  *engine.Engine
	Keys    *keys.Keyring
	WebRoot string
}

// RegisterSongs registers the song and search routes.
func RegisterSongs(r *mux.Router, e *engine.Engine, k *keys.Keyring, webRoot string) {
	h := &Songs{Engine: e, Keys: k, WebRoot: webRoot}

	r.HandleFunc("/", h.search).Methods(http.MethodGet)
	r.HandleFunc("/search", h.search).Methods(http.MethodGet)
	r.HandleFunc("/search/", h.search).Methods(http.MethodGet)
	r.HandleFunc("/search/{query}", h.search).Methods(http.MethodGet)
	r.HandleFunc("/new", h.newSong).Methods(http.MethodGet)

	r.HandleFunc("/songs", h.create).Methods(http.MethodPost)
	r.HandleFunc("/songs/", h.create).Methods(http.MethodPost)
	r.HandleFunc("/songs/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/songs/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/songs/{id}", h.delete).Methods(http.MethodDelete)

	r.HandleFunc("/admin/index/{command}", h.adminIndex).Methods(http.MethodGet)
}

func (h *Songs) search(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]
	if query == "" {
		query = r.URL.Query().Get("q")
	}

	res := h.Engine.Handle(r.Context(), engine.Operation{
		Kind:   engine.Search,
		Query:  query,
		Key:    auth.SessionKey(w, r),
		Accept: r.Header.Get("Accept"),
	})

	// Until the administrator key has been presented once, HTML responses
	// carry it so the operator can claim a fresh instance.
	if res.Status == engine.StatusOK && res.ContentType == song.MimeHTML && h.Keys.PendingActivation() {
		res.Body = activationAlert(h.Keys.AdminKey(), r.URL.Path) + res.Body
	}
	writeResult(w, res)
}

func (h *Songs) get(w http.ResponseWriter, r *http.Request) {
	res := h.Engine.Handle(r.Context(), engine.Operation{
		Kind:   engine.Read,
		ID:     mux.Vars(r)["id"],
		Key:    auth.SessionKey(w, r),
		Accept: r.Header.Get("Accept"),
	})
	writeResult(w, res)
}

func (h *Songs) create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res := h.Engine.Handle(r.Context(), engine.Operation{
		Kind: engine.Create,
		Body: body,
		Key:  auth.SessionKey(w, r),
	})
	writeResult(w, res)
}

func (h *Songs) update(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res := h.Engine.Handle(r.Context(), engine.Operation{
		Kind: engine.Update,
		ID:   mux.Vars(r)["id"],
		Body: body,
		Key:  auth.SessionKey(w, r),
	})
	writeResult(w, res)
}

func (h *Songs) delete(w http.ResponseWriter, r *http.Request) {
	res := h.Engine.Handle(r.Context(), engine.Operation{
		Kind: engine.Delete,
		ID:   mux.Vars(r)["id"],
		Key:  auth.SessionKey(w, r),
	})
	writeResult(w, res)
}

// newSong serves the song entry form. Only holders of the administrator
// key may create songs, so the form itself sits behind the same gate.
func (h *Songs) newSong(w http.ResponseWriter, r *http.Request) {
	if d := h.Keys.Authorize(auth.SessionKey(w, r), true); !d.Allowed {
		writeResult(w, engine.Result{Status: engine.StatusForbidden, Body: "access forbidden", ContentType: song.MimePlain})
		return
	}
	http.ServeFile(w, r, filepath.Join(h.WebRoot, "new.html"))
}

func (h *Songs) adminIndex(w http.ResponseWriter, r *http.Request) {
	command := mux.Vars(r)["command"]
	if command != "reset" {
		http.Error(w, "command not supported", http.StatusBadRequest)
		return
	}
	res := h.Engine.Handle(r.Context(), engine.Operation{
		Kind: engine.Reindex,
		Key:  auth.SessionKey(w, r),
	})
	writeResult(w, res)
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("request_body_read_failed", "path", r.URL.Path, "error", err)
		http.Error(w, "request body too large or unreadable", http.StatusBadRequest)
		return "", false
	}
	return string(b), true
}

func writeResult(w http.ResponseWriter, res engine.Result) {
	ct := res.ContentType
	if ct == "" {
		ct = song.MimePlain
	}
	w.Header().Set("Content-Type", ct+"; charset=utf-8")
	w.WriteHeader(res.Status.HTTPCode())
	_, _ = io.WriteString(w, res.Body)
}

func activationAlert(adminKey, path string) string {
	return fmt.Sprintf(
		`<div class="alert alert-warning">An administrator key was generated for this songbook: `+
			`<a href="%s?key=%s"><code>%s</code></a>. Open the link once to claim it.</div>`+"\n",
		html.EscapeString(path), html.EscapeString(adminKey), html.EscapeString(adminKey))
}
