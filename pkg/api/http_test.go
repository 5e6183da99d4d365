package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"songbook/pkg/cache"
	"songbook/pkg/engine"
	"songbook/pkg/index"
	"songbook/pkg/keys"
	"songbook/pkg/store"
)

func newRouter(t *testing.T, ready func() bool) http.Handler {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "songs"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	ix, err := index.Open(filepath.Join(dir, "index"))
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	kr, err := keys.Load(dir)
	if err != nil {
		t.Fatalf("keys.Load: %v", err)
	}
	e := engine.New(st, ix, cache.New(), kr)
	return Router(e, kr, filepath.Join(dir, "web"), ready)
}

func getProbe(t *testing.T, h http.Handler, path string) (int, probeState) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("%s content type = %q", path, ct)
	}
	var st probeState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("%s body %q: %v", path, w.Body.String(), err)
	}
	return w.Code, st
}

func TestHealthz(t *testing.T) {
	h := newRouter(t, nil)
	code, st := getProbe(t, h, "/healthz")
	if code != http.StatusOK || st.Status != "ok" {
		t.Fatalf("healthz: %d %+v", code, st)
	}
}

func TestReadyz(t *testing.T) {
	h := newRouter(t, func() bool { return true })
	code, st := getProbe(t, h, "/readyz")
	if code != http.StatusOK || st.Status != "ok" {
		t.Fatalf("ready: %d %+v", code, st)
	}

	h = newRouter(t, func() bool { return false })
	code, st = getProbe(t, h, "/readyz")
	if code != http.StatusServiceUnavailable || st.Status != "unavailable" || st.Reason == "" {
		t.Fatalf("not ready: %d %+v", code, st)
	}
}
