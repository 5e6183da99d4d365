package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionKeyFromCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/songs/x", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-key"})
	w := httptest.NewRecorder()

	if got := SessionKey(w, r); got != "cookie-key" {
		t.Fatalf("SessionKey = %q", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("no new cookie should be set when only the cookie carries the key")
	}
}

func TestSessionKeyQueryOverridesCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/songs/x?key=query-key", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-key"})
	w := httptest.NewRecorder()

	if got := SessionKey(w, r); got != "query-key" {
		t.Fatalf("SessionKey = %q", got)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != "query-key" {
		t.Fatalf("promotion cookie = %v", cookies)
	}
	if cookies[0].Path != "/" || cookies[0].MaxAge <= 0 {
		t.Fatalf("promotion cookie not long-lived: %+v", cookies[0])
	}
}

func TestSessionKeyAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	if got := SessionKey(w, r); got != "" {
		t.Fatalf("SessionKey = %q, want empty", got)
	}
}

func TestLimiterDisabled(t *testing.T) {
	p := newLimiterPool(0, 0)
	for i := 0; i < 1000; i++ {
		if !p.Allow("anyone") {
			t.Fatal("disabled limiter rejected a request")
		}
	}
}

func TestLimiterEnforcesBurst(t *testing.T) {
	p := newLimiterPool(1, 2)
	if !p.Allow("a") || !p.Allow("a") {
		t.Fatal("burst requests rejected")
	}
	if p.Allow("a") {
		t.Fatal("request beyond burst allowed")
	}
	// Another caller has its own bucket.
	if !p.Allow("b") {
		t.Fatal("independent caller limited by someone else's bucket")
	}
}

func TestMiddlewareCORSAndOptions(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(Config{})(next)

	r := httptest.NewRequest(http.MethodOptions, "/songs", nil)
	r.Header.Set("Origin", "https://example.org")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight code = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Fatalf("Allow-Origin = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials not allowed for cookie-based sessions")
	}

	// Non-preflight requests pass through.
	r = httptest.NewRequest(http.MethodGet, "/songs", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTeapot {
		t.Fatalf("passthrough code = %d", w.Code)
	}
}

func TestMiddlewareRateLimits(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(Config{RPS: 1, Burst: 1})(next)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodGet, "/?key=hot-caller", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK {
		t.Fatalf("first request limited: %v", codes)
	}
	if codes[1] != http.StatusTooManyRequests && codes[2] != http.StatusTooManyRequests {
		t.Fatalf("burst never limited: %v", codes)
	}
}
