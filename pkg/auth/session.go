package auth

import (
	"math"
	"net/http"
)

// SessionCookie is the cookie carrying the caller's capability key.
const SessionCookie = "SessionKey"

// SessionKey extracts the capability key from the request: the SessionKey
// cookie if present, overridden by a ?key= query parameter. A key
// supplied via query parameter is promoted to a long-lived cookie so
// follow-up requests from the same client carry it automatically.
func SessionKey(w http.ResponseWriter, r *http.Request) string {
	var key string
	if c, err := r.Cookie(SessionCookie); err == nil {
		key = c.Value
	}
	if q := r.URL.Query().Get("key"); q != "" && q != key {
		key = q
		http.SetCookie(w, &http.Cookie{
			Name:   SessionCookie,
			Value:  key,
			Path:   "/",
			MaxAge: math.MaxInt32,
		})
	}
	return key
}
