package models

// Song is the authoritative representation of one song sheet. The body is
// the raw markup exactly as submitted; title and artist are extracted from
// it and are mandatory for a valid document.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Body   string `json:"body"`
}

// Hit is one ranked search result.
type Hit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Snippet string `json:"snippet,omitempty"`
}
