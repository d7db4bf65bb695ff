package server

import (
	"net/http"
	"net/url"
	"slices"

	"nhooyr.io/websocket"
)

// corsPolicy answers browser dashboards served from another origin.
type corsPolicy struct {
	any     bool
	origins []string
	hosts   []string
}

func newCORSPolicy(origins []string) corsPolicy {
	p := corsPolicy{}
	for _, o := range origins {
		if o == "*" {
			p.any = true
			continue
		}
		p.origins = append(p.origins, o)
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			p.hosts = append(p.hosts, u.Host)
		}
	}
	return p
}

func (p corsPolicy) allowed(origin string) bool {
	return p.any || slices.Contains(p.origins, origin)
}

func (p corsPolicy) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && p.allowed(origin) {
			h := w.Header()
			if p.any {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// acceptOptions mirrors the policy for the WebSocket origin check, which
// matches hosts rather than full origins.
func (p corsPolicy) acceptOptions() *websocket.AcceptOptions {
	if p.any {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: p.hosts}
}
