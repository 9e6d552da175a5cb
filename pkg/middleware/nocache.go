package middleware

import "net/http"

// NoStore marks every response as uncacheable. Console pages embed the
// current form and flash state, so a cached copy would show stale data.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
