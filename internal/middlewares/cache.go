package middlewares

import (
	"fmt"
	"net/http"
	"time"
)

// Cache marks responses as publicly cacheable for the given duration. Meant
// for endpoints whose output only depends on the request path, like QR codes.
func Cache(maxAge time.Duration, handler http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		handler.ServeHTTP(w, r)
	})
}
