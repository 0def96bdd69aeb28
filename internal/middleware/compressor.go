package middleware

import (
	"net/http"

	"github.com/drstein77/littlelemon/internal/compress"
)

// DecompressRequestMiddleware unpacks gzip request bodies.
func DecompressRequestMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			h.ServeHTTP(w, r)
			return
		}

		cr, err := compress.NewGzipReader(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.Body = cr
		defer cr.Close()

		h.ServeHTTP(w, r)
	})
}
