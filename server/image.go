package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Image proxies an image from the campfire CDN so frontends can load avatars
// and cover photos without dealing with cross-origin restrictions.
func (s *Server) Image(w http.ResponseWriter, r *http.Request) {
	imageID := r.PathValue("image_id")

	remoteImageURL := fmt.Sprintf("https://niantic-social-api.nianticlabs.com/images/%s", imageID)
	rq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, remoteImageURL, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create image request.")
		return
	}

	rs, err := s.HTTPClient.Do(rq)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch image.")
		return
	}
	defer func() {
		_ = rs.Body.Close()
	}()

	if rs.StatusCode != http.StatusOK {
		respondError(w, rs.StatusCode, "Failed to fetch image: "+rs.Status)
		return
	}

	h := w.Header()
	h.Set("Content-Type", rs.Header.Get("Content-Type"))
	h.Set("Content-Length", rs.Header.Get("Content-Length"))
	h.Set("Cache-Control", "public, max-age=31536000") // Cache for 1 year

	if _, err = io.Copy(w, rs.Body); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write image to response", slog.Any("err", err))
	}
}
