package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/vbonduro/brandswipe/internal/mediastore"
)

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	rc, mimeType, err := s.media.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, mediastore.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Warn("media lookup rejected", "key", key, "error", err)
		http.Error(w, "invalid media path", http.StatusBadRequest)
		return
	}
	defer closeWithLog(rc, "media file", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error("failed to write media", "key", key, "error", err)
	}
}
