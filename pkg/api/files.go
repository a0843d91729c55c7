package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sulbao/community/pkg/board"
)

// FilesHandler streams stored uploads
type FilesHandler struct {
	service board.Service
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(service board.Service) *FilesHandler {
	return &FilesHandler{service: service}
}

// Routes returns the routes for files
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}", h.Download)
	return r
}

// Download writes the stored file to the response
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	file, err := h.service.OpenFile(r.Context(), name)
	if err != nil {
		writeError(w, r, "Failed to open file", err)
		return
	}
	defer file.Body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	if file.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, file.Body); err != nil {
		slog.WarnContext(r.Context(), "Failed to stream file", "name", name, "error", err)
	}
}
