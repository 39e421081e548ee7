package http

import (
	"io"
	"net/http"
	"path/filepath"

	"gomate-backend/internal/storage"

	"github.com/gorilla/mux"
)

// StorageHandler serves the local backend's presigned URLs: uploads are
// PUT straight to the server and downloads are streamed back. The firebase
// backend signs real bucket URLs and never hits these routes.
type StorageHandler struct {
	local        *storage.LocalBackend
	allowedTypes []string
}

func NewStorageHandler(local *storage.LocalBackend, allowedTypes []string) *StorageHandler {
	return &StorageHandler{local: local, allowedTypes: allowedTypes}
}

func (h *StorageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	allowed := false
	for _, t := range h.allowedTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	if err := h.local.SaveFile(key, r.Body); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", `"local-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

func (h *StorageHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.local.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = io.Copy(w, file)
}

// RegisterStorageRoutes registers the local storage passthrough endpoints
func RegisterStorageRoutes(router *mux.Router, local *storage.LocalBackend, allowedTypes []string) {
	handler := NewStorageHandler(local, allowedTypes)
	router.HandleFunc("/api/v1/storage/upload/{token}", handler.HandleUpload).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/storage/download", handler.HandleDownload).Methods(http.MethodGet)
}
