package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inamate/pinboard/internal/bitmap"
	"github.com/inamate/pinboard/internal/typeid"
)

const maxUploadSize = 20 << 20 // 20MB

var allowedTypes = []string{"image/png", "image/jpeg", "image/tiff"}

// UploadResponse is returned from the upload endpoint. The client uses
// BitmapID, Width and Height to build an image.add operation.
type UploadResponse struct {
	BitmapID string `json:"bitmapId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Name     string `json:"name"`
}

// Handler serves bitmap upload and retrieval endpoints.
type Handler struct {
	library *bitmap.Library
}

func NewHandler(library *bitmap.Library) *Handler {
	return &Handler{library: library}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large (max 20MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowed(contentType) {
		writeError(w, http.StatusBadRequest, "only PNG, JPEG and TIFF images are supported")
		return
	}

	id, img, err := h.library.Decode(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image")
		return
	}

	b := img.Bounds()
	slog.Info("bitmap uploaded", "bitmap", id, "width", b.Dx(), "height", b.Dy(), "type", contentType)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{
		BitmapID: id,
		URL:      fmt.Sprintf("/assets/%s.png", id),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Name:     header.Filename,
	})
}

// Serve returns an http.Handler that streams stored bitmaps as PNG.
func (h *Handler) Serve() http.Handler {
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(r.URL.Path, ".png")
		if err := typeid.Validate(id, typeid.PrefixBitmap); err != nil {
			http.NotFound(w, r)
			return
		}

		img, err := h.library.Get(id)
		if err != nil {
			if errors.Is(err, bitmap.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			slog.Error("load bitmap", "bitmap", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Bitmap ids are never reused.
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil {
			slog.Debug("write bitmap", "bitmap", id, "error", err)
		}
	}))
}

func allowed(contentType string) bool {
	for _, t := range allowedTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
