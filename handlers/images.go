// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/storage"
)

type ImageHandler struct {
	images *storage.ImageStore
}

func NewImageHandler(images *storage.ImageStore) *ImageHandler {
	return &ImageHandler{images: images}
}

// Upload handles POST /images. The image is either the "file" field of a
// multipart form or the raw request body.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	// Leave room for multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+64<<10)

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, storage.ErrTooLarge.Error())
			return
		}
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Multipart field \"file\" is required")
			return
		}
		defer file.Close()
		src = file
	}

	res, err := h.images.Save(owner.ID, src)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrTooLarge), errors.As(err, &tooLarge):
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, storage.ErrTooLarge.Error())
		return
	case errors.Is(err, storage.ErrNotImage):
		middleware.ErrorResponse(w, http.StatusUnsupportedMediaType, err.Error())
		return
	default:
		slog.Error("failed to store image", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	slog.Info("image uploaded", "owner_id", owner.ID, "path", res.Path)

	middleware.JSONResponse(w, http.StatusCreated, res)
}

// Serve handles GET /images/{owner}/{file}. Stored images never change,
// so clients may cache them indefinitely.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	f, err := h.images.Open(r.PathValue("owner"), r.PathValue("file"))
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrInvalidPath), errors.Is(err, storage.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Image not found")
		return
	default:
		slog.Error("failed to open image", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read image")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		slog.Error("failed to stat image", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read image")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
