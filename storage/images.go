// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/danielhkuo/voucher-manager/models"
)

var (
	ErrTooLarge    = errors.New("image is too large")
	ErrNotImage    = errors.New("file is not an image")
	ErrInvalidPath = errors.New("invalid image path")
	ErrNotFound    = errors.New("image not found")
)

var extensions = map[string]string{
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/gif":                "gif",
	"image/webp":               "webp",
	"image/bmp":                "bmp",
	"image/x-icon":             "ico",
	"image/vnd.microsoft.icon": "ico",
	"image/avif":               "avif",
}

// ImageStore keeps uploaded voucher images in a local directory laid out
// as <owner_id>/<unix_ms>.<ext>. Files are public once written.
type ImageStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	now      func() time.Time

	mu sync.Mutex // serializes name allocation
}

func NewImageStore(dir, baseURL string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

// MaxBytes is the largest accepted upload.
func (s *ImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save stores an image for ownerID. The content type is sniffed from the
// data; anything that is not image/* is rejected.
func (s *ImageStore) Save(ownerID string, r io.Reader) (models.UploadImageResponse, error) {
	if !validSegment(ownerID) {
		return models.UploadImageResponse{}, ErrInvalidPath
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return models.UploadImageResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return models.UploadImageResponse{}, ErrTooLarge
	}
	if len(data) == 0 {
		return models.UploadImageResponse{}, ErrNotImage
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return models.UploadImageResponse{}, ErrNotImage
	}
	ext, ok := extensions[contentType]
	if !ok {
		ext = "img"
	}

	ownerDir := filepath.Join(s.dir, ownerID)
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return models.UploadImageResponse{}, fmt.Errorf("failed to create owner directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	var name string
	for {
		name = fmt.Sprintf("%d.%s", ms, ext)
		if _, err := os.Stat(filepath.Join(ownerDir, name)); errors.Is(err, os.ErrNotExist) {
			break
		}
		ms++
	}

	if err := atomic.WriteFile(filepath.Join(ownerDir, name), bytes.NewReader(data)); err != nil {
		return models.UploadImageResponse{}, fmt.Errorf("failed to write image: %w", err)
	}

	key := path.Join(ownerID, name)
	return models.UploadImageResponse{Path: key, URL: s.URL(key)}, nil
}

// URL is the public address of a stored image key.
func (s *ImageStore) URL(key string) string {
	return s.baseURL + "/images/" + key
}

// Open returns a stored image for serving.
func (s *ImageStore) Open(ownerID, name string) (*os.File, error) {
	if !validSegment(ownerID) || !validSegment(name) {
		return nil, ErrInvalidPath
	}
	f, err := os.Open(filepath.Join(s.dir, ownerID, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return f, nil
}

// validSegment accepts a single path element made of letters, digits,
// dash, underscore and dots, not starting with a dot.
func validSegment(s string) bool {
	if s == "" || s[0] == '.' || len(s) > 128 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
