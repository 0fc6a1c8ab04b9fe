// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/danielhkuo/voucher-manager/csvio"
	"github.com/danielhkuo/voucher-manager/metrics"
	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/store"
)

// MaxImportBytes caps the size of an uploaded import file
const MaxImportBytes = 2 << 20

type ImportHandler struct {
	st      *store.Store
	metrics *metrics.Metrics
}

func NewImportHandler(st *store.Store, m *metrics.Metrics) *ImportHandler {
	return &ImportHandler{st: st, metrics: m}
}

// readImportFile returns the CSV bytes of a request. Multipart uploads
// use the "file" field; any other content type is read as the raw file.
func readImportFile(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(MaxImportBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Import handles POST /vouchers/import
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImportBytes)
	data, err := readImportFile(r)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Import file is too large")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Could not read import file")
		return
	}

	rows, err := csvio.ParseImport(bytes.NewReader(data))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.st.ImportVouchers(r.Context(), owner.ID, rows, time.Now())
	if err != nil {
		slog.Error("failed to import vouchers", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to import vouchers")
		return
	}
	h.metrics.Imported(result.Inserted, result.Skipped)

	slog.Info("vouchers imported",
		"owner_id", owner.ID,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duplicates", len(result.Duplicates),
	)

	middleware.JSONResponse(w, http.StatusOK, result)
}

// Template handles GET /vouchers/import/template
func (h *ImportHandler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="voucher_template.csv"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, csvio.Template)
}

// Export handles GET /vouchers/export. It honors the same status and q
// filters as the list endpoint but is never paginated.
func (h *ImportHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit, filter.Offset = 0, 0

	vouchers, _, err := h.st.ListVouchers(r.Context(), owner.ID, filter)
	if err != nil {
		slog.Error("failed to list vouchers for export", "error", err, "owner_id", owner.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Buffer first so a failed write still gets a proper error status
	var buf bytes.Buffer
	if err := csvio.WriteExport(&buf, vouchers); err != nil {
		slog.Error("failed to write export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export vouchers")
		return
	}

	filename := csvio.ExportFilename(filter.Status, time.Now())
	slog.Info("vouchers exported", "owner_id", owner.ID, "count", len(vouchers), "file", filename)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

