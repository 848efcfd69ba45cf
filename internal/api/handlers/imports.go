package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/stagnes/parish-hub/internal/api/dto"
	"github.com/stagnes/parish-hub/internal/importer"
)

// maxUploadSize caps member spreadsheet uploads at 10 MiB.
const maxUploadSize = 10 << 20

type ImportHandler struct {
	importer *importer.Importer
}

func NewImportHandler(im *importer.Importer) *ImportHandler {
	return &ImportHandler{importer: im}
}

type importResponse struct {
	Message string            `json:"message"`
	Details *importer.Summary `json:"details"`
}

// UploadUsers accepts a multipart .xls/.xlsx upload and bulk-imports the
// member rows it contains.
func (h *ImportHandler) UploadUsers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid upload"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Only Excel files (.xls or .xlsx) are allowed"})
		return
	}

	rows, err := importer.ParseWorkbook(file)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyWorkbook) || errors.Is(err, importer.ErrNoWorksheet) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Excel file is empty"})
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Could not read Excel file"})
		return
	}

	summary, err := h.importer.Import(r.Context(), rows)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Excel file is empty"})
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Message: fmt.Sprintf("Processed %d users. Success: %d, Failed: %d",
			len(rows), summary.Succeeded, summary.Failed),
		Details: summary,
	})
}
