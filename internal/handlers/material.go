package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/services"
)

type materialExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// readMaterialUpload extracts text from the multipart "file" field. On
// failure it has already written the response and returns ok=false.
func readMaterialUpload(w http.ResponseWriter, r *http.Request, extractor materialExtractor, logger *log.Logger) (filename, material string, ok bool) {
	if r.ContentLength > services.MaxMaterialBytes {
		writeJSON(w, http.StatusBadRequest, errorResp(string(services.KindValidation), "File size exceeds 10MB limit", r))
		return "", "", false
	}
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxMaterialBytes+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		handleServiceError(w, r, logger, services.NewValidationError(map[string]string{
			"file": "File is required",
		}))
		return "", "", false
	}
	defer file.Close()

	if !services.SupportedMaterial(header.Filename) {
		handleServiceError(w, r, logger, services.NewValidationError(map[string]string{
			"file": "Only PDF, DOCX and TXT files are supported",
		}))
		return "", "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, services.MaxMaterialBytes+1))
	if err != nil {
		handleServiceError(w, r, logger, fmt.Errorf("failed to read upload: %w", err))
		return "", "", false
	}
	if len(data) > services.MaxMaterialBytes {
		writeJSON(w, http.StatusBadRequest, errorResp(string(services.KindValidation), "File size exceeds 10MB limit", r))
		return "", "", false
	}

	material, err = extractor.Extract(header.Filename, data)
	if err != nil {
		logger.Warn("material extraction failed", "file", header.Filename, "err", err)
		handleServiceError(w, r, logger, services.NewValidationError(map[string]string{
			"file": "Could not read text from the uploaded file",
		}))
		return "", "", false
	}

	return header.Filename, material, true
}

// isMultipart reports whether the request carries a form upload.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// baseName strips directory and extension from an uploaded file name.
func baseName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSpace(strings.TrimSuffix(name, filepath.Ext(name)))
}
