package httpapi

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"denialdesk.org/internal/audit"
	"denialdesk.org/internal/claims"
	"denialdesk.org/internal/obs"
)

// handleUpload ingests a multipart CSV of claims. The body size cap is
// enforced by the MaxBodyBytes middleware; anything over it becomes a 413.
func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := principalOrFail(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "uploaded file too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "multipart form data required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		writeError(w, r, http.StatusBadRequest, "only .csv files are accepted")
		return
	}

	result, err := a.claims.Import(r.Context(), principal, file)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	for i := 0; i < result.Created; i++ {
		obs.ClaimCreated("bulk")
	}
	obs.BulkRowsSkipped(result.Skipped)
	_ = audit.LogEvent(r.Context(), "claims.bulk_upload", map[string]any{
		"filename": header.Filename,
		"created":  result.Created,
		"skipped":  result.Skipped,
	})

	if result.Errors == nil {
		result.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleSampleCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := principalOrFail(w, r); !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="claims_sample.csv"`)
	_, _ = w.Write(claims.SampleCSV())
}
