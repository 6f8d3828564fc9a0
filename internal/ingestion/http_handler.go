package ingestion

import (
	"encoding/json"
	"errors"
	"net/http"
)

const defaultMaxUploadBytes = 32 << 20

// Handler exposes the import of one resource as an HTTP endpoint.
type Handler struct {
	service  *Service
	resource string
	maxBytes int64
}

// NewHTTPHandler wraps the service with a multipart POST endpoint reading
// the "file" field.
func NewHTTPHandler(service *Service, resource string, maxBytes int64) http.Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &Handler{service: service, resource: resource, maxBytes: maxBytes}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("No file provided"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("No file provided"))
		return
	}
	defer file.Close()

	report, err := h.service.Import(r.Context(), Request{
		Resource: h.resource,
		FileName: header.Filename,
		Data:     file,
	})
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) && errors.Is(err, ErrUnsupportedFormat) {
			writeJSON(w, http.StatusBadRequest, errorBody("Only Excel (.xlsx, .xls) or CSV (.csv) files are allowed"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("Failed to import "+h.resource+": "+err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
