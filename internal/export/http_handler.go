package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// NewTemplateHandler serves the import template of resource as xlsx, or csv
// with ?format=csv.
func NewTemplateHandler(service *Service, resource string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format, err := ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sheet, name, err := service.Template(resource)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serveSheet(w, format, sheet, name)
	})
}

// NewExportHandler serves every stored row of resource.
func NewExportHandler(service *Service, resource string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format, err := ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sheet, err := service.Export(r.Context(), resource)
		if err != nil {
			if errors.Is(err, ErrUnknownResource) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "export failed", "resource", resource, "error", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		name := fmt.Sprintf("%s_export_%s", sanitizeFileComponent(resource), time.Now().UTC().Format("20060102"))
		serveSheet(w, format, sheet, name)
	})
}

func serveSheet(w http.ResponseWriter, format Format, sheet Sheet, baseName string) {
	var buf bytes.Buffer
	if err := Write(&buf, format, sheet); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, baseName, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
