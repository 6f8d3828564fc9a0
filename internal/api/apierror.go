package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/logging"
	"github.com/rpattn/fleetreg/pkg/validator"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

const timeLayout = time.RFC3339

// APIError is rendered either as {"error": message} or, for field-level
// validation failures, as the bare field map {"field": ["message"]}.
type APIError struct {
	Status  int                   `json:"-"`
	Message string                `json:"error,omitempty"`
	Fields  validator.FieldErrors `json:"-"`
}

func (e *APIError) Error() string {
	if e.Fields != nil {
		return e.Fields.Error()
	}
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

func errBadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

func errNotFound() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: "Not found."}
}

func errFields(fields validator.FieldErrors) *APIError {
	return &APIError{Status: http.StatusBadRequest, Fields: fields}
}

// respondError maps service and repository errors onto HTTP responses.
// Unknown errors are logged and hidden behind a 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	var fields validator.FieldErrors
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &fields):
		apiErr = errFields(fields)
	case errors.Is(err, domain.ErrNotFound):
		apiErr = errNotFound()
	case errors.Is(err, domain.ErrConflict):
		apiErr = errBadRequest(conflictMessage(err))
	case errors.Is(err, domain.ErrInvalidReference):
		apiErr = errBadRequest("Invalid reference.")
	default:
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		apiErr = &APIError{Status: http.StatusInternalServerError, Message: "Internal server error"}
	}

	if apiErr.Fields != nil {
		render.Status(r, apiErr.Status)
		render.JSON(w, r, apiErr.Fields)
		return
	}
	_ = render.Render(w, r, apiErr)
}

// invalidPK reports a missing referenced record as a field error on field.
func invalidPK(err error, field string, id uuid.UUID) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return errFields(validator.FieldErrors{
		field: {fmt.Sprintf("Invalid pk %q - object does not exist.", id.String())},
	})
}

func conflictMessage(err error) string {
	msg := err.Error()
	marker := domain.ErrConflict.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return "Already exists: " + msg[i+len(marker):]
	}
	return "Already exists."
}

// decode reads a JSON body into v and validates it.
func (h *handlers) decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return errBadRequest("Invalid request body")
	}
	return h.validator.Struct(v)
}

// decodeUpdate is decode for update bodies. It also reports which top-level
// keys the body carried so omitted fields can keep their stored values.
func (h *handlers) decodeUpdate(r *http.Request, v any) (map[string]bool, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errBadRequest("Invalid request body")
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, errBadRequest("Invalid request body")
	}
	if err := render.DecodeJSON(bytes.NewReader(body), v); err != nil {
		return nil, errBadRequest("Invalid request body")
	}
	present := make(map[string]bool, len(keys))
	for k := range keys {
		present[k] = true
	}
	return present, h.validator.Struct(v)
}

func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
