package api

import (
	"net/http"
	"strconv"

	"github.com/rpattn/fleetreg/internal/domain"

	"github.com/google/uuid"
)

type areaInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Code        string  `json:"code" validate:"required,max=20"`
	Description *string `json:"description"`
}

type areaListItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

func (h *handlers) listAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Areas.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]areaListItem, len(areas))
	for i, a := range areas {
		out[i] = areaListItem{ID: a.ID, Name: a.Name, Code: a.Code}
	}
	respond(w, r, http.StatusOK, out)
}

func (h *handlers) getArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	area, err := h.Areas.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, area)
}

func (h *handlers) createArea(w http.ResponseWriter, r *http.Request) {
	var in areaInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	area, err := h.Areas.Create(r.Context(), domain.NewFishingArea(in.Name, in.Code, in.Description))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, area)
}

func (h *handlers) updateArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in areaInput
	present, err := h.decodeUpdate(r, &in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()
	current, err := h.Areas.GetByID(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	description := in.Description
	if !present["description"] {
		description = current.Description
	}
	updated, err := h.Areas.Update(ctx, current.WithFields(in.Name, in.Code, description))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, updated)
}

func (h *handlers) deleteArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Areas.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listImportLogs serves recorded import row errors, newest first.
func (h *handlers) listImportLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		respondError(w, r, errFields(map[string][]string{"limit": {"A valid integer is required."}}))
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		respondError(w, r, errFields(map[string][]string{"offset": {"A valid integer is required."}}))
		return
	}
	entries, err := h.ImportLogs.List(r.Context(), q.Get("resource"), q.Get("file"), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ImportLogEntry{}
	}
	respond(w, r, http.StatusOK, entries)
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
