package api

import (
	"errors"
	"net/http"

	"github.com/rpattn/fleetreg/internal/accounts"

	"github.com/go-chi/render"
)

type registerResponse struct {
	User accounts.UserView `json:"user"`
}

// decodeOnly reads a JSON body without struct validation; the account
// service applies its own rules.
func decodeOnly(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return errBadRequest("Invalid request body")
	}
	return nil
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := decodeOnly(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Accounts.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, registerResponse{User: user})
}

func (h *handlers) registerOwner(w http.ResponseWriter, r *http.Request) {
	var in accounts.OwnerRegistration
	if err := decodeOnly(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Accounts.RegisterOwner(r.Context(), in)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidOwnerType) {
			respondError(w, r, errBadRequest("Invalid owner type"))
			return
		}
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, registerResponse{User: user})
}

func (h *handlers) registerCaptain(w http.ResponseWriter, r *http.Request) {
	var in accounts.CaptainRegistration
	if err := decodeOnly(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Accounts.RegisterCaptain(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, registerResponse{User: user})
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Accounts.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, profiles)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	profile, err := h.Accounts.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, profile)
}
