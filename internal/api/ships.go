package api

import (
	"context"
	"net/http"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/middleware"
	"github.com/rpattn/fleetreg/internal/profileloader"

	"github.com/google/uuid"
)

type shipInput struct {
	Name               string     `json:"name" validate:"required,max=200"`
	RegistrationNumber string     `json:"registration_number" validate:"required,max=100"`
	OwnerID            *uuid.UUID `json:"owner_id"`
	CaptainID          *uuid.UUID `json:"captain_id"`
	Length             *float64   `json:"length" validate:"omitempty,gte=0"`
	Width              *float64   `json:"width" validate:"omitempty,gte=0"`
	GrossTonnage       *float64   `json:"gross_tonnage" validate:"omitempty,gte=0"`
	YearBuilt          *int       `json:"year_built" validate:"omitempty,gte=0"`
	HomePort           *string    `json:"home_port" validate:"omitempty,max=100"`
	Active             *bool      `json:"active"`
}

func (in shipInput) fields(owner uuid.UUID, active bool) domain.ShipFields {
	if in.Active != nil {
		active = *in.Active
	}
	return domain.ShipFields{
		Name:               in.Name,
		RegistrationNumber: in.RegistrationNumber,
		OwnerID:            owner,
		CaptainID:          in.CaptainID,
		Length:             in.Length,
		Width:              in.Width,
		GrossTonnage:       in.GrossTonnage,
		YearBuilt:          in.YearBuilt,
		HomePort:           in.HomePort,
		Active:             active,
	}
}

type shipListItem struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	OwnerName          string    `json:"owner_name"`
	CaptainName        *string   `json:"captain_name"`
	Length             *float64  `json:"length"`
	Width              *float64  `json:"width"`
	GrossTonnage       *float64  `json:"gross_tonnage"`
	Active             bool      `json:"active"`
}

type shipDetail struct {
	domain.Ship
	Owner   *domain.OwnerProfile   `json:"owner"`
	Captain *domain.CaptainProfile `json:"captain"`
}

// loaders returns the request's profile loaders, creating a private set when
// the dataloader middleware is not installed.
func (h *handlers) loaders(ctx context.Context) *profileloader.Loaders {
	if l := middleware.ProfileLoadersFromContext(ctx); l != nil {
		return l
	}
	return profileloader.NewLoaders(h.Profiles)
}

func (h *handlers) listShips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ships, err := h.Ships.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ownerIDs := make([]uuid.UUID, 0, len(ships))
	var captainIDs []uuid.UUID
	for _, s := range ships {
		ownerIDs = append(ownerIDs, s.OwnerID)
		if s.CaptainID != nil {
			captainIDs = append(captainIDs, *s.CaptainID)
		}
	}
	loaders := h.loaders(ctx)
	owners, err := loaders.OwnersByID(ctx, ownerIDs)
	if err != nil {
		respondError(w, r, err)
		return
	}
	captains, err := loaders.CaptainsByID(ctx, captainIDs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]shipListItem, len(ships))
	for i, s := range ships {
		item := shipListItem{
			ID:                 s.ID,
			Name:               s.Name,
			RegistrationNumber: s.RegistrationNumber,
			Length:             s.Length,
			Width:              s.Width,
			GrossTonnage:       s.GrossTonnage,
			Active:             s.Active,
		}
		if o, ok := owners[s.OwnerID]; ok {
			item.OwnerName = o.DisplayName()
		}
		if s.CaptainID != nil {
			if c, ok := captains[*s.CaptainID]; ok {
				name := c.DisplayName()
				item.CaptainName = &name
			}
		}
		out[i] = item
	}
	respond(w, r, http.StatusOK, out)
}

func (h *handlers) getShip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	ship, err := h.Ships.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondShip(w, r, http.StatusOK, ship)
}

func (h *handlers) createShip(w http.ResponseWriter, r *http.Request) {
	var in shipInput
	if err := h.decode(r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	if in.OwnerID == nil {
		respondError(w, r, errFields(map[string][]string{"owner_id": {"This field is required."}}))
		return
	}
	ctx := r.Context()
	if err := h.checkParties(ctx, *in.OwnerID, in.CaptainID); err != nil {
		respondError(w, r, err)
		return
	}
	ship, err := h.Ships.Create(ctx, domain.NewShip(in.fields(*in.OwnerID, true)))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondShip(w, r, http.StatusCreated, ship)
}

// updateShip replaces the editable fields. Keys missing from the body keep
// their stored values; an explicit null clears an optional field.
func (h *handlers) updateShip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in shipInput
	present, err := h.decodeUpdate(r, &in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	ctx := r.Context()
	current, err := h.Ships.GetByID(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	owner := current.OwnerID
	if in.OwnerID != nil {
		owner = *in.OwnerID
	}
	fields := keepStoredShipFields(present, current.Fields(), in.fields(owner, current.Active))
	if err := h.checkParties(ctx, fields.OwnerID, fields.CaptainID); err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := h.Ships.Update(ctx, current.WithFields(fields))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondShip(w, r, http.StatusOK, updated)
}

func keepStoredShipFields(present map[string]bool, stored, next domain.ShipFields) domain.ShipFields {
	if !present["captain_id"] {
		next.CaptainID = stored.CaptainID
	}
	if !present["length"] {
		next.Length = stored.Length
	}
	if !present["width"] {
		next.Width = stored.Width
	}
	if !present["gross_tonnage"] {
		next.GrossTonnage = stored.GrossTonnage
	}
	if !present["year_built"] {
		next.YearBuilt = stored.YearBuilt
	}
	if !present["home_port"] {
		next.HomePort = stored.HomePort
	}
	return next
}

func (h *handlers) deleteShip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Ships.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) checkParties(ctx context.Context, owner uuid.UUID, captain *uuid.UUID) error {
	if _, err := h.Profiles.GetOwner(ctx, owner); err != nil {
		return invalidPK(err, "owner_id", owner)
	}
	if captain != nil {
		if _, err := h.Profiles.GetCaptain(ctx, *captain); err != nil {
			return invalidPK(err, "captain_id", *captain)
		}
	}
	return nil
}

func (h *handlers) respondShip(w http.ResponseWriter, r *http.Request, status int, ship domain.Ship) {
	ctx := r.Context()
	loaders := h.loaders(ctx)
	owner, err := loaders.Owner(ctx, ship.OwnerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	detail := shipDetail{Ship: ship, Owner: owner}
	if ship.CaptainID != nil {
		if detail.Captain, err = loaders.Captain(ctx, *ship.CaptainID); err != nil {
			respondError(w, r, err)
			return
		}
	}
	respond(w, r, status, detail)
}
