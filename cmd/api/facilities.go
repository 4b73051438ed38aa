package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"courtside/internal/store"
	"courtside/internal/workflow"
)

type CreateFacilityPayload struct {
	Name         string   `json:"name" validate:"required,max=120"`
	Address      string   `json:"address" validate:"required,max=255"`
	PricePerHour int      `json:"price_per_hour" validate:"required,gt=0"`
	OpenTime     string   `json:"open_time" validate:"required"`
	CloseTime    string   `json:"close_time" validate:"required"`
	Sports       []string `json:"sports" validate:"required,min=1,dive,sport"`
}

// createFacilityHandler godoc
//
//	@Summary		Register a facility
//	@Description	Registers a bookable facility owned by the authenticated user.
//	@Tags			Facility
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateFacilityPayload	true	"Facility details"
//	@Success		201		{object}	store.Facility			"Facility created"
//	@Failure		400		{object}	error					"Bad request"
//	@Failure		500		{object}	error					"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/facilities [post]
func (app *application) createFacilityHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateFacilityPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	openTime, err := store.ParseTimeOfDay(payload.OpenTime)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid open_time: %w", err))
		return
	}
	closeTime, err := store.ParseTimeOfDay(payload.CloseTime)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid close_time: %w", err))
		return
	}
	if openTime >= closeTime {
		app.badRequestResponse(w, r, fmt.Errorf("open_time must be before close_time"))
		return
	}

	user := getUserFromContext(r)

	facility := &store.Facility{
		OwnerID:      user.ID,
		Name:         payload.Name,
		Address:      payload.Address,
		PricePerHour: payload.PricePerHour,
		OpenTime:     openTime,
		CloseTime:    closeTime,
		Sports:       payload.Sports,
		IsAvailable:  true,
	}

	if err := app.store.Facilities.Create(r.Context(), facility); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, facility); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getFacilityHandler godoc
//
//	@Summary		Get a facility
//	@Tags			Facility
//	@Produce		json
//	@Param			facilityID	path		int	true	"Facility ID"
//	@Success		200			{object}	store.Facility
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/facilities/{facilityID} [get]
func (app *application) getFacilityHandler(w http.ResponseWriter, r *http.Request) {
	facilityID, err := app.int64Param(r, "facilityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	facility, err := app.store.Facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, facility); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listOwnedFacilitiesHandler godoc
//
//	@Summary		List facilities owned by the authenticated user
//	@Tags			Facility
//	@Produce		json
//	@Success		200	{array}	store.Facility
//	@Security		ApiKeyAuth
//	@Router			/facilities [get]
func (app *application) listOwnedFacilitiesHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	facilities, err := app.store.Facilities.ListByOwner(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, facilities); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateFacilityPayload struct {
	Name         *string  `json:"name" validate:"omitempty,max=120"`
	Address      *string  `json:"address" validate:"omitempty,max=255"`
	PricePerHour *int     `json:"price_per_hour" validate:"omitempty,gt=0"`
	OpenTime     *string  `json:"open_time"`
	CloseTime    *string  `json:"close_time"`
	Sports       []string `json:"sports" validate:"omitempty,min=1,dive,sport"`
}

// updateFacilityHandler godoc
//
//	@Summary		Update facility information
//	@Description	Owner-only partial update of a facility's listing fields.
//	@Tags			Facility
//	@Accept			json
//	@Produce		json
//	@Param			facilityID	path		int						true	"Facility ID"
//	@Param			payload		body		UpdateFacilityPayload	true	"Fields to update"
//	@Success		200			{object}	store.Facility
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/facilities/{facilityID} [patch]
func (app *application) updateFacilityHandler(w http.ResponseWriter, r *http.Request) {
	facilityID, err := app.int64Param(r, "facilityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateFacilityPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	facility, err := app.store.Facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if !facility.OwnedBy(user.ID) {
		app.forbiddenResponse(w, r)
		return
	}

	if payload.Name != nil {
		facility.Name = *payload.Name
	}
	if payload.Address != nil {
		facility.Address = *payload.Address
	}
	if payload.PricePerHour != nil {
		facility.PricePerHour = *payload.PricePerHour
	}
	if payload.OpenTime != nil {
		t, err := store.ParseTimeOfDay(*payload.OpenTime)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid open_time: %w", err))
			return
		}
		facility.OpenTime = t
	}
	if payload.CloseTime != nil {
		t, err := store.ParseTimeOfDay(*payload.CloseTime)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid close_time: %w", err))
			return
		}
		facility.CloseTime = t
	}
	if facility.OpenTime >= facility.CloseTime {
		app.badRequestResponse(w, r, fmt.Errorf("open_time must be before close_time"))
		return
	}
	if payload.Sports != nil {
		facility.Sports = payload.Sports
	}

	if err := app.store.Facilities.Update(r.Context(), facility); err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, facility); err != nil {
		app.internalServerError(w, r, err)
	}
}

// retireFacilityHandler godoc
//
//	@Summary		Retire a facility
//	@Description	Marks the facility unavailable. Existing reservations keep their records; new requests are refused.
//	@Tags			Facility
//	@Produce		json
//	@Param			facilityID	path		int	true	"Facility ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/facilities/{facilityID} [delete]
func (app *application) retireFacilityHandler(w http.ResponseWriter, r *http.Request) {
	facilityID, err := app.int64Param(r, "facilityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	facility, err := app.store.Facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if !facility.OwnedBy(user.ID) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Facilities.Retire(r.Context(), facilityID); err != nil {
		app.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listFacilitySlotsHandler godoc
//
//	@Summary		List a facility's slot requests for a date
//	@Description	Owner view of the requests on one date, filtered by status (default approved).
//	@Tags			Facility
//	@Produce		json
//	@Param			facilityID	path	int		true	"Facility ID"
//	@Param			date		query	string	true	"Date in 2006-01-02 format"
//	@Param			status		query	string	false	"Status filter"
//	@Success		200			{array}	store.SlotRequest
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/facilities/{facilityID}/slots [get]
func (app *application) listFacilitySlotsHandler(w http.ResponseWriter, r *http.Request) {
	facilityID, err := app.int64Param(r, "facilityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := app.dateQuery(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	status := workflow.StatusApproved
	if v := r.URL.Query().Get("status"); v != "" {
		status = workflow.Status(v)
	}

	facility, err := app.store.Facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if !facility.OwnedBy(user.ID) {
		app.forbiddenResponse(w, r)
		return
	}

	slots, err := app.store.Slots.ListForFacilityDate(r.Context(), facilityID, date, status)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, slots); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
