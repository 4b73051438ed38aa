package main

import (
	"fmt"
	"net/http"
	"time"

	"courtside/internal/activity"
	"courtside/internal/store"
)

type CreateActivityPayload struct {
	Sport           string `json:"sport" validate:"required,sport"`
	Date            string `json:"date" validate:"required"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	LocationName    string `json:"location_name" validate:"required,max=255"`
	MaxPlayers      int    `json:"max_players" validate:"required,gt=0"`
	RequiredPlayers int    `json:"required_players" validate:"required,gt=0"`
	PerHeadFee      *int   `json:"per_head_fee" validate:"omitempty,gte=0"`
}

// createActivityHandler godoc
//
//	@Summary		Create a group activity
//	@Description	Opens a capacity-bounded pickup session with the organizer already on the roster.
//	@Tags			Activity
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateActivityPayload	true	"Activity details"
//	@Success		201		{object}	store.Activity			"Activity created"
//	@Failure		400		{object}	error					"Bad request"
//	@Security		ApiKeyAuth
//	@Router			/activities [post]
func (app *application) createActivityHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateActivityPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid date, want 2006-01-02: %w", err))
		return
	}
	start, err := store.ParseTimeOfDay(payload.StartTime)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	end, err := store.ParseTimeOfDay(payload.EndTime)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	created, err := app.activities.Create(r.Context(), activity.CreateInput{
		OrganizerID:     user.ID,
		Sport:           payload.Sport,
		Date:            date,
		Start:           start,
		End:             end,
		LocationName:    payload.LocationName,
		MaxPlayers:      payload.MaxPlayers,
		RequiredPlayers: payload.RequiredPlayers,
		PerHeadFee:      payload.PerHeadFee,
	})
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, created); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getActivityHandler godoc
//
//	@Summary		Get an activity with its roster
//	@Tags			Activity
//	@Produce		json
//	@Param			activityID	path		int	true	"Activity ID"
//	@Success		200			{object}	store.Activity
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID} [get]
func (app *application) getActivityHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	a, err := app.store.Activities.GetByID(r.Context(), activityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, a); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getActivityPlayersHandler godoc
//
//	@Summary		List the roster of an activity
//	@Tags			Activity
//	@Produce		json
//	@Param			activityID	path	int	true	"Activity ID"
//	@Success		200			{array}	int64
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID}/players [get]
func (app *application) getActivityPlayersHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	players, err := app.store.Activities.Roster(r.Context(), activityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, players); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateJoinRequestPayload struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// createJoinRequestHandler godoc
//
//	@Summary		Request to join an activity
//	@Description	Opens a pending join request. Refused when the activity is full or cancelled, or a request is already outstanding.
//	@Tags			Activity
//	@Accept			json
//	@Produce		json
//	@Param			activityID	path		int							true	"Activity ID"
//	@Param			payload		body		CreateJoinRequestPayload	false	"Optional note"
//	@Success		201			{object}	store.JoinRequest			"Join request created"
//	@Failure		400			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID}/join [post]
func (app *application) createJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateJoinRequestPayload
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if err := Validate.Struct(payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	user := getUserFromContext(r)

	req, err := app.activities.RequestToJoin(r.Context(), activityID, user.ID, payload.Note)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, req); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listJoinRequestsHandler godoc
//
//	@Summary		List pending join requests for an activity
//	@Description	Organizer-only view of the undecided requests.
//	@Tags			Activity
//	@Produce		json
//	@Param			activityID	path	int	true	"Activity ID"
//	@Success		200			{array}	store.JoinRequest
//	@Failure		403			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID}/requests [get]
func (app *application) listJoinRequestsHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	a, err := app.store.Activities.GetByID(r.Context(), activityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if !a.OrganizedBy(user.ID) {
		app.forbiddenResponse(w, r)
		return
	}

	requests, err := app.store.Activities.ListPendingJoinRequests(r.Context(), activityID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, requests); err != nil {
		app.internalServerError(w, r, err)
	}
}

// approveJoinRequestHandler godoc
//
//	@Summary		Approve a join request
//	@Description	Organizer decision. Admits the requester onto the roster unless the last seat is already gone.
//	@Tags			Activity
//	@Produce		json
//	@Param			activityID	path		int		true	"Activity ID"
//	@Param			requestID	path		int		true	"Join request ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID}/requests/{requestID}/approve [post]
func (app *application) approveJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.activities.ApproveJoin(r.Context(), activityID, requestID, user.ID); err != nil {
		app.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// rejectJoinRequestHandler godoc
//
//	@Summary		Reject a join request
//	@Tags			Activity
//	@Produce		json
//	@Param			activityID	path		int		true	"Activity ID"
//	@Param			requestID	path		int		true	"Join request ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID}/requests/{requestID}/reject [post]
func (app *application) rejectJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.activities.RejectJoin(r.Context(), activityID, requestID, user.ID); err != nil {
		app.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// cancelActivityHandler godoc
//
//	@Summary		Cancel an activity
//	@Description	Organizer-only. Pending join requests are automatically rejected.
//	@Tags			Activity
//	@Produce		json
//	@Param			activityID	path		int		true	"Activity ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/activities/{activityID}/cancel [post]
func (app *application) cancelActivityHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := app.int64Param(r, "activityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.activities.Cancel(r.Context(), activityID, user.ID); err != nil {
		app.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
