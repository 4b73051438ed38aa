package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"courtside/internal/booking"
	"courtside/internal/mailer"
	"courtside/internal/store"
	"courtside/internal/workflow"
)

type CreateSlotRequestPayload struct {
	FacilityID int64  `json:"facility_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

// createSlotRequestHandler godoc
//
//	@Summary		Request a reservation slot
//	@Description	Opens a pending reservation request for a facility window. The request does not hold the slot until the owner approves it.
//	@Tags			SlotRequest
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateSlotRequestPayload	true	"Requested window"
//	@Success		201		{object}	store.SlotRequest			"Request created"
//	@Failure		400		{object}	error						"Bad request"
//	@Failure		409		{object}	error						"Window already booked"
//	@Security		ApiKeyAuth
//	@Router			/slot-requests [post]
func (app *application) createSlotRequestHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateSlotRequestPayload
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

	req, err := app.bookings.RequestSlot(r.Context(), booking.RequestSlotInput{
		FacilityID:  payload.FacilityID,
		RequesterID: user.ID,
		Date:        date,
		Start:       start,
		End:         end,
		Note:        payload.Note,
	})
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, req); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getSlotRequestHandler godoc
//
//	@Summary		Get a slot request
//	@Description	Visible to the requester and the facility owner.
//	@Tags			SlotRequest
//	@Produce		json
//	@Param			requestID	path		int	true	"Request ID"
//	@Success		200			{object}	store.SlotRequest
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/slot-requests/{requestID} [get]
func (app *application) getSlotRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	req, err := app.store.Slots.GetByID(r.Context(), requestID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if req.RequesterID != user.ID {
		facility, err := app.store.Facilities.GetByID(r.Context(), req.FacilityID)
		if err != nil {
			app.workflowError(w, r, err)
			return
		}
		if !facility.OwnedBy(user.ID) {
			app.forbiddenResponse(w, r)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, req); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMySlotRequestsHandler godoc
//
//	@Summary		List the authenticated user's slot requests
//	@Tags			SlotRequest
//	@Produce		json
//	@Success		200	{array}	store.SlotRequest
//	@Security		ApiKeyAuth
//	@Router			/slot-requests [get]
func (app *application) listMySlotRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	requests, err := app.store.Slots.ListByRequester(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, requests); err != nil {
		app.internalServerError(w, r, err)
	}
}

// approveSlotRequestHandler godoc
//
//	@Summary		Approve a pending slot request
//	@Description	Facility owner approval. Fails with 409 if the window was taken or the request was already decided.
//	@Tags			SlotRequest
//	@Produce		json
//	@Param			requestID	path		int	true	"Request ID"
//	@Success		200			{object}	store.SlotRequest
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/slot-requests/{requestID}/approve [post]
func (app *application) approveSlotRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	req, err := app.bookings.Approve(r.Context(), requestID, user.ID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	app.notifySlotDecision(req, mailer.SlotApprovedTemplate)

	if err := app.jsonResponse(w, http.StatusOK, req); err != nil {
		app.internalServerError(w, r, err)
	}
}

// rejectSlotRequestHandler godoc
//
//	@Summary		Reject a pending slot request
//	@Tags			SlotRequest
//	@Produce		json
//	@Param			requestID	path		int		true	"Request ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/slot-requests/{requestID}/reject [post]
func (app *application) rejectSlotRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.bookings.Reject(r.Context(), requestID, user.ID); err != nil {
		app.workflowError(w, r, err)
		return
	}

	if req, err := app.store.Slots.GetByID(r.Context(), requestID); err == nil {
		app.notifySlotDecision(req, mailer.SlotRejectedTemplate)
	}

	w.WriteHeader(http.StatusNoContent)
}

// cancelSlotRequestHandler godoc
//
//	@Summary		Cancel a slot request
//	@Description	Requester-initiated. Allowed while pending or approved, for future dates only.
//	@Tags			SlotRequest
//	@Produce		json
//	@Param			requestID	path		int		true	"Request ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/slot-requests/{requestID}/cancel [post]
func (app *application) cancelSlotRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.bookings.Cancel(r.Context(), requestID, user.ID); err != nil {
		app.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type UpdatePaymentPayload struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=unpaid paid refunded"`
}

// updateSlotPaymentHandler godoc
//
//	@Summary		Update the payment flag on an approved request
//	@Description	Owner records whether the reservation was settled. Settlement itself happens off-platform.
//	@Tags			SlotRequest
//	@Accept			json
//	@Produce		json
//	@Param			requestID	path		int						true	"Request ID"
//	@Param			payload		body		UpdatePaymentPayload	true	"New payment status"
//	@Success		204			{string}	string					"No Content"
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Failure		409			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/slot-requests/{requestID}/payment [patch]
func (app *application) updateSlotPaymentHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := app.int64Param(r, "requestID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdatePaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	err = app.bookings.UpdatePaymentStatus(r.Context(), requestID, user.ID, workflow.PaymentStatus(payload.PaymentStatus))
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// notifySlotDecision emails the requester about an owner decision in
// the background. Failures are logged, never surfaced to the owner.
func (app *application) notifySlotDecision(req *store.SlotRequest, template string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Errorw("panic in decision email", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		requester, err := app.store.Users.GetByID(ctx, req.RequesterID)
		if err != nil {
			app.logger.Errorw("error loading requester for email", "error", err)
			return
		}
		facility, err := app.store.Facilities.GetByID(ctx, req.FacilityID)
		if err != nil {
			app.logger.Errorw("error loading facility for email", "error", err)
			return
		}

		vars := struct {
			Username     string
			FacilityName string
			Date         string
			Start        string
			End          string
			Amount       int
			Reference    string
		}{
			Username:     requester.FirstName,
			FacilityName: facility.Name,
			Date:         req.Date.Format("2006-01-02"),
			Start:        req.StartTime.String(),
			End:          req.EndTime.String(),
			Amount:       req.Amount,
		}
		if req.Reference != nil {
			vars.Reference = *req.Reference
		}

		status, err := app.mailer.Send(template, requester.FirstName, requester.Email, vars)
		if err != nil {
			app.logger.Errorw("error sending decision email", "error", err)
			return
		}
		app.logger.Infow("decision email sent", "status code", status)
	}()
}

func (app *application) dateQuery(r *http.Request) (time.Time, error) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return date, nil
}
