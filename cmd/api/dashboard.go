package main

import "net/http"

// ownerRevenueHandler godoc
//
//	@Summary		Total revenue across owned facilities
//	@Description	Sums approved, paid reservations. Recomputed from the rows on every call.
//	@Tags			Dashboard
//	@Produce		json
//	@Success		200	{object}	map[string]int
//	@Security		ApiKeyAuth
//	@Router			/dashboard/revenue [get]
func (app *application) ownerRevenueHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	total, err := app.stats.TotalRevenue(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]int{"total_revenue": total}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ownerTodayHandler godoc
//
//	@Summary		Today's reservations across owned facilities
//	@Tags			Dashboard
//	@Produce		json
//	@Success		200	{array}	store.OwnerSlot
//	@Security		ApiKeyAuth
//	@Router			/dashboard/today [get]
func (app *application) ownerTodayHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	slots, err := app.stats.TodaysSlots(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, slots); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ownerSlotRequestsHandler godoc
//
//	@Summary		All slot requests across owned facilities
//	@Tags			Dashboard
//	@Produce		json
//	@Success		200	{array}	store.OwnerSlot
//	@Security		ApiKeyAuth
//	@Router			/dashboard/slot-requests [get]
func (app *application) ownerSlotRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	slots, err := app.stats.OwnerSlots(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, slots); err != nil {
		app.internalServerError(w, r, err)
	}
}

// organizerPendingJoinsHandler godoc
//
//	@Summary		Pending join requests across organized activities
//	@Tags			Dashboard
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		ApiKeyAuth
//	@Router			/dashboard/pending-joins [get]
func (app *application) organizerPendingJoinsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	joins, err := app.stats.PendingJoins(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]any{
		"count":    len(joins),
		"requests": joins,
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
