package main

import (
	"net/http"

	"bakehouse/internal/sentiment"
	"bakehouse/internal/store"
)

const reviewSampleSize = 100

type dashboardResponse struct {
	Stats     *store.DashboardStats `json:"stats"`
	Sentiment sentiment.Summary     `json:"sentiment"`
}

// dashboardHandler godoc
//
//	@Summary		Back-office dashboard
//	@Description	Order and revenue totals plus a sentiment summary of recent review comments
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	dashboardResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/dashboard [get]
func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.store.Orders.DashboardStats(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	comments, err := app.store.Orders.ReviewComments(r.Context(), reviewSampleSize)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := dashboardResponse{
		Stats:     stats,
		Sentiment: sentiment.Summarize(comments),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
