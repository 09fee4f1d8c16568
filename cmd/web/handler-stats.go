package main

import (
	"net/http"
	"time"
)

func (app *application) dashboardGET(w http.ResponseWriter, r *http.Request) {
	dashboard, err := app.workoutService.GetDashboard(r.Context(), time.Now())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, dashboard)
}

func (app *application) weeklySummariesGET(w http.ResponseWriter, r *http.Request) {
	summaries, err := app.workoutService.GetWeeklySummaries(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"weeks": summaries})
}

func (app *application) missingDaysGET(w http.ResponseWriter, r *http.Request) {
	missing, err := app.workoutService.GetMissingDays(r.Context(), time.Now())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	days := make([]string, 0, len(missing))
	for _, d := range missing {
		days = append(days, d.Format(time.DateOnly))
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"missing_days": days})
}
