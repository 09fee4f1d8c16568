package main

import (
	"net/http"

	"github.com/rishi1508/zenith/internal/workout"
)

func (app *application) settingsGET(w http.ResponseWriter, r *http.Request) {
	settings, err := app.workoutService.GetSettings(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, settings)
}

func (app *application) settingsPUT(w http.ResponseWriter, r *http.Request) {
	var body workout.Settings
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}

	if err := app.workoutService.SaveSettings(r.Context(), body); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, body)
}
