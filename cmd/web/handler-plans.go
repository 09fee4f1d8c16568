package main

import (
	"net/http"

	"github.com/rishi1508/zenith/internal/workout"
)

func (app *application) plansGET(w http.ResponseWriter, r *http.Request) {
	plans, err := app.workoutService.ListPlans(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"plans": plans})
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	plan, err := app.workoutService.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

func (app *application) planPOST(w http.ResponseWriter, r *http.Request) {
	var body workout.WeeklyPlan
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}

	saved, err := app.workoutService.SavePlan(r.Context(), body)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, saved)
}

func (app *application) planPUT(w http.ResponseWriter, r *http.Request) {
	var body workout.WeeklyPlan
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}
	body.ID = r.PathValue("id")

	saved, err := app.workoutService.SavePlan(r.Context(), body)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, saved)
}

func (app *application) planDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.workoutService.DeletePlan(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) planActivatePOST(w http.ResponseWriter, r *http.Request) {
	if err := app.workoutService.ActivatePlan(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
