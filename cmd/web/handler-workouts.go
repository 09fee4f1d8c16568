package main

import (
	"net/http"

	"github.com/rishi1508/zenith/internal/workout"
)

// workoutsGET lists the workout history, newest first.
func (app *application) workoutsGET(w http.ResponseWriter, r *http.Request) {
	workouts, err := app.workoutService.ListWorkouts(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"workouts": workouts})
}

func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	found, err := app.workoutService.GetWorkout(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, found)
}

// workoutPUT upserts a workout under the id in the path. Used for manual
// edits of logged sessions.
func (app *application) workoutPUT(w http.ResponseWriter, r *http.Request) {
	var body workout.Workout
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}
	body.ID = r.PathValue("id")

	if err := app.workoutService.SaveWorkout(r.Context(), body); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, body)
}

func (app *application) workoutDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.workoutService.DeleteWorkout(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
