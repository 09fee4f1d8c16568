package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rishi1508/zenith/internal/workout"
)

// The in-progress workout lives in the cookie session as JSON until it is
// finished. Persisted history never sees half-done sessions, and cancelling
// is just clearing the key.
const sessionKeyActiveWorkout = "activeWorkout"

func (app *application) activeSession(r *http.Request) (workout.Workout, bool, error) {
	raw := app.sessionManager.GetString(r.Context(), sessionKeyActiveWorkout)
	if raw == "" {
		return workout.Workout{}, false, nil
	}
	var session workout.Workout
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return workout.Workout{}, false, fmt.Errorf("unmarshal active workout: %w", err)
	}
	return session, true, nil
}

func (app *application) storeSession(r *http.Request, session workout.Workout) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal active workout: %w", err)
	}
	app.sessionManager.Put(r.Context(), sessionKeyActiveWorkout, string(raw))
	return nil
}

// sessionStartPOST starts a training session for a day of the active plan.
// Day zero (or no body) picks the next day in the rotation.
func (app *application) sessionStartPOST(w http.ResponseWriter, r *http.Request) {
	if _, active, err := app.activeSession(r); err != nil {
		app.serverError(w, r, err)
		return
	} else if active {
		app.writeJSON(w, r, http.StatusConflict, envelope{"error": "a workout is already in progress"})
		return
	}

	var body struct {
		DayNumber int `json:"day_number"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(r, &body); err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	session, err := app.workoutService.StartSession(r.Context(), body.DayNumber, time.Now())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if err = app.storeSession(r, session); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, session)
}

// sessionGET returns the in-progress workout, if any.
func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	session, active, err := app.activeSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !active {
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "no workout in progress"})
		return
	}
	app.writeJSON(w, r, http.StatusOK, session)
}

// sessionSetPOST records weight and reps for one set of the in-progress
// workout and reports the personal-record and progress indicators.
func (app *application) sessionSetPOST(w http.ResponseWriter, r *http.Request) {
	session, active, err := app.activeSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !active {
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "no workout in progress"})
		return
	}

	exerciseIndex, err := strconv.Atoi(r.PathValue("exerciseIndex"))
	if err != nil {
		app.badRequest(w, r, fmt.Errorf("parse exercise index: %w", err))
		return
	}
	setIndex, err := strconv.Atoi(r.PathValue("setIndex"))
	if err != nil {
		app.badRequest(w, r, fmt.Errorf("parse set index: %w", err))
		return
	}

	var body struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
	}
	if err = readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}

	result, err := app.workoutService.CompleteSet(r.Context(), &session, exerciseIndex, setIndex, body.Weight, body.Reps)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if err = app.storeSession(r, session); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"result": result, "workout": session})
}

// sessionFinishPOST persists the in-progress workout and clears it from the
// session.
func (app *application) sessionFinishPOST(w http.ResponseWriter, r *http.Request) {
	session, active, err := app.activeSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !active {
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "no workout in progress"})
		return
	}

	finished, err := app.workoutService.FinishSession(r.Context(), session, time.Now())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.sessionManager.Remove(r.Context(), sessionKeyActiveWorkout)
	app.writeJSON(w, r, http.StatusOK, finished)
}

// sessionCancelPOST drops the in-progress workout without persisting
// anything.
func (app *application) sessionCancelPOST(w http.ResponseWriter, r *http.Request) {
	app.sessionManager.Remove(r.Context(), sessionKeyActiveWorkout)
	w.WriteHeader(http.StatusNoContent)
}
