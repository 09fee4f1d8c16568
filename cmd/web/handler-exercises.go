package main

import (
	"bytes"
	"net/http"

	"github.com/rishi1508/zenith/internal/workout"
	"github.com/yuin/goldmark"
)

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.workoutService.ListExercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"exercises": exercises})
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	exercise, err := app.workoutService.GetExercise(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercise)
}

func (app *application) exercisePOST(w http.ResponseWriter, r *http.Request) {
	var body workout.Exercise
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}

	created, err := app.workoutService.CreateExercise(r.Context(), body)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, created)
}

func (app *application) exercisePUT(w http.ResponseWriter, r *http.Request) {
	var body workout.Exercise
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}
	body.ID = r.PathValue("id")

	if err := app.workoutService.UpdateExercise(r.Context(), body); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, body)
}

func (app *application) exerciseDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.workoutService.DeleteExercise(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exerciseInfoGET returns the exercise with its notes rendered from markdown
// to HTML.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	exercise, err := app.workoutService.GetExercise(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	var notesHTML bytes.Buffer
	if exercise.NotesMarkdown != "" {
		if err = goldmark.Convert([]byte(exercise.NotesMarkdown), &notesHTML); err != nil {
			app.serverError(w, r, err)
			return
		}
	}
	app.writeJSON(w, r, http.StatusOK, envelope{
		"exercise":   exercise,
		"notes_html": notesHTML.String(),
	})
}

func (app *application) exerciseTrendGET(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.PathValue("id")
	stats, err := app.workoutService.GetExerciseStats(r.Context(), exerciseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{
		"exercise_id":       exerciseID,
		"trend":             stats.Trend,
		"record":            stats.Record,
		"last_session_sets": stats.LastSessionSets,
	})
}
