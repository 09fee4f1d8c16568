package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rishi1508/zenith/internal/errors"
	"github.com/rishi1508/zenith/internal/workout"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, envelope{"error": "internal server error"})
}

// handleError translates domain errors into status codes; anything
// unrecognised is a server error.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": err.Error()})
	case errors.Is(err, workout.ErrInvalid):
		app.writeJSON(w, r, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
	case errors.Is(err, workout.ErrNotOwned):
		app.writeJSON(w, r, http.StatusForbidden, envelope{"error": err.Error()})
	default:
		app.serverError(w, r, err)
	}
}

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into v, rejecting unknown fields so
// client typos surface as errors instead of silently dropped data.
func readJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (app *application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.writeJSON(w, r, http.StatusBadRequest, envelope{"error": err.Error()})
}

// parseDateParam parses an ISO date from the named path or query parameter.
func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return date, nil
}
