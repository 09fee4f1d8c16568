package main

import (
	"net/http"
	"time"
)

// restDayPOST logs a rest day. The body may carry a date; without one the
// rest day lands on today.
func (app *application) restDayPOST(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(r, &body); err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	date := time.Now()
	if body.Date != "" {
		var err error
		if date, err = parseDate(body.Date); err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	rest, err := app.workoutService.LogRestDay(r.Context(), date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, rest)
}

// restDayBackfillPOST logs rest days for the given dates, skipping any that
// already carry a workout. Without explicit dates it covers the detected
// missing days.
func (app *application) restDayBackfillPOST(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Dates []string `json:"dates"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(r, &body); err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	var dates []time.Time
	if len(body.Dates) > 0 {
		for _, raw := range body.Dates {
			date, err := parseDate(raw)
			if err != nil {
				app.badRequest(w, r, err)
				return
			}
			dates = append(dates, date)
		}
	} else {
		missing, err := app.workoutService.GetMissingDays(r.Context(), time.Now())
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		dates = missing
	}

	logged, err := app.workoutService.BackfillRestDays(r.Context(), dates)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"rest_days_logged": logged})
}
