package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/rishi1508/zenith/internal/sheet"
)

// importPOST imports workout history from a published spreadsheet. The body
// either names a URL to fetch or carries the CSV itself. Parsing is
// best-effort per row; nothing is written when no row parses.
func (app *application) importPOST(w http.ResponseWriter, r *http.Request) {
	var (
		parsed sheet.ParseResult
		err    error
	)

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "text/csv"), strings.Contains(contentType, "text/tab-separated-values"):
		parsed, err = sheet.ParseCSV(r.Body)
	default:
		var body struct {
			URL string `json:"url"`
		}
		if err = readJSON(r, &body); err != nil {
			app.badRequest(w, r, err)
			return
		}
		if body.URL == "" {
			app.writeJSON(w, r, http.StatusBadRequest, envelope{"error": "url is required"})
			return
		}
		parsed, err = app.fetcher.Fetch(r.Context(), body.URL)
	}
	if err != nil {
		app.writeJSON(w, r, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
		return
	}

	result, err := app.workoutService.ImportRows(r.Context(), parsed.Rows)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	result.SkippedRowReasons = append(result.SkippedRowReasons, parsed.Skipped...)
	app.writeJSON(w, r, http.StatusOK, result)
}

// exportGET streams the whole history as CSV in the import schema, so an
// export can be re-imported as-is.
func (app *application) exportGET(w http.ResponseWriter, r *http.Request) {
	workouts, err := app.workoutService.ListWorkouts(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	filename := "zenith-export-" + time.Now().UTC().Format(time.DateOnly) + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err = sheet.WriteCSV(w, workouts); err != nil {
		app.serverError(w, r, err)
	}
}
