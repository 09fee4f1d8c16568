package main

import "net/http"

// queryPOST runs an ad-hoc read-only SQL query against the local database.
// Handy for poking at your own training data without leaving the app.
func (app *application) queryPOST(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SQL string `json:"sql"`
	}
	if err := readJSON(r, &body); err != nil {
		app.badRequest(w, r, err)
		return
	}

	result, err := app.queryTool.ExecuteQuery(r.Context(), body.SQL)
	if err != nil {
		app.writeJSON(w, r, http.StatusUnprocessableEntity, envelope{"error": err.Error()})
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}
