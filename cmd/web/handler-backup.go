package main

import "net/http"

// backupPOST writes a consistent snapshot of the database to the backup
// directory and reports where it landed.
func (app *application) backupPOST(w http.ResponseWriter, r *http.Request) {
	path, err := app.db.Backup(r.Context(), app.backupDir)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, envelope{"backup_path": path})
}
