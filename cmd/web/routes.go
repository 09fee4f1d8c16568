package main

import "net/http"

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		api = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				app.timeout(next)))))
		}
		session = func(next http.Handler) http.Handler {
			return api(noCache(app.sessionManager.LoadAndSave(next)))
		}
	)

	mux.Handle("GET /api/healthy", api(http.HandlerFunc(app.healthy)))

	mux.Handle("GET /api/workouts", session(http.HandlerFunc(app.workoutsGET)))
	mux.Handle("GET /api/workouts/{id}", session(http.HandlerFunc(app.workoutGET)))
	mux.Handle("PUT /api/workouts/{id}", session(http.HandlerFunc(app.workoutPUT)))
	mux.Handle("DELETE /api/workouts/{id}", session(http.HandlerFunc(app.workoutDELETE)))

	mux.Handle("POST /api/session/start", session(http.HandlerFunc(app.sessionStartPOST)))
	mux.Handle("GET /api/session", session(http.HandlerFunc(app.sessionGET)))
	mux.Handle("POST /api/session/exercises/{exerciseIndex}/sets/{setIndex}",
		session(http.HandlerFunc(app.sessionSetPOST)))
	mux.Handle("POST /api/session/finish", session(http.HandlerFunc(app.sessionFinishPOST)))
	mux.Handle("POST /api/session/cancel", session(http.HandlerFunc(app.sessionCancelPOST)))

	mux.Handle("POST /api/rest-days", session(http.HandlerFunc(app.restDayPOST)))
	mux.Handle("POST /api/rest-days/backfill", session(http.HandlerFunc(app.restDayBackfillPOST)))

	mux.Handle("GET /api/stats/dashboard", session(http.HandlerFunc(app.dashboardGET)))
	mux.Handle("GET /api/stats/weekly", session(http.HandlerFunc(app.weeklySummariesGET)))
	mux.Handle("GET /api/stats/missing-days", session(http.HandlerFunc(app.missingDaysGET)))

	mux.Handle("GET /api/exercises", session(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("POST /api/exercises", session(http.HandlerFunc(app.exercisePOST)))
	mux.Handle("GET /api/exercises/{id}", session(http.HandlerFunc(app.exerciseGET)))
	mux.Handle("PUT /api/exercises/{id}", session(http.HandlerFunc(app.exercisePUT)))
	mux.Handle("DELETE /api/exercises/{id}", session(http.HandlerFunc(app.exerciseDELETE)))
	mux.Handle("GET /api/exercises/{id}/info", session(http.HandlerFunc(app.exerciseInfoGET)))
	mux.Handle("GET /api/exercises/{id}/trend", session(http.HandlerFunc(app.exerciseTrendGET)))

	mux.Handle("GET /api/plans", session(http.HandlerFunc(app.plansGET)))
	mux.Handle("POST /api/plans", session(http.HandlerFunc(app.planPOST)))
	mux.Handle("GET /api/plans/{id}", session(http.HandlerFunc(app.planGET)))
	mux.Handle("PUT /api/plans/{id}", session(http.HandlerFunc(app.planPUT)))
	mux.Handle("DELETE /api/plans/{id}", session(http.HandlerFunc(app.planDELETE)))
	mux.Handle("POST /api/plans/{id}/activate", session(http.HandlerFunc(app.planActivatePOST)))

	mux.Handle("GET /api/settings", session(http.HandlerFunc(app.settingsGET)))
	mux.Handle("PUT /api/settings", session(http.HandlerFunc(app.settingsPUT)))

	mux.Handle("POST /api/import", session(http.HandlerFunc(app.importPOST)))
	mux.Handle("GET /api/export", session(http.HandlerFunc(app.exportGET)))
	mux.Handle("POST /api/backup", session(http.HandlerFunc(app.backupPOST)))
	mux.Handle("POST /api/query", session(http.HandlerFunc(app.queryPOST)))

	return mux
}
