package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rishi1508/zenith/internal/apitest"
	"github.com/rishi1508/zenith/internal/testhelpers"
	"github.com/rishi1508/zenith/internal/workout"
)

func testLookupEnv(key string) (string, bool) {
	env := map[string]string{
		"ZENITH_ADDR":       "localhost:0",
		"ZENITH_SQLITE_URL": ":memory:",
	}
	value, ok := env[key]
	return value, ok
}

func startTestServer(t *testing.T) (*apitest.Client, context.Context) {
	t.Helper()
	server, err := apitest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	return server.Client(), t.Context()
}

func TestHealthy(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	var body struct {
		Status string `json:"status"`
	}
	status, err := client.GetJSON(ctx, "/api/healthy", &body)
	if err != nil {
		t.Fatalf("get healthy: %v", err)
	}
	if status != http.StatusOK || body.Status != "ok" {
		t.Errorf("got status %d body %q, want 200 ok", status, body.Status)
	}
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	// No body means the next day in the rotation, which starts at day one.
	var session workout.Workout
	status, err := client.PostJSON(ctx, "/api/session/start", nil, &session)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("start session: got status %d, want 201", status)
	}
	if session.Name != "Push" {
		t.Errorf("session name: got %q, want Push", session.Name)
	}
	if len(session.Exercises) == 0 {
		t.Fatal("session has no exercises")
	}

	// A second start while one is in progress is rejected.
	status, err = client.PostJSON(ctx, "/api/session/start", nil, nil)
	if err != nil {
		t.Fatalf("start duplicate session: %v", err)
	}
	if status != http.StatusConflict {
		t.Errorf("duplicate start: got status %d, want 409", status)
	}

	var fetched workout.Workout
	if status, err = client.GetJSON(ctx, "/api/session", &fetched); err != nil {
		t.Fatalf("get session: %v", err)
	}
	if status != http.StatusOK || fetched.ID != session.ID {
		t.Errorf("get session: got status %d id %q, want 200 %q", status, fetched.ID, session.ID)
	}

	var setResponse struct {
		Result  workout.SetResult `json:"result"`
		Workout workout.Workout   `json:"workout"`
	}
	setBody := map[string]any{"weight": 60, "reps": 8}
	if status, err = client.PostJSON(ctx, "/api/session/exercises/0/sets/0", setBody, &setResponse); err != nil {
		t.Fatalf("complete set: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("complete set: got status %d, want 200", status)
	}
	// First ever set of this exercise is a personal record with nothing to
	// compare against.
	if !setResponse.Result.Record {
		t.Error("first set should be a record")
	}
	if setResponse.Result.Comparison != workout.ComparisonNone {
		t.Errorf("comparison: got %q, want %q", setResponse.Result.Comparison, workout.ComparisonNone)
	}
	if !setResponse.Workout.Exercises[0].Sets[0].Completed {
		t.Error("completed set not marked in returned workout")
	}

	// Out-of-range indices map to unprocessable entity.
	if status, err = client.PostJSON(ctx, "/api/session/exercises/99/sets/0", setBody, nil); err != nil {
		t.Fatalf("complete out-of-range set: %v", err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Errorf("out-of-range set: got status %d, want 422", status)
	}

	var finished workout.Workout
	if status, err = client.PostJSON(ctx, "/api/session/finish", nil, &finished); err != nil {
		t.Fatalf("finish session: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("finish session: got status %d, want 200", status)
	}
	if !finished.Completed {
		t.Error("finished workout not marked completed")
	}

	if status, err = client.GetJSON(ctx, "/api/session", nil); err != nil {
		t.Fatalf("get session after finish: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("session after finish: got status %d, want 404", status)
	}

	var list struct {
		Workouts []workout.Workout `json:"workouts"`
	}
	if status, err = client.GetJSON(ctx, "/api/workouts", &list); err != nil {
		t.Fatalf("list workouts: %v", err)
	}
	if status != http.StatusOK || len(list.Workouts) != 1 {
		t.Fatalf("list workouts: got status %d count %d, want 200 and 1", status, len(list.Workouts))
	}
	if list.Workouts[0].ID != finished.ID {
		t.Errorf("persisted workout id: got %q, want %q", list.Workouts[0].ID, finished.ID)
	}
}

func TestSessionCancelDiscardsWorkout(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	if status, err := client.PostJSON(ctx, "/api/session/start", nil, nil); err != nil || status != http.StatusCreated {
		t.Fatalf("start session: status %d err %v", status, err)
	}
	setBody := map[string]any{"weight": 40, "reps": 10}
	if status, err := client.PostJSON(ctx, "/api/session/exercises/0/sets/0", setBody, nil); err != nil || status != http.StatusOK {
		t.Fatalf("complete set: status %d err %v", status, err)
	}

	status, err := client.PostJSON(ctx, "/api/session/cancel", nil, nil)
	if err != nil {
		t.Fatalf("cancel session: %v", err)
	}
	if status != http.StatusNoContent {
		t.Errorf("cancel session: got status %d, want 204", status)
	}

	if status, err = client.GetJSON(ctx, "/api/session", nil); err != nil {
		t.Fatalf("get session after cancel: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("session after cancel: got status %d, want 404", status)
	}

	// Nothing reaches the workout history.
	var list struct {
		Workouts []workout.Workout `json:"workouts"`
	}
	if _, err = client.GetJSON(ctx, "/api/workouts", &list); err != nil {
		t.Fatalf("list workouts: %v", err)
	}
	if len(list.Workouts) != 0 {
		t.Errorf("cancelled workout was persisted: %d workouts", len(list.Workouts))
	}
}

func TestRestDays(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	yesterday := time.Now().AddDate(0, 0, -1).Format(time.DateOnly)
	var rest workout.Workout
	status, err := client.PostJSON(ctx, "/api/rest-days", map[string]string{"date": yesterday}, &rest)
	if err != nil {
		t.Fatalf("log rest day: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("log rest day: got status %d, want 201", status)
	}
	if rest.Type != workout.TypeRest || !rest.Completed {
		t.Errorf("rest day: got type %q completed %t", rest.Type, rest.Completed)
	}

	var backfill struct {
		RestDaysLogged int `json:"rest_days_logged"`
	}
	dates := map[string][]string{"dates": {yesterday, time.Now().AddDate(0, 0, -2).Format(time.DateOnly)}}
	if status, err = client.PostJSON(ctx, "/api/rest-days/backfill", dates, &backfill); err != nil {
		t.Fatalf("backfill rest days: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("backfill: got status %d, want 200", status)
	}
	// Yesterday already has its rest day, only the day before gets one.
	if backfill.RestDaysLogged != 1 {
		t.Errorf("backfill: got %d rest days logged, want 1", backfill.RestDaysLogged)
	}
}

func TestExerciseCatalog(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	newExercise := workout.Exercise{
		Name:          "Weighted Plank",
		MuscleGroup:   workout.MuscleGroupCore,
		NotesMarkdown: "Keep the **hips** level.",
	}
	var created workout.Exercise
	status, err := client.PostJSON(ctx, "/api/exercises", newExercise, &created)
	if err != nil {
		t.Fatalf("create exercise: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("create exercise: got status %d, want 201", status)
	}
	if !strings.HasPrefix(created.ID, "user-") {
		t.Errorf("created exercise id: got %q, want user- prefix", created.ID)
	}

	var info struct {
		Exercise  workout.Exercise `json:"exercise"`
		NotesHTML string           `json:"notes_html"`
	}
	if status, err = client.GetJSON(ctx, "/api/exercises/"+created.ID+"/info", &info); err != nil {
		t.Fatalf("get exercise info: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("exercise info: got status %d, want 200", status)
	}
	if !strings.Contains(info.NotesHTML, "<strong>hips</strong>") {
		t.Errorf("notes html: got %q, want rendered markdown", info.NotesHTML)
	}

	// Built-in exercises cannot be deleted.
	if status, err = client.Delete(ctx, "/api/exercises/bench-press"); err != nil {
		t.Fatalf("delete built-in exercise: %v", err)
	}
	if status != http.StatusForbidden {
		t.Errorf("delete built-in: got status %d, want 403", status)
	}

	if status, err = client.Delete(ctx, "/api/exercises/"+created.ID); err != nil {
		t.Fatalf("delete exercise: %v", err)
	}
	if status != http.StatusNoContent {
		t.Errorf("delete exercise: got status %d, want 204", status)
	}

	if status, err = client.GetJSON(ctx, "/api/exercises/"+created.ID, nil); err != nil {
		t.Fatalf("get deleted exercise: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("deleted exercise: got status %d, want 404", status)
	}
}

func TestSettings(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	var settings workout.Settings
	status, err := client.GetJSON(ctx, "/api/settings", &settings)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("get settings: got status %d, want 200", status)
	}
	if settings.WeeklyGoal != 5 {
		t.Errorf("default weekly goal: got %d, want 5", settings.WeeklyGoal)
	}

	settings.WeeklyGoal = 0
	if status, err = client.PutJSON(ctx, "/api/settings", settings, nil); err != nil {
		t.Fatalf("put invalid settings: %v", err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Errorf("invalid weekly goal: got status %d, want 422", status)
	}

	settings.WeeklyGoal = 3
	settings.Theme = "light"
	if status, err = client.PutJSON(ctx, "/api/settings", settings, nil); err != nil {
		t.Fatalf("put settings: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("put settings: got status %d, want 200", status)
	}

	var updated workout.Settings
	if _, err = client.GetJSON(ctx, "/api/settings", &updated); err != nil {
		t.Fatalf("get updated settings: %v", err)
	}
	if updated.WeeklyGoal != 3 || updated.Theme != "light" {
		t.Errorf("updated settings: got goal %d theme %q, want 3 light", updated.WeeklyGoal, updated.Theme)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	sheet := strings.Join([]string{
		"Date,Exercise,Set1 Reps,Set1 Weight,Set2 Reps,Set2 Weight,Volume",
		"2026-01-05,Bench Press,8,60.0,8,60.0,960",
		"2026-01-05,Weighted Dips,10,20.0,,,200",
		"not-a-date,Bench Press,8,60.0,,,480",
		"",
	}, "\n")

	var result struct {
		WorkoutsCreated   int      `json:"workouts_created"`
		ExercisesCreated  int      `json:"exercises_created"`
		RowsImported      int      `json:"rows_imported"`
		SkippedRowReasons []string `json:"skipped_row_reasons"`
	}
	status, err := client.PostCSV(ctx, "/api/import", sheet, &result)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("import: got status %d, want 200", status)
	}
	if result.WorkoutsCreated != 1 || result.RowsImported != 2 {
		t.Errorf("import: got %d workouts %d rows, want 1 and 2", result.WorkoutsCreated, result.RowsImported)
	}
	if result.ExercisesCreated != 1 {
		t.Errorf("import: got %d exercises created, want 1 (Weighted Dips)", result.ExercisesCreated)
	}
	if len(result.SkippedRowReasons) != 1 {
		t.Errorf("import: got %d skipped rows, want 1: %v", len(result.SkippedRowReasons), result.SkippedRowReasons)
	}

	var dashboard workout.Dashboard
	if status, err = client.GetJSON(ctx, "/api/stats/dashboard", &dashboard); err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("dashboard: got status %d, want 200", status)
	}
	if dashboard.TotalWorkouts != 1 {
		t.Errorf("dashboard workouts: got %d, want 1", dashboard.TotalWorkouts)
	}
	if dashboard.TotalVolume != 1160 {
		t.Errorf("dashboard volume: got %.1f, want 1160", dashboard.TotalVolume)
	}

	resp, err := client.Get(ctx, "/api/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: got status %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("export content type: got %q, want text/csv", got)
	}
	exported, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	for _, want := range []string{"Date,Exercise,Set1 Reps,Set1 Weight", "Bench Press", "Weighted Dips"} {
		if !strings.Contains(string(exported), want) {
			t.Errorf("export missing %q in:\n%s", want, exported)
		}
	}
}

func TestNotFoundMappings(t *testing.T) {
	t.Parallel()
	client, ctx := startTestServer(t)

	for _, path := range []string{
		"/api/workouts/no-such-workout",
		"/api/exercises/no-such-exercise",
		"/api/plans/no-such-plan",
	} {
		status, err := client.GetJSON(ctx, path, nil)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		if status != http.StatusNotFound {
			t.Errorf("get %s: got status %d, want 404", path, status)
		}
	}
}
