package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rishi1508/zenith/internal/apitest"
	"github.com/rishi1508/zenith/internal/logging"
	"github.com/rishi1508/zenith/internal/testhelpers"
)

// TestWorkoutFlow exercises the core session loop against a live server:
// start a session, complete one set, finish, and read it back from history.
func TestWorkoutFlow(client *apitest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var session struct {
		ID        string `json:"id"`
		Exercises []struct {
			Sets []struct{} `json:"sets"`
		} `json:"exercises"`
	}
	status, err := client.PostJSON(ctx, "/api/session/start", nil, &session)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("start session: unexpected status %d", status)
	}
	if len(session.Exercises) == 0 {
		return fmt.Errorf("session %s has no exercises", session.ID)
	}

	set := map[string]any{"weight": 20.0, "reps": 8}
	if status, err = client.PostJSON(ctx, "/api/session/exercises/0/sets/0", set, nil); err != nil {
		return fmt.Errorf("complete set: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("complete set: unexpected status %d", status)
	}

	var finished struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}
	if status, err = client.PostJSON(ctx, "/api/session/finish", nil, &finished); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if status != http.StatusOK || !finished.Completed {
		return fmt.Errorf("finish session: status %d completed %v", status, finished.Completed)
	}

	if status, err = client.GetJSON(ctx, "/api/workouts/"+finished.ID, nil); err != nil {
		return fmt.Errorf("get finished workout: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("get finished workout: unexpected status %d", status)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *apitest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = apitest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestWorkoutFlow(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing workout flow", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
