package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rishi1508/zenith/internal/apitest"
	"github.com/rishi1508/zenith/internal/logging"
	"github.com/rishi1508/zenith/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	scenarioTimeout         = 30 * time.Second
	seedTimeout             = 5 * time.Minute
	maxConcurrentOperations = 20
	numClients              = 50
	baseWeight              = 15.0
	weightRange             = 20
	baseReps                = 8
	repsRange               = 8
	successRateThreshold    = 95.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
	historyWeeks            = 26 // 6 months of weekly workouts
	daysPerWeek             = 7
)

// SeedHistory imports six months of weekly workouts so the statistics
// endpoints have something to chew on.
func SeedHistory(ctx context.Context, client *apitest.Client, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	var sheet strings.Builder
	sheet.WriteString("Date,Exercise,Set1 Reps,Set1 Weight,Set2 Reps,Set2 Weight,Volume\n")
	start := time.Now().AddDate(0, -6, 0)
	for week := range historyWeeks {
		date := start.AddDate(0, 0, week*daysPerWeek)
		if date.After(time.Now()) {
			continue
		}
		weight := baseWeight + float64(week%weightRange)
		reps := baseReps + week%repsRange
		fmt.Fprintf(&sheet, "%s,Bench Press,%d,%.1f,%d,%.1f,\n",
			date.Format(time.DateOnly), reps, weight, reps, weight)
	}

	var result struct {
		WorkoutsCreated int `json:"workouts_created"`
	}
	status, err := client.PostCSV(ctx, "/api/import", sheet.String(), &result)
	if err != nil {
		return fmt.Errorf("import history: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("import history: unexpected status %d", status)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "seeded workout history",
		slog.Int("workouts_created", result.WorkoutsCreated))
	return nil
}

// ReadScenario hammers the read-heavy endpoints a client hits when opening
// the app: dashboard, history, weekly summaries, and an exercise trend.
func ReadScenario(ctx context.Context, client *apitest.Client) error {
	paths := []string{
		"/api/stats/dashboard",
		"/api/workouts",
		"/api/stats/weekly",
		"/api/exercises",
		"/api/exercises/bench-press/trend",
	}
	for _, path := range paths {
		status, err := client.GetJSON(ctx, path, nil)
		if err != nil {
			return fmt.Errorf("get %s: %w", path, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("get %s: unexpected status %d", path, status)
		}
	}
	return nil
}

// RunLoadTest runs concurrent read scenarios and fails when too many error.
func RunLoadTest(ctx context.Context, url string, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_clients", numClients))

	var successCount, failureCount int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numClients {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			client, err := apitest.NewClient(url)
			if err != nil {
				atomic.AddInt64(&failureCount, 1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "client creation failed",
					slog.Int("client_index", i), slog.Any("error", err))
				return nil
			}

			if err = ReadScenario(scenarioCtx, client); err != nil {
				atomic.AddInt64(&failureCount, 1)
				// Log individual failures but don't stop the entire test
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("client_index", i), slog.Any("error", err))
				return nil
			}

			atomic.AddInt64(&successCount, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount) / float64(numClients) * percentageMultiplier

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount),
		slog.Int64("failed", failureCount),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}

	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)

	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}
	client, err := apitest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}

	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	if err = SeedHistory(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to seed history", slog.Any("error", err))
		os.Exit(1)
	}

	if err = RunLoadTest(ctx, url, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)))
}
