package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rishi1508/zenith/internal/ptr"
	"github.com/rishi1508/zenith/internal/sqlite"
)

// Service handles the business logic for workout tracking.
//
// A training session in progress is deliberately not persisted: the caller
// holds the Workout built by StartSession and hands it back for updates,
// then FinishSession writes it in one step. Cancelling a session is simply
// dropping the value.
type Service struct {
	repo   *repository
	logger *slog.Logger
}

// NewService creates a new workout service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newRepository(db, logger),
		logger: logger,
	}
}

// ListWorkouts returns all logged workouts, newest first.
func (s *Service) ListWorkouts(ctx context.Context) ([]Workout, error) {
	workouts, err := s.repo.workouts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// GetWorkout retrieves a single workout by id.
func (s *Service) GetWorkout(ctx context.Context, id string) (Workout, error) {
	workout, err := s.repo.workouts.Get(ctx, id)
	if err != nil {
		return Workout{}, fmt.Errorf("get workout %s: %w", id, err)
	}
	return workout, nil
}

// SaveWorkout upserts a workout.
func (s *Service) SaveWorkout(ctx context.Context, workout Workout) error {
	if err := s.repo.workouts.Save(ctx, workout); err != nil {
		return fmt.Errorf("save workout %s: %w", workout.ID, err)
	}
	return nil
}

// DeleteWorkout removes a workout. Removing an unknown id is a no-op.
func (s *Service) DeleteWorkout(ctx context.Context, id string) error {
	if err := s.repo.workouts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete workout %s: %w", id, err)
	}
	return nil
}

// StartSession builds an unsaved workout for the given day of the active
// plan. Passing dayNumber zero picks the day after the last trained one,
// wrapping around the plan. Weights are seeded from each exercise's previous
// session; rep counts start at zero.
func (s *Service) StartSession(ctx context.Context, dayNumber int, now time.Time) (Workout, error) {
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return Workout{}, fmt.Errorf("get settings: %w", err)
	}
	if settings.ActivePlanID == "" {
		return Workout{}, fmt.Errorf("%w: no active plan", ErrInvalid)
	}

	plan, err := s.repo.plans.Get(ctx, settings.ActivePlanID)
	if err != nil {
		return Workout{}, fmt.Errorf("get active plan: %w", err)
	}

	if dayNumber == 0 {
		dayNumber = settings.LastDayNumber%len(plan.Days) + 1
	}
	day, ok := plan.Day(dayNumber)
	if !ok {
		return Workout{}, fmt.Errorf("%w: plan %s has no day %d", ErrInvalid, plan.ID, dayNumber)
	}
	if day.IsRestDay {
		return Workout{}, fmt.Errorf("%w: day %d is a rest day, log it instead of starting a session", ErrInvalid, dayNumber)
	}

	history, err := s.repo.workouts.List(ctx)
	if err != nil {
		return Workout{}, fmt.Errorf("list workouts for seeding: %w", err)
	}

	workout := Workout{
		ID:        uuid.NewString(),
		Date:      dateOf(now),
		Name:      day.Name,
		Type:      day.WorkoutType(),
		StartedAt: ptr.Ref(now),
	}

	for _, planEx := range day.Exercises {
		entry := ExerciseEntry{
			ID:           uuid.NewString(),
			ExerciseID:   planEx.ExerciseID,
			ExerciseName: planEx.ExerciseName,
		}
		weights := AutoFillWeights(history, planEx.ExerciseID, planEx.DefaultSets)
		for _, weight := range weights {
			entry.Sets = append(entry.Sets, Set{
				ID:     uuid.NewString(),
				Weight: weight,
				Reps:   0,
			})
		}
		workout.Exercises = append(workout.Exercises, entry)
	}

	return workout, nil
}

// SetResult describes a just-completed set relative to history.
type SetResult struct {
	Record     bool          `json:"record"`
	Comparison SetComparison `json:"comparison"`
}

// CompleteSet marks a set done with the given weight and reps and reports
// whether it beats the exercise's personal record. Only persisted workouts
// count as history, so earlier sets of the in-progress session cannot mask
// a record.
func (s *Service) CompleteSet(
	ctx context.Context,
	workout *Workout,
	entryIndex, setIndex int,
	weight float64,
	reps int,
) (SetResult, error) {
	if entryIndex < 0 || entryIndex >= len(workout.Exercises) {
		return SetResult{}, fmt.Errorf("%w: exercise index %d out of bounds", ErrInvalid, entryIndex)
	}
	entry := &workout.Exercises[entryIndex]
	if setIndex < 0 || setIndex >= len(entry.Sets) {
		return SetResult{}, fmt.Errorf("%w: set index %d out of bounds", ErrInvalid, setIndex)
	}
	if weight < 0 || reps < 0 {
		return SetResult{}, fmt.Errorf("%w: weight and reps must not be negative", ErrInvalid)
	}

	history, err := s.repo.workouts.List(ctx)
	if err != nil {
		return SetResult{}, fmt.Errorf("list workouts for record check: %w", err)
	}

	set := &entry.Sets[setIndex]
	set.Weight = weight
	set.Reps = reps
	set.Completed = true

	return SetResult{
		Record:     IsRecordSet(history, entry.ExerciseID, *set),
		Comparison: CompareSet(history, entry.ExerciseID, setIndex, *set),
	}, nil
}

// FinishSession stamps the workout completed and persists it. The duration
// is the wall-clock span of the session rounded to minutes.
func (s *Service) FinishSession(ctx context.Context, workout Workout, now time.Time) (Workout, error) {
	workout.Completed = true
	workout.CompletedAt = ptr.Ref(now)
	if workout.StartedAt != nil {
		workout.DurationMin = DurationMinutes(*workout.StartedAt, now)
	}

	if err := s.repo.workouts.Save(ctx, workout); err != nil {
		return Workout{}, fmt.Errorf("save finished workout: %w", err)
	}

	if err := s.advanceLastDay(ctx, workout); err != nil {
		return Workout{}, err
	}

	return workout, nil
}

// advanceLastDay records which plan day was trained last so the next
// session can pick up from there.
func (s *Service) advanceLastDay(ctx context.Context, workout Workout) error {
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	if settings.ActivePlanID == "" {
		return nil
	}

	plan, err := s.repo.plans.Get(ctx, settings.ActivePlanID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get active plan: %w", err)
	}

	for _, day := range plan.Days {
		if day.Name == workout.Name {
			settings.LastDayNumber = day.DayNumber
			if err = s.repo.settings.Set(ctx, settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			return nil
		}
	}
	return nil
}

// LogRestDay records a completed rest day for the given date in one step,
// without going through a session.
func (s *Service) LogRestDay(ctx context.Context, date time.Time) (Workout, error) {
	workout := Workout{
		ID:        uuid.NewString(),
		Date:      dateOf(date),
		Name:      "Rest day",
		Type:      TypeRest,
		Completed: true,
	}
	if err := s.repo.workouts.Save(ctx, workout); err != nil {
		return Workout{}, fmt.Errorf("save rest day: %w", err)
	}
	return workout, nil
}

// BackfillRestDays logs rest days for every given date that has no workout
// yet. Dates already covered are skipped, so backfilling is idempotent.
func (s *Service) BackfillRestDays(ctx context.Context, dates []time.Time) (int, error) {
	workouts, err := s.repo.workouts.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list workouts: %w", err)
	}

	covered := make(map[time.Time]bool)
	for _, w := range workouts {
		covered[dateOf(w.Date)] = true
	}

	logged := 0
	for _, date := range dates {
		d := dateOf(date)
		if covered[d] {
			continue
		}
		if _, err = s.LogRestDay(ctx, d); err != nil {
			return logged, err
		}
		covered[d] = true
		logged++
	}
	return logged, nil
}

// ListExercises returns the exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// GetExercise retrieves a catalog exercise by id.
func (s *Service) GetExercise(ctx context.Context, id string) (Exercise, error) {
	exercise, err := s.repo.exercises.Get(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise %s: %w", id, err)
	}
	return exercise, nil
}

// CreateExercise adds a user-created exercise to the catalog.
func (s *Service) CreateExercise(ctx context.Context, ex Exercise) (Exercise, error) {
	if ex.ID == "" {
		ex.ID = userExercisePrefix + uuid.NewString()
	}
	if ex.MuscleGroup == "" {
		ex.MuscleGroup = MuscleGroupOther
	}
	created, err := s.repo.exercises.Create(ctx, ex)
	if err != nil {
		return Exercise{}, fmt.Errorf("create exercise: %w", err)
	}
	return created, nil
}

// UpdateExercise replaces a catalog exercise.
func (s *Service) UpdateExercise(ctx context.Context, ex Exercise) error {
	if err := s.repo.exercises.Update(ctx, ex.ID, func(old *Exercise) (bool, error) {
		*old = ex
		return true, nil
	}); err != nil {
		return fmt.Errorf("update exercise %s: %w", ex.ID, err)
	}
	return nil
}

// DeleteExercise removes a user-created exercise. History keeps its
// denormalised exercise names.
func (s *Service) DeleteExercise(ctx context.Context, id string) error {
	if err := s.repo.exercises.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exercise %s: %w", id, err)
	}
	return nil
}

// ListPlans returns all weekly plans.
func (s *Service) ListPlans(ctx context.Context) ([]WeeklyPlan, error) {
	plans, err := s.repo.plans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// GetPlan retrieves a plan by id.
func (s *Service) GetPlan(ctx context.Context, id string) (WeeklyPlan, error) {
	plan, err := s.repo.plans.Get(ctx, id)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("get plan %s: %w", id, err)
	}
	return plan, nil
}

// SavePlan upserts a plan.
func (s *Service) SavePlan(ctx context.Context, plan WeeklyPlan) (WeeklyPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if err := s.repo.plans.Save(ctx, plan); err != nil {
		return WeeklyPlan{}, fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return plan, nil
}

// DeletePlan removes a plan, clearing the active-plan setting when it
// pointed at the removed plan.
func (s *Service) DeletePlan(ctx context.Context, id string) error {
	if err := s.repo.plans.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}

	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	if settings.ActivePlanID == id {
		settings.ActivePlanID = ""
		settings.LastDayNumber = 0
		if err = s.repo.settings.Set(ctx, settings); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	return nil
}

// ActivatePlan makes the given plan the one sessions start from.
func (s *Service) ActivatePlan(ctx context.Context, id string) error {
	if _, err := s.repo.plans.Get(ctx, id); err != nil {
		return fmt.Errorf("get plan %s: %w", id, err)
	}

	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}
	if settings.ActivePlanID == id {
		return nil
	}
	settings.ActivePlanID = id
	settings.LastDayNumber = 0
	if err = s.repo.settings.Set(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// GetSettings returns the user settings.
func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// SaveSettings persists the user settings.
func (s *Service) SaveSettings(ctx context.Context, settings Settings) error {
	if err := s.repo.settings.Set(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// GetDashboard computes the headline statistics.
func (s *Service) GetDashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	workouts, err := s.repo.workouts.List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list workouts: %w", err)
	}
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get settings: %w", err)
	}
	return BuildDashboard(workouts, settings, now), nil
}

// ExerciseStats bundles per-exercise progress for the detail view.
type ExerciseStats struct {
	Trend           TrendDirection  `json:"trend"`
	Record          *PersonalRecord `json:"record,omitempty"`
	LastSessionSets []Set           `json:"last_session_sets,omitempty"`
}

// GetExerciseStats classifies the volume trend for one exercise and looks up
// its personal record and most recent completed set pattern.
func (s *Service) GetExerciseStats(ctx context.Context, exerciseID string) (ExerciseStats, error) {
	workouts, err := s.repo.workouts.List(ctx)
	if err != nil {
		return ExerciseStats{}, fmt.Errorf("list workouts: %w", err)
	}
	stats := ExerciseStats{
		Trend:           Trend(workouts, exerciseID),
		LastSessionSets: LastSessionSets(workouts, exerciseID),
	}
	if record, ok := PersonalRecordFor(workouts, exerciseID); ok {
		stats.Record = &record
	}
	return stats, nil
}

// GetMissingDays lists recent dates without any logged workout.
func (s *Service) GetMissingDays(ctx context.Context, now time.Time) ([]time.Time, error) {
	workouts, err := s.repo.workouts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return MissingDays(workouts, now), nil
}

// GetWeeklySummaries buckets history into Sunday-anchored weeks.
func (s *Service) GetWeeklySummaries(ctx context.Context) ([]WeekSummary, error) {
	workouts, err := s.repo.workouts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return WeeklySummaries(workouts), nil
}

// ImportRow is one parsed spreadsheet row: an exercise performed on a date
// with its recorded sets.
type ImportRow struct {
	Date         time.Time
	ExerciseName string
	Sets         []Set
}

// ImportResult summarises an applied import.
type ImportResult struct {
	WorkoutsCreated   int      `json:"workouts_created"`
	ExercisesCreated  int      `json:"exercises_created"`
	RowsImported      int      `json:"rows_imported"`
	SkippedRowReasons []string `json:"skipped_row_reasons,omitempty"`
}

// ImportRows turns parsed spreadsheet rows into completed workouts, one per
// date. Exercise names missing from the catalog are registered on the fly.
// An empty row set is an error so a bad fetch can never wipe anything.
func (s *Service) ImportRows(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no importable rows", ErrInvalid)
	}

	var result ImportResult
	byDate := make(map[time.Time][]ImportRow)
	var dates []time.Time
	for _, row := range rows {
		d := dateOf(row.Date)
		if _, ok := byDate[d]; !ok {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], row)
	}

	for _, date := range dates {
		workout := Workout{
			ID:        uuid.NewString(),
			Date:      date,
			Name:      "Imported workout",
			Type:      TypeImported,
			Completed: true,
		}

		for _, row := range byDate[date] {
			exercise, created, err := s.findOrCreateExercise(ctx, row.ExerciseName)
			if err != nil {
				return result, err
			}
			if created {
				result.ExercisesCreated++
			}

			entry := ExerciseEntry{
				ID:           uuid.NewString(),
				ExerciseID:   exercise.ID,
				ExerciseName: exercise.Name,
			}
			for _, set := range row.Sets {
				set.ID = uuid.NewString()
				set.Completed = true
				entry.Sets = append(entry.Sets, set)
			}
			workout.Exercises = append(workout.Exercises, entry)
			result.RowsImported++
		}

		if err := s.repo.workouts.Save(ctx, workout); err != nil {
			return result, fmt.Errorf("save imported workout for %s: %w", formatDate(date), err)
		}
		result.WorkoutsCreated++
	}

	return result, nil
}

// findOrCreateExercise resolves an imported exercise name against the
// catalog, registering a minimal entry when unknown.
func (s *Service) findOrCreateExercise(ctx context.Context, name string) (Exercise, bool, error) {
	name = strings.TrimSpace(name)
	exercise, err := s.repo.exercises.FindByName(ctx, name)
	if err == nil {
		return exercise, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Exercise{}, false, fmt.Errorf("find exercise %q: %w", name, err)
	}

	exercise, err = s.repo.exercises.Create(ctx, Exercise{
		ID:          importedExercisePrefix + uuid.NewString(),
		Name:        name,
		MuscleGroup: MuscleGroupOther,
	})
	if err != nil {
		return Exercise{}, false, fmt.Errorf("create imported exercise %q: %w", name, err)
	}
	return exercise, true, nil
}
