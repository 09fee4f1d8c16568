package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rishi1508/zenith/internal/sqlite"
)

// sqlitePlanRepository persists weekly plans. Save is a full upsert in one
// transaction, the same shape as the workout repository.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// List retrieves all plans ordered by name.
func (r *sqlitePlanRepository) List(ctx context.Context) (_ []WeeklyPlan, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, is_custom, is_imported
		FROM weekly_plans
		ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var plans []WeeklyPlan
	for rows.Next() {
		var plan WeeklyPlan
		if err = rows.Scan(&plan.ID, &plan.Name, &plan.IsCustom, &plan.IsImported); err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}

		plan.Days, err = r.loadDays(ctx, plan.ID)
		if err != nil {
			return nil, err
		}

		plans = append(plans, plan)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return plans, nil
}

// Get retrieves a plan by id.
func (r *sqlitePlanRepository) Get(ctx context.Context, id string) (WeeklyPlan, error) {
	var plan WeeklyPlan
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, is_custom, is_imported
		FROM weekly_plans
		WHERE id = ?`, id).
		Scan(&plan.ID, &plan.Name, &plan.IsCustom, &plan.IsImported)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WeeklyPlan{}, ErrNotFound
		}
		return WeeklyPlan{}, fmt.Errorf("query plan: %w", err)
	}

	plan.Days, err = r.loadDays(ctx, plan.ID)
	if err != nil {
		return WeeklyPlan{}, err
	}

	return plan, nil
}

// Save upserts a plan after validating its structure.
func (r *sqlitePlanRepository) Save(ctx context.Context, plan WeeklyPlan) (err error) {
	if err = validatePlan(plan); err != nil {
		return err
	}

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = r.deleteTx(ctx, tx, plan.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO weekly_plans (id, name, is_custom, is_imported)
		VALUES (?, ?, ?, ?)`,
		plan.ID, plan.Name, plan.IsCustom, plan.IsImported)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	for _, day := range plan.Days {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plan_days (plan_id, day_number, name, is_rest_day)
			VALUES (?, ?, ?, ?)`,
			plan.ID, day.DayNumber, day.Name, day.IsRestDay)
		if err != nil {
			return fmt.Errorf("insert plan day: %w", err)
		}

		for i, ex := range day.Exercises {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO plan_exercises (plan_id, day_number, position, exercise_id, exercise_name, default_sets, default_reps)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				plan.ID, day.DayNumber, i, ex.ExerciseID, ex.ExerciseName, ex.DefaultSets, ex.DefaultReps)
			if err != nil {
				return fmt.Errorf("insert plan exercise: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a plan. Deleting a missing id is a no-op.
func (r *sqlitePlanRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = r.deleteTx(ctx, tx, id); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *sqlitePlanRepository) deleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_exercises WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("delete plan exercises: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_days WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("delete plan days: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func (r *sqlitePlanRepository) loadDays(ctx context.Context, planID string) (_ []DayPlan, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT pd.day_number, pd.name, pd.is_rest_day,
		       pe.exercise_id, pe.exercise_name, pe.default_sets, pe.default_reps
		FROM plan_days pd
		LEFT JOIN plan_exercises pe ON pe.plan_id = pd.plan_id AND pe.day_number = pd.day_number
		WHERE pd.plan_id = ?
		ORDER BY pd.day_number, pe.position`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan days: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var days []DayPlan
	var current *DayPlan

	for rows.Next() {
		var (
			dayNumber    int
			name         string
			isRestDay    bool
			exerciseID   sql.NullString
			exerciseName sql.NullString
			defaultSets  sql.NullInt32
			defaultReps  sql.NullInt32
		)
		err = rows.Scan(&dayNumber, &name, &isRestDay, &exerciseID, &exerciseName, &defaultSets, &defaultReps)
		if err != nil {
			return nil, fmt.Errorf("scan plan day: %w", err)
		}

		if current == nil || current.DayNumber != dayNumber {
			if current != nil {
				days = append(days, *current)
			}
			current = &DayPlan{
				DayNumber: dayNumber,
				Name:      name,
				Exercises: []PlanExercise{},
				IsRestDay: isRestDay,
			}
		}

		if exerciseID.Valid {
			current.Exercises = append(current.Exercises, PlanExercise{
				ExerciseID:   exerciseID.String,
				ExerciseName: exerciseName.String,
				DefaultSets:  int(defaultSets.Int32),
				DefaultReps:  int(defaultReps.Int32),
			})
		}
	}

	if current != nil {
		days = append(days, *current)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return days, nil
}

func validatePlan(plan WeeklyPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("%w: plan id is empty", ErrInvalid)
	}
	if strings.TrimSpace(plan.Name) == "" {
		return fmt.Errorf("%w: plan name is empty", ErrInvalid)
	}
	if len(plan.Days) == 0 {
		return fmt.Errorf("%w: plan has no days", ErrInvalid)
	}
	for i, day := range plan.Days {
		if day.DayNumber != i+1 {
			return fmt.Errorf("%w: day numbers must be contiguous starting from 1, got %d at position %d",
				ErrInvalid, day.DayNumber, i)
		}
		if strings.TrimSpace(day.Name) == "" {
			return fmt.Errorf("%w: day %d has no name", ErrInvalid, day.DayNumber)
		}
		if day.IsRestDay && len(day.Exercises) > 0 {
			return fmt.Errorf("%w: rest day %d must not have exercises", ErrInvalid, day.DayNumber)
		}
		for _, ex := range day.Exercises {
			if ex.DefaultSets < 1 || ex.DefaultReps < 1 {
				return fmt.Errorf("%w: exercise %q on day %d must prescribe at least one set and one rep",
					ErrInvalid, ex.ExerciseName, day.DayNumber)
			}
		}
	}
	return nil
}
