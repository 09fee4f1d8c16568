package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rishi1508/zenith/internal/sqlite"
)

// sqliteWorkoutRepository persists workouts. Save is a full upsert: the
// workout row and all of its entries and sets are deleted and reinserted in
// one transaction so a failed save never leaves a half-written workout.
type sqliteWorkoutRepository struct {
	baseRepository
}

func newSQLiteWorkoutRepository(db *sqlite.Database, logger *slog.Logger) *sqliteWorkoutRepository {
	return &sqliteWorkoutRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// List retrieves all workouts ordered by date descending.
func (r *sqliteWorkoutRepository) List(ctx context.Context) (_ []Workout, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, workout_date, name, workout_type, completed, started_at, completed_at, duration_min
		FROM workouts
		ORDER BY workout_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var workouts []Workout
	for rows.Next() {
		var workout Workout
		workout, err = r.scanWorkoutRow(rows)
		if err != nil {
			return nil, err
		}

		workout.Exercises, err = r.loadEntries(ctx, workout.ID)
		if err != nil {
			return nil, err
		}

		workouts = append(workouts, workout)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return workouts, nil
}

// Get retrieves a single workout by id.
func (r *sqliteWorkoutRepository) Get(ctx context.Context, id string) (Workout, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, workout_date, name, workout_type, completed, started_at, completed_at, duration_min
		FROM workouts
		WHERE id = ?`, id)

	workout, err := r.scanWorkoutRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workout{}, ErrNotFound
		}
		return Workout{}, err
	}

	workout.Exercises, err = r.loadEntries(ctx, workout.ID)
	if err != nil {
		return Workout{}, err
	}

	return workout, nil
}

// Save upserts a workout. The previous rows for the id are removed and the
// workout is reinserted in full within one transaction.
func (r *sqliteWorkoutRepository) Save(ctx context.Context, workout Workout) (err error) {
	if workout.ID == "" {
		return fmt.Errorf("%w: workout id is empty", ErrInvalid)
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

	if err = r.deleteTx(ctx, tx, workout.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (
			id, workout_date, name, workout_type, completed, started_at, completed_at, duration_min
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		workout.ID, formatDate(workout.Date), workout.Name, string(workout.Type),
		workout.Completed, formatTimestamp(workout.StartedAt), formatTimestamp(workout.CompletedAt),
		workout.DurationMin)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}

	for entryIdx, entry := range workout.Exercises {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workout_exercises (id, workout_id, exercise_id, exercise_name, position)
			VALUES (?, ?, ?, ?, ?)`,
			entry.ID, workout.ID, entry.ExerciseID, entry.ExerciseName, entryIdx)
		if err != nil {
			return fmt.Errorf("insert workout exercise: %w", err)
		}

		for setIdx, set := range entry.Sets {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO workout_sets (id, workout_exercise_id, set_number, weight, reps, completed)
				VALUES (?, ?, ?, ?, ?, ?)`,
				set.ID, entry.ID, setIdx+1, set.Weight, set.Reps, set.Completed)
			if err != nil {
				return fmt.Errorf("insert workout set: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a workout and its sets. Deleting an id that does not exist
// is a no-op.
func (r *sqliteWorkoutRepository) Delete(ctx context.Context, id string) (err error) {
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

// Update applies updateFn to a stored workout and saves it back when the
// function reports a change.
func (r *sqliteWorkoutRepository) Update(
	ctx context.Context,
	id string,
	updateFn func(workout *Workout) (bool, error),
) error {
	workout, err := r.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get workout for update: %w", err)
	}

	updated, err := updateFn(&workout)
	if err != nil {
		return fmt.Errorf("update function: %w", err)
	}

	if updated {
		if err = r.Save(ctx, workout); err != nil {
			return fmt.Errorf("save updated workout: %w", err)
		}
	}

	return nil
}

func (r *sqliteWorkoutRepository) deleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM workout_sets
		WHERE workout_exercise_id IN (SELECT id FROM workout_exercises WHERE workout_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("delete workout sets: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM workout_exercises WHERE workout_id = ?`, id); err != nil {
		return fmt.Errorf("delete workout exercises: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	return nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *sqliteWorkoutRepository) scanWorkoutRow(row rowScanner) (Workout, error) {
	var (
		workout        Workout
		dateStr        string
		typeStr        string
		startedAtStr   sql.NullString
		completedAtStr sql.NullString
	)

	err := row.Scan(&workout.ID, &dateStr, &workout.Name, &typeStr,
		&workout.Completed, &startedAtStr, &completedAtStr, &workout.DurationMin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workout{}, err
		}
		return Workout{}, fmt.Errorf("scan workout row: %w", err)
	}

	if workout.Date, err = time.Parse(dateFormat, dateStr); err != nil {
		return Workout{}, fmt.Errorf("parse workout date: %w", err)
	}
	workout.Type = Type(typeStr)

	if workout.StartedAt, err = parseTimestamp(startedAtStr); err != nil {
		return Workout{}, fmt.Errorf("parse started_at: %w", err)
	}
	if workout.CompletedAt, err = parseTimestamp(completedAtStr); err != nil {
		return Workout{}, fmt.Errorf("parse completed_at: %w", err)
	}

	return workout, nil
}

// loadEntries fetches the exercise entries and their sets for a workout.
func (r *sqliteWorkoutRepository) loadEntries(ctx context.Context, workoutID string) (_ []ExerciseEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT we.id, we.exercise_id, we.exercise_name,
		       ws.id, ws.weight, ws.reps, ws.completed
		FROM workout_exercises we
		LEFT JOIN workout_sets ws ON ws.workout_exercise_id = we.id
		WHERE we.workout_id = ?
		ORDER BY we.position, ws.set_number`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("query workout exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var entries []ExerciseEntry
	var current *ExerciseEntry

	for rows.Next() {
		var (
			entryID      string
			exerciseID   string
			exerciseName string
			setID        sql.NullString
			weight       sql.NullFloat64
			reps         sql.NullInt32
			completed    sql.NullBool
		)
		if err = rows.Scan(&entryID, &exerciseID, &exerciseName, &setID, &weight, &reps, &completed); err != nil {
			return nil, fmt.Errorf("scan workout entry: %w", err)
		}

		if current == nil || current.ID != entryID {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &ExerciseEntry{
				ID:           entryID,
				ExerciseID:   exerciseID,
				ExerciseName: exerciseName,
				Sets:         []Set{},
			}
		}

		// LEFT JOIN yields a NULL set row for entries without sets.
		if setID.Valid {
			current.Sets = append(current.Sets, Set{
				ID:        setID.String,
				Weight:    weight.Float64,
				Reps:      int(reps.Int32),
				Completed: completed.Bool,
			})
		}
	}

	if current != nil {
		entries = append(entries, *current)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
