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

// sqliteExerciseRepository persists the exercise catalog.
type sqliteExerciseRepository struct {
	baseRepository
}

func newSQLiteExerciseRepository(db *sqlite.Database, logger *slog.Logger) *sqliteExerciseRepository {
	return &sqliteExerciseRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves an exercise by id.
func (r *sqliteExerciseRepository) Get(ctx context.Context, id string) (Exercise, error) {
	var (
		ex             Exercise
		muscleGroupStr string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, muscle_group, is_compound, notes_markdown, video_url
		FROM exercises
		WHERE id = ?`, id).
		Scan(&ex.ID, &ex.Name, &muscleGroupStr, &ex.IsCompound, &ex.NotesMarkdown, &ex.VideoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exercise{}, ErrNotFound
		}
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	ex.MuscleGroup = ParseMuscleGroup(muscleGroupStr)
	return ex, nil
}

// FindByName retrieves an exercise by case-insensitive name.
func (r *sqliteExerciseRepository) FindByName(ctx context.Context, name string) (Exercise, error) {
	var (
		ex             Exercise
		muscleGroupStr string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, muscle_group, is_compound, notes_markdown, video_url
		FROM exercises
		WHERE name = ? COLLATE NOCASE`, strings.TrimSpace(name)).
		Scan(&ex.ID, &ex.Name, &muscleGroupStr, &ex.IsCompound, &ex.NotesMarkdown, &ex.VideoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exercise{}, ErrNotFound
		}
		return Exercise{}, fmt.Errorf("query exercise by name: %w", err)
	}
	ex.MuscleGroup = ParseMuscleGroup(muscleGroupStr)
	return ex, nil
}

// List retrieves the full catalog ordered by name.
func (r *sqliteExerciseRepository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, muscle_group, is_compound, notes_markdown, video_url
		FROM exercises
		ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var (
			ex             Exercise
			muscleGroupStr string
		)
		err = rows.Scan(&ex.ID, &ex.Name, &muscleGroupStr, &ex.IsCompound, &ex.NotesMarkdown, &ex.VideoURL)
		if err != nil {
			return nil, fmt.Errorf("scan exercise row: %w", err)
		}
		ex.MuscleGroup = ParseMuscleGroup(muscleGroupStr)
		exercises = append(exercises, ex)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return exercises, nil
}

// Create adds a new exercise to the catalog.
func (r *sqliteExerciseRepository) Create(ctx context.Context, ex Exercise) (Exercise, error) {
	if err := validateExercise(ex); err != nil {
		return Exercise{}, err
	}

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercises (id, name, muscle_group, is_compound, notes_markdown, video_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Name, string(ex.MuscleGroup), ex.IsCompound, ex.NotesMarkdown, ex.VideoURL)
	if err != nil {
		return Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}

	return ex, nil
}

// Update applies updateFn to a catalog exercise and saves it back when the
// function reports a change.
func (r *sqliteExerciseRepository) Update(
	ctx context.Context,
	id string,
	updateFn func(ex *Exercise) (bool, error),
) error {
	ex, err := r.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get exercise for update: %w", err)
	}

	updated, err := updateFn(&ex)
	if err != nil {
		return fmt.Errorf("update function: %w", err)
	}

	if !updated {
		return nil
	}

	if err = validateExercise(ex); err != nil {
		return err
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		UPDATE exercises
		SET name = ?, muscle_group = ?, is_compound = ?, notes_markdown = ?, video_url = ?
		WHERE id = ?`,
		ex.Name, string(ex.MuscleGroup), ex.IsCompound, ex.NotesMarkdown, ex.VideoURL, id)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}

	return nil
}

// Delete removes a user-created exercise from the catalog. Workout history
// referencing the exercise is left untouched; the denormalised name on each
// entry keeps it readable. Deleting a missing id is a no-op.
func (r *sqliteExerciseRepository) Delete(ctx context.Context, id string) error {
	ex, err := r.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get exercise for delete: %w", err)
	}

	if !ex.UserOwned() {
		return fmt.Errorf("%w: %s", ErrNotOwned, id)
	}

	if _, err = r.db.ReadWrite.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}

	return nil
}

func validateExercise(ex Exercise) error {
	if ex.ID == "" {
		return fmt.Errorf("%w: exercise id is empty", ErrInvalid)
	}
	if strings.TrimSpace(ex.Name) == "" {
		return fmt.Errorf("%w: exercise name is empty", ErrInvalid)
	}
	return nil
}
