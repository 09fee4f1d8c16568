package workout

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rishi1508/zenith/internal/errors"
	"github.com/rishi1508/zenith/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"
const dateFormat = time.DateOnly

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// ErrInvalid is returned when an entity fails validation on save.
var ErrInvalid = errors.NewSentinel("invalid")

// ErrNotOwned is returned when deleting a catalog exercise the user did not
// create.
var ErrNotOwned = errors.NewSentinel("exercise not owned by user")

// baseRepository holds the shared dependencies of the SQLite repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// repository bundles all aggregate repositories behind one factory.
type repository struct {
	workouts  *sqliteWorkoutRepository
	exercises *sqliteExerciseRepository
	plans     *sqlitePlanRepository
	settings  *sqliteSettingsRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	return &repository{
		workouts:  newSQLiteWorkoutRepository(db, logger),
		exercises: newSQLiteExerciseRepository(db, logger),
		plans:     newSQLitePlanRepository(db, logger),
		settings:  newSQLiteSettingsRepository(db, logger),
	}
}

func formatDate(date time.Time) string {
	return date.Format(dateFormat)
}

// formatTimestamp renders a nullable timestamp for storage.
func formatTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp parses a timestamp from a nullable database string.
func parseTimestamp(timestampStr sql.NullString) (*time.Time, error) {
	if !timestampStr.Valid {
		return nil, nil //nolint:nilnil // nil time.Time is expected when the string is NULL.
	}
	parsedTime, err := time.Parse(timestampFormat, timestampStr.String)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp format: %w", err)
	}
	return &parsedTime, nil
}
