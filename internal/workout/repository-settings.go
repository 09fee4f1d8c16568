package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rishi1508/zenith/internal/sqlite"
)

// sqliteSettingsRepository persists the single settings row.
type sqliteSettingsRepository struct {
	baseRepository
}

func newSQLiteSettingsRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSettingsRepository {
	return &sqliteSettingsRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves the settings, falling back to defaults when nothing has been
// saved yet.
func (r *sqliteSettingsRepository) Get(ctx context.Context) (Settings, error) {
	var settings Settings
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT active_plan_id, last_day_number, theme, weekly_goal
		FROM settings
		WHERE id = 1`).
		Scan(&settings.ActivePlanID, &settings.LastDayNumber, &settings.Theme, &settings.WeeklyGoal)

	if errors.Is(err, sql.ErrNoRows) {
		return Settings{
			ActivePlanID:  "",
			LastDayNumber: 0,
			Theme:         "dark",
			WeeklyGoal:    DefaultWeeklyGoal,
		}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}

	if settings.WeeklyGoal < 1 {
		settings.WeeklyGoal = DefaultWeeklyGoal
	}

	return settings, nil
}

// Set saves the settings.
func (r *sqliteSettingsRepository) Set(ctx context.Context, settings Settings) error {
	if settings.WeeklyGoal < 1 {
		return fmt.Errorf("%w: weekly goal must be at least 1", ErrInvalid)
	}

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO settings (id, active_plan_id, last_day_number, theme, weekly_goal)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			active_plan_id = excluded.active_plan_id,
			last_day_number = excluded.last_day_number,
			theme = excluded.theme,
			weekly_goal = excluded.weekly_goal`,
		settings.ActivePlanID, settings.LastDayNumber, settings.Theme, settings.WeeklyGoal)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}
