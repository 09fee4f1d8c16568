package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Backup writes a consistent snapshot of the database into basePath using
// VACUUM INTO. The snapshot is a plain SQLite file that can be copied
// elsewhere or opened directly. Returns the path of the written file.
func (db *Database) Backup(ctx context.Context, basePath string) (string, error) {
	backupPath := filepath.Join(basePath,
		fmt.Sprintf("zenith-backup-%s.sqlite3", time.Now().UTC().Format("20060102-150405")))

	// VACUUM INTO fails if the target exists, which doubles as a guard
	// against overwriting an earlier backup.
	if _, err := db.ReadWrite.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", backupPath, err)
	}

	return backupPath, nil
}
