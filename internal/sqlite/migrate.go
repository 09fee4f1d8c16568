package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"
)

// migrateTo reshapes the live database to match the schema in schema.sql.
//
// Instead of numbered migration scripts we diff the live schema against the
// wanted one and apply the difference:
//
// 1. Drop tables that no longer exist,
// 2. Create tables that are new,
// 3. Rebuild changed tables with the 12-step procedure from
//    https://www.sqlite.org/lang_altertable.html#otheralter,
// 4. Synchronise triggers and indexes.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	var err error
	start := time.Now()

	detach, err := db.attachWantedSchema(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach wanted schema: %w", err)
	}
	defer detach()

	// Step 1: Disable foreign key validation for the duration of the migration.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign key validation: %w", err)
	}
	// Step 12: Re-enable foreign key validation. Failing to do so risks
	// corrupting data, so we bail out of the whole process if it fails.
	defer func() {
		if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			err = fmt.Errorf("re-enable foreign key validation: %w", err)
			db.logger.LogAttrs(ctx, slog.LevelError, "exit to avoid data corruption", slog.Any("error", err))
			if err = syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
				os.Exit(1)
			}
		}
	}()

	// Step 2: Start transaction.
	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	// Steps 3-7: tables.
	if err = db.syncTables(ctx, tx); err != nil {
		return fmt.Errorf("sync tables: %w", err)
	}

	// Step 8: triggers and indexes.
	if err = db.syncSchemaObjects(ctx, tx, schemaTypeTrigger); err != nil {
		return fmt.Errorf("sync triggers: %w", err)
	}
	if err = db.syncSchemaObjects(ctx, tx, schemaTypeIndex); err != nil {
		return fmt.Errorf("sync indexes: %w", err)
	}

	// Step 9 (views) is skipped since we define none.
	// Step 10: Check foreign key constraints.
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}

	// Step 11: Commit. Step 12 runs in the defer above.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))

	return nil
}

// attachWantedSchema initialises a throwaway in-memory database with the
// wanted schema and attaches it as "wanted" so the migration queries can diff
// against it. The returned function detaches it and must be called once the
// migration is done.
func (db *Database) attachWantedSchema(ctx context.Context, schemaDefinition string) (func(), error) {
	var err error
	wantedDSN := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	wantedDB, err := sql.Open("sqlite3", wantedDSN)
	if err != nil {
		return nil, fmt.Errorf("open wanted schema database: %w", err)
	}
	defer func() {
		if err = wantedDB.Close(); err != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close wanted schema database",
				slog.Any("error", err))
		}
	}()
	if _, err = wantedDB.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("execute wanted schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS wanted", wantedDSN); err != nil {
		return nil, fmt.Errorf("attach wanted schema database: %w", err)
	}
	return func() {
		if _, err = db.ReadWrite.ExecContext(ctx, "DETACH DATABASE wanted"); err != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach wanted schema database", slog.Any("error", err))
		}
	}, nil
}

// rollback returns a deferrable that rolls tx back, tolerating a committed
// transaction.
func (db *Database) rollback(ctx context.Context, tx *sql.Tx) func() {
	return func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
		}
	}
}

// syncTables brings the live tables in line with the wanted schema.
func (db *Database) syncTables(ctx context.Context, tx *sql.Tx) error {
	// Step 3: the wanted schema is already attached; drop and create the
	// trivial cases first.
	dropped, err := db.droppedTables(ctx, tx)
	if err != nil {
		return fmt.Errorf("query dropped tables: %w", err)
	}
	for _, table := range dropped {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
			return fmt.Errorf("DROP TABLE %s: %w", table, err)
		}
	}

	added, err := db.addedTableSQLs(ctx, tx)
	if err != nil {
		return fmt.Errorf("query added tables: %w", err)
	}
	for _, createSQL := range added {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", createSQL))
		if _, err = tx.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Tables whose definition changed go through the full 12-step rebuild.
	changed, err := db.queryDiffs(ctx, tx, `SELECT live.name AS changed_table,
       live.sql   AS live_sql,
       wanted.sql AS wanted_sql
FROM sqlite_schema AS live
         JOIN wanted.sqlite_schema AS wanted ON live.name = wanted.name AND live.type = wanted.type
WHERE live.type = 'table'
  AND live.name NOT LIKE 'sqlite_%'
  AND live.name NOT LIKE '_litestream_%'
  -- Renaming a table quotes its name in sqlite_schema, so strip quotes before comparing.
  AND REPLACE(live.sql, '"', '') <> REPLACE(wanted.sql, '"', '')
`)
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}

	for _, table := range changed {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "rebuilding table",
			slog.String("table", table.name),
			slog.String("live_sql", table.liveSQL),
			slog.String("wanted_sql", table.wantedSQL))

		// Step 4: Create the wanted table under a temporary name.
		tempName := table.name + "_migration_temp"
		tempSQL := strings.Replace(table.wantedSQL, table.name, tempName, 1)
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table under temporary name",
			slog.String("query", tempSQL))
		if _, err = tx.ExecContext(ctx, tempSQL); err != nil {
			return fmt.Errorf("create table under temporary name %s: %w", tempSQL, err)
		}

		// Step 5: Copy the columns both versions share.
		shared, err := db.sharedColumns(ctx, tx, table.name)
		if err != nil {
			return fmt.Errorf("query shared columns: %w", err)
		}
		columns := strings.Join(shared, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", //nolint: gosec // we trust the query.
			tempName, columns, columns, table.name)
		db.logger.LogAttrs(ctx, slog.LevelInfo, "copying data", slog.String("query", copySQL))
		if _, err = tx.ExecContext(ctx, copySQL); err != nil {
			return fmt.Errorf("copy data: %w", err)
		}

		// Step 6: Drop the old table.
		dropSQL := fmt.Sprintf("DROP TABLE %s;", table.name)
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping old table", slog.String("query", dropSQL))
		if _, err = tx.ExecContext(ctx, dropSQL); err != nil {
			return fmt.Errorf("drop old table: %w", err)
		}

		// Step 7: Rename the new table into place.
		renameSQL := fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", tempName, table.name)
		db.logger.LogAttrs(ctx, slog.LevelInfo, "renaming new table", slog.String("query", renameSQL))
		if _, err = tx.ExecContext(ctx, renameSQL); err != nil {
			return fmt.Errorf("rename new table: %w", err)
		}
	}
	return nil
}

// droppedTables lists tables present live but absent from the wanted schema.
func (db *Database) droppedTables(ctx context.Context, tx *sql.Tx) ([]string, error) {
	tables, err := db.queryStrings(ctx, tx, `SELECT live.name AS dropped_table
FROM sqlite_schema AS live
         LEFT JOIN wanted.sqlite_schema AS wanted ON live.name = wanted.name AND live.type = wanted.type
WHERE live.type = 'table'
  AND wanted.type IS NULL
  AND live.name NOT LIKE 'sqlite_%'
  AND live.name NOT LIKE '_litestream_%'`)
	if err != nil {
		return nil, fmt.Errorf("query strings: %w", err)
	}
	return tables, nil
}

// addedTableSQLs lists CREATE TABLE statements for tables in the wanted schema
// that do not exist live.
func (db *Database) addedTableSQLs(ctx context.Context, tx *sql.Tx) ([]string, error) {
	sqls, err := db.queryStrings(ctx, tx, `SELECT wanted.sql AS sql
FROM sqlite_schema AS live RIGHT JOIN wanted.sqlite_schema AS wanted
ON live.name=wanted.name AND live.type=wanted.type
WHERE wanted.type = 'table'
  AND live.type IS NULL
  AND wanted.name NOT LIKE 'sqlite_%'
  AND wanted.name NOT LIKE '_litestream_%'`)
	if err != nil {
		return nil, fmt.Errorf("query strings: %w", err)
	}
	return sqls, nil
}

func (db *Database) sharedColumns(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	// Double-quote the names so columns named after SQLite keywords survive.
	columns, err := db.queryStrings(ctx, tx, `SELECT '"' || wanted.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
JOIN PRAGMA_TABLE_INFO(:table_name, 'wanted') AS wanted ON wanted.name = live.name`,
		sql.Named("table_name", table))
	if err != nil {
		return nil, fmt.Errorf("query strings: %w", err)
	}
	return columns, nil
}

// queryStrings collects a single string column from a query.
func (db *Database) queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			db.logger.Error("could not close rows", slog.Any("error", err))
		}
	}()
	var results []string
	for rows.Next() {
		var result string
		if err = rows.Scan(&result); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// schemaDiff pairs an object's live definition with its wanted one.
type schemaDiff struct {
	name      string
	liveSQL   string
	wantedSQL string
}

// queryDiffs lists objects whose definition differs between the live and
// wanted schemas. The query must return name, live SQL and wanted SQL.
func (db *Database) queryDiffs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]schemaDiff, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			db.logger.Error("could not close rows", slog.Any("error", err))
		}
	}()
	var diffs []schemaDiff
	for rows.Next() {
		var diff schemaDiff
		if err = rows.Scan(&diff.name, &diff.liveSQL, &diff.wantedSQL); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		diffs = append(diffs, diff)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return diffs, nil
}

type schemaType string

const (
	schemaTypeTrigger schemaType = "trigger"
	schemaTypeIndex   schemaType = "index"
)

// syncSchemaObjects brings all live objects of typ in line with the wanted
// schema. Changed objects are dropped and recreated since triggers and indexes
// carry no data.
func (db *Database) syncSchemaObjects(ctx context.Context, tx *sql.Tx, typ schemaType) error {
	logger := db.logger.With(slog.String("schemaType", string(typ)))

	dropped, err := db.queryStrings(ctx, tx, `SELECT live.name AS dropped
FROM sqlite_schema AS live
         LEFT JOIN wanted.sqlite_schema AS wanted ON live.name = wanted.name AND live.type = wanted.type
WHERE live.type = ?
  AND wanted.type IS NULL
  AND live.name NOT LIKE 'sqlite_%'`, typ)
	if err != nil {
		return fmt.Errorf("query dropped %s: %w", string(typ), err)
	}
	for _, name := range dropped {
		dropSQL := fmt.Sprintf("DROP %s %s;", strings.ToUpper(string(typ)), name)
		logger.LogAttrs(ctx, slog.LevelInfo, "dropping", slog.String("name", name), slog.String("query", dropSQL))
		if _, err = tx.ExecContext(ctx, dropSQL); err != nil {
			return fmt.Errorf("drop %s %s: %w", string(typ), name, err)
		}
	}

	added, err := db.queryStrings(ctx, tx, `SELECT wanted.sql AS added_sql
FROM sqlite_schema AS live
         RIGHT JOIN wanted.sqlite_schema AS wanted ON live.name = wanted.name AND live.type = wanted.type
WHERE wanted.type = ?
  AND live.type IS NULL
  AND wanted.name NOT LIKE 'sqlite_%'`, typ)
	if err != nil {
		return fmt.Errorf("query added %s: %w", string(typ), err)
	}
	for _, createSQL := range added {
		logger.LogAttrs(ctx, slog.LevelInfo, "creating", slog.String("query", createSQL))
		if _, err = tx.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("create %s: %w", string(typ), err)
		}
	}

	changed, err := db.queryDiffs(ctx, tx, `SELECT live.name  AS changed,
       live.sql   AS live_sql,
       wanted.sql AS wanted_sql
FROM sqlite_schema AS live
         JOIN wanted.sqlite_schema AS wanted ON live.name = wanted.name AND live.type = wanted.type
WHERE live.type = ?
  AND live.name NOT LIKE 'sqlite_%'
  AND live.sql <> wanted.sql`, typ)
	if err != nil {
		return fmt.Errorf("query changed %s: %w", string(typ), err)
	}

	for _, diff := range changed {
		logger.LogAttrs(ctx, slog.LevelInfo, "recreating",
			slog.String("name", diff.name),
			slog.String("live_sql", diff.liveSQL),
			slog.String("wanted_sql", diff.wantedSQL))

		dropSQL := fmt.Sprintf("DROP %s %s;", strings.ToUpper(string(typ)), diff.name)
		logger.LogAttrs(ctx, slog.LevelInfo, "dropping changed",
			slog.String("name", diff.name), slog.String("query", dropSQL))
		if _, err = tx.ExecContext(ctx, dropSQL); err != nil {
			return fmt.Errorf("drop changed %s %s: %w", string(typ), diff.name, err)
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "creating changed", slog.String("query", diff.wantedSQL))
		if _, err = tx.ExecContext(ctx, diff.wantedSQL); err != nil {
			return fmt.Errorf("create changed %s %s: %w", string(typ), diff.name, err)
		}
	}
	return nil
}
