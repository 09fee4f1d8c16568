package sqlite

import (
	"log/slog"
	"testing"

	"github.com/rishi1508/zenith/internal/testhelpers"
)

// TestMigrateTo applies a sequence of schema definitions to the same database
// and verifies the end state with probe queries.
func TestMigrateTo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		schemas []string
		probes  []string
		wantErr bool
	}{
		{
			name:    "empty schema",
			schemas: []string{""},
			probes:  []string{"SELECT * FROM sqlite_schema"},
		},
		{
			name:    "create table",
			schemas: []string{"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT)"},
			probes: []string{
				"INSERT INTO sessions_log (note) VALUES ('push day')",
				"SELECT * FROM sessions_log",
			},
		},
		{
			name: "drop table",
			schemas: []string{
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT)",
				"",
			},
			probes:  []string{"INSERT INTO sessions_log (note) VALUES ('push day')"},
			wantErr: true,
		},
		{
			name: "add column",
			schemas: []string{
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY)",
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT)",
			},
			probes: []string{"INSERT INTO sessions_log (note) VALUES ('push day')"},
		},
		{
			name: "remove column",
			schemas: []string{
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY)",
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT)",
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY)",
			},
			probes:  []string{"INSERT INTO sessions_log (note) VALUES ('push day')"},
			wantErr: true,
		},
		{
			name: "create index",
			schemas: []string{
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT); CREATE INDEX sessions_log_note ON sessions_log (note)",
			},
			probes: []string{"DROP INDEX sessions_log_note"},
		},
		{
			name: "drop index",
			schemas: []string{
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT); CREATE INDEX sessions_log_note ON sessions_log (note)",
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT)",
			},
			probes:  []string{"DROP INDEX sessions_log_note"},
			wantErr: true,
		},
		{
			name: "change index",
			schemas: []string{
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT); CREATE INDEX sessions_log_note ON sessions_log (note)",
				"CREATE TABLE sessions_log (id INTEGER PRIMARY KEY, note TEXT); CREATE INDEX sessions_log_note ON sessions_log (id, note)",
			},
			probes: []string{"DROP INDEX sessions_log_note"},
		},
		{
			name: "create trigger",
			schemas: []string{
				`CREATE TABLE sessions_log ( id INTEGER PRIMARY KEY, note TEXT );
                 CREATE TRIGGER sessions_log_guard AFTER INSERT ON sessions_log BEGIN SELECT RAISE ( FAIL, 'blocked' ); END;`,
			},
			probes:  []string{"INSERT INTO sessions_log (note) VALUES ('push day')"},
			wantErr: true,
		},
		{
			name: "drop trigger",
			schemas: []string{
				`CREATE TABLE sessions_log ( id INTEGER PRIMARY KEY, note TEXT );
                 CREATE TRIGGER sessions_log_guard AFTER INSERT ON sessions_log BEGIN SELECT RAISE ( FAIL, 'blocked' ); END;`,
				"CREATE TABLE sessions_log ( id INTEGER PRIMARY KEY, note TEXT )",
			},
			probes: []string{"INSERT INTO sessions_log (note) VALUES ('push day')"},
		},
		{
			name: "change trigger",
			schemas: []string{
				`CREATE TABLE sessions_log ( id INTEGER PRIMARY KEY, note TEXT );
                 CREATE TRIGGER sessions_log_guard AFTER INSERT ON sessions_log BEGIN SELECT RAISE ( FAIL, 'blocked' ); END;`,
				`CREATE TABLE sessions_log ( id INTEGER PRIMARY KEY, note TEXT );
                 CREATE TRIGGER sessions_log_guard AFTER INSERT ON sessions_log BEGIN SELECT 1; END;`,
			},
			probes: []string{"INSERT INTO sessions_log (note) VALUES ('push day')"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
			db, err := connect(ctx, ":memory:", logger)
			if err != nil {
				t.Fatalf("connect: %v", err)
			}
			t.Cleanup(func() {
				if err := db.Close(); err != nil {
					t.Errorf("close database: %v", err)
				}
			})

			for _, schema := range tt.schemas {
				logger.LogAttrs(ctx, slog.LevelInfo, "migrating", slog.String("schema", schema))
				if err := db.migrateTo(ctx, schema); err != nil {
					t.Fatalf("migrateTo: %v", err)
				}
			}

			for _, probe := range tt.probes {
				logger.LogAttrs(ctx, slog.LevelInfo, "probing", slog.String("query", probe))
				_, err := db.ReadWrite.ExecContext(ctx, probe)
				if tt.wantErr && err == nil {
					t.Errorf("expected error for query %q", probe)
				}
				if !tt.wantErr && err != nil {
					t.Errorf("query %q: %v", probe, err)
				}
			}
		})
	}
}
