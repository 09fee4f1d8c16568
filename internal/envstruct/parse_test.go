package envstruct_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rishi1508/zenith/internal/envstruct"
)

type serverConfig struct {
	Addr      string `env:"ZENITH_ADDR" envDefault:"localhost:8080"`
	SqliteURL string `env:"ZENITH_SQLITE_URL" envDefault:"./zenith.sqlite3"`
	BackupDir string `env:"ZENITH_BACKUP_DIR"`
	Unrelated string
	Counter   int
}

func lookupFromMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestPopulate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want serverConfig
	}{
		{
			name: "all variables set",
			env: map[string]string{
				"ZENITH_ADDR":       "localhost:0",
				"ZENITH_SQLITE_URL": ":memory:",
				"ZENITH_BACKUP_DIR": "/var/backups",
			},
			want: serverConfig{Addr: "localhost:0", SqliteURL: ":memory:", BackupDir: "/var/backups"},
		},
		{
			name: "defaults fill the gaps",
			env:  map[string]string{"ZENITH_BACKUP_DIR": "."},
			want: serverConfig{Addr: "localhost:8080", SqliteURL: "./zenith.sqlite3", BackupDir: "."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg serverConfig
			if err := envstruct.Populate(&cfg, lookupFromMap(tt.env)); err != nil {
				t.Fatalf("populate: %v", err)
			}
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPopulateUntaggedFieldsUntouched(t *testing.T) {
	cfg := serverConfig{Unrelated: "keep", Counter: 7}
	env := map[string]string{"ZENITH_BACKUP_DIR": "."}
	if err := envstruct.Populate(&cfg, lookupFromMap(env)); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if cfg.Unrelated != "keep" || cfg.Counter != 7 {
		t.Errorf("untagged fields changed: %+v", cfg)
	}
}

func TestPopulateMissingVariable(t *testing.T) {
	var cfg serverConfig
	err := envstruct.Populate(&cfg, lookupFromMap(nil))
	if !errors.Is(err, envstruct.ErrEnvNotSet) {
		t.Errorf("error: got %v, want ErrEnvNotSet", err)
	}
}

func TestPopulateRejectsBadTargets(t *testing.T) {
	lookup := lookupFromMap(nil)

	if err := envstruct.Populate(nil, lookup); !errors.Is(err, envstruct.ErrInvalidValue) {
		t.Errorf("nil target: got %v, want ErrInvalidValue", err)
	}
	if err := envstruct.Populate(struct{}{}, lookup); !errors.Is(err, envstruct.ErrInvalidValue) {
		t.Errorf("non-pointer target: got %v, want ErrInvalidValue", err)
	}

	var badType struct {
		Port int `env:"ZENITH_PORT"`
	}
	if err := envstruct.Populate(&badType, lookup); !errors.Is(err, envstruct.ErrInvalidValue) {
		t.Errorf("non-string field: got %v, want ErrInvalidValue", err)
	}
}
