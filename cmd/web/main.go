package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/rishi1508/zenith/internal/envstruct"
	"github.com/rishi1508/zenith/internal/errors"
	"github.com/rishi1508/zenith/internal/flightrecorder"
	"github.com/rishi1508/zenith/internal/logging"
	"github.com/rishi1508/zenith/internal/pprofserver"
	"github.com/rishi1508/zenith/internal/sheet"
	"github.com/rishi1508/zenith/internal/sqlite"
	"github.com/rishi1508/zenith/internal/tools"
	"github.com/rishi1508/zenith/internal/workout"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	workoutService *workout.Service
	fetcher        *sheet.Fetcher
	queryTool      *tools.SecureQueryTool
	flightRecorder *flightrecorder.Service
	db             *sqlite.Database
	backupDir      string
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"ZENITH_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"ZENITH_SQLITE_URL" envDefault:"./zenith.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"ZENITH_PPROF_ADDR" envDefault:""`
	// BackupDir is the directory backup snapshots are written to.
	BackupDir string `env:"ZENITH_BACKUP_DIR" envDefault:"."`
	// TracesDir is the optional directory for timeout trace captures. Empty disables the flight recorder.
	TracesDir string `env:"ZENITH_TRACES_DIR" envDefault:""`
	// SheetTimeout bounds spreadsheet fetches for imports, e.g. "30s".
	SheetTimeout string `env:"ZENITH_SHEET_TIMEOUT" envDefault:"30s"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	sheetTimeout, err := time.ParseDuration(cfg.SheetTimeout)
	if err != nil {
		return errors.Wrap(err, "parse sheet timeout", slog.String("value", cfg.SheetTimeout))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var recorder *flightrecorder.Service
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:          logger,
			TracesDirectory: cfg.TracesDir,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		workoutService: workout.NewService(db, logger),
		fetcher:        sheet.NewFetcher(sheetTimeout),
		queryTool:      tools.NewSecureQueryTool(db.ReadOnly, logger),
		flightRecorder: recorder,
		db:             db,
		backupDir:      cfg.BackupDir,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
