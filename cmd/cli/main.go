package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cracksmith/cracksmith/internal/buildinfo"
	"github.com/cracksmith/cracksmith/internal/client/cli"
	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/config"
	"github.com/cracksmith/cracksmith/internal/client/repositories/credentials"
	"github.com/cracksmith/cracksmith/internal/client/services"
	"github.com/cracksmith/cracksmith/internal/filex"
	"github.com/cracksmith/cracksmith/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, closeFn, err := newApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer closeFn()

	app.Run(ctx)

}

// newApp wires storage, transport and services. The session is resolved
// before the REPL starts.
func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cli.App, func(), error) {
	var (
		store credentials.Store
		db    *sql.DB
	)
	if cfg.DatabasePath == "" {
		store = credentials.NewMemoryStore()
	} else {
		if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
			return nil, nil, fmt.Errorf("error preparing database directory: %w", err)
		}
		var err error
		db, err = client.InitDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		store = credentials.NewSQLiteStore(db)
	}
	closeFn := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	api, err := client.NewHTTPClient(cfg.ServerURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithUserAgent("cracksmith-cli/"+cfg.ClientVersion),
	)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	session := services.NewSessionService(api, store, logger)
	api.SetTokenSource(session)

	account := services.NewAccountService(api, store, session, logger)
	app := cli.NewApp(cfg, cli.Services{
		Session: session,
		Jobs:    services.NewJobService(api, logger),
		Stats:   services.NewStatsService(api),
		Account: account,
		Admin:   services.NewAdminService(api, session, logger),
	}, logger)

	initCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if err := session.Initialize(initCtx); err != nil && !errors.Is(err, client.ErrStaleResult) {
		fmt.Println("Stored session could not be restored:", err)
	}
	if session.IsAuthenticated() {
		if err := account.TrackInstallation(initCtx, cfg.ClientVersion); err != nil {
			logger.Debug(ctx, "installation tracking failed", "error", err)
		}
	}

	return app, closeFn, nil
}
