package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nkiryanov/triply/internal/api"
	"github.com/nkiryanov/triply/internal/db"
	"github.com/nkiryanov/triply/internal/localstore"
	"github.com/nkiryanov/triply/internal/logger"
	"github.com/nkiryanov/triply/internal/session"
	"github.com/nkiryanov/triply/internal/tokenstore"
	"github.com/nkiryanov/triply/internal/tokenstore/postgres"
	"github.com/nkiryanov/triply/internal/weather"
)

// App holds everything a command may need
type App struct {
	Config *Config
	Logger logger.Logger

	Tokens  tokenstore.Store
	Local   localstore.Store
	Client  *api.Client
	Session *session.Controller
	Weather *weather.Client

	out     io.Writer
	getenv  func(string) string
	closers []func()
}

func NewApp(ctx context.Context, cfg *Config, out io.Writer) (*App, error) {
	l, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while creating logger. Err: %w", err)
	}

	app := &App{Config: cfg, Logger: l, out: out}

	if err := app.openStores(ctx); err != nil {
		app.Close()
		return nil, err
	}

	apiCfg := api.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout}

	// Refresh exchange goes through plain client: the session transport must not call itself
	raw := api.NewClient(apiCfg, nil, l)
	refresher := session.NewRefresher(session.RefresherConfig{}, app.Tokens, raw.Auth.Refresh, l)
	transport := session.NewTransport(nil, app.Tokens, refresher, l)

	app.Client = api.NewClient(apiCfg, transport, l)
	app.Session = session.NewController(
		session.ControllerConfig{RevokeOnLogout: cfg.RevokeOnLogout},
		app.Client.Auth,
		app.Tokens,
		l,
	)
	refresher.OnSessionEnded(app.Session.SessionEnded)

	app.Weather = weather.New(weather.Config{
		APIKey:  cfg.WeatherAPIKey,
		BaseURL: cfg.WeatherAPIURL,
	}, l)

	return app, nil
}

func (a *App) openStores(ctx context.Context) error {
	switch a.Config.Store {
	case StoreMemory:
		a.Local = localstore.NewMemory()
		a.Tokens = tokenstore.NewMemory()
		return nil

	case StorePostgres:
		pool, err := db.ConnectAndMigrate(ctx, a.Config.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("error while connecting to token database. Err: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.Tokens = postgres.New(pool, a.Config.Profile)

		// Checklists stay on the machine
		local, err := a.fileStore()
		if err != nil {
			return err
		}
		a.Local = local
		return nil

	default:
		local, err := a.fileStore()
		if err != nil {
			return err
		}
		a.Local = local
		a.Tokens = tokenstore.NewLocal(local)
		return nil
	}
}

func (a *App) fileStore() (*localstore.File, error) {
	if err := os.MkdirAll(a.Config.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("error while creating data directory. Err: %w", err)
	}
	path := filepath.Join(a.Config.DataDir, a.Config.Profile+".json")
	a.Logger.Debug("Using file store", "path", path)
	return localstore.NewFile(path), nil
}

// Print queued session notices, e.g. session ended while command was running
func (a *App) flushNotices() {
	for _, n := range a.Session.Notices() {
		fmt.Fprintf(a.out, "[%s] %s\n", n.Level, n.Message)
		if n.Redirect != "" {
			fmt.Fprintf(a.out, "Run 'triply %s' to continue.\n", n.Redirect)
		}
	}
}

// Restore stored session, command must not run anonymously
func (a *App) requireSession(ctx context.Context) error {
	if err := a.Session.RestoreSession(ctx); err != nil {
		return err
	}
	if _, err := a.Session.RequireUser(); err != nil {
		return fmt.Errorf("%w: run 'triply login' first", err)
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
