package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/drstein77/littlelemon/internal/api"
	"github.com/drstein77/littlelemon/internal/config"
	"github.com/drstein77/littlelemon/internal/controllers"
	"github.com/drstein77/littlelemon/internal/dbkeeper"
	"github.com/drstein77/littlelemon/internal/home"
	"github.com/drstein77/littlelemon/internal/logger"
	"github.com/drstein77/littlelemon/internal/middleware"
	"github.com/drstein77/littlelemon/internal/migrations"
	"github.com/drstein77/littlelemon/internal/preferences"
	"github.com/drstein77/littlelemon/internal/storage"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

type Server struct {
	mx     sync.Mutex
	srv    *http.Server
	ctx    context.Context
	option *config.Options
	keeper *dbkeeper.DBKeeper

	Log *logger.Logger
}

// NewServer creates a new Server instance with the provided context and options
func NewServer(ctx context.Context, option *config.Options) (*Server, error) {
	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Server{
		ctx:    ctx,
		option: option,
		Log:    nLogger,
	}, nil
}

// Serve wires the components, activates the home session and serves HTTP until Shutdown.
func (server *Server) Serve() error {
	option := server.option

	// a nil keeper means remote-only mode
	var (
		menuKeeper storage.Keeper
		prefKeeper preferences.Keeper
		pinger     controllers.Pinger
	)
	keeper := dbkeeper.NewDBKeeper(server.ctx, option.DataBaseDSN, server.Log.Named("db"))
	if keeper != nil {
		menuKeeper = keeper
		prefKeeper = keeper
		pinger = keeper
	}

	client := api.NewClient(option.MenuURL(), option.ImageBaseURL(), option.FetchTimeout(), server.Log.Named("api"))
	menuStorage := storage.NewMenuStorage(menuKeeper, client, server.Log.Named("store"))
	session := home.NewSession(menuStorage, client, server.Log.Named("home"))
	profile := preferences.NewService(prefKeeper, server.Log.Named("preferences"))

	// the first activation runs in the background; the view reports loading meanwhile
	go func() {
		if err := session.Activate(server.ctx); err != nil {
			server.Log.Warn("Initial menu load failed", zap.Error(err))
		}
	}()

	basecontr := controllers.NewBaseController(session, profile, pinger, server.Log.Named("http"))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(server.Log.Named("http")))
	r.Mount("/", basecontr.Route())

	srv := &http.Server{
		Addr:              option.RunAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.mx.Lock()
	if server.ctx.Err() != nil {
		server.mx.Unlock()
		if keeper != nil {
			keeper.Close()
		}
		return nil
	}
	server.srv = srv
	server.keeper = keeper
	server.mx.Unlock()

	server.Log.Info("Server started", zap.String("address", option.RunAddr()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Migrate applies schema migrations and returns.
func (server *Server) Migrate() error {
	return migrations.Up(server.option.DataBaseDSN(), server.option.MigrationsPath(), server.Log.Named("migrate"))
}

// Shutdown stops the HTTP server and closes the database pool.
// The server context must be cancelled first so a Serve that has not started yet returns.
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	server.mx.Lock()
	srv, keeper := server.srv, server.keeper
	server.mx.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			server.Log.Error("Server shutdown error", zap.Error(err))
		}
	}

	if keeper != nil {
		keeper.Close()
	}

	server.Log.Info("Server stopped")
	_ = server.Log.Sync()
}
