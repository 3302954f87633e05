// Package app wires the configured components together and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/link-shortener/internal/config"
	"github.com/vadimbarashkov/link-shortener/internal/database/memory"
	"github.com/vadimbarashkov/link-shortener/internal/service"
	"github.com/vadimbarashkov/link-shortener/internal/shortcode"
	"github.com/vadimbarashkov/link-shortener/internal/validation"
	"github.com/vadimbarashkov/link-shortener/migrations"
	"github.com/vadimbarashkov/link-shortener/pkg/metrics"
	"github.com/vadimbarashkov/link-shortener/pkg/postgres"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/vadimbarashkov/link-shortener/internal/api/http"
	pgrepo "github.com/vadimbarashkov/link-shortener/internal/database/postgres"
)

const serviceName = "link-shortener"

// NewLogger builds the request logger from the log settings.
func NewLogger(cfg *config.Config, w io.Writer) *httplog.Logger {
	return httplog.NewLogger(serviceName, httplog.Options{
		JSON:             cfg.Log.JSON,
		LogLevel:         cfg.Log.SlogLevel(),
		Concise:          !cfg.Log.JSON,
		RequestHeaders:   cfg.Env != config.EnvProd,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": cfg.Env,
		},
		Writer: w,
	})
}

// newRepository opens the configured store. The returned func releases it.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.URLRepository, func() error, error) {
	const op = "app.newRepository"

	if strings.EqualFold(cfg.Storage.Driver, config.StorageMemory) {
		logger.Warn("using in-memory storage, data will be lost on restart")
		return memory.NewURLRepository(logger), func() error { return nil }, nil
	}

	dsn := cfg.Postgres.DSN()

	db, err := postgres.New(
		ctx,
		dsn,
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	if err := postgres.RunMigrations(migrations.FS, dsn); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return pgrepo.NewURLRepository(db), db.Close, nil
}

// NewHandler builds the service and its HTTP router on top of repo.
func NewHandler(cfg *config.Config, logger *httplog.Logger, repo service.URLRepository) (http.Handler, error) {
	const op = "app.NewHandler"

	gen, err := shortcode.NewGenerator(cfg.ShortCode.Length)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var prober service.Prober = validation.NoopProber{}
	if cfg.Reachability.Enabled {
		prober = validation.NewHTTPProber(cfg.Reachability.Timeout, logger.Logger)
	}

	urlSvc := service.NewURLService(
		repo,
		gen,
		validation.NewURLValidator(nil),
		prober,
		cfg.ShortCode.MaxRetries,
	)

	return myhttp.NewRouter(logger, urlSvc, myhttp.RouterConfig{
		BaseURL:        cfg.BaseURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        metrics.New(strings.ReplaceAll(serviceName, "-", "_")),
	}), nil
}

// Run starts the service and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	repo, closeRepo, err := newRepository(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeRepo()

	handler, err := NewHandler(cfg, logger, repo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        handler,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		if cfg.Env == config.EnvProd && cfg.HTTPServer.TLSEnabled() {
			logger.Info("starting https server", slog.String("addr", server.Addr))
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		} else {
			logger.Info("starting http server", slog.String("addr", server.Addr))
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down http server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
