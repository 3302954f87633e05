// Package http exposes the URL shortener over HTTP: shorten, redirect, list,
// update and delete, plus health, metrics and API docs endpoints.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/link-shortener/docs"
	"github.com/vadimbarashkov/link-shortener/internal/models"
	"github.com/vadimbarashkov/link-shortener/pkg/metrics"
	"github.com/vadimbarashkov/link-shortener/pkg/middleware/recoverer"

	httpSwagger "github.com/swaggo/http-swagger"
)

// URLService defines the business operations the handlers rely on.
type URLService interface {
	// ShortenURL validates the URL and stores it under a new unique short code.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// ResolveShortCode returns the record for the short code and counts the visit.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// ListURLs returns every stored record.
	ListURLs(ctx context.Context) ([]*models.URL, error)

	// ModifyURL replaces the URL behind an existing short code.
	ModifyURL(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// DeleteURL removes the record and returns it.
	DeleteURL(ctx context.Context, shortCode string) (*models.URL, error)

	// GetURLStats returns the record without counting a visit.
	GetURLStats(ctx context.Context, shortCode string) (*models.URL, error)
}

// RouterConfig holds the optional settings of the router.
type RouterConfig struct {
	// BaseURL prefixes short codes in shortened URLs. When empty the scheme
	// and host of the incoming request are used.
	BaseURL string
	// AllowedOrigins is the CORS origin list. Empty means any origin.
	AllowedOrigins []string
	// Metrics enables the metrics middleware and the /metrics endpoint.
	Metrics *metrics.Metrics
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/ping", handlePing)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", handleSwaggerSpec)

	validate := getValidate()
	shortURL := shortURLBuilder(cfg.BaseURL)

	r.Post("/shorten", handleShortenURL(urlSvc, validate, shortURL))
	r.Get("/fetch/urls", handleListURLs(urlSvc))

	r.Route("/{shortCode}", func(r chi.Router) {
		r.Get("/", handleRedirect(urlSvc, cfg.Metrics))
		r.Put("/", handleModifyURL(urlSvc, validate))
		r.Delete("/", handleDeleteURL(urlSvc))
		r.Get("/stats", handleGetURLStats(urlSvc))
	})

	return r
}

func handleSwaggerSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(docs.SwaggerSpec)
}
