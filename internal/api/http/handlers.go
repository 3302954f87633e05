package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/models"
	"github.com/vadimbarashkov/link-shortener/internal/service"
	"github.com/vadimbarashkov/link-shortener/pkg/metrics"
	"github.com/vadimbarashkov/link-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type urlRequest struct {
	URL string `json:"url" validate:"required"`
}

type urlRecordResponse struct {
	URL   string `json:"url"`
	Short string `json:"short"`
	Views int64  `json:"views"`
}

func toURLRecordResponse(url *models.URL) urlRecordResponse {
	return urlRecordResponse{
		URL:   url.OriginalURL,
		Short: url.ShortCode,
		Views: url.AccessCount,
	}
}

type shortenResponse struct {
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
}

type updateResponse struct {
	Message    string            `json:"message"`
	UpdatedURL urlRecordResponse `json:"updatedUrl"`
}

type deleteResponse struct {
	Message    string            `json:"message"`
	DeletedURL urlRecordResponse `json:"deletedUrl"`
}

// shortURLBuilder returns a function that turns a short code into a fully
// qualified URL, either under baseURL or under the request's own origin.
func shortURLBuilder(baseURL string) func(r *http.Request, shortCode string) string {
	baseURL = strings.TrimRight(baseURL, "/")

	return func(r *http.Request, shortCode string) string {
		if baseURL != "" {
			return baseURL + "/" + shortCode
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		return fmt.Sprintf("%s://%s/%s", scheme, r.Host, shortCode)
	}
}

// decodeURLRequest reads and validates the request body. It writes the error
// response itself and reports whether the handler may continue.
func decodeURLRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate) (urlRequest, bool) {
	var req urlRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return req, false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequestResponse)
		return req, false
	}

	if err := validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return req, false
	}

	return req, true
}

// renderError maps service and store errors to responses. Anything
// unexpected is logged on the request log entry and reported generically.
func renderError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidURLResponse)
	case errors.Is(err, service.ErrUnreachableURL):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.UnreachableURLResponse)
	case errors.Is(err, database.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ResourceNotFoundResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}

func handleShortenURL(svc URLService, validate *validator.Validate, shortURL func(*http.Request, string) string) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeURLRequest(w, r, validate)
		if !ok {
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.URL)
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, shortenResponse{
			OriginalURL: url.OriginalURL,
			ShortURL:    shortURL(r, url.ShortCode),
		})
	}
}

// handleRedirect counts the visit and redirects to the original URL.
func handleRedirect(svc URLService, m *metrics.Metrics) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		if m != nil {
			m.IncRedirects()
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusFound)
	}
}

func handleListURLs(svc URLService) http.HandlerFunc {
	const op = "api.http.handleListURLs"

	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := svc.ListURLs(r.Context())
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		resp := make([]urlRecordResponse, 0, len(urls))
		for _, url := range urls {
			resp = append(resp, toURLRecordResponse(url))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, resp)
	}
}

func handleModifyURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleModifyURL"
	const successMsg = "URL updated successfully"

	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeURLRequest(w, r, validate)
		if !ok {
			return
		}

		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ModifyURL(r.Context(), shortCode, req.URL)
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, updateResponse{
			Message:    successMsg,
			UpdatedURL: toURLRecordResponse(url),
		})
	}
}

func handleDeleteURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeleteURL"
	const successMsg = "URL deleted successfully"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.DeleteURL(r.Context(), shortCode)
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, deleteResponse{
			Message:    successMsg,
			DeletedURL: toURLRecordResponse(url),
		})
	}
}

func handleGetURLStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.GetURLStats(r.Context(), shortCode)
		if err != nil {
			renderError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toURLRecordResponse(url))
	}
}
