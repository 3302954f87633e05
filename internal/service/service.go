package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/models"
)

// DefaultMaxRetries is the number of short codes tried before ShortenURL gives up.
const DefaultMaxRetries = 20

var (
	// ErrMaxRetriesExceeded is returned when every generated short code collided with an existing one.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrInvalidURL is returned when the submitted URL is not a well-formed absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrUnreachableURL is returned when the submitted URL did not answer with a success status.
	ErrUnreachableURL = errors.New("url is not reachable")
)

// URLRepository defines the record store used by the service.
type URLRepository interface {
	// Create inserts a new record. It fails with database.ErrShortCodeExists
	// if the short code is taken.
	Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// GetByShortCode atomically increments the access count and returns the updated record.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetStats returns a record without changing it.
	GetStats(ctx context.Context, shortCode string) (*models.URL, error)

	// List returns every record in store order.
	List(ctx context.Context) ([]*models.URL, error)

	// Update replaces the original URL of an existing record.
	Update(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// Delete removes a record and returns it.
	Delete(ctx context.Context, shortCode string) (*models.URL, error)
}

// CodeGenerator produces candidate short codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// URLValidator checks URL syntax.
type URLValidator interface {
	IsValidURL(rawURL string) bool
}

// Prober checks whether a URL is live.
type Prober interface {
	IsReachable(ctx context.Context, rawURL string) bool
}

// URLService implements the lifecycle of shortened URLs on top of a URLRepository.
type URLService struct {
	repo       URLRepository
	gen        CodeGenerator
	validator  URLValidator
	prober     Prober
	maxRetries int
}

// NewURLService creates a URLService. A non-positive maxRetries falls back to DefaultMaxRetries.
func NewURLService(repo URLRepository, gen CodeGenerator, validator URLValidator, prober Prober, maxRetries int) *URLService {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &URLService{
		repo:       repo,
		gen:        gen,
		validator:  validator,
		prober:     prober,
		maxRetries: maxRetries,
	}
}

func (s *URLService) checkURL(ctx context.Context, originalURL string) error {
	if !s.validator.IsValidURL(originalURL) {
		return ErrInvalidURL
	}

	if !s.prober.IsReachable(ctx, originalURL) {
		return ErrUnreachableURL
	}

	return nil
}

// ShortenURL validates originalURL and stores it under a freshly generated
// short code. Uniqueness is decided by the store: a collision on insert
// makes the service try a new code, up to maxRetries attempts.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	if err := s.checkURL(ctx, originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := 0; i < s.maxRetries; i++ {
		shortCode, err := s.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.repo.Create(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode returns the record for shortCode and counts the visit.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

func (s *URLService) ListURLs(ctx context.Context) ([]*models.URL, error) {
	const op = "service.URLService.ListURLs"

	urls, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// ModifyURL points an existing short code at a new URL. The new URL goes
// through the same checks as in ShortenURL; short code and access count are kept.
func (s *URLService) ModifyURL(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ModifyURL"

	if err := s.checkURL(ctx, originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.repo.Update(ctx, shortCode, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify url: %w", op, err)
	}

	return url, nil
}

func (s *URLService) DeleteURL(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.DeleteURL"

	url, err := s.repo.Delete(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	return url, nil
}

// GetURLStats returns the record for shortCode without counting a visit.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.repo.GetStats(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}
