// Package memory implements the URL record store in process memory. It is
// meant for local runs and tests; records are lost on restart.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/models"
)

// URLRepository keeps records keyed by short code. Every mutation happens
// under the write lock, so the short code check and the insert form one
// atomic step and access count increments are never lost.
type URLRepository struct {
	mu     sync.RWMutex
	urls   map[string]models.URL
	order  []string
	nextID int64
	logger *slog.Logger
}

func NewURLRepository(logger *slog.Logger) *URLRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &URLRepository{
		urls:   make(map[string]models.URL),
		logger: logger,
	}
}

func (r *URLRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.memory.URLRepository.Create"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[shortCode]; ok {
		r.logger.Warn("short code collision", slog.String("op", op), slog.String("short_code", shortCode))
		return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
	}

	r.nextID++
	now := time.Now().UTC()

	url := models.URL{
		ID:          r.nextID,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.urls[shortCode] = url
	r.order = append(r.order, shortCode)

	return &url, nil
}

// GetByShortCode increments the access counter and returns the updated record.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetByShortCode"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	url.AccessCount++
	r.urls[shortCode] = url

	return &url, nil
}

func (r *URLRepository) GetStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetStats"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return &url, nil
}

// List returns the records in insertion order.
func (r *URLRepository) List(ctx context.Context) ([]*models.URL, error) {
	const op = "database.memory.URLRepository.List"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]*models.URL, 0, len(r.order))
	for _, shortCode := range r.order {
		url := r.urls[shortCode]
		urls = append(urls, &url)
	}

	return urls, nil
}

func (r *URLRepository) Update(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.memory.URLRepository.Update"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	url.OriginalURL = originalURL
	url.UpdatedAt = time.Now().UTC()
	r.urls[shortCode] = url

	return &url, nil
}

func (r *URLRepository) Delete(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.memory.URLRepository.Delete"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	delete(r.urls, shortCode)
	for i, code := range r.order {
		if code == shortCode {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return &url, nil
}
