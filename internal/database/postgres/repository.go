package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/models"
)

type urlRecord struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	AccessCount int64     `db:"access_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *urlRecord) toModel() *models.URL {
	return &models.URL{
		ID:          r.ID,
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		AccessCount: r.AccessCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// URLRepository stores URL records in the urls table. The short_code column
// carries a unique constraint, so concurrent inserts of the same code fail
// with database.ErrShortCodeExists instead of producing duplicates.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"
	const query = `INSERT INTO urls(short_code, original_url)
		VALUES ($1, $2)
		RETURNING id, short_code, original_url, access_count, created_at, updated_at`

	var rec urlRecord

	if err := r.db.GetContext(ctx, &rec, query, shortCode, originalURL); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.toModel(), nil
}

// GetByShortCode increments the access counter and returns the updated record
// in a single statement.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"
	const query = `UPDATE urls
		SET access_count = access_count + 1
		WHERE short_code = $1
		RETURNING id, short_code, original_url, access_count, created_at, updated_at`

	var rec urlRecord

	if err := r.db.GetContext(ctx, &rec, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.toModel(), nil
}

func (r *URLRepository) GetStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetStats"
	const query = `SELECT id, short_code, original_url, access_count, created_at, updated_at
		FROM urls
		WHERE short_code = $1`

	var rec urlRecord

	if err := r.db.GetContext(ctx, &rec, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.toModel(), nil
}

// List returns every record in creation order.
func (r *URLRepository) List(ctx context.Context) ([]*models.URL, error) {
	const op = "database.postgres.URLRepository.List"
	const query = `SELECT id, short_code, original_url, access_count, created_at, updated_at
		FROM urls
		ORDER BY id`

	var recs []urlRecord

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	urls := make([]*models.URL, 0, len(recs))
	for i := range recs {
		urls = append(urls, recs[i].toModel())
	}

	return urls, nil
}

func (r *URLRepository) Update(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Update"
	const query = `UPDATE urls
		SET original_url = $1, updated_at = NOW()
		WHERE short_code = $2
		RETURNING id, short_code, original_url, access_count, created_at, updated_at`

	var rec urlRecord

	if err := r.db.GetContext(ctx, &rec, query, originalURL, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update url record: %w", op, err)
	}

	return rec.toModel(), nil
}

// Delete removes the record and returns it as it was right before deletion.
func (r *URLRepository) Delete(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Delete"
	const query = `DELETE FROM urls
		WHERE short_code = $1
		RETURNING id, short_code, original_url, access_count, created_at, updated_at`

	var rec urlRecord

	if err := r.db.GetContext(ctx, &rec, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to delete url record: %w", op, err)
	}

	return rec.toModel(), nil
}
