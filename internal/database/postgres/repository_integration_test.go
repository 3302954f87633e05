//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/link-shortener/internal/config"
	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/database/postgres"
	"github.com/vadimbarashkov/link-shortener/migrations"

	pgpkg "github.com/vadimbarashkov/link-shortener/pkg/postgres"
)

func setupPostgres(t testing.TB) config.Postgres {
	t.Helper()

	ctx := context.Background()

	pgUser := "test"
	pgPassword := "test"
	pgDB := "link_shortener"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	pgHost, err := pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	pgPort, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return config.Postgres{
		User:     pgUser,
		Password: pgPassword,
		Host:     pgHost,
		Port:     pgPort.Int(),
		DB:       pgDB,
		SSLMode:  "disable",
	}
}

func setupURLRepository(t testing.TB) (*postgres.URLRepository, *sqlx.DB) {
	t.Helper()

	cfg := setupPostgres(t)

	db, err := pgpkg.New(context.Background(), cfg.DSN(), pgpkg.WithMaxOpenConns(20))
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database: %v", err)
		}
	})

	if err := pgpkg.RunMigrations(migrations.FS, cfg.DSN()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return postgres.NewURLRepository(db), db
}

func truncate(t testing.TB, db *sqlx.DB) {
	t.Helper()

	if _, err := db.Exec(`TRUNCATE TABLE urls RESTART IDENTITY`); err != nil {
		t.Fatalf("Failed to truncate urls: %v", err)
	}
}

func TestURLRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()
	repo, db := setupURLRepository(t)

	t.Run("create and resolve", func(t *testing.T) {
		truncate(t, db)

		created, err := repo.Create(ctx, "abc1234", "https://example.com")
		require.NoError(t, err)
		assert.Zero(t, created.AccessCount)
		assert.NotZero(t, created.ID)

		for i := 1; i <= 2; i++ {
			url, err := repo.GetByShortCode(ctx, "abc1234")
			require.NoError(t, err)
			assert.Equal(t, int64(i), url.AccessCount)
		}

		stats, err := repo.GetStats(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.AccessCount)
	})

	t.Run("short code exists", func(t *testing.T) {
		truncate(t, db)

		_, err := repo.Create(ctx, "abc1234", "https://example.com")
		require.NoError(t, err)

		url, err := repo.Create(ctx, "abc1234", "https://example.org")
		assert.ErrorIs(t, err, database.ErrShortCodeExists)
		assert.Nil(t, url)
	})

	t.Run("url not found", func(t *testing.T) {
		truncate(t, db)

		_, err := repo.GetByShortCode(ctx, "missing")
		assert.ErrorIs(t, err, database.ErrURLNotFound)

		_, err = repo.GetStats(ctx, "missing")
		assert.ErrorIs(t, err, database.ErrURLNotFound)

		_, err = repo.Update(ctx, "missing", "https://example.com")
		assert.ErrorIs(t, err, database.ErrURLNotFound)

		_, err = repo.Delete(ctx, "missing")
		assert.ErrorIs(t, err, database.ErrURLNotFound)
	})

	t.Run("update keeps short code and views", func(t *testing.T) {
		truncate(t, db)

		_, err := repo.Create(ctx, "abc1234", "https://example.com")
		require.NoError(t, err)
		_, err = repo.GetByShortCode(ctx, "abc1234")
		require.NoError(t, err)

		url, err := repo.Update(ctx, "abc1234", "https://example.org")
		require.NoError(t, err)
		assert.Equal(t, "abc1234", url.ShortCode)
		assert.Equal(t, "https://example.org", url.OriginalURL)
		assert.Equal(t, int64(1), url.AccessCount)
	})

	t.Run("list and delete", func(t *testing.T) {
		truncate(t, db)

		urls, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, urls)

		_, err = repo.Create(ctx, "abc1234", "https://example.com")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "def5678", "https://example.org")
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", deleted.OriginalURL)

		urls, err = repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, urls, 1)
		assert.Equal(t, "def5678", urls[0].ShortCode)
	})

	t.Run("concurrent resolves are all counted", func(t *testing.T) {
		truncate(t, db)

		_, err := repo.Create(ctx, "abc1234", "https://example.com")
		require.NoError(t, err)

		const n = 50

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.GetByShortCode(ctx, "abc1234")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stats, err := repo.GetStats(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, int64(n), stats.AccessCount)
	})
}
