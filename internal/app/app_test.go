package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/link-shortener/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("STORAGE_DRIVER", config.StorageMemory)
	t.Setenv("REACHABILITY_ENABLED", "false")
	t.Setenv("BASE_URL", "https://sho.rt")

	cfg, err := config.Load("")
	require.NoError(t, err)

	return cfg
}

func TestNewHandler(t *testing.T) {
	cfg := testConfig(t)
	logger := NewLogger(cfg, io.Discard)

	repo, closeRepo, err := newRepository(context.Background(), cfg, logger.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeRepo() })

	handler, err := NewHandler(cfg, logger, repo)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	e := httpexpect.Default(t, server.URL)

	shortURL := e.POST("/shorten").
		WithJSON(map[string]string{"url": "https://example.com"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		Value("shortUrl").String().
		HasPrefix("https://sho.rt/").
		Raw()

	assert.Len(t, strings.TrimPrefix(shortURL, "https://sho.rt/"), cfg.ShortCode.Length)

	e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body().Contains("link_shortener_http_requests_total")
}

func TestNewHandler_InvalidShortCodeLength(t *testing.T) {
	cfg := testConfig(t)
	cfg.ShortCode.Length = 2

	_, err := NewHandler(cfg, NewLogger(cfg, io.Discard), nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.JSON = true
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)

	logger.Info("hidden")
	logger.Warn("visible", slog.String("key", "value"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"visible"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}
