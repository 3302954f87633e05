package recoverer

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/link-shortener/pkg/response"
)

func TestNew(t *testing.T) {
	t.Run("no panic", func(t *testing.T) {
		var buf bytes.Buffer
		mw := New(slog.New(slog.NewTextHandler(&buf, nil)))

		rec := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, buf.String())
	})

	t.Run("panic", func(t *testing.T) {
		var buf bytes.Buffer
		mw := New(slog.New(slog.NewTextHandler(&buf, nil)))

		rec := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp response.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, response.ServerErrorResponse, resp)

		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		mw := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(http.ErrAbortHandler)
			})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}
