package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pwgsync/pwgsync/internal/common/logtrace"
)

func TestRequestLogger(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logtrace.RequestIdFromContext(r.Context())
	}))

	t.Run("reuses the client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ws.php?method=pwg.session.getStatus", nil)
		req.Header.Set(logtrace.RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rec.Header().Get(logtrace.RequestIDHeader))
	})

	t.Run("generates an id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ws.php", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(logtrace.RequestIDHeader))
	})
}

func TestPanicHandler(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "unable to process request")
	})

	t.Run("keeps a started response", func(t *testing.T) {
		h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			panic("late")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("passes through", func(t *testing.T) {
		h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})
}
