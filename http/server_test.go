package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/cookbook"
	cookbookhttp "github.com/fwojciec/cookbook/http"
	"github.com/fwojciec/cookbook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// do sends a request to the server's handler and returns the recorder.
// An empty user sends no X-User-ID header.
func do(t *testing.T, s *cookbookhttp.Server, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(cookbookhttp.UserIDHeader, user)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) cookbookhttp.ErrorResponse {
	t.Helper()
	var resp cookbookhttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type pinger func(ctx context.Context) error

func (p pinger) PingContext(ctx context.Context) error { return p(ctx) }

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	t.Run("reports ok", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		rec := do(t, s, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("reports unavailable when the database is down", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		s.Pinger = pinger(func(context.Context) error { return errors.New("closed") })
		rec := do(t, s, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	var instrumented bool
	s := cookbookhttp.NewServer()
	s.Instrument = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			instrumented = true
			next.ServeHTTP(w, r)
		})
	}
	s.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
	assert.True(t, instrumented)
}

func TestServer_RequireUser(t *testing.T) {
	t.Parallel()

	s := cookbookhttp.NewServer()
	s.RecipeService = &mock.RecipeService{}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/recipes"},
		{http.MethodPost, "/api/recipes"},
		{http.MethodGet, "/api/categories"},
		{http.MethodPut, "/api/categories/rename"},
		{http.MethodPost, "/api/fetch-recipe"},
		{http.MethodGet, "/api/analytics"},
	} {
		rec := do(t, s, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Equal(t, cookbook.EUNAUTHORIZED, decodeError(t, rec).Code)
	}
}

func TestServer_Error(t *testing.T) {
	t.Parallel()

	failing := func(err error) *cookbookhttp.Server {
		s := cookbookhttp.NewServer()
		s.RecipeService = &mock.RecipeService{
			FindRecipesFn: func(ctx context.Context, filter cookbook.RecipeFilter) ([]*cookbook.Recipe, error) {
				return nil, err
			},
		}
		return s
	}

	t.Run("includes details for internal errors outside production", func(t *testing.T) {
		t.Parallel()

		rec := do(t, failing(errors.New("disk I/O error")), http.MethodGet, "/api/recipes", "user-1", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "Internal error", resp.Error)
		assert.Equal(t, cookbook.EINTERNAL, resp.Code)
		assert.Equal(t, "disk I/O error", resp.Details)
	})

	t.Run("hides details in production", func(t *testing.T) {
		t.Parallel()

		s := failing(errors.New("disk I/O error"))
		s.Production = true
		resp := decodeError(t, do(t, s, http.MethodGet, "/api/recipes", "user-1", nil))
		assert.Empty(t, resp.Details)
	})

	t.Run("logs the internal error and user in production", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := failing(errors.New("disk I/O error"))
		s.Production = true
		s.Logger = slog.New(slog.NewTextHandler(&buf, nil))

		do(t, s, http.MethodGet, "/api/recipes", "user-7", nil)

		out := buf.String()
		assert.Contains(t, out, `msg="http error"`)
		assert.Contains(t, out, `err="disk I/O error"`)
		assert.Contains(t, out, "user=user-7")
	})

	t.Run("maps application codes to status codes", func(t *testing.T) {
		t.Parallel()

		for code, status := range map[string]int{
			cookbook.EINVALID:  http.StatusBadRequest,
			cookbook.ENOTFOUND: http.StatusNotFound,
			cookbook.ECONFLICT: http.StatusConflict,
			cookbook.EUPSTREAM: http.StatusBadGateway,
		} {
			rec := do(t, failing(cookbook.Errorf(code, "boom")), http.MethodGet, "/api/recipes", "user-1", nil)
			assert.Equal(t, status, rec.Code, code)
			resp := decodeError(t, rec)
			assert.Equal(t, code, resp.Code)
			assert.Equal(t, "boom", resp.Error)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		s := cookbookhttp.NewServer()
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewBufferString("{"))
		req.Header.Set(cookbookhttp.UserIDHeader, "user-1")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, cookbook.EINVALID, decodeError(t, rec).Code)
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusUnauthorized, cookbookhttp.ErrorStatusCode(cookbook.EUNAUTHORIZED))
	assert.Equal(t, http.StatusInternalServerError, cookbookhttp.ErrorStatusCode("bogus"))
}

func TestServer_Open(t *testing.T) {
	t.Parallel()

	s := cookbookhttp.NewServer()
	s.Addr = "127.0.0.1:0"
	require.NoError(t, s.Open())
	defer s.Close()

	resp, err := http.Get(s.URL() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
