package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second})
	defer f.Close()

	var out map[string]string
	require.NoError(t, DoJSON(context.Background(), f, http.MethodPost, srv.URL, map[string]string{"name": "ola"}, &out))
	assert.Equal(t, "ola", out["echo"])
}

func TestDoJSON_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		expected apperrors.ErrorType
	}{
		{http.StatusNotFound, apperrors.NotFound},
		{http.StatusBadRequest, apperrors.InvalidInput},
		{http.StatusConflict, apperrors.Conflict},
		{http.StatusForbidden, apperrors.ExternalService},
		{http.StatusNotImplemented, apperrors.Unavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("problem"))
			}))
			defer srv.Close()

			err := DoJSON(context.Background(), New(Config{Timeout: time.Second}), http.MethodGet, srv.URL, nil, nil)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.expected), "err: %v", err)

			var statusErr *HTTPStatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "problem", statusErr.BodySnippet)
		})
	}
}

func TestDoJSON_InvalidBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	var out map[string]any
	err := DoJSON(context.Background(), NewHTTPFetcher(time.Second), http.MethodGet, srv.URL, nil, &out)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExternalService))
}

func TestDoJSON_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := DoJSON(context.Background(), NewHTTPFetcher(time.Second), http.MethodGet, addr, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
}

func TestRetryFetcher(t *testing.T) {
	t.Parallel()

	t.Run("일시적 오류 후 성공", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		f := NewRetryFetcher(NewHTTPFetcher(time.Second), 3, time.Millisecond, 5*time.Millisecond)
		resp, err := Get(context.Background(), f, srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("재시도 소진 시 마지막 응답 반환", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		f := NewRetryFetcher(NewHTTPFetcher(time.Second), 2, time.Millisecond, 5*time.Millisecond)
		err := DoJSON(context.Background(), f, http.MethodGet, srv.URL, nil, nil)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("비멱등 메서드는 재시도하지 않음", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := NewRetryFetcher(NewHTTPFetcher(time.Second), 3, time.Millisecond, 5*time.Millisecond)
		err := DoJSON(context.Background(), f, http.MethodPost, srv.URL, map[string]int{"a": 1}, nil)
		require.Error(t, err)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("4xx는 재시도하지 않음", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := NewRetryFetcher(NewHTTPFetcher(time.Second), 3, time.Millisecond, 5*time.Millisecond)
		resp, err := Get(context.Background(), f, srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("대기 중 컨텍스트 취소", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "10")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		f := NewRetryFetcher(NewHTTPFetcher(time.Second), 3, time.Millisecond, time.Minute)
		_, err := Get(ctx, f, srv.URL)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNewRetryFetcher_Normalization(t *testing.T) {
	t.Parallel()

	f := NewRetryFetcher(NewHTTPFetcher(0), 100, 0, 0)
	assert.Equal(t, maxAllowedRetries, f.maxRetries)
	assert.Equal(t, defaultRetryDelay, f.minRetryDelay)
	assert.Equal(t, defaultMaxRetryDelay, f.maxRetryDelay)

	f = NewRetryFetcher(NewHTTPFetcher(0), -1, 5*time.Second, time.Second)
	assert.Equal(t, 0, f.maxRetries)
	assert.Equal(t, 5*time.Second, f.maxRetryDelay)
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	d, ok := parseRetryAfter("3")
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	d, ok = parseRetryAfter(time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat))
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), d)

	_, ok = parseRetryAfter("soon")
	assert.False(t, ok)

	_, ok = parseRetryAfter("")
	assert.False(t, ok)
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://user:pw@pdf.local/generate?access_token=abc&lang=nb")
	require.NoError(t, err)

	redacted := redactURL(u)
	assert.NotContains(t, redacted, "pw")
	assert.NotContains(t, redacted, "abc")
	assert.Contains(t, redacted, "lang=nb")
	assert.Empty(t, redactURL(nil))
}
