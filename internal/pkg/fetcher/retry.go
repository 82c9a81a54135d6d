package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

const (
	maxAllowedRetries = 10

	defaultRetryDelay    = time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

// ErrMaxRetriesExceeded 모든 재시도가 실패했을 때 원인 체인에 포함됩니다.
var ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")

// RetryFetcher 일시적인 실패(네트워크 에러, 429, 408, 5xx)를 지수 백오프와 Full Jitter로 재시도합니다.
// 멱등 메서드만 재시도하며, 서버가 Retry-After를 보내면 그 값을 우선합니다.
type RetryFetcher struct {
	delegate      Fetcher
	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher maxRetries는 0~10으로 보정되며, maxRetryDelay가 0이면 30초를 사용합니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	maxRetries = min(max(maxRetries, 0), maxAllowedRetries)

	if minRetryDelay <= 0 {
		minRetryDelay = defaultRetryDelay
	}
	if maxRetryDelay == 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		effectiveMaxRetries = 0
	}

	var lastErr error
	var lastResp *http.Response

	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			delay := f.backoff(i, lastResp)

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         redactURL(req.URL),
				"retry":       i,
				"max_retries": effectiveMaxRetries,
				"delay":       delay.String(),
			}).Warn("일시적 오류로 인해 요청 재시도를 준비합니다")

			if lastResp != nil {
				drainAndCloseBody(lastResp.Body)
				lastResp = nil
			}

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}

			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문을 다시 만들지 못했습니다")
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err != nil {
			if resp != nil {
				drainAndCloseBody(resp.Body)
			}
			if !isRetriable(req.Context(), err) {
				return nil, err
			}
			lastErr, lastResp = err, nil
			continue
		}

		if !isRetriableStatus(resp.StatusCode) {
			return resp, nil
		}
		lastErr, lastResp = nil, resp
	}

	if lastResp != nil {
		// 마지막 응답은 호출자가 상태 코드를 분류할 수 있도록 그대로 돌려준다.
		return lastResp, nil
	}
	return nil, errors.Join(ErrMaxRetriesExceeded, lastErr)
}

func (f *RetryFetcher) Close() error {
	return f.delegate.Close()
}

// backoff i번째 재시도 전 대기 시간을 계산합니다.
func (f *RetryFetcher) backoff(attempt int, lastResp *http.Response) time.Duration {
	if lastResp != nil {
		if d, ok := parseRetryAfter(lastResp.Header.Get("Retry-After")); ok {
			return min(d, f.maxRetryDelay)
		}
	}

	delay := min(f.minRetryDelay*time.Duration(1<<(attempt-1)), f.maxRetryDelay)
	delay = time.Duration(rand.Int64N(int64(delay) + 1))
	if delay < time.Millisecond {
		delay = f.minRetryDelay
	}
	return delay
}

func isRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		return false
	}
	return code >= 500
}

func isRetriable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var hostnameErr x509.HostnameError
	var authorityErr x509.UnknownAuthorityError
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &hostnameErr) || errors.As(err, &authorityErr) || errors.As(err, &invalidErr) {
		return false
	}

	return true
}

func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// parseRetryAfter 초 단위 정수 또는 HTTP 날짜 형식의 Retry-After 값을 해석합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if date, err := http.ParseTime(value); err == nil {
		return max(time.Until(date), 0), true
	}
	return 0, false
}
