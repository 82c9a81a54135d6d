// Package fetcher 플랫폼 서비스 호출에 사용하는 HTTP 클라이언트 체인을 제공합니다.
//
// 요청은 RetryFetcher → HTTPFetcher 순서로 전달되며, 응답 상태 코드는 CheckResponseStatus가
// apperrors 타입으로 분류합니다.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
)

const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 인터페이스
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)

	// Close 유휴 커넥션 등 내부 리소스를 정리합니다.
	Close() error
}

// Config Fetcher 체인을 구성하는 정책
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// New 타임아웃이 적용된 HTTPFetcher를 재시도 정책으로 감싼 Fetcher를 생성합니다.
func New(cfg Config) Fetcher {
	return NewRetryFetcher(NewHTTPFetcher(cfg.Timeout), cfg.MaxRetries, cfg.RetryDelay, 0)
}

// Get 지정된 URL로 GET 요청을 전송합니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "HTTP 요청을 생성할 수 없습니다")
	}
	return f.Do(req)
}

// DoJSON body를 JSON으로 인코딩하여 요청을 보내고, 2xx 응답 본문을 out으로 디코딩합니다.
// body가 nil이면 본문 없이, out이 nil이면 응답 본문을 버립니다.
func DoJSON(ctx context.Context, f Fetcher, method, url string, body, out any) error {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return apperrors.Wrap(err, apperrors.Internal, "요청 본문을 JSON으로 인코딩하지 못했습니다")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "HTTP 요청을 생성할 수 없습니다")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.Do(req)
	if err != nil {
		return wrapTransportError(err, req)
	}
	defer drainAndCloseBody(resp.Body)

	if err := CheckResponseStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, apperrors.ExternalService, "응답 본문(%s)을 JSON으로 디코딩하지 못했습니다", redactURL(req.URL))
	}
	return nil
}

// wrapTransportError 네트워크 계층 에러를 분류합니다. 이미 AppError로 분류된 에러와
// 컨텍스트 취소는 그대로 반환합니다.
func wrapTransportError(err error, req *http.Request) error {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		return err
	}
	if req.Context().Err() != nil {
		return apperrors.Wrap(err, apperrors.Timeout, "요청이 취소되었거나 제한 시간을 초과했습니다")
	}
	return apperrors.Wrapf(err, apperrors.Unavailable, "%s 요청 중 네트워크 에러가 발생했습니다", redactURL(req.URL))
}
