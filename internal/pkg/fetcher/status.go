package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
)

const maxBodySnippetBytes = 1024

// HTTPStatusError 허용되지 않은 상태 코드의 응답 정보를 담습니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string
	Cause       error
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}

// CheckResponseStatus 2xx(또는 allowed에 포함된) 상태 코드가 아니면 분류된 에러를 반환합니다.
// 에러를 반환할 때 본문 일부를 읽어 에러에 담지만, 본문을 닫지는 않습니다.
func CheckResponseStatus(resp *http.Response, allowed ...int) error {
	if len(allowed) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
	} else if slices.Contains(allowed, resp.StatusCode) {
		return nil
	}

	statusErr := &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     redactHeaders(resp.Header),
	}
	if resp.Request != nil {
		statusErr.URL = redactURL(resp.Request.URL)
	}
	if resp.Body != nil {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		statusErr.BodySnippet = string(snippet)
	}

	return apperrors.Wrap(statusErr, classifyStatus(resp.StatusCode), "HTTP 요청이 실패했습니다")
}

// classifyStatus 상태 코드를 에러 타입으로 변환합니다.
func classifyStatus(code int) apperrors.ErrorType {
	switch {
	case code == http.StatusNotFound:
		return apperrors.NotFound
	case code == http.StatusConflict:
		return apperrors.Conflict
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return apperrors.Timeout
	case code == http.StatusTooManyRequests, code >= 500:
		return apperrors.Unavailable
	default:
		return apperrors.ExternalService
	}
}
