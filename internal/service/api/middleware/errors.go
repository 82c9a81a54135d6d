// Package middleware API 서버에 적용되는 echo 미들웨어입니다.
package middleware

import (
	"net/http"

	"github.com/darkkaiser/app-runtime/internal/service/api/httputil"
	"github.com/labstack/echo/v4"
)

var (
	// ErrAccessKeyRequired 접근 키 헤더가 없음
	ErrAccessKeyRequired = httputil.NewUnauthorizedError("접근 키(X-Access-Key 헤더)는 필수입니다")

	// ErrInvalidAccessKey 등록되지 않은 접근 키
	ErrInvalidAccessKey = httputil.NewUnauthorizedError("접근 키가 유효하지 않습니다")

	// ErrRateLimitExceeded 요청 속도 제한 초과
	ErrRateLimitExceeded = httputil.NewTooManyRequestsError("요청이 너무 많습니다. 잠시 후 다시 시도해주세요")

	// ErrUnsupportedMediaType 허용하지 않는 Content-Type
	ErrUnsupportedMediaType = echo.NewHTTPError(http.StatusUnsupportedMediaType, "지원하지 않는 Content-Type 형식입니다")
)
