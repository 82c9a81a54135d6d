package middleware

import (
	"mime"

	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentContentType = "api.middleware.content_type"

// RequireContentType 본문이 있는 요청의 미디어 타입이 expected와 다르면 415로 거부합니다.
// 본문이 없는 요청은 그대로 통과합니다.
func RequireContentType(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			actual := req.Header.Get(echo.HeaderContentType)
			if mediaType, _, err := mime.ParseMediaType(actual); err != nil || mediaType != expected {
				applog.WithComponentAndFields(componentContentType, applog.Fields{
					"method":     req.Method,
					"path":       req.URL.Path,
					"expected":   expected,
					"actual":     actual,
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				}).Warn("지원하지 않는 Content-Type 요청을 거부하였습니다")

				return ErrUnsupportedMediaType
			}

			return next(c)
		}
	}
}
