package middleware

import (
	"net/url"
	"strconv"
	"time"

	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentHTTPLogger = "api.access"

// sensitiveQueryParams 접근 로그에 남기기 전에 가리는 쿼리 파라미터
var sensitiveQueryParams = []string{"access_key", "api_key", "token", "password", "secret"}

// HTTPLogger 요청마다 한 줄의 구조화된 접근 로그를 남깁니다.
// 핸들러 에러는 여기서 c.Error로 응답까지 처리하므로 기록되는 상태 코드는 최종 값입니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			latency := time.Since(start)

			path := req.URL.Path
			if path == "" {
				path = "/"
			}
			bytesIn := req.Header.Get(echo.HeaderContentLength)
			if bytesIn == "" {
				bytesIn = "0"
			}

			applog.WithComponentAndFields(componentHTTPLogger, applog.Fields{
				"method":        req.Method,
				"path":          path,
				"route":         c.Path(),
				"uri":           maskSensitiveQueryParams(req.RequestURI),
				"remote_ip":     c.RealIP(),
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"bytes_in":      bytesIn,
				"bytes_out":     strconv.FormatInt(res.Size, 10),
				"latency_human": latency.String(),
				"request_id":    res.Header().Get(echo.HeaderXRequestID),
			}).Info("HTTP 요청")

			return nil
		}
	}
}

func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.RawQuery == "" {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range sensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, applog.Mask(q.Get(param)))
			masked = true
		}
	}
	if !masked {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
