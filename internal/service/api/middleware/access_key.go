package middleware

import (
	"crypto/subtle"

	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentAccessKey = "api.middleware.access_key"

// HeaderAccessKey 생명주기 API 호출자가 접근 키를 전달하는 헤더
const HeaderAccessKey = "X-Access-Key"

// RequireAccessKey X-Access-Key 헤더가 등록된 접근 키 중 하나와 일치해야 다음 핸들러로 진행합니다.
// 등록된 키가 없으면 인증을 수행하지 않습니다.
func RequireAccessKey(accessKeys []string) echo.MiddlewareFunc {
	keys := make([][]byte, 0, len(accessKeys))
	for _, k := range accessKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if len(keys) == 0 {
			return next
		}

		return func(c echo.Context) error {
			presented := c.Request().Header.Get(HeaderAccessKey)
			if presented == "" {
				return ErrAccessKeyRequired
			}

			matched := 0
			for _, k := range keys {
				matched |= subtle.ConstantTimeCompare([]byte(presented), k)
			}
			if matched != 1 {
				applog.WithComponentAndFields(componentAccessKey, applog.Fields{
					"access_key": applog.Mask(presented),
					"method":     c.Request().Method,
					"path":       c.Path(),
					"remote_ip":  c.RealIP(),
				}).Warn("인증 실패: 등록되지 않은 접근 키입니다")

				return ErrInvalidAccessKey
			}

			return next(c)
		}
	}
}
