package middleware

import (
	"fmt"
	"runtime"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentPanicRecovery = "api.middleware.panic_recovery"

const stackBufferSize = 4 << 10

// PanicRecovery 핸들러의 panic을 복구하여 Internal 에러로 응답하고 스택과 함께 기록합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				err, ok := r.(error)
				if ok {
					err = apperrors.Wrap(err, apperrors.Internal, "요청 처리 중 panic이 발생하였습니다")
				} else {
					err = apperrors.New(apperrors.Internal, fmt.Sprintf("요청 처리 중 panic이 발생하였습니다: %v", r))
				}

				stack := make([]byte, stackBufferSize)
				n := runtime.Stack(stack, false)

				applog.WithComponentAndFields(componentPanicRecovery, applog.Fields{
					"error":      err,
					"stack":      string(stack[:n]),
					"method":     c.Request().Method,
					"path":       c.Request().URL.Path,
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				}).Error("PANIC RECOVERED")

				c.Error(err)
			}()

			return next(c)
		}
	}
}
