package httputil

import (
	"errors"
	"net/http"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const componentErrorHandler = "api.error_handler"

var statusByType = map[apperrors.ErrorType]int{
	apperrors.InvalidInput:    http.StatusBadRequest,
	apperrors.NotFound:        http.StatusNotFound,
	apperrors.Conflict:        http.StatusConflict,
	apperrors.DataIntegrity:   http.StatusUnprocessableEntity,
	apperrors.ExternalService: http.StatusBadGateway,
	apperrors.Timeout:         http.StatusServiceUnavailable,
	apperrors.Unavailable:     http.StatusServiceUnavailable,
}

// joinedPriority errors.Join으로 묶인 에러에서 응답 코드를 고를 때의 우선순위
var joinedPriority = []apperrors.ErrorType{
	apperrors.Unavailable,
	apperrors.Timeout,
	apperrors.ExternalService,
	apperrors.DataIntegrity,
	apperrors.Conflict,
	apperrors.NotFound,
	apperrors.InvalidInput,
}

var genericMessages = map[int]string{
	http.StatusNotFound:            "요청한 리소스를 찾을 수 없습니다",
	http.StatusInternalServerError: "내부 서버 오류가 발생했습니다",
	http.StatusBadGateway:          "외부 서비스 호출에 실패했습니다",
	http.StatusServiceUnavailable:  "서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요",
}

// StatusCode 애플리케이션 에러를 HTTP 상태 코드로 변환합니다.
//
// 가장 바깥의 AppError 타입을 우선하며, errors.Join으로 묶인 에러는 joinedPriority 순서로
// 처음 발견되는 타입을 사용합니다. 분류할 수 없으면 500입니다.
func StatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if code, ok := statusByType[appErr.Type()]; ok {
			return code
		}
		return http.StatusInternalServerError
	}

	for _, t := range joinedPriority {
		if apperrors.Is(err, t) {
			return statusByType[t]
		}
	}

	return http.StatusInternalServerError
}

// ErrorHandler echo 전역 에러 핸들러입니다. 모든 에러를 ErrorResponse JSON으로 응답합니다.
func ErrorHandler(err error, c echo.Context) {
	code, message := resolve(err)
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  requestID,
	}
	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(componentErrorHandler, fields).Error("HTTP 요청 처리 중 서버 오류가 발생하였습니다")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(componentErrorHandler, fields).Warn("HTTP 요청이 거부되었습니다")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
		RequestID:  requestID,
	})
}

func resolve(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := genericMessages[he.Code]
		switch m := he.Message.(type) {
		case ErrorResponse:
			message = m.Message
		case string:
			if he.Code != http.StatusNotFound {
				message = m
			}
		}
		if message == "" {
			message = http.StatusText(he.Code)
		}
		return he.Code, message
	}

	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		return code, genericMessages[code]
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return code, appErr.Message()
	}
	return code, http.StatusText(code)
}
