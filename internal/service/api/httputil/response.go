// Package httputil API 핸들러와 미들웨어가 공유하는 표준 응답 형식과 에러 핸들러입니다.
package httputil

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse 모든 에러 응답의 본문입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// SuccessResponse 본문 없이 성공만 알리는 응답입니다.
type SuccessResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

func newHTTPError(code int, message string) *echo.HTTPError {
	return echo.NewHTTPError(code, ErrorResponse{ResultCode: code, Message: message})
}

// NewBadRequestError 400 Bad Request
func NewBadRequestError(message string) error {
	return newHTTPError(http.StatusBadRequest, message)
}

// NewUnauthorizedError 401 Unauthorized
func NewUnauthorizedError(message string) error {
	return newHTTPError(http.StatusUnauthorized, message)
}

// NewConflictError 409 Conflict
func NewConflictError(message string) error {
	return newHTTPError(http.StatusConflict, message)
}

// NewTooManyRequestsError 429 Too Many Requests
func NewTooManyRequestsError(message string) error {
	return newHTTPError(http.StatusTooManyRequests, message)
}

// Success 200 OK와 표준 성공 응답을 반환합니다.
func Success(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{ResultCode: 0, Message: "성공"})
}
