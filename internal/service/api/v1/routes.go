// Package v1 생명주기 API v1 라우트를 등록합니다.
package v1

import (
	"github.com/darkkaiser/app-runtime/internal/service/api/middleware"
	"github.com/darkkaiser/app-runtime/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	maxJSONBodySize   = "1M"
	maxUploadBodySize = "100M"
)

// RegisterRoutes /api/v1 아래에 인스턴스와 프로세스 태스크 라우트를 등록합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, accessKeys []string) {
	v1 := e.Group("/api/v1", middleware.RequireAccessKey(accessKeys))

	jsonBody := []echo.MiddlewareFunc{
		echomiddleware.BodyLimit(maxJSONBodySize),
		middleware.RequireContentType(echo.MIMEApplicationJSON),
	}

	v1.POST("/instances", h.CreateInstanceHandler, jsonBody...)

	instance := v1.Group("/instances/:partyId/:guid")
	instance.GET("", h.GetInstanceHandler)
	instance.POST("/data", h.UploadDataHandler, echomiddleware.BodyLimit(maxUploadBodySize))

	tasks := instance.Group("/process/tasks/:taskId")
	tasks.POST("/start", h.StartTaskHandler, jsonBody...)
	tasks.POST("/can-end", h.CanEndTaskHandler, jsonBody...)
	tasks.POST("/end", h.EndTaskHandler, jsonBody...)
}
