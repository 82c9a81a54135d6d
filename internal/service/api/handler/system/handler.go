// Package system 인증 없이 호출되는 헬스체크와 버전 정보 핸들러입니다.
package system

import (
	"net/http"
	"sort"
	"time"

	"github.com/darkkaiser/app-runtime/internal/pkg/version"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const component = "api.system"

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck 의존 구성 요소의 상태를 확인합니다. nil이면 정상입니다.
type HealthCheck func() error

// DependencyStatus 의존 구성 요소 하나의 상태
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse GET /health 응답
type HealthResponse struct {
	Status       string                      `json:"status"`
	Uptime       int64                       `json:"uptime"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// Handler 시스템 핸들러
type Handler struct {
	buildInfo version.Info
	checks    map[string]HealthCheck
	startedAt time.Time
}

// NewHandler checks의 키는 응답에 표시되는 구성 요소 이름입니다.
func NewHandler(buildInfo version.Info, checks map[string]HealthCheck) *Handler {
	return &Handler{
		buildInfo: buildInfo,
		checks:    checks,
		startedAt: time.Now(),
	}
}

// HealthCheckHandler godoc
// @Summary 서버 헬스체크
// @Description 서버와 의존 구성 요소(storage, telegram 등)의 상태를 확인합니다.
// @Description 하나라도 비정상이면 전체 상태는 unhealthy이며 503으로 응답합니다.
// @Tags System
// @Produce json
// @Success 200 {object} system.HealthResponse "정상"
// @Failure 503 {object} system.HealthResponse "비정상 구성 요소 있음"
// @Router /health [get]
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := StatusHealthy
	deps := make(map[string]DependencyStatus, len(names))
	for _, name := range names {
		if err := h.checks[name](); err != nil {
			deps[name] = DependencyStatus{Status: StatusUnhealthy, Message: err.Error()}
			status = StatusUnhealthy
			continue
		}
		deps[name] = DependencyStatus{Status: StatusHealthy}
	}

	code := http.StatusOK
	if status != StatusHealthy {
		code = http.StatusServiceUnavailable
		applog.WithComponentAndFields(component, applog.Fields{
			"dependencies": deps,
			"remote_ip":    c.RealIP(),
		}).Warn("헬스체크: 비정상 구성 요소가 있습니다")
	}

	return c.JSON(code, HealthResponse{
		Status:       status,
		Uptime:       int64(time.Since(h.startedAt).Seconds()),
		Dependencies: deps,
	})
}

// VersionHandler godoc
// @Summary 빌드 정보 조회
// @Tags System
// @Produce json
// @Success 200 {object} version.Info "빌드 정보"
// @Router /version [get]
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo)
}
