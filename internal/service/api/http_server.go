package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/app-runtime/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/app-runtime/internal/service/api/middleware"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	defaultReadTimeout       = 30 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second

	// defaultWriteTimeout 태스크 종료는 PDF 생성과 외부 발송을 기다리므로 넉넉하게 둔다.
	defaultWriteTimeout = 5 * time.Minute

	defaultRateLimitPerSecond = 20
	defaultRateLimitBurst     = 40
)

// HTTPServerConfig echo 서버 생성 옵션
type HTTPServerConfig struct {
	Debug bool

	// EnableHSTS TLS로 서비스할 때 Strict-Transport-Security 헤더를 보냅니다.
	EnableHSTS bool

	AllowOrigins []string
}

// NewHTTPServer 공통 미들웨어가 적용된 echo 인스턴스를 생성합니다.
//
// 미들웨어 순서: PanicRecovery → RequestID → Server 헤더 제거 → 접근 로그 → 속도 제한 → CORS → 보안 헤더
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = httputil.ErrorHandler

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Del(echo.HeaderServer)
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(appmiddleware.RateLimit(defaultRateLimitPerSecond, defaultRateLimitBurst))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderContentDisposition, appmiddleware.HeaderAccessKey},
	}))

	secure := middleware.DefaultSecureConfig
	if cfg.EnableHSTS {
		secure.HSTSMaxAge = 31536000
	}
	e.Use(middleware.SecureWithConfig(secure))

	return e
}
