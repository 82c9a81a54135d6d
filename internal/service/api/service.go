// Package api 생명주기 전이 요청을 받는 REST API 서버 서비스입니다.
//
// 라우트:
//
//	GET  /health
//	GET  /version
//	GET  /swagger/*
//	POST /api/v1/instances
//	GET  /api/v1/instances/:partyId/:guid
//	POST /api/v1/instances/:partyId/:guid/data?dataType=<id>
//	POST /api/v1/instances/:partyId/:guid/process/tasks/:taskId/{start,can-end,end}
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/app-runtime/internal/config"
	"github.com/darkkaiser/app-runtime/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/app-runtime/internal/service/api/v1"
	v1handler "github.com/darkkaiser/app-runtime/internal/service/api/v1/handler"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

const component = "api.service"

const shutdownTimeout = 10 * time.Second

// Service API 서버의 시작과 종료를 관리합니다.
type Service struct {
	cfg   config.APIConfig
	debug bool

	systemHandler *system.Handler
	v1Handler     *v1handler.Handler

	// alerts nil이면 서버 비정상 종료를 로그로만 남긴다.
	alerts contract.AlertSender

	running   bool
	runningMu sync.Mutex
}

// NewService 핸들러가 nil이면 panic입니다.
func NewService(cfg config.APIConfig, debug bool, systemHandler *system.Handler, v1Handler *v1handler.Handler, alerts contract.AlertSender) *Service {
	if systemHandler == nil || v1Handler == nil {
		panic("API 서비스 생성 실패: 시스템 핸들러와 v1 핸들러는 필수입니다")
	}

	return &Service{
		cfg:           cfg,
		debug:         debug,
		systemHandler: systemHandler,
		v1Handler:     v1Handler,
		alerts:        alerts,
	}
}

// Start HTTP 서버를 백그라운드에서 시작합니다. serviceStopCtx가 취소되면 graceful shutdown 후 serviceStopWG.Done()을 호출합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: API 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.run(serviceStopCtx, serviceStopWG, s.setupServer())

	applog.WithComponentAndFields(component, applog.Fields{
		"port": s.cfg.ListenPort,
		"tls":  s.cfg.TLSServer,
	}).Info("서비스 시작 완료: API 서비스가 정상적으로 초기화되었습니다")

	return nil
}

func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.debug,
		EnableHSTS:   s.cfg.TLSServer,
		AllowOrigins: s.cfg.CORS.AllowOrigins,
	})

	RegisterRoutes(e, s.systemHandler)
	v1.RegisterRoutes(e, s.v1Handler, s.cfg.AccessKeys)

	return e
}

func (s *Service) run(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup, e *echo.Echo) {
	defer serviceStopWG.Done()
	defer s.cleanup()

	serverDone := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", s.cfg.ListenPort)
		if s.cfg.TLSServer {
			serverDone <- e.StartTLS(addr, s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			serverDone <- e.Start(addr)
		}
	}()

	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(component).Info("종료 신호 수신: API 서버를 종료합니다")

	case err := <-serverDone:
		s.handleServerError(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("API 서버 종료 중 에러가 발생하였습니다")
	}

	<-serverDone
}

// handleServerError 종료 신호 없이 서버가 멈춘 경우를 처리합니다.
func (s *Service) handleServerError(err error) {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Warn("API 서버가 종료 신호 없이 중지되었습니다")
		return
	}

	message := "API 서버 실행 중 치명적인 오류가 발생하였습니다"
	applog.WithComponentAndFields(component, applog.Fields{
		"port":  s.cfg.ListenPort,
		"error": err,
	}).Error(message)

	if s.alerts != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if alertErr := s.alerts.Alert(ctx, fmt.Sprintf("%s\n\n%v", message, err)); alertErr != nil {
			applog.WithComponent(component).WithError(alertErr).Warn("운영 알림 전송 실패")
		}
	}
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("API 서비스 중지 완료")
}
