package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	_ "github.com/darkkaiser/app-runtime/docs"
	"github.com/darkkaiser/app-runtime/internal/config"
	"github.com/darkkaiser/app-runtime/internal/pkg/fetcher"
	"github.com/darkkaiser/app-runtime/internal/pkg/version"
	"github.com/darkkaiser/app-runtime/internal/service"
	"github.com/darkkaiser/app-runtime/internal/service/alert"
	"github.com/darkkaiser/app-runtime/internal/service/api"
	"github.com/darkkaiser/app-runtime/internal/service/api/handler/system"
	v1handler "github.com/darkkaiser/app-runtime/internal/service/api/v1/handler"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/internal/service/eformidling"
	"github.com/darkkaiser/app-runtime/internal/service/lifecycle"
	"github.com/darkkaiser/app-runtime/internal/service/platform"
	"github.com/darkkaiser/app-runtime/internal/service/resource"
	"github.com/darkkaiser/app-runtime/internal/service/scheduler"
	"github.com/darkkaiser/app-runtime/internal/service/storage"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	log "github.com/sirupsen/logrus"
)

// @title App Runtime API
// @version 1.0.0
// @description 인스턴스 생성과 프로세스 태스크 시작, 종료 가능 여부 확인, 종료를 처리하는 애플리케이션 런타임의 REST API입니다.
// @description
// @description ## 태스크 흐름
// @description 1. POST /api/v1/instances 로 인스턴스 생성
// @description 2. .../process/tasks/{taskId}/start 로 태스크 시작 (자동 생성 데이터 준비)
// @description 3. .../process/tasks/{taskId}/can-end 로 종료 가능 여부 확인
// @description 4. .../process/tasks/{taskId}/end 로 종료 (데이터 잠금, PDF 영수증, 자동 삭제, eFormidling 발송)

// @contact.name DarkKaiser
// @contact.url https://github.com/DarkKaiser

// @BasePath /

// @securityDefinitions.apikey AccessKeyAuth
// @in header
// @name X-Access-Key
// @description api.access_keys에 등록된 접근 키

const (
	banner = `
     _                    ____              _   _
    / \   _ __  _ __     |  _ \ _   _ _ __ | |_(_)_ __ ___   ___
   / _ \ | '_ \| '_ \    | |_) | | | | '_ \| __| | '_ ' _ \ / _ \
  / ___ \| |_) | |_) |   |  _ <| |_| | | | | |_| | | | | | |  __/
 /_/   \_\ .__/| .__/    |_| \_\\__,_|_| |_|\__|_|_| |_| |_|\___|
         |_|   |_|                                      %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields("main", log.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
		"app":     appConfig.App.Org + "/" + appConfig.App.ID,
	}).Info("서버 초기화 시작")

	for _, w := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(w)
	}

	services, err := newServices(appConfig, buildInfo)
	if err != nil {
		applog.WithComponentAndFields("main", log.Fields{
			"error": err,
		}).Fatal("서비스 구성 실패로 프로그램을 종료합니다")
	}

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC

	applog.WithComponent("main").Info("종료 신호 수신: 모든 서비스를 중지합니다")
	cancel()
	serviceStopWG.Wait()
}

// newServices 설정으로부터 협력자를 조립하고 시작 순서대로 서비스 목록을 반환합니다.
// 알림 서비스가 가장 먼저 시작되어야 다른 서비스의 실패를 전달할 수 있다.
func newServices(appConfig *config.AppConfig, buildInfo version.Info) ([]service.Service, error) {
	var services []service.Service

	store, err := storage.NewFileStore(appConfig.Storage.Dir)
	if err != nil {
		return nil, err
	}

	catalog, err := resource.NewFileCatalog(appConfig.App.ResourceDir)
	if err != nil {
		return nil, err
	}
	metadata, err := catalog.GetApplication()
	if err != nil {
		return nil, err
	}

	healthChecks := map[string]system.HealthCheck{
		"storage": func() error {
			_, err := os.Stat(appConfig.Storage.Dir)
			return err
		},
	}

	var alerts contract.AlertSender
	if appConfig.Alert.Telegram.Enabled {
		telegram, err := alert.NewTelegramService(appConfig.Alert.Telegram, appConfig.Debug)
		if err != nil {
			return nil, err
		}
		alerts = telegram
		healthChecks["telegram"] = telegram.Health
		services = append(services, telegram)
	}

	f := fetcher.New(fetcher.Config{
		Timeout:    appConfig.HTTPClient.Timeout,
		MaxRetries: appConfig.HTTPClient.MaxRetries,
		RetryDelay: appConfig.HTTPClient.RetryDelay,
	})

	models := lifecycle.NewRegistry()
	for _, dt := range metadata.DataTypes {
		if dt.AppLogic != nil {
			models.RegisterFormData(dt.AppLogic.ClassRef)
		}
	}

	deps := lifecycle.Dependencies{
		Metadata:        metadata,
		Storage:         store,
		Models:          models,
		Resources:       catalog,
		Renderer:        platform.NewPDFClient(f, appConfig.Platform.PDFURL),
		Texts:           catalog,
		Profiles:        platform.NewProfileClient(f, appConfig.Platform.ProfileURL),
		Parties:         platform.NewRegisterClient(f, appConfig.Platform.RegisterURL),
		ServiceUserID:   appConfig.App.ServiceUserID,
		DefaultLanguage: appConfig.App.DefaultLanguage,
	}

	if appConfig.EFormidling.Enabled {
		pipeline, err := eformidling.NewPipeline(appConfig.EFormidling, eformidling.Dependencies{
			Metadata: metadata,
			Client:   eformidling.NewClient(f, appConfig.EFormidling.BaseURL),
			Storage:  store,
			Manifest: eformidling.NewFileManifest(filepath.Join(appConfig.App.ResourceDir, appConfig.EFormidling.ManifestFile)),
			Tracker:  eformidling.NewStatusTracker(),
			Alerts:   alerts,
		})
		if err != nil {
			return nil, err
		}
		deps.Dispatcher = pipeline

		spec := appConfig.EFormidling.StatusPollSpec
		if spec == "" {
			spec = config.DefaultEFormidlingStatusPollSpec
		}
		services = append(services, scheduler.NewService([]scheduler.Job{{
			Name: "eformidling-status",
			Spec: spec,
			Run:  pipeline.PollStatuses,
		}}, alerts))
	}

	controller, err := lifecycle.NewController(deps)
	if err != nil {
		return nil, err
	}

	services = append(services, api.NewService(
		appConfig.API,
		appConfig.Debug,
		system.NewHandler(buildInfo, healthChecks),
		v1handler.NewHandler(controller, store, store, metadata),
		alerts,
	))

	return services, nil
}
