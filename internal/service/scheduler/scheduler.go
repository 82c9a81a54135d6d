// Package scheduler 주기적으로 실행해야 하는 운영 작업(예: eFormidling 발송 상태 조회)을 Cron 스케줄로 실행합니다.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/pkg/cronx"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/robfig/cron/v3"
)

const component = "scheduler"

// defaultJobTimeout Job.Timeout이 지정되지 않았을 때 작업 한 번에 허용하는 시간
const defaultJobTimeout = time.Minute

// Job 스케줄에 따라 반복 실행되는 작업
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler 등록된 작업을 Cron 엔진으로 실행하고, 실패하면 로그를 남기고 운영자에게 알립니다.
type Scheduler struct {
	jobs []Job

	// alerts nil이면 실패를 로그로만 남긴다.
	alerts contract.AlertSender

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

func NewService(jobs []Job, alerts contract.AlertSender) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		alerts: alerts,
	}
}

// Start 작업을 Cron 엔진에 등록하고 실행합니다. 표현식이 잘못된 작업이 하나라도 있으면 시작하지 않습니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if len(s.jobs) == 0 {
		serviceStopWG.Done()
		return ErrNoJobs
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// 초 단위 6필드 표현식, panic 복구, 이전 실행이 끝나지 않았으면 건너뛰기
	logger := cron.VerbosePrintfLogger(applog.StandardLogger())
	c := cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)

	for _, job := range s.jobs {
		if _, err := c.AddFunc(job.Spec, s.wrap(serviceStopCtx, job)); err != nil {
			serviceStopWG.Done()
			return newErrInvalidCronSpec(job.Name, job.Spec, err)
		}
	}

	s.cron = c
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"registered_schedules": len(s.cron.Entries()),
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.stop()
	}()

	return nil
}

// stop Cron 엔진을 멈추고 실행 중인 작업이 끝날 때까지 기다립니다.
func (s *Scheduler) stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료")
}

// wrap 작업 실행 컨텍스트를 만듭니다. 서비스 종료 시 cron.Stop()이 실행 중인 작업을 기다리므로
// 작업 컨텍스트는 종료 신호와 분리하고 타임아웃만 적용한다.
func (s *Scheduler) wrap(serviceStopCtx context.Context, job Job) func() {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(serviceStopCtx), timeout)
		defer cancel()

		started := time.Now()
		err := job.Run(ctx)

		fields := applog.Fields{
			"job":      job.Name,
			"duration": time.Since(started).String(),
		}
		if err == nil {
			applog.WithComponentAndFields(component, fields).Debug("예약 작업 완료")
			return
		}

		applog.WithComponentAndFields(component, fields).WithError(err).Error("예약 작업 실패")
		if s.alerts != nil {
			if alertErr := s.alerts.Alert(ctx, fmt.Sprintf("예약 작업(%s) 실패: %v", job.Name, err)); alertErr != nil {
				applog.WithComponentAndFields(component, fields).WithError(alertErr).Warn("운영자 알림 전송 실패")
			}
		}
	}
}
