package log

import (
	"fmt"
	"os"
)

// Options 로깅 시스템 초기화 옵션입니다.
type Options struct {
	Name  string // 로그 파일명에 사용할 애플리케이션 식별자
	Dir   string // 로그 디렉토리 (빈 값이면 "logs")
	Level Level  // 로그 레벨 (0이면 InfoLevel)

	MaxAge     int // 로테이션된 파일 보관 일수 (0: 삭제 안 함)
	MaxSizeMB  int // 파일 하나의 최대 크기 (0: 100MB)
	MaxBackups int // 보관할 로테이션 파일 수 (0: 20개)

	EnableCriticalLog bool // ERROR 이상을 <name>.critical.log에 별도 기록
	EnableVerboseLog  bool // DEBUG 이하를 <name>.verbose.log에 별도 기록
	EnableConsoleLog  bool // 표준 출력에도 모든 레벨을 기록

	ReportCaller     bool
	CallerPathPrefix string // 호출자 함수 경로에서 잘라낼 접두사
}

// Validate 옵션 값의 유효성을 검사합니다.
func (opts *Options) Validate() error {
	if opts.Name == "" {
		return fmt.Errorf("애플리케이션 식별자(Name)가 설정되지 않았습니다")
	}

	if opts.Dir != "" {
		if info, err := os.Stat(opts.Dir); err == nil && !info.IsDir() {
			return fmt.Errorf("로그 디렉토리 경로(%s)가 이미 파일로 존재합니다", opts.Dir)
		}
	}

	if opts.MaxAge < 0 || opts.MaxSizeMB < 0 || opts.MaxBackups < 0 {
		return fmt.Errorf("로그 로테이션 설정(MaxAge=%d, MaxSizeMB=%d, MaxBackups=%d)은 0 이상이어야 합니다", opts.MaxAge, opts.MaxSizeMB, opts.MaxBackups)
	}

	return nil
}

// NewProductionOptions 운영 환경용 옵션을 반환합니다.
func NewProductionOptions(appName string) Options {
	return Options{
		Name:              appName,
		Level:             InfoLevel,
		MaxAge:            30,
		EnableCriticalLog: true,
		EnableVerboseLog:  true,
		ReportCaller:      true,
		CallerPathPrefix:  "github.com/darkkaiser",
	}
}

// NewDevelopmentOptions 개발 환경용 옵션을 반환합니다. 파일 분리 없이 콘솔에 함께 출력합니다.
func NewDevelopmentOptions(appName string) Options {
	return Options{
		Name:             appName,
		Level:            TraceLevel,
		MaxAge:           1,
		EnableConsoleLog: true,
		ReportCaller:     true,
		CallerPathPrefix: "github.com/darkkaiser",
	}
}
