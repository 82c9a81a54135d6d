// Package log logrus 기반의 애플리케이션 공용 로깅 유틸리티입니다.
//
// 모든 로그에는 component 필드를 붙여 어느 서비스에서 발생한 로그인지 구분합니다.
//
//	applog.WithComponentAndFields("lifecycle.controller", applog.Fields{
//		"instance_id": instance.ID,
//	}).Info("데이터 요소 잠금 완료")
package log

import (
	"maps"

	"github.com/sirupsen/logrus"
)

// WithComponent component 필드가 포함된 로그 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드가 포함된 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	merged := make(Fields, len(fields)+1)
	maps.Copy(merged, fields)
	merged["component"] = component
	return logrus.WithFields(merged)
}

// SetDebugMode 디버그 모드이면 Trace, 아니면 Info 레벨로 전환합니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(TraceLevel)
	} else {
		logrus.SetLevel(InfoLevel)
	}
}

// Mask 토큰이나 키처럼 로그에 그대로 남기면 안 되는 값을 가립니다.
func Mask(data string) string {
	switch {
	case data == "":
		return ""
	case len(data) <= 4:
		return "***"
	case len(data) <= 12:
		return data[:4] + "***"
	default:
		return data[:4] + "***" + data[len(data)-4:]
	}
}

// StandardLogger cron처럼 Printf 형태의 로거를 요구하는 라이브러리에 전달할 전역 logrus 로거를 반환합니다.
func StandardLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
