package log

import "github.com/sirupsen/logrus"

// 호출 측 패키지가 logrus를 직접 import하지 않도록 자주 쓰는 타입을 재노출합니다.

type Level = logrus.Level

const (
	PanicLevel Level = logrus.PanicLevel
	FatalLevel Level = logrus.FatalLevel
	ErrorLevel Level = logrus.ErrorLevel
	WarnLevel  Level = logrus.WarnLevel
	InfoLevel  Level = logrus.InfoLevel
	DebugLevel Level = logrus.DebugLevel
	TraceLevel Level = logrus.TraceLevel
)

var AllLevels = logrus.AllLevels

type (
	Fields    = logrus.Fields
	Entry     = logrus.Entry
	Logger    = logrus.Logger
	Formatter = logrus.Formatter
)
