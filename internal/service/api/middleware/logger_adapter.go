package middleware

import (
	"io"

	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Logger echo 내부 로그를 애플리케이션 logrus 로거로 보내는 echo.Logger 어댑터입니다.
// Print, Debug, Info 계열 메서드는 임베드된 logrus 로거의 것을 그대로 사용합니다.
type Logger struct {
	*applog.Logger
}

var _ echo.Logger = Logger{}

var levelsToGommon = map[applog.Level]log.Lvl{
	applog.TraceLevel: log.DEBUG,
	applog.DebugLevel: log.DEBUG,
	applog.InfoLevel:  log.INFO,
	applog.WarnLevel:  log.WARN,
	applog.ErrorLevel: log.ERROR,
}

var levelsFromGommon = map[log.Lvl]applog.Level{
	log.DEBUG: applog.DebugLevel,
	log.INFO:  applog.InfoLevel,
	log.WARN:  applog.WarnLevel,
	log.ERROR: applog.ErrorLevel,
}

func (l Logger) Output() io.Writer { return l.Logger.Out }
func (l Logger) Prefix() string    { return "" }
func (l Logger) SetPrefix(string)  {}
func (l Logger) SetHeader(string)  {}

// Level Fatal, Panic 레벨은 gommon에 대응하는 값이 없어 OFF로 보고합니다.
func (l Logger) Level() log.Lvl {
	if lvl, ok := levelsToGommon[l.Logger.GetLevel()]; ok {
		return lvl
	}
	return log.OFF
}

// SetLevel OFF는 무시합니다. 로그 레벨은 애플리케이션 설정이 결정합니다.
func (l Logger) SetLevel(lvl log.Lvl) {
	if level, ok := levelsFromGommon[lvl]; ok {
		l.Logger.SetLevel(level)
	}
}

func (l Logger) Printj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Print() }
func (l Logger) Debugj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Debug() }
func (l Logger) Infoj(j log.JSON)  { l.Logger.WithFields(applog.Fields(j)).Info() }
func (l Logger) Warnj(j log.JSON)  { l.Logger.WithFields(applog.Fields(j)).Warn() }
func (l Logger) Errorj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Error() }
func (l Logger) Fatalj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Fatal() }
func (l Logger) Panicj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Panic() }
