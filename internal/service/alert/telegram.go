// Package alert 발송 실패처럼 운영자 확인이 필요한 사건을 텔레그램으로 알립니다.
package alert

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/app-runtime/internal/config"
	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const component = "alert.telegram"

const (
	// messageMaxLength 텔레그램 메시지 최대 길이(4096자)에서 여유를 둔 값
	messageMaxLength = 3900

	queueSize       = 64
	enqueueTimeout  = 3 * time.Second
	httpTimeout     = 30 * time.Second
	maxSendAttempts = 3
	retryDelay      = 2 * time.Second
	shutdownTimeout = 30 * time.Second
)

var (
	ErrNotRunning = apperrors.New(apperrors.Unavailable, "운영 알림 서비스가 실행 중이 아닙니다")
	ErrQueueFull  = apperrors.New(apperrors.Unavailable, "운영 알림 대기열이 가득 찼습니다")
)

// botClient 텔레그램 봇 API 중 알림 전송에 필요한 부분
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService 알림을 대기열에 쌓고 별도 고루틴에서 텔레그램 채팅방으로 전송합니다.
type TelegramService struct {
	chatID int64
	bot    botClient

	limiter    *rate.Limiter
	retryDelay time.Duration

	queue chan string

	running   bool
	runningMu sync.Mutex
}

var _ contract.AlertSender = (*TelegramService)(nil)

// NewTelegramService 봇 토큰으로 텔레그램 API 클라이언트를 초기화합니다.
func NewTelegramService(cfg config.TelegramConfig, debug bool) (*TelegramService, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"bot_token": applog.Mask(cfg.BotToken),
		"chat_id":   cfg.ChatID,
	}).Debug("텔레그램 봇 클라이언트 초기화")

	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{Timeout: httpTimeout})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요")
	}
	botAPI.Debug = debug

	return newTelegramService(cfg.ChatID, botAPI), nil
}

func newTelegramService(chatID int64, bot botClient) *TelegramService {
	return &TelegramService{
		chatID: chatID,
		bot:    bot,

		// 채팅방당 초당 1회
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		retryDelay: retryDelay,

		queue: make(chan string, queueSize),
	}
}

func (s *TelegramService) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("운영 알림 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}
	s.running = true

	go func() {
		defer serviceStopWG.Done()
		s.run(serviceStopCtx)
	}()

	applog.WithComponentAndFields(component, applog.Fields{
		"chat_id": s.chatID,
	}).Info("운영 알림 서비스 시작")

	return nil
}

// Alert 메시지를 대기열에 넣습니다. 대기열이 가득 차 enqueueTimeout 안에 자리가 나지 않으면 ErrQueueFull을 반환합니다.
func (s *TelegramService) Alert(ctx context.Context, message string) error {
	if !s.isRunning() {
		return ErrNotRunning
	}

	timer := time.NewTimer(enqueueTimeout)
	defer timer.Stop()

	select {
	case s.queue <- message:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), apperrors.Timeout, "운영 알림 대기열 등록이 취소되었습니다")
	case <-timer.C:
		return ErrQueueFull
	}
}

// Health 헬스체크용. 실행 중이 아니면 ErrNotRunning입니다.
func (s *TelegramService) Health() error {
	if !s.isRunning() {
		return ErrNotRunning
	}
	return nil
}

func (s *TelegramService) isRunning() bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	return s.running
}

func (s *TelegramService) run(serviceStopCtx context.Context) {
	for {
		select {
		case <-serviceStopCtx.Done():
			s.shutdown()
			return
		case message := <-s.queue:
			// 전송 도중 종료 신호가 와도 현재 메시지는 끝까지 보낸다.
			s.send(context.WithoutCancel(serviceStopCtx), message)
		}
	}
}

// shutdown 새 알림을 더 받지 않고, 대기열에 남은 알림을 shutdownTimeout 안에서 전송합니다.
func (s *TelegramService) shutdown() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for {
		select {
		case message := <-s.queue:
			s.send(ctx, message)
		default:
			applog.WithComponent(component).Info("운영 알림 서비스 종료 완료")
			return
		}
	}
}

func (s *TelegramService) send(ctx context.Context, message string) {
	text := "[" + config.AppName + "] " + truncate(message, messageMaxLength)
	messageConfig := tgbotapi.NewMessage(s.chatID, text)

	if err := s.limiter.Wait(ctx); err != nil {
		applog.WithComponent(component).WithError(err).Warn("운영 알림 전송 대기가 취소되었습니다")
		return
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		_, err := s.bot.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": s.chatID,
				"attempt": attempt,
			}).Debug("운영 알림 전송 완료")
			return
		}
		lastErr = err

		code, retryAfter := telegramErrorCode(err)
		if !shouldRetry(code) || attempt == maxSendAttempts {
			break
		}

		wait := s.retryDelay
		if retryAfter > 0 {
			wait = time.Duration(retryAfter) * time.Second
		}
		select {
		case <-ctx.Done():
			lastErr = errors.Join(lastErr, ctx.Err())
			attempt = maxSendAttempts
		case <-time.After(wait):
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"chat_id": s.chatID,
	}).WithError(lastErr).Error("운영 알림 전송 실패")
}

// telegramErrorCode 텔레그램 API 에러의 코드와 Retry-After(초)를 꺼냅니다.
func telegramErrorCode(err error) (code int, retryAfter int) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	var apiErrValue tgbotapi.Error
	if errors.As(err, &apiErrValue) {
		return apiErrValue.Code, apiErrValue.ResponseParameters.RetryAfter
	}
	return 0, 0
}

// shouldRetry 429를 제외한 4xx는 다시 보내도 실패합니다.
func shouldRetry(code int) bool {
	if code >= 400 && code < 500 {
		return code == http.StatusTooManyRequests
	}
	return true
}

func truncate(message string, limit int) string {
	if utf8.RuneCountInString(message) <= limit {
		return message
	}

	runes := []rune(message)
	return string(runes[:limit-3]) + "..."
}
