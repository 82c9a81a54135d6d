package middleware

import (
	"fmt"
	"sync"

	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const componentRateLimit = "api.middleware.rate_limit"

const (
	// maxTrackedIPs 메모리에 유지하는 IP별 limiter의 최대 수. 넘으면 임의의 항목 하나를 버린다.
	maxTrackedIPs = 10000

	retryAfterSeconds = "1"
)

type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[ip]; ok {
		return limiter
	}

	if len(l.limiters) >= maxTrackedIPs {
		for k := range l.limiters {
			delete(l.limiters, k)
			break
		}
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

// RateLimit 클라이언트 IP별 token bucket 속도 제한입니다. 초과하면 429와 Retry-After 헤더로 응답합니다.
//
// requestsPerSecond 또는 burst가 0 이하이면 panic입니다.
func RateLimit(requestsPerSecond, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 || burst <= 0 {
		panic(fmt.Sprintf("RateLimit: requestsPerSecond(%d)와 burst(%d)는 양수여야 합니다", requestsPerSecond, burst))
	}

	limiters := &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if limiters.get(ip).Allow() {
				return next(c)
			}

			applog.WithComponentAndFields(componentRateLimit, applog.Fields{
				"remote_ip": ip,
				"method":    c.Request().Method,
				"path":      c.Request().URL.Path,
			}).Warn("요청 차단: 속도 제한을 초과하였습니다")

			c.Response().Header().Set("Retry-After", retryAfterSeconds)
			return ErrRateLimitExceeded
		}
	}
}
