package fetcher

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// maxDrainBytes 커넥션 재사용을 위해 버리는 응답 본문의 최대 크기
const maxDrainBytes = 64 * 1024

var drainBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 4096)
		return &b
	},
}

// drainAndCloseBody 커넥션 재사용을 위해 본문을 비우고 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}

	bufPtr := drainBufPool.Get().(*[]byte)
	_, _ = io.CopyBuffer(io.Discard, io.LimitReader(body, maxDrainBytes), *bufPtr)
	drainBufPool.Put(bufPtr)

	_ = body.Close()
}

var sensitiveQueryKeys = []string{"token", "key", "secret", "password", "signature", "code"}

// redactURL 로그에 남길 수 있도록 URL의 인증 정보와 민감한 쿼리 파라미터를 가립니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u
	if u.User != nil {
		ru.User = url.User("xxxxx")
	}

	if u.RawQuery != "" {
		query := ru.Query()
		for key := range query {
			lower := strings.ToLower(key)
			for _, s := range sensitiveQueryKeys {
				if strings.Contains(lower, s) {
					query.Set(key, "xxxxx")
					break
				}
			}
		}
		ru.RawQuery = query.Encode()
	}

	return ru.String()
}

// redactHeaders 인증 관련 헤더를 가린 사본을 반환합니다.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()
	for _, key := range []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"} {
		if masked.Get(key) != "" {
			masked.Set(key, "***")
		}
	}
	return masked
}
