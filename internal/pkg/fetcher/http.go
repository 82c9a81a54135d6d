package fetcher

import (
	"net/http"
	"time"
)

// HTTPFetcher http.Client를 감싸는 기본 Fetcher 구현체
type HTTPFetcher struct {
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 요청 전체에 timeout을 적용하는 HTTPFetcher를 생성합니다. 0이면 제한이 없습니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return h.client.Do(req)
}

func (h *HTTPFetcher) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

const userAgent = "app-runtime/1.0"
