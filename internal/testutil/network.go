// Package testutil 여러 패키지의 테스트가 공유하는 네트워크 도우미입니다.
package testutil

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// FreePort 테스트 서버가 사용할 수 있는 임의의 로컬 포트를 반환합니다.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// WaitForPort port가 연결을 받을 때까지 timeout 동안 대기합니다.
func WaitForPort(port int, timeout time.Duration) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond); err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	return fmt.Errorf("%s에서 %v 안에 서버가 시작되지 않았습니다", addr, timeout)
}
