// Package validation 설정 값 검증에 쓰이는 순수 함수 모음입니다.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ValidateCORSOrigin "Scheme://Host[:Port]" 형식의 Origin인지 검사합니다. "*"는 허용됩니다.
func ValidateCORSOrigin(origin string) error {
	origin = strings.TrimSpace(origin)
	switch {
	case origin == "*":
		return nil
	case origin == "":
		return fmt.Errorf("CORS Origin은 비어있을 수 없습니다")
	case strings.HasSuffix(origin, "/"):
		return fmt.Errorf("CORS Origin은 경로 구분자('/')로 끝날 수 없습니다 (input=%q)", origin)
	}

	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("CORS Origin 파싱 실패 (input=%q): %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CORS Origin은 'http' 또는 'https' 스키마만 허용됩니다 (input=%q)", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return fmt.Errorf("CORS Origin은 경로, 쿼리, Fragment, 사용자 정보를 포함할 수 없습니다 (input=%q)", origin)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("CORS Origin 포트가 숫자가 아닙니다 (input=%q)", origin)
		}
		if err := ValidatePort(port); err != nil {
			return fmt.Errorf("CORS Origin 포트 오류: %w (input=%q)", err, origin)
		}
	}

	if err := ValidateHostname(u.Hostname()); err != nil {
		return fmt.Errorf("CORS Origin 호스트 검증 실패: %w", err)
	}

	return nil
}

// ValidatePort 1-65535 범위의 포트인지 검사합니다.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("유효한 포트 범위(1-65535)가 아닙니다 (port=%d)", port)
	}
	return nil
}

// ValidateHostname localhost, IP 주소 또는 RFC 1123 호스트명인지 검사합니다.
func ValidateHostname(host string) error {
	if host == "" {
		return fmt.Errorf("호스트가 비어있습니다")
	}
	if host == "localhost" || net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > 253 {
		return fmt.Errorf("호스트명은 253자를 초과할 수 없습니다 (len=%d)", len(host))
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return fmt.Errorf("호스트명 레이블 길이가 올바르지 않습니다 (host=%q)", host)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("레이블은 하이픈(-)으로 시작하거나 끝날 수 없습니다 (label=%q)", label)
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
				return fmt.Errorf("호스트명에 허용되지 않는 문자가 포함되어 있습니다 (char=%q, host=%q)", r, host)
			}
		}
	}

	tld := labels[len(labels)-1]
	if strings.Trim(tld, "0123456789") == "" {
		return fmt.Errorf("최상위 도메인(TLD)은 숫자로만 구성될 수 없습니다 (tld=%q)", tld)
	}

	return nil
}
