package lifecycle

import (
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// receiptFilename 텍스트 리소스의 "ServiceName" 값(없으면 앱 이름)으로 PDF 파일 이름을 만듭니다.
// 파일 시스템에서 허용되지 않는 문자는 '_'로 바꾼 뒤, RFC 3986 비예약 문자를 제외하고 퍼센트 인코딩합니다.
func receiptFilename(serviceName, appName string) string {
	name := serviceName
	if name == "" {
		name = appName
	}

	return escapeDataString(sanitizeFilename(name + ".pdf"))
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 {
			return '_'
		}
		switch r {
		case '"', '<', '>', '|', ':', '*', '?', '\\', '/':
			return '_'
		}
		return r
	}, name)
}

// escapeDataString 비예약 문자(ALPHA, DIGIT, '-', '.', '_', '~')를 제외한 모든 바이트를 %XX로 인코딩합니다.
func escapeDataString(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
