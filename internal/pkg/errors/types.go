package errors

import "strconv"

// ErrorType 에러의 종류를 나타내는 타입입니다.
//
// HTTP 계층은 이 값을 기준으로 응답 상태 코드를 결정하고, 생명주기 컨트롤러는
// 이 값을 통해 실패의 성격(입력 오류, 외부 서비스 장애, 데이터 정합성 위반 등)을 구분합니다.
type ErrorType int

// 에러 타입 상수
const (
	// Unknown 알 수 없는 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그 등)
	Internal

	// System 시스템 또는 인프라 오류 (디스크, 파일시스템 등)
	System

	// InvalidInput 잘못된 입력값 (유효성 검사 실패)
	InvalidInput

	// NotFound 리소스를 찾을 수 없음 (모델 타입, 레이아웃 세트, 텍스트 리소스 등)
	NotFound

	// Conflict 리소스 충돌 (동일 인스턴스에 대한 동시 전이 요청 등)
	Conflict

	// ExternalService 외부 협력 서비스 호출 실패 (스토리지, PDF 렌더러, 메시징, 조회 서비스)
	ExternalService

	// DataIntegrity 데이터 정합성 위반 (잘못된 인스턴스 식별자, 중복 자동 생성 등)
	DataIntegrity

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 서비스 일시적 사용 불가
	Unavailable
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	InvalidInput:    "InvalidInput",
	NotFound:        "NotFound",
	Conflict:        "Conflict",
	ExternalService: "ExternalService",
	DataIntegrity:   "DataIntegrity",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}
