package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/pkg/validation"
	"github.com/go-playground/validator/v10"
)

// 텔레그램 봇 토큰 형식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
var telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)

// newValidator 커스텀 규칙이 등록된 Validator를 생성합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 Go 필드명 대신 JSON 키 이름이 나오도록 한다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("cors_origin", func(fl validator.FieldLevel) bool {
		return validation.ValidateCORSOrigin(fl.Field().String()) == nil
	}); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'cors_origin' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}
	if err := v.RegisterValidation("telegram_bot_token", func(fl validator.FieldLevel) bool {
		return telegramBotTokenRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'telegram_bot_token' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

// fieldMessages 자주 틀리는 필드에 대한 사용자 친화적인 메시지입니다. 키는 Go 구조체 필드명입니다.
var fieldMessages = map[string]func(fe validator.FieldError) string{
	"ResourceDir": func(fe validator.FieldError) string {
		return fmt.Sprintf("애플리케이션 리소스 디렉토리(resource_dir)를 찾을 수 없습니다: '%v'", fe.Value())
	},
	"ListenPort": func(validator.FieldError) string {
		return "API 서버 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다"
	},
	"TLSCertFile": func(fe validator.FieldError) string {
		if fe.Tag() == "required_if" {
			return "TLS 서버 활성화 시 TLS 인증서 파일 경로(tls_cert_file)는 필수입니다"
		}
		return fmt.Sprintf("지정된 TLS 인증서 파일(tls_cert_file)을 찾을 수 없습니다: '%v'", fe.Value())
	},
	"TLSKeyFile": func(fe validator.FieldError) string {
		if fe.Tag() == "required_if" {
			return "TLS 서버 활성화 시 TLS 키 파일 경로(tls_key_file)는 필수입니다"
		}
		return fmt.Sprintf("지정된 TLS 키 파일(tls_key_file)을 찾을 수 없습니다: '%v'", fe.Value())
	},
	"ServiceIdentifier": func(fe validator.FieldError) string {
		return fmt.Sprintf("eFormidling 서비스 식별자(service_identifier)는 DPO, DPV, DPF, DPI 중 하나여야 합니다: '%v'", fe.Value())
	},
	"SenderOrgNumber": func(fe validator.FieldError) string {
		if fe.Tag() == "required_if" {
			return "eFormidling 활성화 시 발신 기관 번호(sender_org_number)는 필수입니다"
		}
		return fmt.Sprintf("발신 기관 번호(sender_org_number)는 9자리 숫자여야 합니다: '%v'", fe.Value())
	},
	"Receiver": func(fe validator.FieldError) string {
		return fmt.Sprintf("수신 기관 번호(receiver)는 9자리 숫자여야 합니다: '%v'", fe.Value())
	},
	"RetryDelay": func(fe validator.FieldError) string {
		return fmt.Sprintf("HTTP 재시도 대기 시간(retry_delay)은 0보다 커야 합니다: '%v'", fe.Value())
	},
	"MaxRetries": func(fe validator.FieldError) string {
		return fmt.Sprintf("HTTP 최대 재시도 횟수(max_retries)는 0에서 10 사이여야 합니다: '%v'", fe.Value())
	},
}

// tagMessages 필드와 무관하게 태그 단위로 공통 메시지를 만드는 규칙입니다.
var tagMessages = map[string]func(fe validator.FieldError) string{
	"cors_origin": func(fe validator.FieldError) string {
		return fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fe.Value())
	},
	"telegram_bot_token": func(validator.FieldError) string {
		return "텔레그램 BotToken 형식이 올바르지 않습니다 (올바른 형식: 123456:ABC-DEF...)"
	},
	"http_url": func(fe validator.FieldError) string {
		return fmt.Sprintf("%s 값이 올바른 HTTP(S) URL이 아닙니다: '%v'", fe.Field(), fe.Value())
	},
	"unique": func(fe validator.FieldError) string {
		return fmt.Sprintf("%s 목록에 중복된 값이 존재합니다", fe.Field())
	},
}

// checkStruct 구조체를 태그 규칙에 따라 검증하고, 첫 번째 위반 사항을 사용자 친화적인 에러로 변환합니다.
func checkStruct(v *validator.Validate, s any, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	fe := validationErrors[0]
	if msg, ok := fieldMessages[fe.StructField()]; ok {
		return apperrors.New(apperrors.InvalidInput, msg(fe))
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return apperrors.New(apperrors.InvalidInput, msg(fe))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s)", contextName, fe.Field(), fe.Tag()))
}
