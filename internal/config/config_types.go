package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/pkg/cronx"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultLanguage 사용자 선호 언어의 텍스트 리소스가 없을 때 사용하는 플랫폼 기본 언어
	DefaultLanguage = "nb"

	DefaultHTTPTimeout = "30s"
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = "1s"

	DefaultEFormidlingProcess           = "urn:no:difi:profile:arkivmelding:administrasjon:ver1.0"
	DefaultEFormidlingServiceIdentifier = "DPO"
	DefaultEFormidlingDocumentType      = "arkivmelding"
	DefaultEFormidlingDocumentStandard  = "urn:no:difi:arkivmelding:xsd::arkivmelding"
	DefaultEFormidlingTypeVersion       = "2.0"
	DefaultEFormidlingResponseWindow    = "2h"
	DefaultEFormidlingManifestFile      = "arkivmelding.xml"
	DefaultEFormidlingStatusPollSpec    = "0 */5 * * * *"

	DefaultListenPort = 5005
)

// AppConfig 애플리케이션의 모든 설정을 포함하는 최상위 구조체
type AppConfig struct {
	Debug       bool              `json:"debug"`
	App         AppSettings       `json:"app"`
	Storage     StorageConfig     `json:"storage"`
	HTTPClient  HTTPClientConfig  `json:"http_client"`
	Platform    PlatformConfig    `json:"platform"`
	EFormidling EFormidlingConfig `json:"eformidling"`
	Alert       AlertConfig       `json:"alert"`
	API         APIConfig         `json:"api"`
}

// validate 설정 로드 직후 각 섹션의 정합성을 검증합니다.
func (c *AppConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c.App, "애플리케이션(app)"); err != nil {
		return err
	}
	if len(strings.Split(c.App.ID, "/")) != 2 || !strings.HasPrefix(c.App.ID, c.App.Org+"/") {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("애플리케이션 ID(app.id)는 '<org>/<app>' 형식이어야 하며 org('%s')로 시작해야 합니다: '%s'", c.App.Org, c.App.ID))
	}

	if err := checkStruct(v, c.Storage, "스토리지(storage)"); err != nil {
		return err
	}
	if err := checkStruct(v, c.HTTPClient, "HTTP 클라이언트(http_client)"); err != nil {
		return err
	}
	if err := checkStruct(v, c.Platform, "플랫폼 서비스(platform)"); err != nil {
		return err
	}
	if err := c.EFormidling.validate(v); err != nil {
		return err
	}
	if err := checkStruct(v, c.Alert.Telegram, "운영 알림(alert.telegram)"); err != nil {
		return err
	}

	return c.API.validate(v)
}

// VerifyRecommendations 강제하지는 않지만 운영상 권장되지 않는 설정에 대한 경고 목록을 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.API.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.API.ListenPort))
	}
	if len(c.API.AccessKeys) == 0 {
		warnings = append(warnings, "API 접근 키(api.access_keys)가 설정되지 않아 모든 요청이 인증 없이 허용됩니다")
	}
	if c.EFormidling.Enabled && !c.Alert.Telegram.Enabled {
		warnings = append(warnings, "eFormidling 발송이 활성화되었지만 운영 알림(alert.telegram)이 비활성화되어 발송 실패를 놓칠 수 있습니다")
	}

	return warnings
}

// AppSettings 호스팅하는 애플리케이션의 식별 정보와 리소스 위치
type AppSettings struct {
	Org             string `json:"org" validate:"required"`
	ID              string `json:"id" validate:"required"`
	ResourceDir     string `json:"resource_dir" validate:"required,dir"`
	ServiceUserID   int    `json:"service_user_id" validate:"min=0"`
	DefaultLanguage string `json:"default_language" validate:"required,bcp47_language_tag"`
}

// StorageConfig 인스턴스와 데이터 요소를 저장하는 파일 스토리지 설정
type StorageConfig struct {
	Dir string `json:"dir" validate:"required"`
}

// HTTPClientConfig 외부 플랫폼 서비스 호출에 공통으로 적용되는 HTTP 클라이언트 정책
type HTTPClientConfig struct {
	Timeout    time.Duration `json:"timeout" validate:"gt=0"`
	MaxRetries int           `json:"max_retries" validate:"min=0,max=10"`
	RetryDelay time.Duration `json:"retry_delay" validate:"gt=0"`
}

// PlatformConfig PDF 생성기, 프로필, 레지스터 서비스의 기본 URL
type PlatformConfig struct {
	PDFURL      string `json:"pdf_url" validate:"required,http_url"`
	ProfileURL  string `json:"profile_url" validate:"required,http_url"`
	RegisterURL string `json:"register_url" validate:"required,http_url"`
}

// EFormidlingConfig 완료된 인스턴스를 eFormidling 통합 지점으로 발송하기 위한 설정
//
// 수신자(receiver)와 프로세스(process)는 애플리케이션 메타데이터의 eFormidling 계약에 값이 있으면 그 값이 우선합니다.
type EFormidlingConfig struct {
	Enabled            bool          `json:"enabled"`
	BaseURL            string        `json:"base_url" validate:"required_if=Enabled true,omitempty,http_url"`
	SenderOrgNumber    string        `json:"sender_org_number" validate:"required_if=Enabled true,omitempty,numeric,len=9"`
	Receiver           string        `json:"receiver" validate:"omitempty,numeric,len=9"`
	Process            string        `json:"process" validate:"required"`
	ServiceIdentifier  string        `json:"service_identifier" validate:"oneof=DPO DPV DPF DPI"`
	DocumentType       string        `json:"document_type" validate:"required"`
	DocumentStandard   string        `json:"document_standard" validate:"required"`
	TypeVersion        string        `json:"type_version" validate:"required"`
	ResponseWindow     time.Duration `json:"response_window" validate:"gt=0"`
	ManifestFile       string        `json:"manifest_file"`
	VerifyCapabilities bool          `json:"verify_capabilities"`
	StatusPollSpec     string        `json:"status_poll_spec"`
}

func (c *EFormidlingConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "eFormidling(eformidling)"); err != nil {
		return err
	}

	if c.Enabled && c.StatusPollSpec != "" {
		if err := cronx.Validate(c.StatusPollSpec); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, "eFormidling 발송 상태 조회 주기(status_poll_spec) 설정이 유효하지 않습니다")
		}
	}

	return nil
}

// AlertConfig 운영자 알림 채널 설정
type AlertConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token" validate:"required_if=Enabled true,omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required_if=Enabled true"`
}

// APIConfig 생명주기 전이 요청을 받는 REST API 서버 설정
type APIConfig struct {
	ListenPort  int        `json:"listen_port" validate:"min=1,max=65535"`
	TLSServer   bool       `json:"tls_server"`
	TLSCertFile string     `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,file"`
	TLSKeyFile  string     `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,file"`
	CORS        CORSConfig `json:"cors"`
	AccessKeys  []string   `json:"access_keys" validate:"unique,dive,min=16"`
}

func (c *APIConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "API 서버(api)"); err != nil {
		return err
	}

	return c.CORS.validate(v)
}

// CORSConfig 교차 출처 리소스 공유(CORS) 정책
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

func (c *CORSConfig) validate(v *validator.Validate) error {
	if len(c.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(allow_origins) 목록이 비어있습니다")
	}

	for _, origin := range c.AllowOrigins {
		if origin == "*" && len(c.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}

	return checkStruct(v, c, "CORS(api.cors)")
}
