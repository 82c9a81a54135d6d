// Package config 애플리케이션 설정을 로드하고 검증합니다.
//
// 설정은 다음 순서로 겹쳐지며 뒤에 오는 값이 앞의 값을 덮어씁니다.
//
//  1. 코드에 정의된 기본값
//  2. JSON 설정 파일 (기본: app-runtime.json)
//  3. APP_RUNTIME_ 접두사의 환경 변수 (이중 언더스코어는 계층 구분자)
package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "app-runtime"

	// DefaultFilename 실행 인자로 경로가 주어지지 않았을 때 사용하는 설정 파일명입니다.
	DefaultFilename = AppName + ".json"

	// EnvPrefix 설정을 덮어쓰는 환경 변수의 접두사입니다.
	EnvPrefix = "APP_RUNTIME_"
)

// defaultValues 가장 낮은 우선순위로 적용되는 기본값입니다.
func defaultValues() map[string]any {
	return map[string]any{
		"debug":                          false,
		"app.default_language":           DefaultLanguage,
		"storage.dir":                    "data",
		"http_client.timeout":            DefaultHTTPTimeout,
		"http_client.max_retries":        DefaultMaxRetries,
		"http_client.retry_delay":        DefaultRetryDelay,
		"eformidling.process":            DefaultEFormidlingProcess,
		"eformidling.service_identifier": DefaultEFormidlingServiceIdentifier,
		"eformidling.document_type":      DefaultEFormidlingDocumentType,
		"eformidling.document_standard":  DefaultEFormidlingDocumentStandard,
		"eformidling.type_version":       DefaultEFormidlingTypeVersion,
		"eformidling.response_window":    DefaultEFormidlingResponseWindow,
		"eformidling.manifest_file":      DefaultEFormidlingManifestFile,
		"eformidling.status_poll_spec":   DefaultEFormidlingStatusPollSpec,
		"api.listen_port":                DefaultListenPort,
		"api.cors.allow_origins":         []string{"*"},
	}
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 예: APP_RUNTIME_EFORMIDLING__RECEIVER -> eformidling.receiver
	if err := k.Load(env.Provider(EnvPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	var appConfig AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &appConfig,
			TagName:          "json",
			ErrorUnused:      true, // 구조체에 없는 키가 설정에 있으면 오타로 간주한다.
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	if err := appConfig.validate(newValidator()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}

// normalizeEnvKey 환경 변수 이름을 koanf 키 경로로 변환합니다.
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
