package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBotToken = "123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11"

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func minimalConfigJSON(resourceDir string) string {
	return `{
		"app": {"org": "ttd", "id": "ttd/tax-report", "resource_dir": "` + filepath.ToSlash(resourceDir) + `"},
		"platform": {
			"pdf_url": "http://pdf.local/api/v1",
			"profile_url": "http://profile.local/api/v1",
			"register_url": "http://register.local/api/v1"
		}
	}`
}

func TestNormalizeEnvKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input, expected string
	}{
		{"APP_RUNTIME_DEBUG", "debug"},
		{"APP_RUNTIME_EFORMIDLING__RECEIVER", "eformidling.receiver"},
		{"APP_RUNTIME_API__CORS__ALLOW_ORIGINS", "api.cors.allow_origins"},
		{"APP_RUNTIME_HTTP_CLIENT__MAX_RETRIES", "http_client.max_retries"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeEnvKey(tt.input), "input: %s", tt.input)
	}
}

func TestLoadWithFile_AppliesDefaults(t *testing.T) {
	resourceDir := t.TempDir()
	cfg, err := LoadWithFile(writeConfigFile(t, minimalConfigJSON(resourceDir)))
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "ttd", cfg.App.Org)
	assert.Equal(t, DefaultLanguage, cfg.App.DefaultLanguage)
	assert.Equal(t, "data", cfg.Storage.Dir)

	assert.Equal(t, 30*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.HTTPClient.MaxRetries)
	assert.Equal(t, time.Second, cfg.HTTPClient.RetryDelay)

	assert.False(t, cfg.EFormidling.Enabled)
	assert.Equal(t, DefaultEFormidlingProcess, cfg.EFormidling.Process)
	assert.Equal(t, "DPO", cfg.EFormidling.ServiceIdentifier)
	assert.Equal(t, "arkivmelding", cfg.EFormidling.DocumentType)
	assert.Equal(t, 2*time.Hour, cfg.EFormidling.ResponseWindow)
	assert.Equal(t, "arkivmelding.xml", cfg.EFormidling.ManifestFile)

	assert.Equal(t, DefaultListenPort, cfg.API.ListenPort)
	assert.Equal(t, []string{"*"}, cfg.API.CORS.AllowOrigins)
}

func TestLoadWithFile_EnvironmentOverrides(t *testing.T) {
	resourceDir := t.TempDir()
	path := writeConfigFile(t, minimalConfigJSON(resourceDir))

	t.Setenv("APP_RUNTIME_DEBUG", "true")
	t.Setenv("APP_RUNTIME_EFORMIDLING__RECEIVER", "910075918")
	t.Setenv("APP_RUNTIME_HTTP_CLIENT__TIMEOUT", "5s")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "910075918", cfg.EFormidling.Receiver)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient.Timeout)
}

func TestLoadWithFile_Errors(t *testing.T) {
	t.Run("파일 없음", func(t *testing.T) {
		_, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.System))
		assert.Contains(t, err.Error(), "설정 파일을 찾을 수 없습니다")
	})

	t.Run("잘못된 JSON", func(t *testing.T) {
		_, err := LoadWithFile(writeConfigFile(t, `{"app": `))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("알 수 없는 키", func(t *testing.T) {
		_, err := LoadWithFile(writeConfigFile(t, `{"unknown_section": {"x": 1}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "변환하는데 실패했습니다")
	})

	t.Run("검증 실패", func(t *testing.T) {
		_, err := LoadWithFile(writeConfigFile(t, `{"app": {"org": "ttd"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "유효성 검증에 실패했습니다")
	})
}

func validConfig(t *testing.T) *AppConfig {
	t.Helper()

	return &AppConfig{
		App: AppSettings{
			Org:             "ttd",
			ID:              "ttd/tax-report",
			ResourceDir:     t.TempDir(),
			DefaultLanguage: "nb",
		},
		Storage: StorageConfig{Dir: "data"},
		HTTPClient: HTTPClientConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 2,
			RetryDelay: time.Second,
		},
		Platform: PlatformConfig{
			PDFURL:      "http://pdf.local",
			ProfileURL:  "http://profile.local",
			RegisterURL: "http://register.local",
		},
		EFormidling: EFormidlingConfig{
			Process:           DefaultEFormidlingProcess,
			ServiceIdentifier: "DPO",
			DocumentType:      "arkivmelding",
			DocumentStandard:  DefaultEFormidlingDocumentStandard,
			TypeVersion:       "2.0",
			ResponseWindow:    2 * time.Hour,
		},
		API: APIConfig{
			ListenPort: 5005,
			CORS:       CORSConfig{AllowOrigins: []string{"*"}},
		},
	}
}

func TestAppConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"정상", func(c *AppConfig) {}, ""},
		{"org 누락", func(c *AppConfig) { c.App.Org = "" }, "org"},
		{"app id 형식 오류", func(c *AppConfig) { c.App.ID = "tax-report" }, "'<org>/<app>' 형식"},
		{"app id org 불일치", func(c *AppConfig) { c.App.ID = "other/tax-report" }, "org('ttd')"},
		{"리소스 디렉토리 없음", func(c *AppConfig) { c.App.ResourceDir = "/nonexistent/app-dir" }, "resource_dir"},
		{"잘못된 언어 태그", func(c *AppConfig) { c.App.DefaultLanguage = "not a tag" }, "default_language"},
		{"잘못된 PDF URL", func(c *AppConfig) { c.Platform.PDFURL = "pdf.local" }, "pdf_url"},
		{"재시도 횟수 초과", func(c *AppConfig) { c.HTTPClient.MaxRetries = 11 }, "max_retries"},
		{"eFormidling 활성화 시 base_url 필수", func(c *AppConfig) {
			c.EFormidling.Enabled = true
			c.EFormidling.SenderOrgNumber = "991825827"
		}, "base_url"},
		{"eFormidling 발신 기관 번호 형식", func(c *AppConfig) {
			c.EFormidling.Enabled = true
			c.EFormidling.BaseURL = "http://ip.local"
			c.EFormidling.SenderOrgNumber = "12345"
		}, "9자리 숫자"},
		{"eFormidling 서비스 식별자", func(c *AppConfig) { c.EFormidling.ServiceIdentifier = "DPX" }, "DPO, DPV, DPF, DPI"},
		{"eFormidling 상태 조회 주기", func(c *AppConfig) {
			c.EFormidling.Enabled = true
			c.EFormidling.BaseURL = "http://ip.local"
			c.EFormidling.SenderOrgNumber = "991825827"
			c.EFormidling.StatusPollSpec = "*/5 * * * *"
		}, "status_poll_spec"},
		{"텔레그램 토큰 형식", func(c *AppConfig) {
			c.Alert.Telegram = TelegramConfig{Enabled: true, BotToken: "invalid", ChatID: 1}
		}, "BotToken 형식"},
		{"포트 범위", func(c *AppConfig) { c.API.ListenPort = 0 }, "listen_port"},
		{"TLS 인증서 필수", func(c *AppConfig) { c.API.TLSServer = true }, "tls_cert_file"},
		{"CORS 비어있음", func(c *AppConfig) { c.API.CORS.AllowOrigins = nil }, "allow_origins"},
		{"CORS 와일드카드 혼용", func(c *AppConfig) {
			c.API.CORS.AllowOrigins = []string{"*", "https://example.com"}
		}, "와일드카드"},
		{"CORS 형식", func(c *AppConfig) { c.API.CORS.AllowOrigins = []string{"example.com"} }, "CORS Origin 형식"},
		{"접근 키 중복", func(c *AppConfig) {
			c.API.AccessKeys = []string{"0123456789abcdef", "0123456789abcdef"}
		}, "중복"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.validate(newValidator())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAppConfig_VerifyRecommendations(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)
	cfg.API.ListenPort = 443
	cfg.EFormidling.Enabled = true

	warnings := cfg.VerifyRecommendations()
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "시스템 예약 포트")
	assert.Contains(t, warnings[1], "access_keys")
	assert.Contains(t, warnings[2], "alert.telegram")

	cfg = validConfig(t)
	cfg.API.AccessKeys = []string{"0123456789abcdef"}
	assert.Empty(t, cfg.VerifyRecommendations())
}
