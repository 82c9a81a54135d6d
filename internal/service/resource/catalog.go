// Package resource 애플리케이션 리소스 디렉토리를 읽어 ResourceCatalog와 TextLookup을 제공합니다.
//
// 디렉토리 구조:
//
//	config/applicationmetadata.json
//	config/texts/resource.<lang>.json
//	ui/layout-sets.json
//	ui/Settings.json, ui/layouts/*.json
//	ui/<layoutSetID>/Settings.json, ui/<layoutSetID>/layouts/*.json
//	options/<optionsID>.json
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/tidwall/gjson"
)

const component = "resource"

const (
	metadataFile   = "config/applicationmetadata.json"
	textsDir       = "config/texts"
	uiDir          = "ui"
	layoutSetsFile = "layout-sets.json"
	settingsFile   = "Settings.json"
	layoutsDir     = "layouts"
	optionsDir     = "options"
)

// resourceIDPattern 레이아웃 세트, 옵션 ID, 언어 코드처럼 파일 이름으로 쓰이는 식별자의 허용 형식
var resourceIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// FileCatalog 애플리케이션 리소스 디렉토리 기반 contract.ResourceCatalog, contract.TextLookup 구현체
type FileCatalog struct {
	dir string
}

var (
	_ contract.ResourceCatalog = (*FileCatalog)(nil)
	_ contract.TextLookup      = (*FileCatalog)(nil)
)

// NewFileCatalog dir이 존재하는 디렉토리여야 합니다.
func NewFileCatalog(dir string) (*FileCatalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "애플리케이션 리소스 디렉토리에 접근할 수 없습니다: %s", dir)
	}
	if !info.IsDir() {
		return nil, apperrors.Newf(apperrors.System, "애플리케이션 리소스 경로가 디렉토리가 아닙니다: %s", dir)
	}

	return &FileCatalog{dir: dir}, nil
}

// GetApplication 애플리케이션 메타데이터를 읽습니다.
func (c *FileCatalog) GetApplication() (*contract.ApplicationMetadata, error) {
	data, err := c.readFile(metadataFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperrors.New(apperrors.NotFound, "애플리케이션 메타데이터(config/applicationmetadata.json)를 찾을 수 없습니다")
	}

	var metadata contract.ApplicationMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, apperrors.Wrap(err, apperrors.DataIntegrity, "애플리케이션 메타데이터 형식이 올바르지 않습니다")
	}
	return &metadata, nil
}

func (c *FileCatalog) GetLayouts() (string, error) {
	return c.readLayouts(filepath.Join(uiDir, layoutsDir))
}

func (c *FileCatalog) GetLayoutsForSet(layoutSetID string) (string, error) {
	if !resourceIDPattern.MatchString(layoutSetID) {
		return "", newErrInvalidResourceID("레이아웃 세트", layoutSetID)
	}
	return c.readLayouts(filepath.Join(uiDir, layoutSetID, layoutsDir))
}

func (c *FileCatalog) GetLayoutSettings() (string, error) {
	return c.readJSONText(filepath.Join(uiDir, settingsFile))
}

func (c *FileCatalog) GetLayoutSettingsForSet(layoutSetID string) (string, error) {
	if !resourceIDPattern.MatchString(layoutSetID) {
		return "", newErrInvalidResourceID("레이아웃 세트", layoutSetID)
	}
	return c.readJSONText(filepath.Join(uiDir, layoutSetID, settingsFile))
}

func (c *FileCatalog) GetLayoutSets() (string, error) {
	return c.readJSONText(filepath.Join(uiDir, layoutSetsFile))
}

// GetOptions 정적 옵션 파일을 읽습니다. 파일이 없으면 (nil, nil)입니다.
// 파일 이름으로 쓸 수 없는 옵션 ID는 정적 옵션 파일이 있을 수 없으므로 없는 것과 같이 (nil, nil)입니다.
func (c *FileCatalog) GetOptions(optionsID string) ([]contract.AppOption, error) {
	if !resourceIDPattern.MatchString(optionsID) {
		applog.WithComponentAndFields(component, applog.Fields{
			"options_id": optionsID,
		}).Warn("파일 이름으로 쓸 수 없는 옵션 ID입니다: 정적 옵션 없이 진행합니다")
		return nil, nil
	}

	data, err := c.readFile(filepath.Join(optionsDir, optionsID+".json"))
	if err != nil || data == nil {
		return nil, err
	}

	var options []contract.AppOption
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.DataIntegrity, "옵션 파일 형식이 올바르지 않습니다: %s", optionsID)
	}
	return options, nil
}

// GetText 언어별 텍스트 리소스를 읽습니다. 리소스가 없으면 (nil, nil)입니다.
func (c *FileCatalog) GetText(_ context.Context, org, app, language string) (*contract.TextResource, error) {
	if !resourceIDPattern.MatchString(language) {
		return nil, newErrInvalidResourceID("언어", language)
	}

	data, err := c.readFile(filepath.Join(textsDir, "resource."+language+".json"))
	if err != nil || data == nil {
		return nil, err
	}

	var text contract.TextResource
	if err := json.Unmarshal(data, &text); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.DataIntegrity, "텍스트 리소스 형식이 올바르지 않습니다: %s", language)
	}
	if text.Language == "" {
		text.Language = language
	}
	text.ID = org + "-" + app + "-" + language
	text.Org = org

	return &text, nil
}

// readLayouts 디렉토리의 레이아웃 파일들을 {"<페이지>": <레이아웃>} 형태의 JSON 객체 하나로 합칩니다.
// 디렉토리가 없으면 빈 문자열입니다.
func (c *FileCatalog) readLayouts(rel string) (string, error) {
	entries, err := os.ReadDir(filepath.Join(c.dir, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.System, "레이아웃 디렉토리를 읽을 수 없습니다: %s", rel)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	slices.Sort(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		data, err := c.readJSONText(filepath.Join(rel, name))
		if err != nil {
			return "", err
		}

		page, _ := json.Marshal(strings.TrimSuffix(name, filepath.Ext(name)))
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(page)
		buf.WriteByte(':')
		buf.WriteString(data)
	}
	buf.WriteByte('}')

	applog.WithComponentAndFields(component, applog.Fields{
		"dir":   rel,
		"pages": len(names),
	}).Debug("레이아웃 파일 병합 완료")

	return buf.String(), nil
}

// readJSONText JSON 파일의 원본 텍스트를 반환합니다. 파일이 없으면 빈 문자열, 형식이 잘못되었으면 DataIntegrity입니다.
func (c *FileCatalog) readJSONText(rel string) (string, error) {
	data, err := c.readFile(rel)
	if err != nil || data == nil {
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", apperrors.Newf(apperrors.DataIntegrity, "리소스 파일이 올바른 JSON이 아닙니다: %s", rel)
	}
	return string(bytes.TrimSpace(data)), nil
}

// readFile 파일이 없으면 (nil, nil)입니다.
func (c *FileCatalog) readFile(rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "리소스 파일을 읽을 수 없습니다: %s", rel)
	}
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
}

func newErrInvalidResourceID(kind, id string) error {
	return apperrors.Newf(apperrors.InvalidInput, "%s 식별자 형식이 올바르지 않습니다: '%s'", kind, id)
}
