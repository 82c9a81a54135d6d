package storage

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/iancoleman/strcase"
)

const (
	instanceFilename = "instance.json"
	deletedMarker    = ".deleted"
	tempFilePattern  = "storage-*.tmp"
)

var dirNameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	":", "-",
)

// instanceDir <base>/<partyID>/<guid>
func (s *FileStore) instanceDir(key contract.InstanceKey) (string, error) {
	return s.resolveSafePath(strconv.Itoa(key.PartyID), key.GUID.String())
}

// elementPath <base>/<partyID>/<guid>/<data-type>/<elementID>
func (s *FileStore) elementPath(key contract.InstanceKey, dataType, elementID string) (string, error) {
	return s.resolveSafePath(strconv.Itoa(key.PartyID), key.GUID.String(), dataTypeDirName(dataType), elementID)
}

// dataTypeDirName 데이터 타입 ID를 파일 시스템에 안전한 kebab-case 디렉토리 이름으로 변환합니다.
func dataTypeDirName(dataType string) string {
	name := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '-'
		}
		return r
	}, strcase.ToKebab(dataType))

	name = dirNameReplacer.Replace(name)
	if name == "" {
		return "_"
	}
	return name
}

func (s *FileStore) resolveSafePath(elem ...string) (string, error) {
	cleanPath := filepath.Clean(filepath.Join(append([]string{s.baseDir}, elem...)...))

	rel, err := filepath.Rel(s.baseDir, cleanPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		applog.WithComponentAndFields(component, applog.Fields{
			"base_dir": s.baseDir,
			"path":     cleanPath,
		}).Error("파일 경로 생성 차단: 경로 이탈 시도 감지")

		return "", ErrPathTraversalDetected
	}

	return cleanPath, nil
}
