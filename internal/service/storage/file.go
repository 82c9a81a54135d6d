// Package storage 인스턴스와 데이터 요소를 로컬 파일 시스템에 보관하는 Storage 구현을 제공합니다.
//
// 디렉토리 구조:
//
//	<dir>/<partyID>/<guid>/instance.json
//	<dir>/<partyID>/<guid>/<data-type>/<elementID>
//
// 같은 인스턴스에 대한 모든 쓰기는 인스턴스 키 단위의 KeyedMutex로 직렬화되며,
// 파일은 임시 파일에 기록한 뒤 rename하는 방식으로 원자적으로 교체됩니다.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/pkg/concurrency"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const component = "storage"

const defaultDataDirectory = "data"

// sniffLen 콘텐츠 타입 감지에 사용하는 선두 바이트 수
const sniffLen = 3072

// FileStore 파일 기반 contract.Storage, contract.InstanceStore 구현체
type FileStore struct {
	baseDir string

	locks *concurrency.KeyedMutex

	now func() time.Time
}

var (
	_ contract.Storage       = (*FileStore)(nil)
	_ contract.InstanceStore = (*FileStore)(nil)
)

// NewFileStore dir을 루트로 하는 FileStore를 생성합니다. dir이 비어있으면 "data"를 사용합니다.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = defaultDataDirectory
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrFileIO(err, "절대 경로 변환")
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, newErrFileIO(err, "저장소 디렉토리 생성")
	}

	s := &FileStore{
		baseDir: absDir,
		locks:   concurrency.NewKeyedMutex(),
		now:     time.Now,
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"base_dir": s.baseDir,
					"panic":    r,
				}).Error("임시 파일 정리 중단: 백그라운드 작업 패닉 발생")
			}
		}()

		s.cleanupStaleTempFiles(time.Hour)
	}()

	return s, nil
}

// cleanupStaleTempFiles 이전 실행에서 남은 오래된 임시 파일을 제거합니다.
func (s *FileStore) cleanupStaleTempFiles(olderThan time.Duration) {
	threshold := s.now().Add(-olderThan)

	_ = filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if matched, _ := filepath.Match(tempFilePattern, d.Name()); !matched {
			return nil
		}
		if info, err := d.Info(); err != nil || info.ModTime().After(threshold) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  path,
				"error": err,
			}).Warn("임시 파일 삭제 실패")
		}
		return nil
	})
}

// CreateInstance 새 인스턴스 레코드를 생성합니다. 같은 키의 인스턴스가 있으면 Conflict입니다.
func (s *FileStore) CreateInstance(_ context.Context, instance *contract.Instance) error {
	key, err := instance.Key()
	if err != nil {
		return err
	}

	return s.locks.Do(key.String(), func() error {
		path, err := s.recordPath(key)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return newErrInstanceExists(key)
		}

		now := s.now()
		instance.Created, instance.LastChanged = now, now
		if instance.Data == nil {
			instance.Data = []*contract.DataElement{}
		}

		return s.writeRecord(path, instance)
	})
}

// GetInstance 인스턴스 레코드를 읽습니다. 없거나 소프트 삭제된 인스턴스는 NotFound입니다.
func (s *FileStore) GetInstance(_ context.Context, key contract.InstanceKey) (*contract.Instance, error) {
	var instance *contract.Instance
	err := s.locks.Do(key.String(), func() error {
		var err error
		instance, _, err = s.readRecord(key)
		return err
	})
	return instance, err
}

// SaveInstance 인스턴스의 프로세스 상태를 저장합니다. 데이터 요소 목록은 스토리지가 관리하므로
// 디스크에 기록된 목록을 유지합니다.
func (s *FileStore) SaveInstance(_ context.Context, instance *contract.Instance) error {
	key, err := instance.Key()
	if err != nil {
		return err
	}

	return s.locks.Do(key.String(), func() error {
		record, path, err := s.readRecord(key)
		if err != nil {
			return err
		}

		record.Process = instance.Process
		record.LastChanged = s.now()
		instance.LastChanged = record.LastChanged

		return s.writeRecord(path, record)
	})
}

// InsertFormData 모델을 JSON으로 저장하고 새 데이터 요소를 레코드에 추가합니다.
func (s *FileStore) InsertFormData(_ context.Context, instance *contract.Instance, dataType string, model any) (*contract.DataElement, error) {
	key, err := instance.Key()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(model)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "폼 데이터 모델을 JSON으로 직렬화하지 못했습니다")
	}

	return s.insertElement(key, dataType, "application/json", "", bytes.NewReader(data))
}

// InsertBinaryData 스트림을 바이너리 첨부로 저장합니다. contentType이 비어있거나
// application/octet-stream이면 내용으로부터 콘텐츠 타입을 감지합니다.
func (s *FileStore) InsertBinaryData(_ context.Context, instanceID, dataType, contentType, filename string, r io.Reader) (*contract.DataElement, error) {
	key, err := contract.ParseInstanceID(instanceID)
	if err != nil {
		return nil, err
	}

	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(r, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, "업로드 스트림을 읽지 못했습니다")
		}
		head = head[:n]

		contentType = mimetype.Detect(head).String()
		r = io.MultiReader(bytes.NewReader(head), r)
	}

	return s.insertElement(key, dataType, contentType, filename, r)
}

func (s *FileStore) insertElement(key contract.InstanceKey, dataType, contentType, filename string, r io.Reader) (*contract.DataElement, error) {
	var element *contract.DataElement
	err := s.locks.Do(key.String(), func() error {
		record, recordPath, err := s.readRecord(key)
		if err != nil {
			return err
		}

		elementID := uuid.NewString()
		path, err := s.elementPath(key, dataType, elementID)
		if err != nil {
			return err
		}

		size, err := writeAtomic(path, r)
		if err != nil {
			return err
		}

		now := s.now()
		element = &contract.DataElement{
			ID:           elementID,
			InstanceGUID: key.GUID.String(),
			DataType:     dataType,
			ContentType:  contentType,
			Filename:     filename,
			Size:         size,
			Created:      now,
			LastChanged:  now,
		}

		record.Data = append(record.Data, element)
		record.LastChanged = now

		if err := s.writeRecord(recordPath, record); err != nil {
			_ = os.Remove(path)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id":  key.String(),
		"data_type":    dataType,
		"element_id":   element.ID,
		"content_type": contentType,
		"size":         element.Size,
	}).Debug("데이터 요소 저장 완료")

	return copyElement(element), nil
}

// Update 데이터 요소의 메타데이터를 저장합니다. 한 번 잠긴 요소는 다시 잠금 해제할 수 없습니다.
func (s *FileStore) Update(_ context.Context, instance *contract.Instance, element *contract.DataElement) (*contract.DataElement, error) {
	key, err := instance.Key()
	if err != nil {
		return nil, err
	}

	var updated *contract.DataElement
	err = s.locks.Do(key.String(), func() error {
		record, path, err := s.readRecord(key)
		if err != nil {
			return err
		}

		stored := findElement(record, element.ID)
		if stored == nil {
			return newErrDataElementNotFound(element.ID)
		}
		if stored.Locked && !element.Locked {
			return newErrDataElementLocked(element.ID)
		}

		stored.Locked = element.Locked
		stored.Filename = element.Filename
		stored.LastChanged = s.now()
		record.LastChanged = stored.LastChanged

		if err := s.writeRecord(path, record); err != nil {
			return err
		}

		updated = copyElement(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetFormData JSON으로 저장된 폼 데이터를 model로 디코딩합니다.
func (s *FileStore) GetFormData(ctx context.Context, instance *contract.Instance, elementID string, model any) error {
	if rv := reflect.ValueOf(model); rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrModelRequiresPointer
	}

	rc, err := s.GetBinaryData(ctx, instance, elementID)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(model); err != nil {
		return apperrors.Wrapf(err, apperrors.DataIntegrity, "저장된 폼 데이터를 해석할 수 없습니다: %s", elementID)
	}
	return nil
}

// GetBinaryData 데이터 요소의 내용을 읽는 스트림을 반환합니다.
func (s *FileStore) GetBinaryData(_ context.Context, instance *contract.Instance, elementID string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(elementID); err != nil {
		return nil, newErrInvalidElementID(elementID)
	}

	key, err := instance.Key()
	if err != nil {
		return nil, err
	}

	var f *os.File
	err = s.locks.Do(key.String(), func() error {
		record, _, err := s.readRecord(key)
		if err != nil {
			return err
		}

		element := findElement(record, elementID)
		if element == nil {
			return newErrDataElementNotFound(elementID)
		}

		path, err := s.elementPath(key, element.DataType, elementID)
		if err != nil {
			return err
		}

		f, err = os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return newErrDataElementNotFound(elementID)
		}
		if err != nil {
			return newErrFileIO(err, "데이터 요소 열기")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteInstance hard이면 인스턴스 디렉토리를 즉시 삭제하고, 아니면 삭제 표식만 남깁니다.
func (s *FileStore) DeleteInstance(_ context.Context, partyID int, instanceGUID string, hard bool) error {
	guid, err := uuid.Parse(instanceGUID)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "인스턴스 GUID 형식이 올바르지 않습니다: '%s'", instanceGUID)
	}
	key := contract.InstanceKey{PartyID: partyID, GUID: guid}

	err = s.locks.Do(key.String(), func() error {
		dir, err := s.instanceDir(key)
		if err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(dir, instanceFilename)); errors.Is(err, fs.ErrNotExist) {
			return newErrInstanceNotFound(key)
		}

		if hard {
			if err := os.RemoveAll(dir); err != nil {
				return newErrFileIO(err, "인스턴스 디렉토리 삭제")
			}
			return nil
		}

		if err := os.WriteFile(filepath.Join(dir, deletedMarker), []byte(s.now().UTC().Format(time.RFC3339)), 0644); err != nil {
			return newErrFileIO(err, "삭제 표식 기록")
		}
		return nil
	})
	if err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": key.String(),
		"hard":        hard,
	}).Info("인스턴스 삭제 완료")

	return nil
}

func (s *FileStore) recordPath(key contract.InstanceKey) (string, error) {
	dir, err := s.instanceDir(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, instanceFilename), nil
}

// readRecord 인스턴스 레코드와 그 파일 경로를 반환합니다. 호출자가 인스턴스 락을 잡고 있어야 합니다.
func (s *FileStore) readRecord(key contract.InstanceKey) (*contract.Instance, string, error) {
	path, err := s.recordPath(key)
	if err != nil {
		return nil, "", err
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(path), deletedMarker)); err == nil {
		return nil, "", newErrInstanceNotFound(key)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", newErrInstanceNotFound(key)
	}
	if err != nil {
		return nil, "", newErrFileIO(err, "인스턴스 레코드 읽기")
	}

	var instance contract.Instance
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, "", apperrors.Wrapf(err, apperrors.DataIntegrity, "인스턴스 레코드가 손상되었습니다: %s", key)
	}
	return &instance, path, nil
}

func (s *FileStore) writeRecord(path string, instance *contract.Instance) error {
	data, err := json.MarshalIndent(instance, "", "\t")
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "인스턴스 레코드를 직렬화하지 못했습니다")
	}

	_, err = writeAtomic(path, bytes.NewReader(data))
	return err
}

// writeAtomic r의 내용을 같은 디렉토리의 임시 파일에 기록하고 fsync 후 path로 rename합니다.
func writeAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, newErrFileIO(err, "디렉토리 생성")
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return 0, newErrFileIO(err, "임시 파일 생성")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	size, err := io.Copy(tmpFile, r)
	if err != nil {
		return 0, newErrFileIO(err, "파일 쓰기")
	}
	if err := tmpFile.Sync(); err != nil {
		return 0, newErrFileIO(err, "디스크 동기화")
	}
	if err := tmpFile.Close(); err != nil {
		return 0, newErrFileIO(err, "파일 닫기")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, newErrFileIO(err, "파일 이름 변경")
	}

	return size, nil
}

func findElement(instance *contract.Instance, elementID string) *contract.DataElement {
	for _, e := range instance.Data {
		if e != nil && e.ID == elementID {
			return e
		}
	}
	return nil
}

func copyElement(e *contract.DataElement) *contract.DataElement {
	c := *e
	return &c
}
