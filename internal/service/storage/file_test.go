package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func createTestInstance(t *testing.T, s *FileStore) *contract.Instance {
	t.Helper()

	key := contract.NewInstanceKey(1337)
	instance := &contract.Instance{
		ID:            key.String(),
		AppID:         "ttd/tax-report",
		Org:           "ttd",
		InstanceOwner: contract.InstanceOwner{PartyID: "1337"},
	}
	require.NoError(t, s.CreateInstance(context.Background(), instance))
	return instance
}

func TestFileStore_CreateAndGetInstance(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)

	key, err := instance.Key()
	require.NoError(t, err)

	got, err := s.GetInstance(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, instance.ID, got.ID)
	assert.Equal(t, "ttd/tax-report", got.AppID)
	assert.Empty(t, got.Data)
	assert.False(t, got.Created.IsZero())

	err = s.CreateInstance(context.Background(), instance)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Conflict))

	_, err = s.GetInstance(context.Background(), contract.NewInstanceKey(1337))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestFileStore_FormDataRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)
	ctx := context.Background()

	element, err := s.InsertFormData(ctx, instance, "MainModel", map[string]any{"name": "Ola"})
	require.NoError(t, err)
	assert.Equal(t, "MainModel", element.DataType)
	assert.Equal(t, "application/json", element.ContentType)
	assert.False(t, element.Locked)

	var model map[string]any
	require.NoError(t, s.GetFormData(ctx, instance, element.ID, &model))
	assert.Equal(t, "Ola", model["name"])

	_, err = os.Stat(filepath.Join(s.baseDir, "1337", instance.ID[5:], "main-model", element.ID))
	assert.NoError(t, err, "데이터 타입 디렉토리는 kebab-case여야 합니다")

	key, _ := instance.Key()
	stored, err := s.GetInstance(ctx, key)
	require.NoError(t, err)
	require.Len(t, stored.Data, 1)
	assert.Equal(t, element.ID, stored.Data[0].ID)
}

func TestFileStore_GetFormData_Errors(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)
	ctx := context.Background()

	var model map[string]any
	assert.ErrorIs(t, s.GetFormData(ctx, instance, "x", model), ErrModelRequiresPointer)

	err := s.GetFormData(ctx, instance, "../../etc/passwd", &model)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))

	err = s.GetFormData(ctx, instance, "6aa47207-f089-4c11-9cb2-f00af6f66a47", &model)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestFileStore_InsertBinaryData(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)
	ctx := context.Background()

	t.Run("콘텐츠 타입 지정", func(t *testing.T) {
		element, err := s.InsertBinaryData(ctx, instance.ID, "ref-data-as-pdf", "application/pdf", "receipt.pdf", bytes.NewReader([]byte("%PDF-1.4 test")))
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", element.ContentType)
		assert.Equal(t, "receipt.pdf", element.Filename)
		assert.EqualValues(t, 13, element.Size)

		rc, err := s.GetBinaryData(ctx, instance, element.ID)
		require.NoError(t, err)
		defer rc.Close()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 test", string(content))
	})

	t.Run("콘텐츠 타입 감지", func(t *testing.T) {
		element, err := s.InsertBinaryData(ctx, instance.ID, "attachment", "", "scan.pdf", bytes.NewReader([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")))
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", element.ContentType)
		assert.EqualValues(t, 15, element.Size)
	})

	t.Run("잘못된 인스턴스 ID", func(t *testing.T) {
		_, err := s.InsertBinaryData(ctx, "not-an-id", "attachment", "text/plain", "a.txt", bytes.NewReader(nil))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.DataIntegrity))
	})
}

func TestFileStore_Update(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)
	ctx := context.Background()

	element, err := s.InsertFormData(ctx, instance, "model", map[string]string{})
	require.NoError(t, err)

	element.Locked = true
	updated, err := s.Update(ctx, instance, element)
	require.NoError(t, err)
	assert.True(t, updated.Locked)

	// 이미 잠긴 요소를 다시 저장하는 것은 허용된다.
	_, err = s.Update(ctx, instance, element)
	require.NoError(t, err)

	element.Locked = false
	_, err = s.Update(ctx, instance, element)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Conflict))

	_, err = s.Update(ctx, instance, &contract.DataElement{ID: "missing"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestFileStore_SaveInstanceKeepsDataElements(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)
	ctx := context.Background()

	_, err := s.InsertFormData(ctx, instance, "model", map[string]string{})
	require.NoError(t, err)

	instance.Process = &contract.ProcessState{CurrentTask: &contract.ProcessElementInfo{ElementID: "Task_1"}}
	instance.Data = nil
	require.NoError(t, s.SaveInstance(ctx, instance))

	key, _ := instance.Key()
	stored, err := s.GetInstance(ctx, key)
	require.NoError(t, err)
	assert.Len(t, stored.Data, 1)
	require.NotNil(t, stored.Process)
	assert.Equal(t, "Task_1", stored.Process.CurrentTask.ElementID)
}

func TestFileStore_DeleteInstance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("하드 삭제", func(t *testing.T) {
		s := newTestStore(t)
		instance := createTestInstance(t, s)
		key, _ := instance.Key()

		require.NoError(t, s.DeleteInstance(ctx, key.PartyID, key.GUID.String(), true))

		_, err := os.Stat(filepath.Join(s.baseDir, "1337", key.GUID.String()))
		assert.True(t, os.IsNotExist(err))

		err = s.DeleteInstance(ctx, key.PartyID, key.GUID.String(), true)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
	})

	t.Run("소프트 삭제", func(t *testing.T) {
		s := newTestStore(t)
		instance := createTestInstance(t, s)
		key, _ := instance.Key()

		require.NoError(t, s.DeleteInstance(ctx, key.PartyID, key.GUID.String(), false))

		_, err := s.GetInstance(ctx, key)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
		_, err = os.Stat(filepath.Join(s.baseDir, "1337", key.GUID.String(), instanceFilename))
		assert.NoError(t, err)
	})

	t.Run("잘못된 GUID", func(t *testing.T) {
		s := newTestStore(t)
		err := s.DeleteInstance(ctx, 1337, "../..", true)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}

func TestFileStore_ConcurrentInserts(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	instance := createTestInstance(t, s)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertFormData(ctx, instance, "model", map[string]int{"i": i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	key, _ := instance.Key()
	stored, err := s.GetInstance(ctx, key)
	require.NoError(t, err)
	assert.Len(t, stored.Data, n)
}

func TestFileStore_CleanupStaleTempFiles(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	stale := filepath.Join(s.baseDir, "storage-stale.tmp")
	fresh := filepath.Join(s.baseDir, "storage-fresh.tmp")
	require.NoError(t, os.WriteFile(stale, nil, 0644))
	require.NoError(t, os.WriteFile(fresh, nil, 0644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	s.cleanupStaleTempFiles(time.Hour)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestDataTypeDirName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input, expected string
	}{
		{"MainModel", "main-model"},
		{"ref-data-as-pdf", "ref-data-as-pdf"},
		{"", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, dataTypeDirName(tt.input), "input: %q", tt.input)
	}

	for _, input := range []string{"../secret", "a/b", `a\b`, "a\x00b"} {
		name := dataTypeDirName(input)
		assert.NotContains(t, name, "/", "input: %q", input)
		assert.NotContains(t, name, "\\", "input: %q", input)
		assert.NotContains(t, name, "..", "input: %q", input)
	}
}
