package lifecycle

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestController_OnStartProcessTask_ProvisionsAutoCreateDataTypes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.controller(t, false)
	ctx := context.Background()
	instance := newTestInstance()

	model := &FormData{}
	f.models.On("NewModel", testClassRef).Return(model, nil).Once()
	f.prefill.On("Prefill", ctx, "1337", "model", model).Return(nil).Once()
	f.dataCreation.On("OnDataCreation", ctx, instance, model).Return(nil).Once()
	f.storage.On("InsertFormData", ctx, instance, "model", model).
		Return(&contract.DataElement{ID: "e1", DataType: "model"}, nil).Once()

	require.NoError(t, c.OnStartProcessTask(ctx, testTaskID, instance))
	require.Len(t, instance.Data, 1)
	assert.Equal(t, "e1", instance.Data[0].ID)

	// 같은 태스크를 다시 시작해도 이미 요소가 있으므로 아무것도 만들지 않는다.
	require.NoError(t, c.OnStartProcessTask(ctx, testTaskID, instance))
	assert.Len(t, instance.Data, 1)
}

func TestController_OnStartProcessTask_NoAutoCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.controller(t, false)

	instance := newTestInstance()
	require.NoError(t, c.OnStartProcessTask(context.Background(), "Task_9", instance))
	assert.Empty(t, instance.Data)
}

func TestController_OnStartProcessTask_Failures(t *testing.T) {
	t.Parallel()

	t.Run("알 수 없는 모델 타입", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.controller(t, false)
		f.models.On("NewModel", testClassRef).Return(nil, apperrors.New(apperrors.NotFound, "unknown")).Once()

		instance := newTestInstance()
		err := c.OnStartProcessTask(context.Background(), testTaskID, instance)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
		assert.Empty(t, instance.Data)
	})

	t.Run("사전 채우기 실패 시 저장하지 않음", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.controller(t, false)
		f.models.On("NewModel", testClassRef).Return(&FormData{}, nil).Once()
		f.prefill.On("Prefill", mock.Anything, "1337", "model", mock.Anything).Return(errors.New("register down")).Once()

		instance := newTestInstance()
		err := c.OnStartProcessTask(context.Background(), testTaskID, instance)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ExternalService))
		f.storage.AssertNotCalled(t, "InsertFormData", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, instance.Data)
	})

	t.Run("저장 실패", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.controller(t, false)
		f.models.On("NewModel", testClassRef).Return(&FormData{}, nil).Once()
		f.prefill.On("Prefill", mock.Anything, "1337", "model", mock.Anything).Return(nil).Once()
		f.dataCreation.On("OnDataCreation", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		f.storage.On("InsertFormData", mock.Anything, mock.Anything, "model", mock.Anything).Return(nil, errors.New("disk full")).Once()

		instance := newTestInstance()
		err := c.OnStartProcessTask(context.Background(), testTaskID, instance)
		require.Error(t, err)
		assert.Empty(t, instance.Data)
	})

	t.Run("잘못된 인자", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.controller(t, false)

		assert.ErrorIs(t, c.OnStartProcessTask(context.Background(), testTaskID, nil), contract.ErrInstanceRequired)
		assert.ErrorIs(t, c.OnStartProcessTask(context.Background(), "", newTestInstance()), contract.ErrTaskIDRequired)
	})
}
