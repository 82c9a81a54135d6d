package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/internal/service/contract/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewController_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewController(Dependencies{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Internal))
	assert.Contains(t, err.Error(), "Metadata")
}

func TestController_ProcessEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.controller(t, false)
	ctx := context.Background()

	assert.Equal(t, "StartEvent_1", c.OnInstantiateGetStartEvent())
	assert.NoError(t, c.OnStartProcess(ctx, "StartEvent_1", newTestInstance()))
	assert.NoError(t, c.OnEndProcess(ctx, "EndEvent_1", newTestInstance()))
	assert.ErrorIs(t, c.OnStartProcess(ctx, "StartEvent_1", nil), contract.ErrInstanceRequired)
	assert.ErrorIs(t, c.OnEndProcess(ctx, "EndEvent_1", nil), contract.ErrInstanceRequired)
}

func TestController_CanEndProcessTask(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.controller(t, false)

	ok, err := c.CanEndProcessTask(context.Background(), testTaskID, newTestInstance(), []contract.ValidationIssue{{Code: "required"}})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CanEndProcessTask(context.Background(), testTaskID, nil, nil)
	assert.ErrorIs(t, err, contract.ErrInstanceRequired)
}

func expectLockUpdate(f *fixture, instance *contract.Instance, elementID string, err error) {
	call := f.storage.On("Update", mock.Anything, instance, mock.MatchedBy(func(e *contract.DataElement) bool {
		return e.ID == elementID && e.Locked
	})).Once()
	if err != nil {
		call.Return(nil, err)
		return
	}
	call.Return(&contract.DataElement{ID: elementID, Locked: true}, nil)
}

func TestController_OnEndProcessTask_LocksAndArchives(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	c := f.controller(t, false)

	model := &contract.DataElement{ID: "e1", DataType: "model"}
	attachment := &contract.DataElement{ID: "a1", DataType: "attachment", Filename: "scan.pdf"}
	other := &contract.DataElement{ID: "o1", DataType: "confirm"}
	instance := newTestInstance(model, attachment, other)

	ctx := contract.WithUserID(context.Background(), testUserID)
	f.endOfTask.On("OnTaskEnd", ctx, testTaskID, instance).Return(nil).Once()
	expectLockUpdate(f, instance, "e1", nil)
	expectLockUpdate(f, instance, "a1", nil)
	stream := f.expectArchive(instance, "e1")

	require.NoError(t, c.OnEndProcessTask(ctx, testTaskID, instance))

	assert.True(t, model.Locked)
	assert.True(t, attachment.Locked)
	assert.False(t, other.Locked, "다른 태스크의 데이터 요소는 잠그지 않습니다")
	assert.True(t, stream.closed.Load())

	// 앱 로직이 있는 데이터 타입만 영수증을 만든다.
	f.renderer.AssertNumberOfCalls(t, "GeneratePDF", 1)
	require.Len(t, instance.Data, 4)
	assert.Equal(t, ReceiptDataType, instance.Data[3].DataType)
}

func TestController_OnEndProcessTask_LockAndArchiveOverlap(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = []contract.DataType{
		{ID: "model", TaskID: testTaskID, AppLogic: &contract.AppLogic{ClassRef: testClassRef}},
	}
	c := f.controller(t, false)

	model := &contract.DataElement{ID: "e1", DataType: "model"}
	instance := newTestInstance(model)

	// 잠금 저장과 영수증 보관이 서로의 시작을 기다린다. 순차 실행이면 한쪽이 제한 시간을 넘긴다.
	updateStarted := make(chan struct{})
	archiveStarted := make(chan struct{})
	var updateSawArchive, archiveSawUpdate atomic.Bool

	wait := func(ch <-chan struct{}) bool {
		select {
		case <-ch:
			return true
		case <-time.After(2 * time.Second):
			return false
		}
	}

	f.resources.On("GetLayoutSets").
		Run(func(mock.Arguments) {
			close(archiveStarted)
			archiveSawUpdate.Store(wait(updateStarted))
		}).
		Return("", nil).Once()

	f.storage.On("Update", mock.Anything, instance, mock.MatchedBy(func(e *contract.DataElement) bool {
		return e.ID == "e1" && e.Locked
	})).
		Run(func(mock.Arguments) {
			close(updateStarted)
			updateSawArchive.Store(wait(archiveStarted))
		}).
		Return(&contract.DataElement{ID: "e1", Locked: true}, nil).Once()

	ctx := contract.WithUserID(context.Background(), testUserID)
	f.endOfTask.On("OnTaskEnd", ctx, testTaskID, instance).Return(nil).Once()
	f.expectArchive(instance, "e1")

	require.NoError(t, c.OnEndProcessTask(ctx, testTaskID, instance))

	assert.True(t, updateSawArchive.Load(), "잠금 저장 중에 영수증 보관이 이미 시작되어 있어야 합니다")
	assert.True(t, archiveSawUpdate.Load(), "영수증 보관 중에 잠금 저장이 이미 시작되어 있어야 합니다")
	assert.True(t, model.Locked)
}

func TestController_OnEndProcessTask_ArchiveFailureKeepsLock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = []contract.DataType{
		{ID: "model", TaskID: testTaskID, AppLogic: &contract.AppLogic{ClassRef: testClassRef}},
	}
	c := f.controller(t, false)

	model := &contract.DataElement{ID: "e1", DataType: "model"}
	instance := newTestInstance(model)

	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
	expectLockUpdate(f, instance, "e1", nil)

	f.resources.On("GetLayoutSets").Return("", nil)
	f.resources.On("GetLayouts").Return("", nil)
	f.resources.On("GetLayoutSettings").Return("", nil)
	f.models.On("NewModel", testClassRef).Return(nil, apperrors.New(apperrors.NotFound, "unknown model")).Once()

	err := c.OnEndProcessTask(context.Background(), testTaskID, instance)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.False(t, apperrors.Is(err, apperrors.ExternalService), "잠금 저장은 성공했으므로 저장 실패가 섞이면 안 됩니다")

	// 영수증이 실패해도 잠금은 저장된다.
	assert.True(t, model.Locked)
	f.storage.AssertNumberOfCalls(t, "Update", 1)
	f.storage.AssertNotCalled(t, "InsertBinaryData", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, instance.Data, 1, "실패한 영수증은 인스턴스에 추가되지 않습니다")
}

func TestController_OnEndProcessTask_AlreadyLockedStaysLocked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = []contract.DataType{{ID: "attachment", TaskID: testTaskID}}
	c := f.controller(t, false)

	attachment := &contract.DataElement{ID: "a1", DataType: "attachment", Locked: true}
	instance := newTestInstance(attachment)

	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
	expectLockUpdate(f, instance, "a1", nil)

	require.NoError(t, c.OnEndProcessTask(context.Background(), testTaskID, instance))
	assert.True(t, attachment.Locked)
}

func TestController_OnEndProcessTask_EndHookFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.AutoDeleteOnProcessEnd = true
	f.metadata.EFormidling = &contract.EFormidlingContract{SendWithEFormidling: true}
	c := f.controller(t, true)

	element := &contract.DataElement{ID: "e1", DataType: "model"}
	instance := newTestInstance(element)
	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(errors.New("host failure")).Once()

	err := c.OnEndProcessTask(context.Background(), testTaskID, instance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host failure")
	assert.False(t, element.Locked)

	f.storage.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "DeleteInstance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_OnEndProcessTask_AggregatesErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = []contract.DataType{
		{ID: "model", TaskID: testTaskID, AppLogic: &contract.AppLogic{ClassRef: testClassRef}},
		{ID: "attachment", TaskID: testTaskID},
	}
	c := f.controller(t, false)

	model := &contract.DataElement{ID: "e1", DataType: "model"}
	first := &contract.DataElement{ID: "a1", DataType: "attachment"}
	second := &contract.DataElement{ID: "a2", DataType: "attachment"}
	instance := newTestInstance(model, first, second)

	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
	expectLockUpdate(f, instance, "e1", nil)
	expectLockUpdate(f, instance, "a1", errors.New("a1 update failed"))
	expectLockUpdate(f, instance, "a2", nil)

	// 영수증 보관은 모델 조회 단계에서 실패한다.
	f.resources.On("GetLayoutSets").Return("", nil)
	f.resources.On("GetLayouts").Return("", nil)
	f.resources.On("GetLayoutSettings").Return("", nil)
	f.models.On("NewModel", testClassRef).Return(nil, apperrors.New(apperrors.NotFound, "unknown model")).Once()

	err := c.OnEndProcessTask(context.Background(), testTaskID, instance)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "a1 update failed")
	assert.Contains(t, err.Error(), "unknown model")
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.True(t, apperrors.Is(err, apperrors.ExternalService))

	// 실패가 있어도 나머지 요소의 잠금은 계속 진행된다.
	assert.True(t, second.Locked)
}

func TestController_OnEndProcessTask_AutoDeleteBeforeDispatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = []contract.DataType{{ID: "attachment", TaskID: testTaskID}}
	f.metadata.AutoDeleteOnProcessEnd = true
	f.metadata.EFormidling = &contract.EFormidlingContract{SendWithEFormidling: true}
	c := f.controller(t, true)

	instance := newTestInstance()
	key, err := instance.Key()
	require.NoError(t, err)

	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
	mock.InOrder(
		f.storage.On("DeleteInstance", mock.Anything, 1337, key.GUID.String(), true).Return(nil).Once(),
		f.dispatcher.On("Dispatch", mock.Anything, instance, testTaskID).Return(nil).Once(),
	)

	require.NoError(t, c.OnEndProcessTask(context.Background(), testTaskID, instance))
}

func TestController_OnEndProcessTask_PreloadBeforeAutoDelete(t *testing.T) {
	t.Parallel()

	newPreloadFixture := func(t *testing.T, autoDelete bool) (*fixture, *mocks.MockPreloadingDispatcher, *Controller) {
		f := newFixture(t)
		f.metadata.DataTypes = nil
		f.metadata.AutoDeleteOnProcessEnd = autoDelete
		f.metadata.EFormidling = &contract.EFormidlingContract{SendWithEFormidling: true}

		preloading := &mocks.MockPreloadingDispatcher{}
		t.Cleanup(func() { preloading.AssertExpectations(t) })
		return f, preloading, f.controllerWith(t, preloading)
	}

	t.Run("삭제 전에 읽어 둔 발송기로 발송", func(t *testing.T) {
		f, preloading, c := newPreloadFixture(t, true)

		instance := newTestInstance()
		key, err := instance.Key()
		require.NoError(t, err)

		loaded := &mocks.MockDispatcher{}
		t.Cleanup(func() { loaded.AssertExpectations(t) })

		f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
		mock.InOrder(
			preloading.On("Preload", mock.Anything, instance).Return(loaded, nil).Once(),
			f.storage.On("DeleteInstance", mock.Anything, 1337, key.GUID.String(), true).Return(nil).Once(),
			loaded.On("Dispatch", mock.Anything, instance, testTaskID).Return(nil).Once(),
		)

		require.NoError(t, c.OnEndProcessTask(context.Background(), testTaskID, instance))
		preloading.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("사전 로드 실패 시 삭제는 하고 발송은 건너뜀", func(t *testing.T) {
		f, preloading, c := newPreloadFixture(t, true)

		instance := newTestInstance()
		f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
		preloading.On("Preload", mock.Anything, instance).
			Return(nil, apperrors.New(apperrors.ExternalService, "blob missing")).Once()
		f.storage.On("DeleteInstance", mock.Anything, 1337, mock.Anything, true).Return(nil).Once()

		err := c.OnEndProcessTask(context.Background(), testTaskID, instance)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ExternalService))
		assert.ErrorContains(t, err, "blob missing")
		preloading.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("자동 삭제가 아니면 사전 로드하지 않음", func(t *testing.T) {
		f, preloading, c := newPreloadFixture(t, false)

		instance := newTestInstance()
		f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
		preloading.On("Dispatch", mock.Anything, instance, testTaskID).Return(nil).Once()

		require.NoError(t, c.OnEndProcessTask(context.Background(), testTaskID, instance))
		preloading.AssertNotCalled(t, "Preload", mock.Anything, mock.Anything)
	})
}

func TestController_OnEndProcessTask_AutoDeleteFailureSkipsDispatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = nil
	f.metadata.AutoDeleteOnProcessEnd = true
	f.metadata.EFormidling = &contract.EFormidlingContract{SendWithEFormidling: true}
	c := f.controller(t, true)

	instance := newTestInstance()
	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
	f.storage.On("DeleteInstance", mock.Anything, 1337, mock.Anything, true).Return(errors.New("storage down")).Once()

	err := c.OnEndProcessTask(context.Background(), testTaskID, instance)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExternalService))
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_OnEndProcessTask_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		contract       *contract.EFormidlingContract
		withDispatcher bool
		expectDispatch bool
	}{
		{"계약 없음", nil, true, false},
		{"발송 비활성화", &contract.EFormidlingContract{SendWithEFormidling: false}, true, false},
		{"다른 태스크 대상", &contract.EFormidlingContract{SendWithEFormidling: true, TaskID: "Task_2"}, true, false},
		{"발송기 미설정", &contract.EFormidlingContract{SendWithEFormidling: true}, false, false},
		{"발송", &contract.EFormidlingContract{SendWithEFormidling: true, TaskID: testTaskID}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.metadata.DataTypes = nil
			f.metadata.EFormidling = tt.contract
			c := f.controller(t, tt.withDispatcher)

			instance := newTestInstance()
			f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
			if tt.expectDispatch {
				f.dispatcher.On("Dispatch", mock.Anything, instance, testTaskID).Return(nil).Once()
			}

			require.NoError(t, c.OnEndProcessTask(context.Background(), testTaskID, instance))
			if !tt.expectDispatch {
				f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestController_OnEndProcessTask_DispatchErrorIsReturned(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.metadata.DataTypes = nil
	f.metadata.EFormidling = &contract.EFormidlingContract{SendWithEFormidling: true}
	c := f.controller(t, true)

	instance := newTestInstance()
	f.endOfTask.On("OnTaskEnd", mock.Anything, testTaskID, instance).Return(nil).Once()
	f.dispatcher.On("Dispatch", mock.Anything, instance, testTaskID).
		Return(apperrors.New(apperrors.ExternalService, "integration point unavailable")).Once()

	err := c.OnEndProcessTask(context.Background(), testTaskID, instance)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExternalService))
}
