// Package handler 인스턴스 생성과 프로세스 태스크 전이를 처리하는 v1 API 핸들러입니다.
//
// 같은 인스턴스에 대한 전이 요청은 인스턴스 키 단위로 직렬화되며, 이미 처리 중인 인스턴스에 대한
// 요청은 기다리지 않고 409로 거부합니다.
package handler

import (
	"context"
	"io"
	"strconv"

	"github.com/darkkaiser/app-runtime/internal/service/api/httputil"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/pkg/concurrency"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const component = "api.v1.handler"

// DefaultEndEvent 마지막 태스크가 종료되었을 때 기록하는 프로세스 종료 이벤트 ID
const DefaultEndEvent = "EndEvent_1"

// Lifecycle 핸들러가 호출하는 생명주기 진입점입니다. lifecycle.Controller가 구현합니다.
type Lifecycle interface {
	OnInstantiateGetStartEvent() string
	OnStartProcess(ctx context.Context, startEvent string, instance *contract.Instance) error
	OnEndProcess(ctx context.Context, endEvent string, instance *contract.Instance) error
	OnStartProcessTask(ctx context.Context, taskID string, instance *contract.Instance) error
	CanEndProcessTask(ctx context.Context, taskID string, instance *contract.Instance, issues []contract.ValidationIssue) (bool, error)
	OnEndProcessTask(ctx context.Context, taskID string, instance *contract.Instance) error
}

// BinaryStore 첨부 업로드에 사용하는 스토리지 기능
type BinaryStore interface {
	InsertBinaryData(ctx context.Context, instanceID, dataType, contentType, filename string, r io.Reader) (*contract.DataElement, error)
}

// Handler v1 API 핸들러
type Handler struct {
	lifecycle Lifecycle
	instances contract.InstanceStore
	binaries  BinaryStore
	metadata  *contract.ApplicationMetadata

	locks    *concurrency.KeyedMutex
	validate *validator.Validate
}

// NewHandler 필수 협력자가 nil이면 panic입니다.
func NewHandler(lifecycle Lifecycle, instances contract.InstanceStore, binaries BinaryStore, metadata *contract.ApplicationMetadata) *Handler {
	if lifecycle == nil || instances == nil || binaries == nil || metadata == nil {
		panic("v1 핸들러 생성 실패: Lifecycle, InstanceStore, BinaryStore, ApplicationMetadata는 필수입니다")
	}

	return &Handler{
		lifecycle: lifecycle,
		instances: instances,
		binaries:  binaries,
		metadata:  metadata,
		locks:     concurrency.NewKeyedMutex(),
		validate:  validator.New(),
	}
}

// instanceKey 경로 파라미터 :partyId, :guid를 해석합니다.
func instanceKey(c echo.Context) (contract.InstanceKey, error) {
	partyID, err := strconv.Atoi(c.Param("partyId"))
	if err != nil || partyID <= 0 {
		return contract.InstanceKey{}, httputil.NewBadRequestError("partyId는 양의 정수여야 합니다")
	}

	guid, err := uuid.Parse(c.Param("guid"))
	if err != nil {
		return contract.InstanceKey{}, httputil.NewBadRequestError("instanceGuid 형식이 올바르지 않습니다")
	}

	return contract.InstanceKey{PartyID: partyID, GUID: guid}, nil
}

// withInstance 인스턴스 키 잠금을 잡은 상태에서 인스턴스를 읽어 fn에 전달합니다.
// 다른 요청이 같은 인스턴스를 처리 중이면 409입니다.
func (h *Handler) withInstance(c echo.Context, fn func(ctx context.Context, instance *contract.Instance) error) error {
	key, err := instanceKey(c)
	if err != nil {
		return err
	}

	if !h.locks.TryLock(key.String()) {
		return httputil.NewConflictError("같은 인스턴스에 대한 다른 요청이 처리 중입니다. 잠시 후 다시 시도해주세요")
	}
	defer h.locks.Unlock(key.String())

	// 응답 연결이 끊겨도 진행 중인 전이는 끝까지 수행합니다.
	ctx := context.WithoutCancel(c.Request().Context())

	instance, err := h.instances.GetInstance(ctx, key)
	if err != nil {
		return err
	}

	return fn(ctx, instance)
}

func (h *Handler) log(c echo.Context) *applog.Entry {
	return applog.WithComponentAndFields(component, applog.Fields{
		"endpoint":   c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}

func (h *Handler) dataType(id string) (contract.DataType, bool) {
	for _, dt := range h.metadata.DataTypes {
		if dt.ID == id {
			return dt, true
		}
	}
	return contract.DataType{}, false
}

func currentTaskID(instance *contract.Instance) string {
	if instance.Process == nil || instance.Process.CurrentTask == nil {
		return ""
	}
	return instance.Process.CurrentTask.ElementID
}
