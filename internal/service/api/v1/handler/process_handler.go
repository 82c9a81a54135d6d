package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/darkkaiser/app-runtime/internal/service/api/httputil"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

// StartTaskHandler godoc
// @Summary 태스크 시작
// @Description 태스크를 현재 태스크로 만들고 자동 생성 데이터 요소를 준비한 뒤 프로세스 상태를 저장합니다.
// @Tags Process
// @Accept json
// @Produce json
// @Param X-Access-Key header string false "접근 키"
// @Param partyId path int true "인스턴스 소유자 당사자 ID"
// @Param guid path string true "인스턴스 GUID"
// @Param taskId path string true "태스크 ID"
// @Success 200 {object} contract.Instance "태스크가 시작된 인스턴스"
// @Failure 404 {object} httputil.ErrorResponse "인스턴스 없음 또는 모르는 모델"
// @Failure 409 {object} httputil.ErrorResponse "프로세스 종료됨, 진행 중인 태스크 있음 또는 동시 요청"
// @Security AccessKeyAuth
// @Router /api/v1/instances/{partyId}/{guid}/process/tasks/{taskId}/start [post]
func (h *Handler) StartTaskHandler(c echo.Context) error {
	taskID := c.Param("taskId")

	return h.withInstance(c, func(ctx context.Context, instance *contract.Instance) error {
		if err := checkProcessOpen(instance); err != nil {
			return err
		}
		if current := currentTaskID(instance); current != "" {
			return httputil.NewConflictError("이미 진행 중인 태스크가 있습니다: '" + current + "'")
		}

		if err := h.startTask(ctx, taskID, instance); err != nil {
			return err
		}

		return c.JSON(http.StatusOK, instance)
	})
}

// CanEndTaskHandler godoc
// @Summary 태스크 종료 가능 여부 확인
// @Description 저장된 검증 결과가 있으면 그 결과를, 없으면 요청의 검증 이슈 유무를 기준으로 판정합니다. 본문은 생략할 수 있습니다.
// @Tags Process
// @Accept json
// @Produce json
// @Param X-Access-Key header string false "접근 키"
// @Param partyId path int true "인스턴스 소유자 당사자 ID"
// @Param guid path string true "인스턴스 GUID"
// @Param taskId path string true "태스크 ID"
// @Param request body handler.IssuesRequest false "검증 이슈"
// @Success 200 {object} handler.CanEndResponse "판정 결과"
// @Failure 409 {object} httputil.ErrorResponse "현재 태스크 불일치"
// @Security AccessKeyAuth
// @Router /api/v1/instances/{partyId}/{guid}/process/tasks/{taskId}/can-end [post]
func (h *Handler) CanEndTaskHandler(c echo.Context) error {
	taskID := c.Param("taskId")

	req := new(IssuesRequest)
	if err := h.bindOptional(c, req); err != nil {
		return err
	}

	return h.withInstance(c, func(ctx context.Context, instance *contract.Instance) error {
		if err := checkCurrentTask(instance, taskID); err != nil {
			return err
		}

		canEnd, err := h.lifecycle.CanEndProcessTask(ctx, taskID, instance, req.Issues)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, CanEndResponse{TaskID: taskID, CanEnd: canEnd})
	})
}

// EndTaskHandler godoc
// @Summary 태스크 종료
// @Description 완료 게이트를 통과한 경우에만 종료 처리(잠금, 영수증, 자동 삭제, 외부 발송)를 수행합니다.
// @Description 종료 처리가 실패하면 프로세스 상태를 전진시키지 않으므로 같은 요청을 다시 보낼 수 있습니다.
// @Description nextTaskId가 있으면 종료 후 그 태스크를 시작하고, 없으면 프로세스를 종료합니다.
// @Tags Process
// @Accept json
// @Produce json
// @Param X-Access-Key header string false "접근 키"
// @Param partyId path int true "인스턴스 소유자 당사자 ID"
// @Param guid path string true "인스턴스 GUID"
// @Param taskId path string true "태스크 ID"
// @Param request body handler.EndTaskRequest false "검증 이슈와 다음 태스크"
// @Success 200 {object} contract.Instance "종료 처리 후 인스턴스"
// @Success 204 "자동 삭제로 인스턴스가 제거됨"
// @Failure 409 {object} httputil.ErrorResponse "완료 게이트 거부 또는 현재 태스크 불일치"
// @Failure 502 {object} httputil.ErrorResponse "외부 서비스 실패"
// @Security AccessKeyAuth
// @Router /api/v1/instances/{partyId}/{guid}/process/tasks/{taskId}/end [post]
func (h *Handler) EndTaskHandler(c echo.Context) error {
	taskID := c.Param("taskId")

	req := new(EndTaskRequest)
	if err := h.bindOptional(c, req); err != nil {
		return err
	}

	return h.withInstance(c, func(ctx context.Context, instance *contract.Instance) error {
		if err := checkCurrentTask(instance, taskID); err != nil {
			return err
		}

		canEnd, err := h.lifecycle.CanEndProcessTask(ctx, taskID, instance, req.Issues)
		if err != nil {
			return err
		}
		if !canEnd {
			return httputil.NewConflictError("태스크 '" + taskID + "'의 완료 조건이 충족되지 않았습니다")
		}

		if err := h.lifecycle.OnEndProcessTask(ctx, taskID, instance); err != nil {
			return err
		}
		instance.Process.CurrentTask = nil

		if h.metadata.AutoDeleteOnProcessEnd {
			h.log(c).WithField("instance_id", instance.ID).Info("태스크 종료 후 인스턴스가 자동 삭제되었습니다")
			return c.NoContent(http.StatusNoContent)
		}

		if req.NextTaskID != "" {
			if err := h.startTask(ctx, req.NextTaskID, instance); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, instance)
		}

		if err := h.endProcess(ctx, instance); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, instance)
	})
}

func (h *Handler) startTask(ctx context.Context, taskID string, instance *contract.Instance) error {
	instance.Process.CurrentTask = &contract.ProcessElementInfo{ElementID: taskID}

	if err := h.lifecycle.OnStartProcessTask(ctx, taskID, instance); err != nil {
		return err
	}
	if err := h.instances.SaveInstance(ctx, instance); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": instance.ID,
		"task_id":     taskID,
	}).Info("태스크 전이 완료")

	return nil
}

func (h *Handler) endProcess(ctx context.Context, instance *contract.Instance) error {
	now := time.Now().UTC()
	instance.Process.EndEvent = DefaultEndEvent
	instance.Process.Ended = &now

	if err := h.lifecycle.OnEndProcess(ctx, DefaultEndEvent, instance); err != nil {
		return err
	}
	return h.instances.SaveInstance(ctx, instance)
}

// bindOptional 본문이 있을 때만 바인딩과 검증을 수행합니다.
func (h *Handler) bindOptional(c echo.Context, req any) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	if err := c.Bind(req); err != nil {
		return httputil.NewBadRequestError("잘못된 요청 형식입니다")
	}
	if err := h.validate.Struct(req); err != nil {
		return httputil.NewBadRequestError("요청 본문 검증에 실패했습니다: " + err.Error())
	}
	return nil
}

func checkProcessOpen(instance *contract.Instance) error {
	if instance.Process == nil {
		instance.Process = &contract.ProcessState{}
	}
	if instance.Process.Ended != nil {
		return httputil.NewConflictError("이미 종료된 프로세스입니다")
	}
	return nil
}

func checkCurrentTask(instance *contract.Instance, taskID string) error {
	if err := checkProcessOpen(instance); err != nil {
		return err
	}
	if current := currentTaskID(instance); current != taskID {
		return httputil.NewConflictError("요청한 태스크 '" + taskID + "'는 현재 태스크가 아닙니다 (현재: '" + current + "')")
	}
	return nil
}
