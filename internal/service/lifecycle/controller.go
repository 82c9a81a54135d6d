// Package lifecycle 프로세스 태스크 생명주기(시작, 종료 가능 여부, 종료)를 조율합니다.
//
// 태스크가 시작되면 자동 생성 데이터를 만들고, 종료 요청은 검증 게이트를 거치며,
// 종료 시에는 데이터 잠금과 PDF 영수증 보관, 자동 삭제, 외부 발송을 순서대로 처리합니다.
// 같은 인스턴스에 대한 호출은 호출자가 직렬화해야 합니다.
package lifecycle

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

const component = "lifecycle"

// DefaultStartEvent 새 인스턴스의 프로세스가 시작되는 이벤트 ID
const DefaultStartEvent = "StartEvent_1"

// Dependencies Controller가 사용하는 협력자 목록입니다. 훅이 nil이면 NopHooks가 사용되며,
// Dispatcher가 nil이면 외부 발송을 하지 않습니다.
type Dependencies struct {
	Metadata *contract.ApplicationMetadata

	Storage   contract.Storage
	Models    contract.ModelCatalog
	Resources contract.ResourceCatalog
	Renderer  contract.Renderer
	Texts     contract.TextLookup
	Profiles  contract.ProfileLookup
	Parties   contract.PartyLookup

	Prefill      contract.PrefillHook
	DataCreation contract.DataCreationHook
	EndOfTask    contract.EndOfTaskHook
	PdfFormat    contract.PdfFormatHook
	Options      contract.OptionsHook

	Dispatcher contract.Dispatcher

	// ServiceUserID 요청 컨텍스트에 사용자가 없을 때 프로필 조회에 사용하는 사용자 ID
	ServiceUserID int

	// DefaultLanguage 사용자 프로필에 언어 설정이 없을 때 사용하는 언어
	DefaultLanguage string
}

// Controller 태스크 생명주기 진입점
type Controller struct {
	metadata *contract.ApplicationMetadata

	storage    contract.Storage
	endOfTask  contract.EndOfTaskHook
	dispatcher contract.Dispatcher

	gate        CompletionGate
	provisioner *Provisioner
	archiver    *ReceiptArchiver
}

// NewController 필수 협력자가 빠져있으면 Internal 에러를 반환합니다.
func NewController(deps Dependencies) (*Controller, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"Metadata", deps.Metadata == nil},
		{"Storage", deps.Storage == nil},
		{"Models", deps.Models == nil},
		{"Resources", deps.Resources == nil},
		{"Renderer", deps.Renderer == nil},
		{"Texts", deps.Texts == nil},
		{"Profiles", deps.Profiles == nil},
		{"Parties", deps.Parties == nil},
	}
	for _, r := range required {
		if r.missing {
			return nil, apperrors.Newf(apperrors.Internal, "생명주기 컨트롤러에 필수 협력자(%s)가 설정되지 않았습니다", r.name)
		}
	}

	nop := NopHooks{}
	prefill := orDefault[contract.PrefillHook](deps.Prefill, nop)
	dataCreation := orDefault[contract.DataCreationHook](deps.DataCreation, nop)
	endOfTask := orDefault[contract.EndOfTaskHook](deps.EndOfTask, nop)
	pdfFormat := orDefault[contract.PdfFormatHook](deps.PdfFormat, nop)
	optionsHook := orDefault[contract.OptionsHook](deps.Options, nop)

	return &Controller{
		metadata:   deps.Metadata,
		storage:    deps.Storage,
		endOfTask:  endOfTask,
		dispatcher: deps.Dispatcher,
		provisioner: &Provisioner{
			metadata:     deps.Metadata,
			models:       deps.Models,
			prefill:      prefill,
			dataCreation: dataCreation,
			storage:      deps.Storage,
		},
		archiver: &ReceiptArchiver{
			models:    deps.Models,
			storage:   deps.Storage,
			resources: deps.Resources,
			pdfFormat: pdfFormat,
			options: &OptionsResolver{
				resources: deps.Resources,
				hook:      optionsHook,
			},
			renderer:        deps.Renderer,
			texts:           deps.Texts,
			profiles:        deps.Profiles,
			parties:         deps.Parties,
			serviceUserID:   deps.ServiceUserID,
			defaultLanguage: deps.DefaultLanguage,
		},
	}, nil
}

// orDefault interface 값이 nil이면 fallback을 반환합니다.
func orDefault[T any](v T, fallback T) T {
	if any(v) == nil {
		return fallback
	}
	return v
}

// OnInstantiateGetStartEvent 새 인스턴스가 시작할 이벤트 ID를 반환합니다.
func (c *Controller) OnInstantiateGetStartEvent() string {
	return DefaultStartEvent
}

// OnStartProcess 프로세스 시작을 기록합니다.
func (c *Controller) OnStartProcess(_ context.Context, startEvent string, instance *contract.Instance) error {
	if instance == nil {
		return contract.ErrInstanceRequired
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": instance.ID,
		"start_event": startEvent,
	}).Info("프로세스 시작")

	return nil
}

// OnEndProcess 프로세스 종료를 기록합니다.
func (c *Controller) OnEndProcess(_ context.Context, endEvent string, instance *contract.Instance) error {
	if instance == nil {
		return contract.ErrInstanceRequired
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": instance.ID,
		"end_event":   endEvent,
	}).Info("프로세스 종료")

	return nil
}

// OnStartProcessTask 태스크 시작 시 자동 생성 데이터 요소를 준비합니다.
func (c *Controller) OnStartProcessTask(ctx context.Context, taskID string, instance *contract.Instance) error {
	if err := checkArgs(taskID, instance); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": instance.ID,
		"task_id":     taskID,
	}).Info("태스크 시작")

	return c.provisioner.Provision(ctx, instance, taskID)
}

// CanEndProcessTask 태스크를 종료해도 되는지 판정합니다. 거부는 에러가 아니라 false로 표현됩니다.
func (c *Controller) CanEndProcessTask(_ context.Context, taskID string, instance *contract.Instance, issues []contract.ValidationIssue) (bool, error) {
	return c.gate.CanEnd(taskID, instance, issues)
}

// OnEndProcessTask 태스크 종료 처리를 수행합니다.
//
//  1. 종료 훅 실행 (실패 시 즉시 반환)
//  2. 태스크의 데이터 요소 잠금과 PDF 영수증 보관 (요소마다 병렬로 실행하고 모든 실패를 모아서 반환)
//  3. 자동 삭제 정책이면 인스턴스 영구 삭제 (실패 시 발송하지 않음)
//     발송기가 Preloader이면 삭제 전에 발송 데이터를 미리 읽어 둔다.
//  4. 발송 대상이면 외부 메시징 채널로 발송
func (c *Controller) OnEndProcessTask(ctx context.Context, taskID string, instance *contract.Instance) error {
	if err := checkArgs(taskID, instance); err != nil {
		return err
	}

	fields := applog.Fields{
		"instance_id": instance.ID,
		"task_id":     taskID,
	}

	if err := c.endOfTask.OnTaskEnd(ctx, taskID, instance); err != nil {
		applog.WithComponentAndFields(component, fields).WithError(err).Error("태스크 종료 훅 실패")
		return apperrors.Wrapf(err, apperrors.Internal, "태스크(%s) 종료 훅이 실패했습니다", taskID)
	}

	errs := c.lockAndArchive(ctx, instance, taskID)

	var dispatcher contract.Dispatcher
	if c.dispatcher != nil && c.metadata.SendsWithEFormidling(taskID) {
		dispatcher = c.dispatcher
	}

	if c.metadata.AutoDeleteOnProcessEnd {
		if preloader, ok := dispatcher.(contract.Preloader); ok {
			loaded, err := preloader.Preload(ctx, instance)
			if err != nil {
				applog.WithComponentAndFields(component, fields).WithError(err).Error("발송 데이터 사전 로드 실패: 외부 발송을 건너뜁니다")
				errs = append(errs, err)
				loaded = nil
			}
			dispatcher = loaded
		}

		if err := c.deleteInstance(ctx, instance); err != nil {
			applog.WithComponentAndFields(component, fields).WithError(err).Error("인스턴스 자동 삭제 실패: 외부 발송을 건너뜁니다")
			return errors.Join(append(errs, err)...)
		}
		applog.WithComponentAndFields(component, fields).Info("인스턴스 자동 삭제 완료")
	}

	if dispatcher != nil {
		if err := dispatcher.Dispatch(ctx, instance, taskID); err != nil {
			applog.WithComponentAndFields(component, fields).WithError(err).Error("외부 발송 실패")
			errs = append(errs, err)
		} else {
			applog.WithComponentAndFields(component, fields).Info("외부 발송 완료")
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, fields).Info("태스크 종료 처리 완료")
	return nil
}

// lockAndArchive 태스크의 각 데이터 요소를 잠그고, 앱 로직이 있는 데이터 타입이면 같은 시점에 PDF 영수증을 보관합니다.
// 실패는 중단 없이 모두 모아서 반환합니다.
func (c *Controller) lockAndArchive(ctx context.Context, instance *contract.Instance, taskID string) []error {
	var errs []error
	var receipts []*contract.DataElement

	for _, dataType := range c.metadata.DataTypesForTask(taskID) {
		for _, element := range instance.DataElementsOf(dataType.ID) {
			element.Locked = true

			var wg sync.WaitGroup
			var updateErr, archiveErr error
			var receipt *contract.DataElement

			wg.Add(1)
			go func() {
				defer wg.Done()
				_, updateErr = c.storage.Update(ctx, instance, element)
			}()

			if dataType.AppLogic != nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					receipt, archiveErr = c.archiver.Archive(ctx, instance, taskID, element, dataType.AppLogic.ClassRef)
				}()
			}

			wg.Wait()

			fields := applog.Fields{
				"instance_id": instance.ID,
				"task_id":     taskID,
				"data_type":   dataType.ID,
				"element_id":  element.ID,
			}
			if updateErr != nil {
				applog.WithComponentAndFields(component, fields).WithError(updateErr).Error("데이터 요소 잠금 저장 실패")
				errs = append(errs, apperrors.Wrapf(updateErr, apperrors.ExternalService, "데이터 요소(%s) 잠금 저장에 실패했습니다", element.ID))
			}
			if archiveErr != nil {
				applog.WithComponentAndFields(component, fields).WithError(archiveErr).Error("PDF 영수증 보관 실패")
				errs = append(errs, archiveErr)
			}
			if receipt != nil {
				receipts = append(receipts, receipt)
			}
		}
	}

	instance.Data = append(instance.Data, receipts...)
	return errs
}

func (c *Controller) deleteInstance(ctx context.Context, instance *contract.Instance) error {
	key, err := instance.Key()
	if err != nil {
		return err
	}

	if err := c.storage.DeleteInstance(ctx, key.PartyID, key.GUID.String(), true); err != nil {
		return apperrors.Wrapf(err, apperrors.ExternalService, "인스턴스(%s) 자동 삭제에 실패했습니다", instance.ID)
	}
	return nil
}

func checkArgs(taskID string, instance *contract.Instance) error {
	if instance == nil {
		return contract.ErrInstanceRequired
	}
	if taskID == "" {
		return contract.ErrTaskIDRequired
	}
	return nil
}
