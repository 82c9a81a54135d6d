package lifecycle

import (
	"context"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

// Provisioner 태스크 시작 시 자동 생성 대상 데이터 타입의 초기 데이터 요소를 만듭니다.
type Provisioner struct {
	metadata     *contract.ApplicationMetadata
	models       contract.ModelCatalog
	prefill      contract.PrefillHook
	dataCreation contract.DataCreationHook
	storage      contract.Storage
}

// Provision 태스크에 바인딩된 AutoCreate 데이터 타입마다, 아직 요소가 없으면
// 모델 생성 → 사전 채우기 → 생성 훅 → 저장 → 인스턴스에 추가 순서로 처리합니다.
// 실패하면 즉시 반환하며, 이미 만들어진 데이터 타입은 그대로 남습니다.
func (p *Provisioner) Provision(ctx context.Context, instance *contract.Instance, taskID string) error {
	if instance == nil {
		return contract.ErrInstanceRequired
	}

	for _, dataType := range p.metadata.AutoCreateDataTypes(taskID) {
		fields := applog.Fields{
			"instance_id": instance.ID,
			"task_id":     taskID,
			"data_type":   dataType.ID,
		}

		if instance.FindDataElement(dataType.ID) != nil {
			applog.WithComponentAndFields(component, fields).Debug("이미 데이터 요소가 존재하여 자동 생성을 건너뜁니다")
			continue
		}

		element, err := p.provisionOne(ctx, instance, dataType)
		if err != nil {
			applog.WithComponentAndFields(component, fields).WithError(err).Error("데이터 요소 자동 생성 실패")
			return err
		}

		instance.Data = append(instance.Data, element)

		fields["element_id"] = element.ID
		applog.WithComponentAndFields(component, fields).Info("데이터 요소 자동 생성 완료")
	}

	return nil
}

func (p *Provisioner) provisionOne(ctx context.Context, instance *contract.Instance, dataType contract.DataType) (*contract.DataElement, error) {
	model, err := p.models.NewModel(dataType.AppLogic.ClassRef)
	if err != nil {
		return nil, err
	}

	if err := p.prefill.Prefill(ctx, instance.InstanceOwner.PartyID, dataType.ID, model); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "'%s' 모델 사전 채우기에 실패했습니다", dataType.ID)
	}
	if err := p.dataCreation.OnDataCreation(ctx, instance, model); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.Internal, "'%s' 데이터 생성 훅이 실패했습니다", dataType.ID)
	}

	element, err := p.storage.InsertFormData(ctx, instance, dataType.ID, model)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "'%s' 폼 데이터 저장에 실패했습니다", dataType.ID)
	}
	return element, nil
}
