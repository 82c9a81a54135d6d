package contract

import "context"

// 호스트 애플리케이션이 주입하는 확장 지점입니다.

// ModelCatalog 데이터 타입의 ClassRef로부터 빈 애플리케이션 모델을 생성합니다.
// 모르는 ClassRef이면 NotFound 에러를 반환해야 합니다.
type ModelCatalog interface {
	NewModel(classRef string) (any, error)
}

// PrefillHook 새 모델을 당사자/레지스터 정보 기반 기본값으로 채웁니다.
type PrefillHook interface {
	Prefill(ctx context.Context, partyID string, dataTypeID string, model any) error
}

// DataCreationHook 새 모델이 저장되기 전에 계산된 기본값을 설정할 기회를 줍니다.
type DataCreationHook interface {
	OnDataCreation(ctx context.Context, instance *Instance, model any) error
}

// EndOfTaskHook 태스크 종료 처리 직전에 실행되는 호스트 로직입니다.
type EndOfTaskHook interface {
	OnTaskEnd(ctx context.Context, taskID string, instance *Instance) error
}

// PdfFormatHook PDF 렌더링 전에 레이아웃 설정을 조정합니다(페이지 나눔 등).
type PdfFormatHook interface {
	FormatPdf(ctx context.Context, settings *LayoutSettings, model any) (*LayoutSettings, error)
}

// OptionsHook 정적 옵션 목록을 교체하거나 보강합니다. nil을 반환하면 해당 옵션 세트는 해석되지 않은 것으로 봅니다.
type OptionsHook interface {
	GetOptions(ctx context.Context, optionsID string, options []AppOption) ([]AppOption, error)
}
