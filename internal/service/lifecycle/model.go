package lifecycle

import (
	"context"
	"encoding/xml"
	"fmt"
	"slices"
	"sync"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
)

// Registry ClassRef별 모델 생성 함수를 보관하는 contract.ModelCatalog 구현체
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() any
}

var _ contract.ModelCatalog = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() any)}
}

// Register classRef에 대한 모델 생성 함수를 등록합니다. factory는 포인터를 반환해야 합니다.
func (r *Registry) Register(classRef string, factory func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[classRef] = factory
}

// RegisterFormData 전용 모델이 없는 ClassRef들을 범용 FormData 모델로 등록합니다.
func (r *Registry) RegisterFormData(classRefs ...string) {
	for _, classRef := range classRefs {
		r.Register(classRef, func() any { return &FormData{} })
	}
}

func (r *Registry) NewModel(classRef string) (any, error) {
	r.mu.RLock()
	factory, ok := r.factories[classRef]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.Newf(apperrors.NotFound, "등록되지 않은 모델 타입입니다: '%s'", classRef)
	}
	return factory(), nil
}

// FormData JSON으로 저장된 임의의 폼 데이터를 담는 범용 모델입니다.
// XML 직렬화 시 키 이름 순서대로 요소를 만들고, 배열은 같은 이름의 요소를 반복합니다.
type FormData map[string]any

func (d FormData) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if start.Name.Local == "" {
		start.Name.Local = "FormData"
	}
	return encodeXMLValue(e, start, map[string]any(d))
}

func encodeXMLValue(e *xml.Encoder, start xml.StartElement, value any) error {
	switch v := value.(type) {
	case nil:
		return e.EncodeElement("", start)

	case map[string]any:
		if err := e.EncodeToken(start); err != nil {
			return err
		}

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			child := xml.StartElement{Name: xml.Name{Local: k}}
			if items, ok := v[k].([]any); ok {
				for _, item := range items {
					if err := encodeXMLValue(e, child, item); err != nil {
						return err
					}
				}
				continue
			}
			if err := encodeXMLValue(e, child, v[k]); err != nil {
				return err
			}
		}
		return e.EncodeToken(start.End())

	case FormData:
		return encodeXMLValue(e, start, map[string]any(v))

	default:
		return e.EncodeElement(fmt.Sprint(v), start)
	}
}

// NopHooks 아무 동작도 하지 않는 기본 확장 훅입니다.
type NopHooks struct{}

var (
	_ contract.PrefillHook      = NopHooks{}
	_ contract.DataCreationHook = NopHooks{}
	_ contract.EndOfTaskHook    = NopHooks{}
	_ contract.PdfFormatHook    = NopHooks{}
	_ contract.OptionsHook      = NopHooks{}
)

func (NopHooks) Prefill(context.Context, string, string, any) error { return nil }

func (NopHooks) OnDataCreation(context.Context, *contract.Instance, any) error { return nil }

func (NopHooks) OnTaskEnd(context.Context, string, *contract.Instance) error { return nil }

func (NopHooks) FormatPdf(_ context.Context, settings *contract.LayoutSettings, _ any) (*contract.LayoutSettings, error) {
	return settings, nil
}

func (NopHooks) GetOptions(_ context.Context, _ string, options []contract.AppOption) ([]contract.AppOption, error) {
	return options, nil
}
