package lifecycle

import (
	"context"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/tidwall/gjson"
)

const optionsIDKey = "optionsId"

// OptionsResolver 레이아웃에서 참조하는 옵션 세트를 label → value 사전으로 해석합니다.
type OptionsResolver struct {
	resources contract.ResourceCatalog
	hook      contract.OptionsHook
}

// Resolve layoutText 전체를 구조적으로 순회하며 "optionsId" 키의 문자열 값들을 수집하고,
// 각 ID를 정적 카탈로그 → 옵션 훅 순서로 해석합니다. 해석 결과가 nil인 ID는 결과에서 빠집니다.
func (r *OptionsResolver) Resolve(ctx context.Context, layoutText string) (map[string]map[string]string, error) {
	dictionary := make(map[string]map[string]string)
	if layoutText == "" {
		return dictionary, nil
	}
	if !gjson.Valid(layoutText) {
		return nil, apperrors.New(apperrors.InvalidInput, "레이아웃이 올바른 JSON 문서가 아닙니다")
	}

	for _, id := range collectOptionsIDs(gjson.Parse(layoutText)) {
		options, err := r.resources.GetOptions(id)
		if err != nil {
			return nil, err
		}

		options, err = r.hook.GetOptions(ctx, id, options)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.Internal, "옵션 훅이 '%s' 옵션 세트 해석에 실패했습니다", id)
		}
		if options == nil {
			continue
		}

		flattened := make(map[string]string, len(options))
		for _, option := range options {
			if _, exists := flattened[option.Label]; !exists {
				flattened[option.Label] = option.Value
			}
		}
		dictionary[id] = flattened
	}

	return dictionary, nil
}

// collectOptionsIDs 문서 순서대로 중복 없이 옵션 ID를 모읍니다.
func collectOptionsIDs(root gjson.Result) []string {
	var ids []string
	seen := make(map[string]struct{})

	var walk func(gjson.Result)
	walk = func(node gjson.Result) {
		switch {
		case node.IsObject():
			node.ForEach(func(key, value gjson.Result) bool {
				if key.String() == optionsIDKey && value.Type == gjson.String && value.String() != "" {
					if _, ok := seen[value.String()]; !ok {
						seen[value.String()] = struct{}{}
						ids = append(ids, value.String())
					}
				}
				walk(value)
				return true
			})
		case node.IsArray():
			node.ForEach(func(_, value gjson.Result) bool {
				walk(value)
				return true
			})
		}
	}
	walk(root)

	return ids
}
