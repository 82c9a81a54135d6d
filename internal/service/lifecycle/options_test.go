package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/internal/service/contract/mocks"
	"github.com/darkkaiser/app-runtime/internal/service/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCollectOptionsIDs(t *testing.T) {
	t.Parallel()

	layout := `{
		"page1": {"data": {"layout": [
			{"id": "a", "optionsId": "municipalities"},
			{"id": "b", "children": [{"id": "c", "optionsId": "countries"}]},
			{"id": "d", "optionsId": "municipalities"},
			{"id": "e", "optionsId": 12},
			{"id": "f", "optionsId": ""},
			{"id": "g", "textResourceBindings": {"title": "optionsId"}}
		]}},
		"page2": [{"optionsId": "genders"}]
	}`

	assert.Equal(t, []string{"municipalities", "countries", "genders"}, collectOptionsIDs(gjson.Parse(layout)))
}

func TestOptionsResolver_Resolve(t *testing.T) {
	t.Parallel()

	layout := `{"page1": {"data": {"layout": [
		{"optionsId": "municipalities"},
		{"optionsId": "dynamic"},
		{"optionsId": "missing"}
	]}}}`

	resources := &mocks.MockResourceCatalog{}
	resources.On("GetOptions", "municipalities").Return([]contract.AppOption{
		{Label: "Oslo", Value: "0301"},
		{Label: "Bergen", Value: "4601"},
		{Label: "Oslo", Value: "9999"},
	}, nil)
	resources.On("GetOptions", "dynamic").Return(nil, nil)
	resources.On("GetOptions", "missing").Return(nil, nil)

	defer resources.AssertExpectations(t)

	// 훅은 정적 목록을 그대로 돌려주거나, 동적 목록을 새로 만들거나, 해석하지 않을 수 있다.
	hook := &mocks.MockOptionsHook{}
	hook.On("GetOptions", mock.Anything, "municipalities", mock.Anything).Return([]contract.AppOption{
		{Label: "Oslo", Value: "0301"},
		{Label: "Bergen", Value: "4601"},
		{Label: "Oslo", Value: "9999"},
	}, nil)
	hook.On("GetOptions", mock.Anything, "dynamic", []contract.AppOption(nil)).Return([]contract.AppOption{{Label: "Ja", Value: "yes"}}, nil)
	hook.On("GetOptions", mock.Anything, "missing", []contract.AppOption(nil)).Return(nil, nil)
	defer hook.AssertExpectations(t)

	r := &OptionsResolver{resources: resources, hook: hook}
	dictionary, err := r.Resolve(context.Background(), layout)
	require.NoError(t, err)

	assert.Equal(t, map[string]map[string]string{
		"municipalities": {"Oslo": "0301", "Bergen": "4601"},
		"dynamic":        {"Ja": "yes"},
	}, dictionary)
}

func TestOptionsResolver_Resolve_Errors(t *testing.T) {
	t.Parallel()

	t.Run("빈 레이아웃", func(t *testing.T) {
		r := &OptionsResolver{resources: &mocks.MockResourceCatalog{}, hook: NopHooks{}}
		dictionary, err := r.Resolve(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, dictionary)
	})

	t.Run("잘못된 JSON", func(t *testing.T) {
		r := &OptionsResolver{resources: &mocks.MockResourceCatalog{}, hook: NopHooks{}}
		_, err := r.Resolve(context.Background(), `{"page1": [`)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("카탈로그 실패", func(t *testing.T) {
		resources := &mocks.MockResourceCatalog{}
		resources.On("GetOptions", "broken").Return(nil, apperrors.New(apperrors.DataIntegrity, "broken"))

		r := &OptionsResolver{resources: resources, hook: NopHooks{}}
		_, err := r.Resolve(context.Background(), `{"optionsId": "broken"}`)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.DataIntegrity))
	})

	t.Run("훅 실패", func(t *testing.T) {
		resources := &mocks.MockResourceCatalog{}
		resources.On("GetOptions", "x").Return(nil, nil)
		hook := &mocks.MockOptionsHook{}
		hook.On("GetOptions", mock.Anything, "x", mock.Anything).Return(nil, errors.New("boom"))

		r := &OptionsResolver{resources: resources, hook: hook}
		_, err := r.Resolve(context.Background(), `{"optionsId": "x"}`)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Internal))
	})
}

func TestOptionsResolver_Resolve_WithFileCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "options"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "options", "kommuner.json"),
		[]byte(`[{"label": "Oslo", "value": "0301"}, {"label": "Bergen", "value": "4601"}]`), 0644))

	catalog, err := resource.NewFileCatalog(dir)
	require.NoError(t, err)

	r := &OptionsResolver{resources: catalog, hook: NopHooks{}}

	// 파일 이름으로 쓸 수 없는 ID가 섞여 있어도 해석 가능한 옵션 세트는 남아야 한다.
	dictionary, err := r.Resolve(context.Background(), `{"p": {"data": {"layout": [
		{"optionsId": "kommuner"},
		{"optionsId": "fylker-Østlandet"},
		{"optionsId": "a b"},
		{"optionsId": "../config/applicationmetadata"}
	]}}}`)
	require.NoError(t, err)

	assert.Equal(t, map[string]map[string]string{
		"kommuner": {"Oslo": "0301", "Bergen": "4601"},
	}, dictionary)
}
