package mocks

import (
	"context"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

var (
	_ contract.ModelCatalog     = (*MockModelCatalog)(nil)
	_ contract.PrefillHook      = (*MockPrefillHook)(nil)
	_ contract.DataCreationHook = (*MockDataCreationHook)(nil)
	_ contract.EndOfTaskHook    = (*MockEndOfTaskHook)(nil)
	_ contract.PdfFormatHook    = (*MockPdfFormatHook)(nil)
	_ contract.OptionsHook      = (*MockOptionsHook)(nil)
)

// MockModelCatalog contract.ModelCatalog 인터페이스의 Mock 구현체입니다.
type MockModelCatalog struct {
	mock.Mock
}

func (m *MockModelCatalog) NewModel(classRef string) (any, error) {
	args := m.Called(classRef)
	return args.Get(0), args.Error(1)
}

// MockPrefillHook contract.PrefillHook 인터페이스의 Mock 구현체입니다.
type MockPrefillHook struct {
	mock.Mock
}

func (m *MockPrefillHook) Prefill(ctx context.Context, partyID string, dataTypeID string, model any) error {
	args := m.Called(ctx, partyID, dataTypeID, model)
	return args.Error(0)
}

// MockDataCreationHook contract.DataCreationHook 인터페이스의 Mock 구현체입니다.
type MockDataCreationHook struct {
	mock.Mock
}

func (m *MockDataCreationHook) OnDataCreation(ctx context.Context, instance *contract.Instance, model any) error {
	args := m.Called(ctx, instance, model)
	return args.Error(0)
}

// MockEndOfTaskHook contract.EndOfTaskHook 인터페이스의 Mock 구현체입니다.
type MockEndOfTaskHook struct {
	mock.Mock
}

func (m *MockEndOfTaskHook) OnTaskEnd(ctx context.Context, taskID string, instance *contract.Instance) error {
	args := m.Called(ctx, taskID, instance)
	return args.Error(0)
}

// MockPdfFormatHook contract.PdfFormatHook 인터페이스의 Mock 구현체입니다.
type MockPdfFormatHook struct {
	mock.Mock
}

func (m *MockPdfFormatHook) FormatPdf(ctx context.Context, settings *contract.LayoutSettings, model any) (*contract.LayoutSettings, error) {
	args := m.Called(ctx, settings, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.LayoutSettings), args.Error(1)
}

// MockOptionsHook contract.OptionsHook 인터페이스의 Mock 구현체입니다.
type MockOptionsHook struct {
	mock.Mock
}

func (m *MockOptionsHook) GetOptions(ctx context.Context, optionsID string, options []contract.AppOption) ([]contract.AppOption, error) {
	args := m.Called(ctx, optionsID, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.AppOption), args.Error(1)
}
