package mocks

import (
	"context"
	"io"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

var (
	_ contract.Renderer        = (*MockRenderer)(nil)
	_ contract.TextLookup      = (*MockTextLookup)(nil)
	_ contract.ProfileLookup   = (*MockProfileLookup)(nil)
	_ contract.PartyLookup     = (*MockPartyLookup)(nil)
	_ contract.ResourceCatalog = (*MockResourceCatalog)(nil)
	_ contract.Dispatcher      = (*MockDispatcher)(nil)
	_ contract.Preloader       = (*MockPreloadingDispatcher)(nil)
)

// MockRenderer contract.Renderer 인터페이스의 Mock 구현체입니다.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) GeneratePDF(ctx context.Context, pdfContext *contract.PDFContext) (io.ReadCloser, error) {
	args := m.Called(ctx, pdfContext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockTextLookup contract.TextLookup 인터페이스의 Mock 구현체입니다.
type MockTextLookup struct {
	mock.Mock
}

func (m *MockTextLookup) GetText(ctx context.Context, org, app, language string) (*contract.TextResource, error) {
	args := m.Called(ctx, org, app, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.TextResource), args.Error(1)
}

// MockProfileLookup contract.ProfileLookup 인터페이스의 Mock 구현체입니다.
type MockProfileLookup struct {
	mock.Mock
}

func (m *MockProfileLookup) GetUserProfile(ctx context.Context, userID int) (*contract.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.UserProfile), args.Error(1)
}

// MockPartyLookup contract.PartyLookup 인터페이스의 Mock 구현체입니다.
type MockPartyLookup struct {
	mock.Mock
}

func (m *MockPartyLookup) GetParty(ctx context.Context, partyID int) (*contract.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Party), args.Error(1)
}

// MockResourceCatalog contract.ResourceCatalog 인터페이스의 Mock 구현체입니다.
type MockResourceCatalog struct {
	mock.Mock
}

func (m *MockResourceCatalog) GetApplication() (*contract.ApplicationMetadata, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.ApplicationMetadata), args.Error(1)
}

func (m *MockResourceCatalog) GetLayouts() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockResourceCatalog) GetLayoutsForSet(layoutSetID string) (string, error) {
	args := m.Called(layoutSetID)
	return args.String(0), args.Error(1)
}

func (m *MockResourceCatalog) GetLayoutSettings() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockResourceCatalog) GetLayoutSettingsForSet(layoutSetID string) (string, error) {
	args := m.Called(layoutSetID)
	return args.String(0), args.Error(1)
}

func (m *MockResourceCatalog) GetLayoutSets() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockResourceCatalog) GetOptions(optionsID string) ([]contract.AppOption, error) {
	args := m.Called(optionsID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.AppOption), args.Error(1)
}

// MockDispatcher contract.Dispatcher 인터페이스의 Mock 구현체입니다.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, instance *contract.Instance, taskID string) error {
	args := m.Called(ctx, instance, taskID)
	return args.Error(0)
}

// MockPreloadingDispatcher contract.Preloader를 함께 구현하는 Dispatcher Mock입니다.
type MockPreloadingDispatcher struct {
	MockDispatcher
}

func (m *MockPreloadingDispatcher) Preload(ctx context.Context, instance *contract.Instance) (contract.Dispatcher, error) {
	args := m.Called(ctx, instance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(contract.Dispatcher), args.Error(1)
}
