package lifecycle

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/darkkaiser/app-runtime/internal/service/contract/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTaskID   = "Task_1"
	testClassRef = "App.Models.Model"
	testUserID   = 42
	testLayouts  = `{"page1": {"data": {"layout": [
		{"id": "name", "type": "Input"},
		{"id": "municipality", "type": "Dropdown", "optionsId": "municipalities"}
	]}}}`
)

// trackingReadCloser Close 호출 여부를 기록하는 스트림
type trackingReadCloser struct {
	io.Reader
	closed atomic.Bool
}

func newTrackingReadCloser(content string) *trackingReadCloser {
	return &trackingReadCloser{Reader: strings.NewReader(content)}
}

func (r *trackingReadCloser) Close() error {
	r.closed.Store(true)
	return nil
}

type fixture struct {
	metadata *contract.ApplicationMetadata

	storage      *mocks.MockStorage
	models       *mocks.MockModelCatalog
	resources    *mocks.MockResourceCatalog
	renderer     *mocks.MockRenderer
	texts        *mocks.MockTextLookup
	profiles     *mocks.MockProfileLookup
	parties      *mocks.MockPartyLookup
	prefill      *mocks.MockPrefillHook
	dataCreation *mocks.MockDataCreationHook
	endOfTask    *mocks.MockEndOfTaskHook
	dispatcher   *mocks.MockDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		metadata: &contract.ApplicationMetadata{
			ID:  "ttd/tax-report",
			Org: "ttd",
			DataTypes: []contract.DataType{
				{ID: "model", TaskID: testTaskID, AppLogic: &contract.AppLogic{ClassRef: testClassRef, AutoCreate: true}},
				{ID: "attachment", TaskID: testTaskID},
				{ID: "confirm", TaskID: "Task_2", AppLogic: &contract.AppLogic{ClassRef: "App.Models.Confirm", AutoCreate: true}},
			},
		},
		storage:      &mocks.MockStorage{},
		models:       &mocks.MockModelCatalog{},
		resources:    &mocks.MockResourceCatalog{},
		renderer:     &mocks.MockRenderer{},
		texts:        &mocks.MockTextLookup{},
		profiles:     &mocks.MockProfileLookup{},
		parties:      &mocks.MockPartyLookup{},
		prefill:      &mocks.MockPrefillHook{},
		dataCreation: &mocks.MockDataCreationHook{},
		endOfTask:    &mocks.MockEndOfTaskHook{},
		dispatcher:   &mocks.MockDispatcher{},
	}

	t.Cleanup(func() {
		f.storage.AssertExpectations(t)
		f.models.AssertExpectations(t)
		f.resources.AssertExpectations(t)
		f.renderer.AssertExpectations(t)
		f.texts.AssertExpectations(t)
		f.profiles.AssertExpectations(t)
		f.parties.AssertExpectations(t)
		f.prefill.AssertExpectations(t)
		f.dataCreation.AssertExpectations(t)
		f.endOfTask.AssertExpectations(t)
		f.dispatcher.AssertExpectations(t)
	})

	return f
}

func (f *fixture) controller(t *testing.T, withDispatcher bool) *Controller {
	t.Helper()

	if withDispatcher {
		return f.controllerWith(t, f.dispatcher)
	}
	return f.controllerWith(t, nil)
}

// controllerWith 주어진 발송기로 Controller를 만듭니다. nil이면 발송하지 않습니다.
func (f *fixture) controllerWith(t *testing.T, dispatcher contract.Dispatcher) *Controller {
	t.Helper()

	c, err := NewController(Dependencies{
		Metadata:        f.metadata,
		Storage:         f.storage,
		Models:          f.models,
		Resources:       f.resources,
		Renderer:        f.renderer,
		Texts:           f.texts,
		Profiles:        f.profiles,
		Parties:         f.parties,
		Prefill:         f.prefill,
		DataCreation:    f.dataCreation,
		EndOfTask:       f.endOfTask,
		Dispatcher:      dispatcher,
		DefaultLanguage: "nb",
	})
	require.NoError(t, err)
	return c
}

// expectArchive 한 데이터 요소에 대한 PDF 영수증 보관이 성공하도록 협력자를 설정하고, 렌더러가 반환할 스트림을 돌려줍니다.
func (f *fixture) expectArchive(instance *contract.Instance, elementID string) *trackingReadCloser {
	stream := newTrackingReadCloser("%PDF-1.4")

	f.resources.On("GetLayoutSets").Return("", nil)
	f.resources.On("GetLayouts").Return(testLayouts, nil)
	f.resources.On("GetLayoutSettings").Return(`{"pages": {"order": ["page1"]}}`, nil)
	f.resources.On("GetOptions", "municipalities").Return([]contract.AppOption{{Label: "Oslo", Value: "0301"}}, nil)

	f.models.On("NewModel", testClassRef).Return(&FormData{}, nil).Once()
	f.storage.On("GetFormData", mock.Anything, instance, elementID, mock.Anything).
		Run(func(args mock.Arguments) {
			model := args.Get(3).(*FormData)
			*model = FormData{"name": "Ola"}
		}).
		Return(nil)

	f.profiles.On("GetUserProfile", mock.Anything, testUserID).Return(&contract.UserProfile{
		UserID:                   testUserID,
		PartyID:                  1337,
		ProfileSettingPreference: contract.ProfileSettingPreference{Language: "nb-NO"},
	}, nil)
	f.texts.On("GetText", mock.Anything, "ttd", "tax-report", "nb").Return(&contract.TextResource{
		Language:  "nb",
		Resources: []contract.TextResourceElement{{ID: "ServiceName", Value: "Report:2024"}},
	}, nil)
	f.parties.On("GetParty", mock.Anything, 1337).Return(&contract.Party{PartyID: 1337, Name: "Ola Nordmann"}, nil)

	f.renderer.On("GeneratePDF", mock.Anything, mock.AnythingOfType("*contract.PDFContext")).Return(stream, nil).Once()
	f.storage.On("InsertBinaryData", mock.Anything, instance.ID, ReceiptDataType, "application/pdf", "Report_2024.pdf", stream).
		Return(&contract.DataElement{ID: "receipt-" + elementID, DataType: ReceiptDataType}, nil).Once()

	return stream
}

func newTestInstance(elements ...*contract.DataElement) *contract.Instance {
	key := contract.NewInstanceKey(1337)
	return &contract.Instance{
		ID:            key.String(),
		AppID:         "ttd/tax-report",
		Org:           "ttd",
		InstanceOwner: contract.InstanceOwner{PartyID: "1337"},
		Data:          elements,
	}
}
