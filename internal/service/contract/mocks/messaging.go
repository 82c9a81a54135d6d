package mocks

import (
	"context"
	"io"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

var (
	_ contract.MessagingClient  = (*MockMessagingClient)(nil)
	_ contract.ManifestProvider = (*MockManifestProvider)(nil)
	_ contract.AlertSender      = (*MockAlertSender)(nil)
)

// MockMessagingClient contract.MessagingClient 인터페이스의 Mock 구현체입니다.
type MockMessagingClient struct {
	mock.Mock
}

func (m *MockMessagingClient) CreateMessage(ctx context.Context, sbd *contract.StandardBusinessDocument) (*contract.StandardBusinessDocument, error) {
	args := m.Called(ctx, sbd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.StandardBusinessDocument), args.Error(1)
}

func (m *MockMessagingClient) UploadAttachment(ctx context.Context, r io.Reader, messageID, filename string) error {
	args := m.Called(ctx, r, messageID, filename)
	return args.Error(0)
}

func (m *MockMessagingClient) SendMessage(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockMessagingClient) GetMessageStatusById(ctx context.Context, messageID string) (*contract.Statuses, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Statuses), args.Error(1)
}

func (m *MockMessagingClient) GetCapabilities(ctx context.Context, orgNumber string) (*contract.Capabilities, error) {
	args := m.Called(ctx, orgNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Capabilities), args.Error(1)
}

// MockManifestProvider contract.ManifestProvider 인터페이스의 Mock 구현체입니다.
type MockManifestProvider struct {
	mock.Mock
}

func (m *MockManifestProvider) GetManifest(ctx context.Context, instance *contract.Instance) ([]byte, error) {
	args := m.Called(ctx, instance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAlertSender contract.AlertSender 인터페이스의 Mock 구현체입니다.
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) Alert(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
