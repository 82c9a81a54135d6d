// Package mocks contract 패키지 인터페이스의 testify 기반 Mock 구현체를 제공합니다.
package mocks

import (
	"context"
	"io"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

var (
	_ contract.Storage       = (*MockStorage)(nil)
	_ contract.InstanceStore = (*MockInstanceStore)(nil)
)

// MockStorage contract.Storage 인터페이스의 Mock 구현체입니다.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) InsertFormData(ctx context.Context, instance *contract.Instance, dataType string, model any) (*contract.DataElement, error) {
	args := m.Called(ctx, instance, dataType, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.DataElement), args.Error(1)
}

func (m *MockStorage) Update(ctx context.Context, instance *contract.Instance, element *contract.DataElement) (*contract.DataElement, error) {
	args := m.Called(ctx, instance, element)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.DataElement), args.Error(1)
}

func (m *MockStorage) GetFormData(ctx context.Context, instance *contract.Instance, elementID string, model any) error {
	args := m.Called(ctx, instance, elementID, model)
	return args.Error(0)
}

// InsertBinaryData 스트림은 호출 시점에 그대로 전달되므로 Run 콜백에서 내용을 읽어 검증할 수 있습니다.
func (m *MockStorage) InsertBinaryData(ctx context.Context, instanceID, dataType, contentType, filename string, r io.Reader) (*contract.DataElement, error) {
	args := m.Called(ctx, instanceID, dataType, contentType, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.DataElement), args.Error(1)
}

func (m *MockStorage) GetBinaryData(ctx context.Context, instance *contract.Instance, elementID string) (io.ReadCloser, error) {
	args := m.Called(ctx, instance, elementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) DeleteInstance(ctx context.Context, partyID int, instanceGUID string, hard bool) error {
	args := m.Called(ctx, partyID, instanceGUID, hard)
	return args.Error(0)
}

// MockInstanceStore contract.InstanceStore 인터페이스의 Mock 구현체입니다.
type MockInstanceStore struct {
	mock.Mock
}

func (m *MockInstanceStore) CreateInstance(ctx context.Context, instance *contract.Instance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockInstanceStore) GetInstance(ctx context.Context, key contract.InstanceKey) (*contract.Instance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Instance), args.Error(1)
}

func (m *MockInstanceStore) SaveInstance(ctx context.Context, instance *contract.Instance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}
