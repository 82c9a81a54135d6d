package contract

import (
	"context"
	"io"
)

// Storage 폼 데이터, 바이너리 첨부, 인스턴스를 보관하는 외부 스토리지 협력자입니다.
// 모든 메서드는 I/O를 수행하는 대기 지점입니다.
type Storage interface {
	// InsertFormData 모델을 새 데이터 요소로 저장하고 생성된 요소를 반환합니다.
	InsertFormData(ctx context.Context, instance *Instance, dataType string, model any) (*DataElement, error)

	// Update 데이터 요소의 메타데이터(잠금 플래그 등)를 저장합니다.
	Update(ctx context.Context, instance *Instance, element *DataElement) (*DataElement, error)

	// GetFormData 데이터 요소에 저장된 모델을 model(포인터)로 읽어 들입니다.
	GetFormData(ctx context.Context, instance *Instance, elementID string, model any) error

	// InsertBinaryData 스트림을 바이너리 첨부로 저장합니다.
	InsertBinaryData(ctx context.Context, instanceID, dataType, contentType, filename string, r io.Reader) (*DataElement, error)

	// GetBinaryData 바이너리 첨부를 읽기 위한 스트림을 반환합니다. 호출자가 닫아야 합니다.
	GetBinaryData(ctx context.Context, instance *Instance, elementID string) (io.ReadCloser, error)

	// DeleteInstance 인스턴스를 삭제합니다. hard가 true이면 복구할 수 없도록 즉시 제거합니다.
	DeleteInstance(ctx context.Context, partyID int, instanceGUID string, hard bool) error
}

// InstanceStore 호스팅 계층이 인스턴스를 생성, 조회, 저장할 때 사용하는 스토리지 기능입니다.
type InstanceStore interface {
	CreateInstance(ctx context.Context, instance *Instance) error
	GetInstance(ctx context.Context, key InstanceKey) (*Instance, error)
	SaveInstance(ctx context.Context, instance *Instance) error
}
