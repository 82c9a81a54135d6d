package contract

import (
	"context"
	"io"
)

// Renderer PDFContext를 PDF 바이트 스트림으로 렌더링합니다. 반환된 스트림은 호출자가 닫아야 합니다.
type Renderer interface {
	GeneratePDF(ctx context.Context, pdfContext *PDFContext) (io.ReadCloser, error)
}

// TextLookup 언어별 텍스트 리소스를 조회합니다. 리소스가 없으면 (nil, nil)을 반환합니다.
type TextLookup interface {
	GetText(ctx context.Context, org, app, language string) (*TextResource, error)
}

// ProfileLookup 사용자 프로필을 조회합니다.
type ProfileLookup interface {
	GetUserProfile(ctx context.Context, userID int) (*UserProfile, error)
}

// PartyLookup 당사자 정보를 조회합니다.
type PartyLookup interface {
	GetParty(ctx context.Context, partyID int) (*Party, error)
}

// ResourceCatalog 애플리케이션 로컬 리소스(메타데이터, 레이아웃, 옵션)에 대한 접근을 제공합니다.
// 레이아웃 관련 메서드는 원본 JSON 텍스트를 반환하며, 리소스가 없으면 빈 문자열입니다.
type ResourceCatalog interface {
	GetApplication() (*ApplicationMetadata, error)
	GetLayouts() (string, error)
	GetLayoutsForSet(layoutSetID string) (string, error)
	GetLayoutSettings() (string, error)
	GetLayoutSettingsForSet(layoutSetID string) (string, error)
	GetLayoutSets() (string, error)
	GetOptions(optionsID string) ([]AppOption, error)
}

// Dispatcher 완료된 인스턴스를 외부 메시징 채널로 발송합니다.
type Dispatcher interface {
	Dispatch(ctx context.Context, instance *Instance, taskID string) error
}

// Preloader 인스턴스가 삭제되기 전에 발송에 필요한 데이터를 미리 읽어 둘 수 있는 Dispatcher입니다.
// 반환된 Dispatcher는 스토리지를 다시 읽지 않고 발송합니다.
type Preloader interface {
	Preload(ctx context.Context, instance *Instance) (Dispatcher, error)
}
