package contract

import (
	"context"
	"io"
	"time"
)

// SenderAuthority SBD 당사자 식별자의 발급 기관
const SenderAuthority = "iso6523-actorid-upis"

// StandardBusinessDocument 완료된 인스턴스를 외부 메시징 채널로 보내기 위한 봉투입니다.
// 저장하지 않으며 발송할 때마다 새로 만듭니다.
type StandardBusinessDocument struct {
	Header       StandardBusinessDocumentHeader `json:"standardBusinessDocumentHeader"`
	Arkivmelding *Arkivmelding                  `json:"arkivmelding,omitempty"`
}

type StandardBusinessDocumentHeader struct {
	HeaderVersion          string                 `json:"headerVersion"`
	Sender                 []Partner              `json:"sender"`
	Receiver               []Partner              `json:"receiver"`
	DocumentIdentification DocumentIdentification `json:"documentIdentification"`
	BusinessScope          BusinessScope          `json:"businessScope"`
}

// Partner 발신자 또는 수신자
type Partner struct {
	Identifier PartnerIdentification `json:"identifier"`
}

type PartnerIdentification struct {
	Authority string `json:"authority"`
	Value     string `json:"value"`
}

type DocumentIdentification struct {
	Standard            string    `json:"standard"`
	TypeVersion         string    `json:"typeVersion"`
	InstanceIdentifier  string    `json:"instanceIdentifier"`
	Type                string    `json:"type"`
	CreationDateAndTime time.Time `json:"creationDateAndTime"`
}

type BusinessScope struct {
	Scope []Scope `json:"scope"`
}

type Scope struct {
	Type               string             `json:"type"`
	InstanceIdentifier string             `json:"instanceIdentifier"`
	Identifier         string             `json:"identifier"`
	ScopeInformation   []ScopeInformation `json:"scopeInformation"`
}

type ScopeInformation struct {
	ExpectedResponseDateTime time.Time `json:"expectedResponseDateTime"`
}

// Arkivmelding 아카이브 메시지 본문 메타데이터
type Arkivmelding struct {
	Sikkerhetsnivaa int    `json:"sikkerhetsnivaa"`
	Hoveddokument   string `json:"hoveddokument,omitempty"`
}

// MessageID 봉투의 메시지 식별자(인스턴스 GUID)를 반환합니다.
func (d *StandardBusinessDocument) MessageID() string {
	if d == nil {
		return ""
	}
	return d.Header.DocumentIdentification.InstanceIdentifier
}

// 메시지 상태 값
const (
	MessageStatusCreated   = "OPPRETTET"
	MessageStatusSent      = "SENDT"
	MessageStatusReceived  = "MOTTATT"
	MessageStatusDelivered = "LEVERT"
	MessageStatusRead      = "LEST"
	MessageStatusFailed    = "FEILET"
	MessageStatusExpired   = "LEVETID_UTLOPT"
)

// MessageStatus 메시지의 상태 변경 이력 한 건
type MessageStatus struct {
	ID             int64     `json:"id"`
	LastUpdate     time.Time `json:"lastUpdate"`
	Status         string    `json:"status"`
	Description    string    `json:"description,omitempty"`
	ConversationID string    `json:"convId,omitempty"`
	MessageID      string    `json:"messageId"`
}

// Statuses 메시지 상태 조회 결과
type Statuses struct {
	Content []MessageStatus `json:"content"`
}

// Latest 가장 최근에 갱신된 상태를 반환합니다. 이력이 없으면 false입니다.
func (s *Statuses) Latest() (MessageStatus, bool) {
	if s == nil || len(s.Content) == 0 {
		return MessageStatus{}, false
	}

	latest := s.Content[0]
	for _, st := range s.Content[1:] {
		if st.LastUpdate.After(latest.LastUpdate) {
			latest = st
		}
	}
	return latest, true
}

// IsTerminalStatus 더 이상 바뀌지 않는 상태인지 여부
func IsTerminalStatus(status string) bool {
	switch status {
	case MessageStatusDelivered, MessageStatusRead, MessageStatusFailed, MessageStatusExpired:
		return true
	}
	return false
}

// IsFailureStatus 운영자 확인이 필요한 실패 상태인지 여부
func IsFailureStatus(status string) bool {
	return status == MessageStatusFailed || status == MessageStatusExpired
}

// Capabilities 수신 기관이 지원하는 발송 방식 목록
type Capabilities struct {
	Capabilities []Capability `json:"capabilities"`
}

type Capability struct {
	Process           string         `json:"process"`
	ServiceIdentifier string         `json:"serviceIdentifier"`
	DocumentTypes     []DocumentType `json:"documentTypes"`
}

type DocumentType struct {
	Type     string `json:"type"`
	Standard string `json:"standard"`
}

// Supports 서비스 식별자가 지정된 문서 타입을 지원하는지 확인합니다.
func (c *Capabilities) Supports(serviceIdentifier, documentType string) bool {
	if c == nil {
		return false
	}
	for _, capability := range c.Capabilities {
		if capability.ServiceIdentifier != serviceIdentifier {
			continue
		}
		for _, dt := range capability.DocumentTypes {
			if dt.Type == documentType {
				return true
			}
		}
	}
	return false
}

// MessagingClient 외부 메시징 통합 지점과의 통신을 추상화합니다.
type MessagingClient interface {
	CreateMessage(ctx context.Context, sbd *StandardBusinessDocument) (*StandardBusinessDocument, error)
	UploadAttachment(ctx context.Context, r io.Reader, messageID, filename string) error
	SendMessage(ctx context.Context, messageID string) error
	GetMessageStatusById(ctx context.Context, messageID string) (*Statuses, error)
	GetCapabilities(ctx context.Context, orgNumber string) (*Capabilities, error)
}

// ManifestProvider 발송에 포함할 아카이브 매니페스트를 제공합니다. 매니페스트가 없으면 (nil, nil)을 반환합니다.
type ManifestProvider interface {
	GetManifest(ctx context.Context, instance *Instance) ([]byte, error)
}

// AlertSender 운영자에게 알림 메시지를 전달합니다.
type AlertSender interface {
	Alert(ctx context.Context, message string) error
}
