package contract

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/google/uuid"
)

// Instance 진행 중인 하나의 사례(case) 제출 건입니다.
//
// 인스턴스 자체의 영속화는 스토리지 서비스의 책임이며, 생명주기 컨트롤러는
// 메모리 상의 Data 컬렉션(요소 추가, 잠금 플래그)만 변경합니다.
type Instance struct {
	ID            string         `json:"id"`
	AppID         string         `json:"appId"`
	Org           string         `json:"org"`
	InstanceOwner InstanceOwner  `json:"instanceOwner"`
	Process       *ProcessState  `json:"process,omitempty"`
	Data          []*DataElement `json:"data"`
	Created       time.Time      `json:"created"`
	LastChanged   time.Time      `json:"lastChanged"`
}

// InstanceOwner 인스턴스를 소유한 당사자
type InstanceOwner struct {
	PartyID string `json:"partyId"`
}

// ProcessState 인스턴스의 현재 프로세스 진행 상태
type ProcessState struct {
	StartEvent  string              `json:"startEvent,omitempty"`
	CurrentTask *ProcessElementInfo `json:"currentTask,omitempty"`
	EndEvent    string              `json:"endEvent,omitempty"`
	Ended       *time.Time          `json:"ended,omitempty"`
}

// ProcessElementInfo 현재 진행 중인 프로세스 태스크 정보
type ProcessElementInfo struct {
	ElementID string            `json:"elementId"`
	Validated *ValidationStatus `json:"validated,omitempty"`
}

// ValidationStatus 이전 검증 단계가 남긴 현재 태스크의 검증 결과입니다. 존재하면 종료 가능 여부 판단에서 최우선합니다.
type ValidationStatus struct {
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	CanCompleteTask bool       `json:"canCompleteTask"`
}

// ValidationIssue 외부 검증 단계가 생성한 개별 검증 이슈
type ValidationIssue struct {
	Code        string `json:"code"`
	Severity    string `json:"severity"`
	Field       string `json:"field,omitempty"`
	Description string `json:"description"`
}

// DataElement 인스턴스에 첨부된 하나의 데이터(폼 데이터 또는 바이너리)입니다.
// 한 번 잠긴(Locked) 요소는 다시 풀리지 않습니다.
type DataElement struct {
	ID           string    `json:"id"`
	InstanceGUID string    `json:"instanceGuid"`
	DataType     string    `json:"dataType"`
	ContentType  string    `json:"contentType,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	Locked       bool      `json:"locked"`
	Size         int64     `json:"size"`
	Created      time.Time `json:"created"`
	LastChanged  time.Time `json:"lastChanged"`
}

// CurrentTaskValidation 현재 태스크의 검증 결과를 반환합니다. 없으면 nil입니다.
func (i *Instance) CurrentTaskValidation() *ValidationStatus {
	if i.Process == nil || i.Process.CurrentTask == nil {
		return nil
	}
	return i.Process.CurrentTask.Validated
}

// FindDataElement 지정된 데이터 타입의 첫 번째 요소를 반환합니다.
func (i *Instance) FindDataElement(dataType string) *DataElement {
	for _, de := range i.Data {
		if de.DataType == dataType {
			return de
		}
	}
	return nil
}

// DataElementsOf 지정된 데이터 타입의 모든 요소를 반환합니다.
func (i *Instance) DataElementsOf(dataType string) []*DataElement {
	var elements []*DataElement
	for _, de := range i.Data {
		if de.DataType == dataType {
			elements = append(elements, de)
		}
	}
	return elements
}

// AppName "org/app" 형식의 AppID에서 app 부분을 반환합니다.
func (i *Instance) AppName() string {
	if _, app, ok := strings.Cut(i.AppID, "/"); ok {
		return app
	}
	return i.AppID
}

// Key 인스턴스 ID를 해석하고, 소유자 정보가 있으면 ID의 당사자 번호와 일치하는지 확인합니다.
func (i *Instance) Key() (InstanceKey, error) {
	key, err := ParseInstanceID(i.ID)
	if err != nil {
		return InstanceKey{}, err
	}

	if i.InstanceOwner.PartyID != "" && i.InstanceOwner.PartyID != strconv.Itoa(key.PartyID) {
		return InstanceKey{}, apperrors.Newf(apperrors.DataIntegrity, "인스턴스 소유자(%s)와 인스턴스 ID(%s)의 당사자 번호가 일치하지 않습니다", i.InstanceOwner.PartyID, i.ID)
	}

	return key, nil
}

// InstanceKey 인스턴스를 식별하는 (소유 당사자 번호, 인스턴스 GUID) 쌍입니다.
type InstanceKey struct {
	PartyID int
	GUID    uuid.UUID
}

// NewInstanceKey 새 GUID를 발급하여 InstanceKey를 생성합니다.
func NewInstanceKey(partyID int) InstanceKey {
	return InstanceKey{PartyID: partyID, GUID: uuid.New()}
}

// String "partyId/guid" 형식의 인스턴스 ID를 반환합니다.
func (k InstanceKey) String() string {
	return strconv.Itoa(k.PartyID) + "/" + k.GUID.String()
}

// ParseInstanceID "partyId/guid" 형식의 인스턴스 ID를 해석합니다.
// 형식이 맞지 않으면 DataIntegrity 에러를 반환합니다.
func ParseInstanceID(id string) (InstanceKey, error) {
	partyPart, guidPart, ok := strings.Cut(id, "/")
	if !ok || strings.Contains(guidPart, "/") {
		return InstanceKey{}, apperrors.Newf(apperrors.DataIntegrity, "인스턴스 ID 형식이 올바르지 않습니다 (형식: partyId/guid): '%s'", id)
	}

	partyID, err := strconv.Atoi(partyPart)
	if err != nil || partyID <= 0 {
		return InstanceKey{}, apperrors.Newf(apperrors.DataIntegrity, "인스턴스 ID의 당사자 번호가 올바르지 않습니다: '%s'", id)
	}

	guid, err := uuid.Parse(guidPart)
	if err != nil {
		return InstanceKey{}, apperrors.Wrapf(err, apperrors.DataIntegrity, "인스턴스 ID의 GUID가 올바르지 않습니다: '%s'", id)
	}

	return InstanceKey{PartyID: partyID, GUID: guid}, nil
}
