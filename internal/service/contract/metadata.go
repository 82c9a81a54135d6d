package contract

// ApplicationMetadata 애플리케이션 버전별로 고정된 메타데이터입니다. 로드 이후에는 읽기 전용으로만 사용합니다.
type ApplicationMetadata struct {
	ID                     string               `json:"id"`
	Org                    string               `json:"org"`
	Title                  map[string]string    `json:"title,omitempty"`
	DataTypes              []DataType           `json:"dataTypes"`
	AutoDeleteOnProcessEnd bool                 `json:"autoDeleteOnProcessEnd"`
	EFormidling            *EFormidlingContract `json:"eFormidling,omitempty"`
}

// DataType 인스턴스에 첨부될 수 있는 데이터의 종류를 정의합니다.
type DataType struct {
	ID                  string    `json:"id"`
	TaskID              string    `json:"taskId,omitempty"`
	AppLogic            *AppLogic `json:"appLogic,omitempty"`
	AllowedContentTypes []string  `json:"allowedContentTypes,omitempty"`
	MaxCount            int       `json:"maxCount,omitempty"`
}

// AppLogic 데이터 타입이 애플리케이션 모델로 표현되는 폼 데이터임을 나타냅니다.
type AppLogic struct {
	ClassRef   string `json:"classRef"`
	AutoCreate bool   `json:"autoCreate"`
}

// EFormidlingContract 애플리케이션의 eFormidling 발송 계약입니다.
type EFormidlingContract struct {
	TaskID              string   `json:"taskId,omitempty"`
	ServiceID           string   `json:"serviceId,omitempty"` // DPO, DPV, DPF, DPI
	Receiver            string   `json:"receiver,omitempty"`
	Process             string   `json:"process,omitempty"`
	SendWithEFormidling bool     `json:"sendWithEFormidling"`
	DataTypes           []string `json:"dataTypes,omitempty"`
}

// DataTypesForTask 지정된 태스크에 연결된 데이터 타입을 정의 순서대로 반환합니다.
func (m *ApplicationMetadata) DataTypesForTask(taskID string) []DataType {
	var dataTypes []DataType
	for _, dt := range m.DataTypes {
		if dt.TaskID == taskID {
			dataTypes = append(dataTypes, dt)
		}
	}
	return dataTypes
}

// AutoCreateDataTypes 태스크 시작 시 자동으로 생성해야 하는 데이터 타입을 반환합니다.
func (m *ApplicationMetadata) AutoCreateDataTypes(taskID string) []DataType {
	var dataTypes []DataType
	for _, dt := range m.DataTypesForTask(taskID) {
		if dt.AppLogic != nil && dt.AppLogic.AutoCreate {
			dataTypes = append(dataTypes, dt)
		}
	}
	return dataTypes
}

// SendsWithEFormidling 지정된 태스크 종료 시 eFormidling 발송 대상인지 여부를 반환합니다.
// 계약에 TaskID가 지정되어 있으면 해당 태스크에서만 발송합니다.
func (m *ApplicationMetadata) SendsWithEFormidling(taskID string) bool {
	c := m.EFormidling
	if c == nil || !c.SendWithEFormidling {
		return false
	}
	return c.TaskID == "" || c.TaskID == taskID
}
