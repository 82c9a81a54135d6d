package contract

import "slices"

// LayoutSets 데이터 타입/태스크 조합별로 레이아웃과 설정을 묶는 레이아웃 세트 목록
type LayoutSets struct {
	Sets []LayoutSet `json:"sets"`
}

// LayoutSet 특정 데이터 타입과 태스크에 연결된 레이아웃 세트
type LayoutSet struct {
	ID       string   `json:"id"`
	DataType string   `json:"dataType"`
	Tasks    []string `json:"tasks"`
}

// Find 데이터 타입과 태스크가 모두 일치하는 첫 번째 레이아웃 세트를 반환합니다.
func (s *LayoutSets) Find(dataType, taskID string) *LayoutSet {
	if s == nil {
		return nil
	}
	for i := range s.Sets {
		if s.Sets[i].DataType == dataType && slices.Contains(s.Sets[i].Tasks, taskID) {
			return &s.Sets[i]
		}
	}
	return nil
}

// LayoutSettings 페이지 순서와 PDF 제외 대상을 담는 레이아웃 설정
type LayoutSettings struct {
	Pages      *PagesSettings      `json:"pages,omitempty"`
	Components *ComponentsSettings `json:"components,omitempty"`
}

type PagesSettings struct {
	Order          []string `json:"order,omitempty"`
	ExcludeFromPdf []string `json:"excludeFromPdf,omitempty"`
}

type ComponentsSettings struct {
	ExcludeFromPdf []string `json:"excludeFromPdf,omitempty"`
}

// AppOption 동적 옵션 목록의 한 항목
type AppOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TextResource 특정 언어의 텍스트 리소스 묶음
type TextResource struct {
	ID        string                `json:"id,omitempty"`
	Org       string                `json:"org,omitempty"`
	Language  string                `json:"language"`
	Resources []TextResourceElement `json:"resources"`
}

type TextResourceElement struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Text 지정된 ID의 텍스트 값을 반환합니다.
func (r *TextResource) Text(id string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, e := range r.Resources {
		if e.ID == id {
			return e.Value, true
		}
	}
	return "", false
}

// UserProfile 플랫폼 프로필 서비스의 사용자 정보
type UserProfile struct {
	UserID                   int                      `json:"userId"`
	UserName                 string                   `json:"userName,omitempty"`
	PartyID                  int                      `json:"partyId"`
	Party                    *Party                   `json:"party,omitempty"`
	ProfileSettingPreference ProfileSettingPreference `json:"profileSettingPreference"`
}

type ProfileSettingPreference struct {
	Language string `json:"language"`
}

// Party 레지스터 서비스의 당사자(개인 또는 기관) 정보
type Party struct {
	PartyID   int    `json:"partyId"`
	Name      string `json:"name"`
	OrgNumber string `json:"orgNumber,omitempty"`
	SSN       string `json:"ssn,omitempty"`
}

// PDFContext PDF 렌더러 호출 한 번을 위해 조립되는 일회성 데이터입니다.
type PDFContext struct {
	Data              string                       `json:"data"` // base64로 인코딩된 XML 모델
	FormLayouts       map[string]any               `json:"formLayouts"`
	LayoutSettings    *LayoutSettings              `json:"layoutSettings,omitempty"`
	TextResources     *TextResource                `json:"textResources"`
	OptionsDictionary map[string]map[string]string `json:"optionsDictionary"`
	Party             *Party                       `json:"party"`
	UserParty         *Party                       `json:"userParty,omitempty"`
	UserProfile       *UserProfile                 `json:"userProfile"`
	Instance          *Instance                    `json:"instance"`
}
