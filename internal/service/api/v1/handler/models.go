package handler

import "github.com/darkkaiser/app-runtime/internal/service/contract"

// CreateInstanceRequest 인스턴스 생성 요청
type CreateInstanceRequest struct {
	PartyID int `json:"partyId" validate:"required,gt=0"`
}

// IssuesRequest 외부 검증 단계가 남긴 검증 이슈 목록입니다. 본문이 없으면 이슈가 없는 것으로 봅니다.
type IssuesRequest struct {
	Issues []contract.ValidationIssue `json:"issues" validate:"dive"`
}

// EndTaskRequest 태스크 종료 요청. NextTaskID가 있으면 종료 후 그 태스크를 시작하고, 없으면 프로세스를 종료합니다.
type EndTaskRequest struct {
	IssuesRequest
	NextTaskID string `json:"nextTaskId,omitempty"`
}

// CanEndResponse 종료 가능 여부 판정 결과
type CanEndResponse struct {
	TaskID string `json:"taskId"`
	CanEnd bool   `json:"canEnd"`
}
