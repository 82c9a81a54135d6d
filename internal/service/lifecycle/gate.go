package lifecycle

import (
	"github.com/darkkaiser/app-runtime/internal/service/contract"
)

// CompletionGate 태스크를 종료해도 되는지 판정합니다. 부작용이 없습니다.
type CompletionGate struct{}

// CanEnd 인스턴스에 기록된 검증 상태가 있으면 그 결과가 우선하고, 없으면 검증 이슈가 하나도 없을 때만 true입니다.
func (CompletionGate) CanEnd(taskID string, instance *contract.Instance, issues []contract.ValidationIssue) (bool, error) {
	if instance == nil {
		return false, contract.ErrInstanceRequired
	}

	if status := instance.CurrentTaskValidation(); status != nil {
		return status.CanCompleteTask, nil
	}

	return len(issues) == 0, nil
}
