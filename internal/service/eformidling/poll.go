package eformidling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

// terminalRetention 최종 상태가 된 메시지를 추적기에서 유지하는 기간
const terminalRetention = 24 * time.Hour

// PollStatuses 최종 상태가 아닌 메시지의 상태를 다시 조회합니다.
// 메시지가 실패 상태로 바뀌면 운영자에게 알립니다. 조회 실패는 모아서 반환하지만 나머지 메시지 조회는 계속합니다.
func (p *Pipeline) PollStatuses(ctx context.Context) error {
	var errs []error

	for _, tracked := range p.tracker.Pending() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		statuses, err := p.client.GetMessageStatusById(ctx, tracked.MessageID)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		latest, ok := statuses.Latest()
		if !ok {
			continue
		}

		updated, changed := p.tracker.Update(tracked.MessageID, latest.Status)
		if !changed {
			continue
		}

		fields := applog.Fields{
			"message_id":  updated.MessageID,
			"instance_id": updated.InstanceID,
			"status":      updated.Status,
		}
		if contract.IsFailureStatus(updated.Status) {
			applog.WithComponentAndFields(component, fields).Error("eFormidling 메시지가 실패 상태가 되었습니다")
			p.alert(ctx, fmt.Sprintf("eFormidling 메시지 전달 실패\n메시지: %s\n인스턴스: %s\n상태: %s\n%s", updated.MessageID, updated.InstanceID, updated.Status, latest.Description))
			continue
		}
		applog.WithComponentAndFields(component, fields).Info("eFormidling 메시지 상태 변경")
	}

	if removed := p.tracker.Prune(terminalRetention); removed > 0 {
		applog.WithComponentAndFields(component, applog.Fields{"removed": removed}).Debug("최종 상태 메시지 추적 종료")
	}

	return errors.Join(errs...)
}
