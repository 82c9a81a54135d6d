package scheduler

import (
	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
)

// ErrNoJobs 등록할 작업 없이 스케줄러를 시작하려 할 때 반환하는 에러입니다.
var ErrNoJobs = apperrors.New(apperrors.Internal, "스케줄러에 등록할 작업이 없습니다")

// newErrInvalidCronSpec Cron 표현식이 올바르지 않아 작업 등록에 실패했을 때 반환하는 에러를 생성합니다.
func newErrInvalidCronSpec(jobName, spec string, cause error) error {
	return apperrors.Wrapf(cause, apperrors.InvalidInput, "스케줄 등록 실패: 잘못된 Cron 표현식입니다 (Job=%s, Spec='%s')", jobName, spec)
}
