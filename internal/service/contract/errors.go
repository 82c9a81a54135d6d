package contract

import apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"

var (
	// ErrInstanceRequired 생명주기 진입점에 인스턴스가 전달되지 않았을 때 반환하는 에러입니다.
	ErrInstanceRequired = apperrors.New(apperrors.InvalidInput, "인스턴스는 nil일 수 없습니다")

	// ErrTaskIDRequired 태스크 ID가 비어있을 때 반환하는 에러입니다.
	ErrTaskIDRequired = apperrors.New(apperrors.InvalidInput, "태스크 ID는 비워둘 수 없습니다")
)
