package storage

import (
	"fmt"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
)

var (
	// ErrPathTraversalDetected 계산된 경로가 저장소 루트를 벗어날 때 반환됩니다.
	ErrPathTraversalDetected = apperrors.New(apperrors.Internal, "보안 정책 위반: 허용되지 않은 경로 접근 시도로 인해 요청이 차단되었습니다")

	// ErrModelRequiresPointer GetFormData의 대상 모델이 nil이 아닌 포인터가 아닐 때 반환됩니다.
	ErrModelRequiresPointer = apperrors.New(apperrors.Internal, "폼 데이터를 읽어 들일 모델은 nil이 아닌 포인터여야 합니다")
)

func newErrInstanceNotFound(key fmt.Stringer) error {
	return apperrors.Newf(apperrors.NotFound, "인스턴스를 찾을 수 없습니다: %s", key)
}

func newErrInstanceExists(key fmt.Stringer) error {
	return apperrors.Newf(apperrors.Conflict, "이미 존재하는 인스턴스입니다: %s", key)
}

func newErrDataElementNotFound(elementID string) error {
	return apperrors.Newf(apperrors.NotFound, "데이터 요소를 찾을 수 없습니다: %s", elementID)
}

func newErrInvalidElementID(elementID string) error {
	return apperrors.Newf(apperrors.InvalidInput, "데이터 요소 ID 형식이 올바르지 않습니다: '%s'", elementID)
}

func newErrDataElementLocked(elementID string) error {
	return apperrors.Newf(apperrors.Conflict, "잠긴 데이터 요소는 잠금을 해제할 수 없습니다: %s", elementID)
}

func newErrFileIO(err error, op string) error {
	return apperrors.Wrapf(err, apperrors.System, "스토리지 파일 처리 실패: %s", op)
}
