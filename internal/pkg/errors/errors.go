// Package errors 애플리케이션 전역에서 사용하는 타입 기반 에러를 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되며 생성 시점의 호출 스택을 함께 보관합니다.
// 생명주기 종료 처리처럼 여러 실패를 한 번에 보고해야 하는 경우 errors.Join으로 묶인
// 에러 트리가 만들어지므로, Is/UnderlyingType은 다중 Unwrap 트리까지 탐색합니다.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// AppError 에러 타입, 메시지, 원인, 호출 스택을 담는 애플리케이션 에러입니다.
type AppError struct {
	errType ErrorType
	message string
	cause   error
	stack   []StackFrame
}

// Type 에러 타입을 반환합니다.
func (e *AppError) Type() ErrorType {
	return e.errType
}

// Message 원인을 제외한 에러 메시지를 반환합니다.
func (e *AppError) Message() string {
	return e.message
}

// Stack 에러 생성 시점의 호출 스택을 반환합니다.
func (e *AppError) Stack() []StackFrame {
	return e.stack
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.errType, e.message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Format fmt.Formatter 구현입니다. "%+v"는 가장 안쪽 AppError의 스택 트레이스와 원인 체인을 함께 출력합니다.
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "[%s] %s", e.errType, e.message)

			// 원인 쪽에 AppError가 있으면 스택은 그쪽에서 출력되므로 중복 출력을 피한다.
			var inner *AppError
			if e.cause == nil || !errors.As(e.cause, &inner) {
				writeStack(s, e.stack)
			}

			if e.cause != nil {
				fmt.Fprint(s, "\nCaused by:\n")
				if f, ok := e.cause.(fmt.Formatter); ok {
					f.Format(s, verb)
				} else {
					fmt.Fprintf(s, "\t%v", e.cause)
				}
			}
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func writeStack(w io.Writer, stack []StackFrame) {
	if len(stack) == 0 {
		return
	}

	fmt.Fprint(w, "\nStack trace:")
	for _, frame := range stack {
		fn := frame.Function
		if idx := strings.LastIndex(fn, "/"); idx != -1 {
			fn = fn[idx+1:]
		}
		fmt.Fprintf(w, "\n\t%s:%d %s", frame.File, frame.Line, fn)
	}
}

// New 지정된 타입과 메시지로 새 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return &AppError{
		errType: errType,
		message: message,
		stack:   captureStack(defaultCallerSkip),
	}
}

// Newf 포맷 문자열로 메시지를 구성하여 새 에러를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return &AppError{
		errType: errType,
		message: fmt.Sprintf(format, args...),
		stack:   captureStack(defaultCallerSkip),
	}
}

// Wrap 기존 에러를 원인으로 하는 새 에러를 생성합니다. err가 nil이면 nil을 반환합니다.
func Wrap(err error, errType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		errType: errType,
		message: message,
		cause:   err,
		stack:   captureStack(defaultCallerSkip),
	}
}

// Wrapf Wrap과 같지만 포맷 문자열로 메시지를 구성합니다.
func Wrapf(err error, errType ErrorType, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &AppError{
		errType: errType,
		message: fmt.Sprintf(format, args...),
		cause:   err,
		stack:   captureStack(defaultCallerSkip),
	}
}

// Is 에러 트리 어딘가에 지정된 타입의 AppError가 있는지 확인합니다.
func Is(err error, errType ErrorType) bool {
	found := false
	walk(err, func(e error) bool {
		if appErr, ok := e.(*AppError); ok && appErr.errType == errType {
			found = true
			return false
		}
		return true
	})
	return found
}

// As 표준 errors.As를 그대로 위임합니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// RootCause 단일 원인 체인을 끝까지 따라가 가장 안쪽의 에러를 반환합니다.
// errors.Join으로 묶인 지점에서는 그 묶음 자체를 근본 원인으로 봅니다.
func RootCause(err error) error {
	if err == nil {
		return nil
	}

	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// UnderlyingType 에러 트리를 깊이 우선으로 탐색하여 마지막으로 만난 AppError의 타입을 반환합니다.
// AppError가 하나도 없으면 Unknown입니다.
func UnderlyingType(err error) ErrorType {
	last := Unknown
	walk(err, func(e error) bool {
		if appErr, ok := e.(*AppError); ok {
			last = appErr.errType
		}
		return true
	})
	return last
}

// walk 단일/다중 Unwrap을 모두 따라가며 fn을 호출합니다. fn이 false를 반환하면 탐색을 멈춥니다.
func walk(err error, fn func(error) bool) bool {
	for err != nil {
		if !fn(err) {
			return false
		}

		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, child := range x.Unwrap() {
				if !walk(child, fn) {
					return false
				}
			}
			return true
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		default:
			return true
		}
	}
	return true
}
