// Package core предоставляет систему ошибок библиотеки.
package core

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Коды ошибок библиотеки
const (
	ErrValidation         = "VALIDATION_ERROR"
	ErrCurrencyMismatch   = "CURRENCY_MISMATCH"
	ErrUnsupportedPayment = "UNSUPPORTED_PAYMENT_METHOD"
	ErrPaymentDeclined    = "PAYMENT_DECLINED"
	ErrPaymentError       = "PAYMENT_ERROR"
	ErrObserverFailure    = "OBSERVER_FAILURE"
	ErrInvalidTransition  = "INVALID_TRANSITION"
	ErrInvalidConfig      = "INVALID_CONFIG"
	ErrAlreadyFrozen      = "ALREADY_FROZEN"
	ErrNotFound           = "NOT_FOUND"
	ErrAlreadyExists      = "ALREADY_EXISTS"
)

// DomainError базовый тип ошибки библиотеки
type DomainError struct {
	Code       string
	Message    string
	Cause      error
	StackTrace string
}

// Error реализует интерфейс error
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is проверяет, соответствует ли ошибка коду
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext добавляет контекст к ошибке
func (e *DomainError) WithContext(context string) *DomainError {
	return &DomainError{
		Code:       e.Code,
		Message:    fmt.Sprintf("%s: %s", context, e.Message),
		Cause:      e.Cause,
		StackTrace: e.StackTrace,
	}
}

// NewError создает новую ошибку библиотеки
func NewError(code, message string) *DomainError {
	return &DomainError{
		Code:       code,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// Newf создает новую ошибку с форматированием сообщения
func Newf(code, format string, args ...interface{}) *DomainError {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code, message string) *DomainError {
	if err == nil {
		return nil
	}
	return &DomainError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStackTrace(),
	}
}

// WrapWithCode оборачивает ошибку с кодом
func WrapWithCode(err error, code string) *DomainError {
	if err == nil {
		return nil
	}
	return &DomainError{
		Code:       code,
		Message:    err.Error(),
		Cause:      err,
		StackTrace: captureStackTrace(),
	}
}

// HasCode проверяет, имеет ли ошибка указанный код
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// captureStackTrace захватывает stack trace
func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// Убираем первые несколько строк (сама функция captureStackTrace)
	lines := strings.Split(stack, "\n")
	if len(lines) > 4 {
		lines = lines[4:]
	}
	return strings.Join(lines, "\n")
}
