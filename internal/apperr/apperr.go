package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind классифицирует ошибку независимо от хранилища.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindStorage
)

// String возвращает имя вида ошибки
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error типизированная ошибка сервиса отчетов.
type Error struct {
	Kind        Kind
	Message     string
	Description string
	// DBCode и DBMessage заполняются только для ошибок драйвера
	DBCode    string
	DBMessage string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation создает ошибку валидации из списка нарушений
func Validation(violations []string) *Error {
	return &Error{
		Kind:        KindValidation,
		Message:     "invalid report payload",
		Description: strings.Join(violations, ", "),
	}
}

// NotFound создает ошибку отсутствующей записи
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal создает ошибку нарушения ожидаемого инварианта
func Internal(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Storage оборачивает ошибку драйвера или хранилища
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// WithDriver прикрепляет к ошибке код и сообщение драйвера БД
func (e *Error) WithDriver(code, message string) *Error {
	e.DBCode = code
	e.DBMessage = message
	return e
}

// KindOf возвращает вид ошибки; ошибки без типа считаются внутренними
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is сообщает, относится ли ошибка к указанному виду
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus сопоставляет ошибку со статусом HTTP
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
