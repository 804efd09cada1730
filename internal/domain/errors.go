package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures surfaced to embedders.
type ErrorCode string

const (
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodeCorruptInput      ErrorCode = "CORRUPT_INPUT"
	CodeIO                ErrorCode = "IO_ERROR"
	CodeInvalidMode       ErrorCode = "INVALID_MODE"
	CodeFactsIncomplete   ErrorCode = "FACTS_INCOMPLETE"
	CodeCancelled         ErrorCode = "CANCELLED"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeAuth              ErrorCode = "AUTH_ERROR"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeUnavailable       ErrorCode = "UNAVAILABLE"
	CodeInvalidResponse   ErrorCode = "INVALID_RESPONSE"
)

// localized holds the Arabic message shown to end users for each code.
var localized = map[ErrorCode]string{
	CodeUnsupportedFormat: "صيغة الملف غير مدعومة",
	CodeCorruptInput:      "الملف تالف أو لا يمكن قراءته",
	CodeIO:                "تعذر الوصول إلى الملف",
	CodeInvalidMode:       "نوع التحليل غير متوافق مع نوع المستند",
	CodeFactsIncomplete:   "لم يتم العثور على البيانات الأساسية المطلوبة في المستند",
	CodeCancelled:         "تم إلغاء التحليل",
	CodeTimeout:           "انتهت المهلة المحددة للتحليل",
	CodeAuth:              "فشل التحقق من بيانات اعتماد خدمة النماذج",
	CodeRateLimited:       "تم تجاوز حد الطلبات لخدمة النماذج",
	CodeUnavailable:       "خدمة النماذج غير متاحة حالياً",
	CodeInvalidResponse:   "استجابة غير صالحة من خدمة النماذج",
}

// Error is the single error type crossing package boundaries.
type Error struct {
	Code    ErrorCode
	Message string
	// Details lists offending items, e.g. missing slot names for FACTS_INCOMPLETE.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if len(e.Details) > 0 {
		msg = fmt.Sprintf("%s %v", msg, e.Details)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Localized returns the Arabic user-facing message for the error code.
func (e *Error) Localized() string {
	if msg, ok := localized[e.Code]; ok {
		return msg
	}
	return e.Message
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnsupportedFormat = &Error{Code: CodeUnsupportedFormat}
	ErrCorruptInput      = &Error{Code: CodeCorruptInput}
	ErrIO                = &Error{Code: CodeIO}
	ErrInvalidMode       = &Error{Code: CodeInvalidMode}
	ErrFactsIncomplete   = &Error{Code: CodeFactsIncomplete}
	ErrCancelled         = &Error{Code: CodeCancelled}
	ErrTimeout           = &Error{Code: CodeTimeout}
	ErrAuth              = &Error{Code: CodeAuth}
	ErrRateLimited       = &Error{Code: CodeRateLimited}
	ErrUnavailable       = &Error{Code: CodeUnavailable}
	ErrInvalidResponse   = &Error{Code: CodeInvalidResponse}
)

// NewError creates a new domain error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" when none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Common error constructors
func UnsupportedFormat(message string, err error) *Error {
	return NewError(CodeUnsupportedFormat, message, err)
}

func CorruptInput(message string, err error) *Error {
	return NewError(CodeCorruptInput, message, err)
}

func IOError(message string, err error) *Error {
	return NewError(CodeIO, message, err)
}

func InvalidMode(message string) *Error {
	return NewError(CodeInvalidMode, message, nil)
}

func FactsIncomplete(missing []string) *Error {
	e := NewError(CodeFactsIncomplete, "required facts missing", nil)
	e.Details = missing
	return e
}

func Cancelled(err error) *Error {
	return NewError(CodeCancelled, "analysis cancelled", err)
}

func Timeout(err error) *Error {
	return NewError(CodeTimeout, "analysis deadline exceeded", err)
}

func AuthError(message string, err error) *Error {
	return NewError(CodeAuth, message, err)
}

func RateLimited(message string, err error) *Error {
	return NewError(CodeRateLimited, message, err)
}

func Unavailable(message string, err error) *Error {
	return NewError(CodeUnavailable, message, err)
}

func InvalidResponse(message string, err error) *Error {
	return NewError(CodeInvalidResponse, message, err)
}
