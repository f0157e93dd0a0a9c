package apperror

import "fmt"

const (
	CodeRequired    = "REQUIRED"
	CodeInvalidEnum = "INVALID_ENUM"
)

// ValidationError は検証エラーを表す typed error。
// HTTP 層で errors.As を使って field/code/rejectedValue を取り出せる。
type ValidationError struct {
	Field         string  // name, title, status, priority, input
	Code          string  // REQUIRED, INVALID_ENUM
	RejectedValue *string // 不正だった値（nil の場合もある）
	cause         error   // 元のエラー（Unwrap 用）
}

// Error は error インターフェースを満たす。
func (e *ValidationError) Error() string {
	if e.RejectedValue != nil {
		return fmt.Sprintf("%s: %s (rejected: %s)", e.Field, e.Code, *e.RejectedValue)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

// Unwrap は cause を返す（errors.Is で sentinel と照合できる）。
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// --- Constructors ---

// NewRequired は必須項目が空だった場合の REQUIRED エラーを生成する。
func NewRequired(field string, cause error) *ValidationError {
	return &ValidationError{
		Field: field,
		Code:  CodeRequired,
		cause: cause,
	}
}

// NewInvalidEnum は INVALID_ENUM エラーを生成する。
// rejected: 不正だった値
func NewInvalidEnum(field string, cause error, rejected string) *ValidationError {
	return &ValidationError{
		Field:         field,
		Code:          CodeInvalidEnum,
		RejectedValue: &rejected,
		cause:         cause,
	}
}
